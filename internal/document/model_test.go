package document

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSampleRoundTrip(t *testing.T) {
	sample := NewSampleScene("scene_x")
	data, err := json.Marshal(sample)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "scene_x" || len(got.Nodes) != 4 || got.TotalFrames() != 48 || got.FPS() != 24 {
		t.Errorf("parsed sample = id %s, %d nodes, %d frames", got.ID, len(got.Nodes), got.TotalFrames())
	}
	if got.Nodes[3].Type != NodeLayer || len(got.Nodes[3].Children) != 1 {
		t.Errorf("spinner layer = %+v", got.Nodes[3])
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"negative size", `{"width":-1,"height":10}`},
		{"unknown type", `{"nodes":[{"id":"a","type":"star"}]}`},
		{"duplicate id", `{"nodes":[{"id":"a","type":"line"},{"id":"l","type":"layer","children":[{"id":"a","type":"rect"}]}]}`},
		{"shape with children", `{"nodes":[{"id":"a","type":"rect","children":[{"id":"b","type":"line"}]}]}`},
		{"zero timeline", `{"nodes":[],"timeline":{"length":0}}`},
		{"bad property", `{"nodes":[{"id":"l","type":"layer"}],"timeline":{"length":2,"tracks":[{"nodeId":"l","property":"opacity"}]}}`},
		{"track on shape", `{"nodes":[{"id":"r","type":"rect"}],"timeline":{"length":2,"tracks":[{"nodeId":"r","property":"rot"}]}}`},
		{"track on missing node", `{"nodes":[],"timeline":{"length":2,"tracks":[{"nodeId":"ghost","property":"rot"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.json)); !errors.Is(err, ErrInvalidScene) {
				t.Errorf("err = %v, want ErrInvalidScene", err)
			}
		})
	}
}

func TestParseMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"nodes":`)); err == nil {
		t.Error("Parse accepted truncated JSON")
	}
}

func TestStillScene(t *testing.T) {
	s := NewEmptyScene("scene_e", "empty", 320, 240)
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if s.TotalFrames() != 1 || s.FPS() != 24 {
		t.Errorf("frames=%d fps=%d", s.TotalFrames(), s.FPS())
	}
}

func TestLimitsCheck(t *testing.T) {
	l := Limits{MaxWidth: 800, MaxHeight: 600, MaxFrames: 100}
	tests := []struct {
		name  string
		scene *Scene
		ok    bool
	}{
		{"at limit", &Scene{Width: 800, Height: 600, Timeline: &Timeline{Length: 100}}, true},
		{"unsized", &Scene{}, true},
		{"too wide", &Scene{Width: 801, Height: 10}, false},
		{"too tall", &Scene{Width: 10, Height: 100000}, false},
		{"too long", &Scene{Width: 10, Height: 10, Timeline: &Timeline{Length: 101}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Check(tt.scene)
			if tt.ok && err != nil {
				t.Errorf("Check = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrTooLarge) {
				t.Errorf("Check = %v, want ErrTooLarge", err)
			}
		})
	}

	if err := (Limits{}).Check(&Scene{Width: 1 << 20, Height: 1 << 20}); err != nil {
		t.Errorf("zero limits rejected a scene: %v", err)
	}
}
