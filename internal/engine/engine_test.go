package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/inamate/inamate/canvas-go/internal/document"
)

func loadSample(t *testing.T, opts ...EngineOption) (*Engine, *document.Scene) {
	t.Helper()
	e := NewEngine(opts...)
	doc := document.NewSampleScene("scene_test")
	if err := e.Load(doc); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, doc
}

func TestEngineRender(t *testing.T) {
	e, _ := loadSample(t)

	var cmds []DrawCommand
	if err := json.Unmarshal([]byte(e.Render()), &cmds); err != nil {
		t.Fatal(err)
	}
	ops := make([]string, 0, len(cmds))
	for _, c := range cmds {
		ops = append(ops, c.Op)
	}
	want := []string{"clear", "line", "ellipse", "text", "rect"}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestEngineHitTestAndDispose(t *testing.T) {
	e, doc := loadSample(t)
	spinnerID := doc.Nodes[3].ID
	squareID := doc.Nodes[3].Children[0].ID

	if got := e.HitTest(150, 50); got != squareID {
		t.Errorf("HitTest(150,50) = %q, want %q", got, squareID)
	}
	if got := e.HitTest(30, 30); got != doc.Nodes[2].ID {
		t.Errorf("HitTest(30,30) = %q, want the text node", got)
	}
	res := e.HitTestResult(150, 50)
	if res.ObjectID != squareID || res.LayerID != spinnerID {
		t.Errorf("HitTestResult = %+v", res)
	}

	if err := e.DisposeNode(spinnerID); err != nil {
		t.Fatal(err)
	}
	if got := e.HitTest(150, 50); got != "" {
		t.Errorf("HitTest after dispose = %q, want empty", got)
	}
	if err := e.DisposeNode(spinnerID); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("second dispose error = %v, want ErrUnknownNode", err)
	}
	if err := e.DisposeNode(squareID); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("dispose of child of disposed layer error = %v, want ErrUnknownNode", err)
	}
}

func TestEngineSetLayerTransform(t *testing.T) {
	e, doc := loadSample(t)
	spinnerID := doc.Nodes[3].ID

	rot := math.Pi / 2
	if err := e.SetLayerTransform(spinnerID, []float64{10, 10}, &rot, []float64{2}); err != nil {
		t.Fatal(err)
	}
	l, _ := e.Scene().Layer(spinnerID)
	if l.Pos() != V(10, 10) || l.Scale() != V(2, 2) || !approx(l.Rotation().Radians(), rot) {
		t.Errorf("layer pos=%v scale=%v rot=%v", l.Pos(), l.Scale(), l.Rotation().Radians())
	}

	if err := e.SetLayerTransform(spinnerID, []float64{1, 2, 3}, nil, nil); !errors.Is(err, ErrUnrecognizedInput) {
		t.Errorf("3-component pos error = %v, want ErrUnrecognizedInput", err)
	}
	if err := e.SetLayerTransform("layer_missing", nil, nil, nil); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown layer error = %v, want ErrUnknownNode", err)
	}
	if err := e.SetLayerTransform(doc.Nodes[0].ID, nil, nil, nil); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("shape as layer error = %v, want ErrUnknownNode", err)
	}
}

func TestEnginePlayback(t *testing.T) {
	e, doc := loadSample(t)
	spinnerID := doc.Nodes[3].ID
	l, _ := e.Scene().Layer(spinnerID)

	if e.Advance() {
		t.Error("Advance while paused moved the playhead")
	}

	e.SetPlayhead(24)
	if e.GetFrame() != 24 {
		t.Fatalf("frame = %d", e.GetFrame())
	}
	if !approx(l.Scale().X, 1.5) || !approx(l.Scale().Y, 1) {
		t.Errorf("scale at frame 24 = %v, want (1.5, 1)", l.Scale())
	}
	wantRot := Angle(2 * math.Pi * 24 / 47)
	if !approx(l.Rotation().Cos, wantRot.Cos) || !approx(l.Rotation().Sin, wantRot.Sin) {
		t.Errorf("rotation at frame 24 = %+v, want %+v", l.Rotation(), wantRot)
	}

	e.SetPlayhead(1000)
	if e.GetFrame() != 47 {
		t.Errorf("clamped frame = %d, want 47", e.GetFrame())
	}

	e.Play()
	e.Tick()
	if e.GetFrame() != 0 {
		t.Errorf("frame after wrap = %d, want 0", e.GetFrame())
	}
	e.Tick()
	if e.GetFrame() != 1 {
		t.Errorf("frame = %d, want 1", e.GetFrame())
	}

	var st PlaybackState
	if err := json.Unmarshal([]byte(e.GetPlaybackState()), &st); err != nil {
		t.Fatal(err)
	}
	if st != (PlaybackState{Frame: 1, Playing: true, FPS: 24, TotalFrames: 48}) {
		t.Errorf("playback state = %+v", st)
	}
}

func TestEngineWindowFlush(t *testing.T) {
	host := &countingHost{}
	e, doc := loadSample(t, WithHost(host))

	cmds, ok, err := e.Flush()
	if err != nil || !ok || len(cmds) == 0 {
		t.Fatalf("first Flush = %d cmds, %v, %v", len(cmds), ok, err)
	}
	if _, ok, _ := e.Flush(); ok {
		t.Error("Flush on clean surface ran a pass")
	}

	before := host.n
	if err := e.SetLayerTransform(doc.Nodes[3].ID, []float64{0, 0}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerTransform(doc.Nodes[3].ID, []float64{1, 1}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if host.n != before+1 {
		t.Errorf("invalidations = %d, want %d", host.n, before+1)
	}
	if _, ok, _ := e.Flush(); !ok {
		t.Error("Flush after change did not run a pass")
	}

	if _, err := e.RenderImage(); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("RenderImage on window error = %v, want ErrPreconditionViolation", err)
	}
}

func TestEngineRenderPNG(t *testing.T) {
	e, _ := loadSample(t)
	var buf bytes.Buffer
	if err := e.RenderPNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png bounds = %v, want 200x100", b)
	}
}

func TestEngineLoadDocumentErrors(t *testing.T) {
	e := NewEngine()
	if err := e.LoadDocument(`{"id":"s","nodes":[{"type":"hexagon"}]}`); !errors.Is(err, document.ErrInvalidScene) {
		t.Errorf("unknown node type error = %v, want ErrInvalidScene", err)
	}
	if err := e.LoadDocument(`{"id":"s","nodes":[{"type":"layer","pos":[1,2,3]}]}`); !errors.Is(err, ErrUnrecognizedInput) {
		t.Errorf("bad pos error = %v, want ErrUnrecognizedInput", err)
	}
	if e.Render() != "[]" {
		t.Error("failed load left a scene behind")
	}

	if err := e.LoadDocument(`{"id":"s","nodes":[]}`); err != nil {
		t.Fatal(err)
	}
	var meta struct{ Width, Height int }
	if err := json.Unmarshal([]byte(e.GetScene()), &meta); err != nil {
		t.Fatal(err)
	}
	if meta.Width != defaultWidth || meta.Height != defaultHeight {
		t.Errorf("unsized document got %dx%d", meta.Width, meta.Height)
	}
}
