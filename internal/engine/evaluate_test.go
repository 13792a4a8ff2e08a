package engine

import (
	"testing"

	"github.com/inamate/inamate/canvas-go/internal/document"
)

func TestEvaluateTimeline(t *testing.T) {
	tl := &document.Timeline{
		Length: 20,
		Tracks: []document.Track{
			{
				NodeID:   "a",
				Property: document.PropPosX,
				// out of order on purpose
				Keys: []document.Keyframe{
					{Frame: 10, Value: 100},
					{Frame: 0, Value: 0, Easing: document.EasingLinear},
				},
			},
			{
				NodeID:   "a",
				Property: document.PropRot,
				Keys: []document.Keyframe{
					{Frame: 0, Value: 0, Easing: document.EasingEaseIn},
					{Frame: 10, Value: 1},
				},
			},
			{NodeID: "b", Property: document.PropScaleX},
		},
	}

	tests := []struct {
		frame   int
		wantX   float64
		wantRot float64
	}{
		{frame: -5, wantX: 0, wantRot: 0},
		{frame: 0, wantX: 0, wantRot: 0},
		{frame: 5, wantX: 50, wantRot: 0.25},
		{frame: 10, wantX: 100, wantRot: 1},
		{frame: 15, wantX: 100, wantRot: 1},
	}
	for _, tt := range tests {
		got := EvaluateTimeline(tl, tt.frame)
		if _, ok := got["b"]; ok {
			t.Errorf("frame %d: empty track produced a value", tt.frame)
		}
		if !approx(got["a"][document.PropPosX], tt.wantX) {
			t.Errorf("frame %d: pos.x = %v, want %v", tt.frame, got["a"][document.PropPosX], tt.wantX)
		}
		if !approx(got["a"][document.PropRot], tt.wantRot) {
			t.Errorf("frame %d: rot = %v, want %v", tt.frame, got["a"][document.PropRot], tt.wantRot)
		}
	}
}

func TestApplyEasingEndpoints(t *testing.T) {
	for _, e := range []document.EasingType{
		document.EasingLinear, document.EasingEaseIn, document.EasingEaseOut,
		document.EasingEaseInOut, document.EasingCubicIn, document.EasingCubicOut,
		document.EasingCubicInOut, document.EasingBounceOut,
	} {
		if got := applyEasing(0, e); !approx(got, 0) {
			t.Errorf("%s(0) = %v", e, got)
		}
		if got := applyEasing(1, e); !approx(got, 1) {
			t.Errorf("%s(1) = %v", e, got)
		}
	}
}

func TestApplyOverridesKeepsOtherComponents(t *testing.T) {
	s := newTestPixmap(t)
	sc := NewScene(s)
	l := mustLayer(t, s.Root(), WithPos(V(1, 2)), WithScale(V(3, 4)))
	sc.addLayer("l", l)

	err := ApplyOverrides(sc, map[string]PropertyOverrides{
		"l":       {document.PropPosY: 20, document.PropScaleX: 5},
		"missing": {document.PropPosX: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.Pos() != V(1, 20) {
		t.Errorf("pos = %v, want (1,20)", l.Pos())
	}
	if l.Scale() != V(5, 4) {
		t.Errorf("scale = %v, want (5,4)", l.Scale())
	}
}
