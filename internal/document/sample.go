package document

import (
	"math"

	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// NewSampleScene returns the demo canvas: a red diagonal, a green circle
// and blue text on the root layer, plus a spinning square on a sub-layer.
func NewSampleScene(sceneID string) *Scene {
	if sceneID == "" {
		sceneID = typeid.NewSceneID()
	}
	spinnerID := typeid.NewLayerID()

	return &Scene{
		ID:         sceneID,
		Name:       "Simple Canvas",
		Version:    1,
		Width:      200,
		Height:     100,
		Background: "#ffffff",
		Nodes: []Node{
			{
				ID:     typeid.NewShapeID(),
				Type:   NodeLine,
				Points: [][]float64{{0, 0}, {100, 100}},
				Stroke: &Stroke{Color: "#ff0000"},
			},
			{
				ID:     typeid.NewShapeID(),
				Type:   NodeCircle,
				Pos:    []float64{50, 50},
				Radius: 50,
				Stroke: &Stroke{Color: "#00ff00"},
			},
			{
				ID:     typeid.NewShapeID(),
				Type:   NodeText,
				Pos:    []float64{20, 20},
				Size:   []float64{100, 50},
				Align:  "left",
				Text:   "Text",
				Stroke: &Stroke{Color: "#0000ff"},
			},
			{
				ID:    spinnerID,
				Type:  NodeLayer,
				Pos:   []float64{150, 50},
				Scale: []float64{1},
				Children: []Node{
					{
						ID:     typeid.NewShapeID(),
						Type:   NodeRect,
						Pos:    []float64{-20, -20},
						Size:   []float64{40, 40},
						Stroke: &Stroke{Color: "#000000", Width: 2},
						Fill:   "#e94560",
					},
				},
			},
		},
		Timeline: &Timeline{
			Length: 48,
			FPS:    24,
			Tracks: []Track{
				{
					NodeID:   spinnerID,
					Property: PropRot,
					Keys: []Keyframe{
						{Frame: 0, Value: 0, Easing: EasingLinear},
						{Frame: 47, Value: 2 * math.Pi},
					},
				},
				{
					NodeID:   spinnerID,
					Property: PropScaleX,
					Keys: []Keyframe{
						{Frame: 0, Value: 1, Easing: EasingEaseInOut},
						{Frame: 24, Value: 1.5, Easing: EasingEaseInOut},
						{Frame: 47, Value: 1},
					},
				},
			},
		},
	}
}
