package engine

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string    `json:"op"`                    // "clear", "line", "lines", "polyline", "rect", "ellipse", "text", "image"
	Transform   []float64 `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Stroke      string    `json:"stroke,omitempty"`      // Stroke color, empty for none
	StrokeWidth float64   `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64 `json:"dash,omitempty"`        // Dash pattern
	Fill        string    `json:"fill,omitempty"`        // Fill color, empty for none
	Color       string    `json:"color,omitempty"`       // Clear color

	Points []float64 `json:"points,omitempty"` // Flattened x, y pairs
	Rect   []float64 `json:"rect,omitempty"`   // [x, y, w, h]
	RX     float64   `json:"rx,omitempty"`
	RY     float64   `json:"ry,omitempty"`

	Text     string    `json:"text,omitempty"`
	Anchor   []float64 `json:"anchor,omitempty"` // Fractional anchor inside Rect
	Font     string    `json:"font,omitempty"`
	FontSize float64   `json:"fontSize,omitempty"`

	ImageAssetID string `json:"imageAssetId,omitempty"` // Asset ID for image lookup
	SrcRect      []int  `json:"srcRect,omitempty"`      // [x, y, w, h] in image pixels
}

// Recorder is a Painter that records draw commands instead of drawing.
// Style state follows the same rules as RasterPainter, and every command
// carries the style that applied when it was emitted.
type Recorder struct {
	// ImageRef names an image for the frontend. Unnamed images are
	// recorded without an asset ID.
	ImageRef func(img image.Image) string

	commands []DrawCommand
	world    Matrix2D
	pen      *Pen
	brush    *Brush
	font     *Font
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{world: Identity(), pen: &DefaultPen}
}

// Commands returns the commands recorded so far in painter's order.
func (r *Recorder) Commands() []DrawCommand { return r.commands }

// Reset drops the recorded commands.
func (r *Recorder) Reset() {
	r.commands = nil
	r.world = Identity()
	r.pen = &DefaultPen
	r.brush = nil
	r.font = nil
}

func (r *Recorder) Clear(c color.Color) {
	r.commands = append(r.commands, DrawCommand{Op: "clear", Color: ColorHex(c)})
}

func (r *Recorder) SetWorldTransform(m Matrix2D) {
	r.world = m
	r.pen = &DefaultPen
	r.brush = nil
}

func (r *Recorder) SetStroke(p *Pen) { r.pen = p }
func (r *Recorder) SetFill(b *Brush) { r.brush = b }
func (r *Recorder) SetFont(f *Font)  { r.font = f }

func (r *Recorder) DrawLine(from, to Vec2) {
	r.emit(DrawCommand{Op: "line", Points: flatten([]Vec2{from, to})}, false)
}

func (r *Recorder) DrawLines(points []Vec2) {
	r.emit(DrawCommand{Op: "lines", Points: flatten(points)}, false)
}

func (r *Recorder) DrawPolyline(points []Vec2) {
	r.emit(DrawCommand{Op: "polyline", Points: flatten(points)}, false)
}

func (r *Recorder) DrawRect(rc Rect) {
	r.emit(DrawCommand{Op: "rect", Rect: rectSlice(rc)}, true)
}

func (r *Recorder) DrawEllipse(center Vec2, rx, ry float64) {
	r.emit(DrawCommand{Op: "ellipse", Points: []float64{center.X, center.Y}, RX: rx, RY: ry}, true)
}

func (r *Recorder) DrawText(box Rect, align Alignment, s string) {
	ax, ay := align.Anchor()
	cmd := DrawCommand{Op: "text", Rect: rectSlice(box), Text: s, Anchor: []float64{ax, ay}}
	if r.font != nil {
		cmd.Font = r.font.Source
		cmd.FontSize = r.font.Size
	}
	r.emit(cmd, false)
}

func (r *Recorder) DrawImage(dst Rect, img image.Image, src image.Rectangle) {
	cmd := DrawCommand{
		Op:      "image",
		Rect:    rectSlice(dst),
		SrcRect: []int{src.Min.X, src.Min.Y, src.Dx(), src.Dy()},
	}
	if r.ImageRef != nil {
		cmd.ImageAssetID = r.ImageRef(img)
	}
	r.commands = append(r.commands, withTransform(cmd, r.world))
}

func (r *Recorder) emit(cmd DrawCommand, fillable bool) {
	if r.pen != nil && r.pen.Color != nil {
		cmd.Stroke = ColorHex(r.pen.Color)
		cmd.StrokeWidth = r.pen.Width
		if cmd.StrokeWidth <= 0 {
			cmd.StrokeWidth = 1
		}
		cmd.Dash = r.pen.Dash
	}
	if fillable && r.brush != nil && r.brush.Color != nil {
		cmd.Fill = ColorHex(r.brush.Color)
	}
	r.commands = append(r.commands, withTransform(cmd, r.world))
}

func withTransform(cmd DrawCommand, m Matrix2D) DrawCommand {
	cmd.Transform = m.ToSlice()
	return cmd
}

func flatten(points []Vec2) []float64 {
	out := make([]float64, 0, 2*len(points))
	for _, p := range points {
		out = append(out, p.X, p.Y)
	}
	return out
}

func rectSlice(r Rect) []float64 {
	return []float64{r.X, r.Y, r.Width, r.Height}
}

// ColorHex formats c as #rrggbb, or #rrggbbaa when not opaque.
func ColorHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTestResult contains information about a hit test.
type HitTestResult struct {
	ObjectID string  `json:"objectId"`
	LayerID  string  `json:"layerId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// SelectionBounds returns the combined surface-space bounding box of the
// given layer and shape IDs. Unknown IDs are skipped.
func SelectionBounds(sc *Scene, ids []string) Rect {
	if sc == nil || len(ids) == 0 {
		return Rect{}
	}

	var result Rect
	for _, id := range ids {
		if l, ok := sc.Layer(id); ok {
			result = result.Union(l.Bounds())
			continue
		}
		if s, ok := sc.ShapeByID[id]; ok && !s.Disposed() {
			result = result.Union(s.Layer().WorldTransform().TransformRect(s.Bounds()))
		}
	}
	return result
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(map[string]float64{
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	})
	return string(data)
}
