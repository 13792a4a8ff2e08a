package engine

import (
	"image"
	"image/color"
)

// Painter is the host drawing abstraction a surface renders through.
//
// Shapes call it in a fixed sequence: SetWorldTransform, then SetStroke if
// the shape has a stroke decision to make, then SetFill if a brush was
// supplied, then exactly one geometry call. SetWorldTransform begins a new
// shape: the stroke goes back to the default pen and the fill to none, so
// style never leaks from one shape into the next.
type Painter interface {
	// Clear fills the whole target with c, ignoring the transform.
	Clear(c color.Color)

	SetWorldTransform(m Matrix2D)

	// SetStroke sets the outline pen. A nil pen disables outlines.
	SetStroke(p *Pen)
	// SetFill sets the interior brush. A nil brush disables filling.
	SetFill(b *Brush)
	// SetFont sets the face used by DrawText. Nil selects the default face.
	SetFont(f *Font)

	DrawLine(from, to Vec2)
	// DrawLines draws disjoint segments from consecutive point pairs.
	DrawLines(points []Vec2)
	DrawPolyline(points []Vec2)
	DrawRect(r Rect)
	DrawEllipse(center Vec2, rx, ry float64)
	DrawText(box Rect, align Alignment, s string)
	DrawImage(dst Rect, img image.Image, src image.Rectangle)
}
