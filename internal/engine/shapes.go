package engine

import (
	"fmt"
	"image"
	"slices"
)

// Line is a single segment.
type Line struct {
	shapeBase
	from, to Vec2
	pen      *Pen
}

// NewLine creates a segment from -> to inside parent. A nil pen draws with
// the painter's default pen.
func NewLine(parent *Layer, from, to Vec2, pen *Pen) (*Line, error) {
	s := &Line{from: from, to: to, pen: pen}
	if err := attach(parent, s, "line"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Line) Endpoints() (Vec2, Vec2) { return s.from, s.to }
func (s *Line) Pen() *Pen               { return s.pen }
func (s *Line) Bounds() Rect            { return pointsBounds([]Vec2{s.from, s.to}) }
func (s *Line) Dispose()                { dispose(s) }

// SetEndpoints moves the segment.
func (s *Line) SetEndpoints(from, to Vec2) {
	s.from, s.to = from, to
	s.layer.surface.RequestRepaint()
}

func (s *Line) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	strokeIfSet(p, s.pen)
	p.DrawLine(s.from, s.to)
}

// Lines is a set of disjoint segments given as consecutive point pairs.
type Lines struct {
	shapeBase
	points []Vec2
	pen    *Pen
}

// NewLines creates disjoint segments. The point count must be even.
func NewLines(parent *Layer, points []Vec2, pen *Pen) (*Lines, error) {
	if len(points)%2 != 0 {
		return nil, errShape("lines", fmt.Errorf("%d points do not form pairs: %w", len(points), ErrUnrecognizedInput))
	}
	s := &Lines{points: slices.Clone(points), pen: pen}
	if err := attach(parent, s, "lines"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Lines) Points() []Vec2 { return slices.Clone(s.points) }
func (s *Lines) Pen() *Pen      { return s.pen }
func (s *Lines) Bounds() Rect   { return pointsBounds(s.points) }
func (s *Lines) Dispose()       { dispose(s) }

func (s *Lines) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	strokeIfSet(p, s.pen)
	p.DrawLines(s.points)
}

// Polyline is an open chain of connected segments.
type Polyline struct {
	shapeBase
	points []Vec2
	pen    *Pen
}

// NewPolyline creates a polyline. Any number of points is allowed,
// including none.
func NewPolyline(parent *Layer, points []Vec2, pen *Pen) (*Polyline, error) {
	s := &Polyline{points: slices.Clone(points), pen: pen}
	if err := attach(parent, s, "polyline"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Polyline) Points() []Vec2 { return slices.Clone(s.points) }
func (s *Polyline) Pen() *Pen      { return s.pen }
func (s *Polyline) Bounds() Rect   { return pointsBounds(s.points) }
func (s *Polyline) Dispose()       { dispose(s) }

// SetPoints replaces the chain.
func (s *Polyline) SetPoints(points []Vec2) {
	s.points = slices.Clone(points)
	s.layer.surface.RequestRepaint()
}

func (s *Polyline) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	strokeIfSet(p, s.pen)
	p.DrawPolyline(s.points)
}

// Rectangle is an axis-aligned box in layer space.
//
// Without a pen no outline is drawn; without a brush nothing is filled.
// A rectangle with neither is invisible but still hit-testable.
type Rectangle struct {
	shapeBase
	rect  Rect
	pen   *Pen
	brush *Brush
}

// NewRectangle creates a rectangle at pos with the given size.
func NewRectangle(parent *Layer, pos, size Vec2, pen *Pen, brush *Brush) (*Rectangle, error) {
	s := &Rectangle{rect: RectFrom(pos, size), pen: pen, brush: brush}
	if err := attach(parent, s, "rectangle"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Rectangle) Rect() Rect        { return s.rect }
func (s *Rectangle) Pen() *Pen         { return s.pen }
func (s *Rectangle) Brush() *Brush     { return s.brush }
func (s *Rectangle) Bounds() Rect      { return s.rect }
func (s *Rectangle) Dispose()          { dispose(s) }
func (s *Rectangle) SetPen(p *Pen)     { s.pen = p; s.layer.surface.RequestRepaint() }
func (s *Rectangle) SetBrush(b *Brush) { s.brush = b; s.layer.surface.RequestRepaint() }

func (s *Rectangle) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	strokeOrNone(p, s.pen)
	fillIfSet(p, s.brush)
	p.DrawRect(s.rect)
}

// Circle is a circle given by center and radius, with the same pen and
// brush rules as Rectangle.
type Circle struct {
	shapeBase
	center Vec2
	radius float64
	pen    *Pen
	brush  *Brush
}

// NewCircle creates a circle. A negative radius is rejected.
func NewCircle(parent *Layer, center Vec2, radius float64, pen *Pen, brush *Brush) (*Circle, error) {
	if radius < 0 {
		return nil, errShape("circle", fmt.Errorf("radius %g: %w", radius, ErrUnrecognizedInput))
	}
	s := &Circle{center: center, radius: radius, pen: pen, brush: brush}
	if err := attach(parent, s, "circle"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Circle) Center() Vec2      { return s.center }
func (s *Circle) Radius() float64   { return s.radius }
func (s *Circle) Pen() *Pen         { return s.pen }
func (s *Circle) Brush() *Brush     { return s.brush }
func (s *Circle) Dispose()          { dispose(s) }
func (s *Circle) SetPen(p *Pen)     { s.pen = p; s.layer.surface.RequestRepaint() }
func (s *Circle) SetBrush(b *Brush) { s.brush = b; s.layer.surface.RequestRepaint() }

func (s *Circle) Bounds() Rect {
	return Rect{
		X:      s.center.X - s.radius,
		Y:      s.center.Y - s.radius,
		Width:  2 * s.radius,
		Height: 2 * s.radius,
	}
}

func (s *Circle) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	strokeOrNone(p, s.pen)
	fillIfSet(p, s.brush)
	p.DrawEllipse(s.center, s.radius, s.radius)
}

// Text is a string laid out inside a box.
type Text struct {
	shapeBase
	box   Rect
	align Alignment
	text  string
	pen   *Pen
	font  *Font
}

// NewText creates a text shape. The pen sets the text color; a nil font
// uses the painter's current face.
func NewText(parent *Layer, pos, size Vec2, align Alignment, text string, pen *Pen, font *Font) (*Text, error) {
	s := &Text{box: RectFrom(pos, size), align: align, text: text, pen: pen, font: font}
	if err := attach(parent, s, "text"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Text) Box() Rect            { return s.box }
func (s *Text) Alignment() Alignment { return s.align }
func (s *Text) Text() string         { return s.text }
func (s *Text) Font() *Font          { return s.font }
func (s *Text) Bounds() Rect         { return s.box }
func (s *Text) Dispose()             { dispose(s) }

// SetText replaces the string.
func (s *Text) SetText(text string) {
	s.text = text
	s.layer.surface.RequestRepaint()
}

func (s *Text) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	strokeIfSet(p, s.pen)
	if s.font != nil {
		p.SetFont(s.font)
	}
	p.DrawText(s.box, s.align, s.text)
}

// Image draws a region of a raster image into a destination rect.
type Image struct {
	shapeBase
	dst Rect
	img image.Image
	src image.Rectangle
}

// NewImage creates an image shape at pos. A nil src uses the whole image;
// a nil size uses the size of the source region.
func NewImage(parent *Layer, pos Vec2, size *Vec2, img image.Image, src *image.Rectangle) (*Image, error) {
	if img == nil {
		return nil, errShape("image", fmt.Errorf("nil source image: %w", ErrPreconditionViolation))
	}
	bounds := img.Bounds()
	region := bounds
	if src != nil {
		if src.Empty() || !src.In(bounds) {
			return nil, errShape("image", fmt.Errorf("source rect %v outside image bounds %v: %w", *src, bounds, ErrPreconditionViolation))
		}
		region = *src
	}
	extent := V(float64(region.Dx()), float64(region.Dy()))
	if size != nil {
		extent = *size
	}

	s := &Image{dst: RectFrom(pos, extent), img: img, src: region}
	if err := attach(parent, s, "image"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Image) Dest() Rect                  { return s.dst }
func (s *Image) Source() image.Image         { return s.img }
func (s *Image) SourceRect() image.Rectangle { return s.src }
func (s *Image) Bounds() Rect                { return s.dst }
func (s *Image) Dispose()                    { dispose(s) }

func (s *Image) Draw(p Painter, m Matrix2D) {
	p.SetWorldTransform(m)
	p.DrawImage(s.dst, s.img, s.src)
}
