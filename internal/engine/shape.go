package engine

import (
	"fmt"
	"image/color"

	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// Shape is a leaf drawable owned by exactly one layer.
type Shape interface {
	ID() string
	// Layer returns the owning layer.
	Layer() *Layer
	// Bounds returns the geometric extent in layer space. It does not
	// depend on whether a pen or brush is set.
	Bounds() Rect
	// Draw applies m to the painter and emits the shape's geometry.
	Draw(p Painter, m Matrix2D)
	// Dispose removes the shape from its layer for good.
	Dispose()
	Disposed() bool

	base() *shapeBase
}

// Pen describes an outline.
type Pen struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// NewPen returns a pen of the given color and width.
func NewPen(c color.Color, width float64) *Pen {
	return &Pen{Color: c, Width: width}
}

// Brush describes an interior fill.
type Brush struct {
	Color color.Color
}

// NewBrush returns a solid brush.
func NewBrush(c color.Color) *Brush {
	return &Brush{Color: c}
}

// Font selects a text face. An empty Source selects the built-in face.
type Font struct {
	Source string
	Size   float64
}

// Alignment positions text inside its box. Horizontal and vertical flags
// combine with |.
type Alignment uint8

const (
	AlignLeft Alignment = 1 << iota
	AlignRight
	AlignHCenter
	AlignTop
	AlignBottom
	AlignVCenter

	AlignCenter = AlignHCenter | AlignVCenter
)

// Anchor returns the fractional anchor inside a box: (0,0) is top-left and
// (1,1) bottom-right. Unset axes default to left and top.
func (a Alignment) Anchor() (ax, ay float64) {
	switch {
	case a&AlignRight != 0:
		ax = 1
	case a&AlignHCenter != 0:
		ax = 0.5
	}
	switch {
	case a&AlignBottom != 0:
		ay = 1
	case a&AlignVCenter != 0:
		ay = 0.5
	}
	return ax, ay
}

// shapeBase holds what every shape variant shares.
type shapeBase struct {
	id       string
	layer    *Layer
	disposed bool
}

func (b *shapeBase) ID() string       { return b.id }
func (b *shapeBase) Layer() *Layer    { return b.layer }
func (b *shapeBase) Disposed() bool   { return b.disposed }
func (b *shapeBase) base() *shapeBase { return b }

// attach links self into parent. Every constructor calls it last, after
// validating its own arguments.
func attach(parent *Layer, self Shape, kind string) error {
	if err := checkParent(parent, kind); err != nil {
		return err
	}
	b := self.base()
	b.id = typeid.NewShapeID()
	b.layer = parent
	parent.appendChild(self)
	return nil
}

func dispose(self Shape) {
	b := self.base()
	if b.disposed {
		return
	}
	b.layer.removeChild(self)
	b.disposed = true
}

// strokeOrNone always makes a stroke decision: fillable shapes without a
// pen draw no outline rather than the painter's default.
func strokeOrNone(p Painter, pen *Pen) {
	p.SetStroke(pen)
}

func strokeIfSet(p Painter, pen *Pen) {
	if pen != nil {
		p.SetStroke(pen)
	}
}

func fillIfSet(p Painter, brush *Brush) {
	if brush != nil {
		p.SetFill(brush)
	}
}

func errShape(kind string, err error) error {
	return fmt.Errorf("new %s: %w", kind, err)
}
