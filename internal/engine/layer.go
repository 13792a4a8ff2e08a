package engine

import (
	"fmt"
	"slices"

	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// Layer is a node of the canvas tree. It carries a local position,
// rotation and scale, and owns an ordered list of shapes and sub-layers.
//
// The cached world transform is always parent.world * local. Every setter
// recomputes it for this layer and all layers beneath it before returning,
// then asks the surface for a repaint.
//
// Layers are not safe for concurrent use; the whole tree belongs to one
// goroutine.
type Layer struct {
	id string

	pos   Vec2
	rot   Rotation
	scale Vec2

	local Matrix2D
	world Matrix2D

	// Shapes and sub-layers in creation order.
	children []any

	// Non-owning back-references.
	parent  *Layer
	surface *Surface

	disposed bool
}

// TransformOption updates one component of a layer's local transform.
type TransformOption func(*transformState)

type transformState struct {
	pos   Vec2
	rot   Rotation
	scale Vec2
}

// WithPos sets the layer position.
func WithPos(p Vec2) TransformOption {
	return func(t *transformState) { t.pos = p }
}

// WithRotation sets the layer rotation.
func WithRotation(r Rotation) TransformOption {
	return func(t *transformState) { t.rot = r.normalized() }
}

// WithAngle sets the layer rotation from an angle in radians.
func WithAngle(radians float64) TransformOption {
	return func(t *transformState) { t.rot = Angle(radians) }
}

// WithScale sets a per-axis scale.
func WithScale(s Vec2) TransformOption {
	return func(t *transformState) { t.scale = s }
}

// WithUniformScale broadcasts s to both axes.
func WithUniformScale(s float64) TransformOption {
	return func(t *transformState) { t.scale = Vec2{X: s, Y: s} }
}

func newRootLayer(s *Surface) *Layer {
	return &Layer{
		id:      typeid.NewLayerID(),
		rot:     NoRotation,
		scale:   Vec2{X: 1, Y: 1},
		local:   Identity(),
		world:   Identity(),
		surface: s,
	}
}

// NewLayer creates a layer as the last child of parent.
func NewLayer(parent *Layer, opts ...TransformOption) (*Layer, error) {
	if err := checkParent(parent, "layer"); err != nil {
		return nil, err
	}

	st := transformState{rot: NoRotation, scale: Vec2{X: 1, Y: 1}}
	for _, opt := range opts {
		opt(&st)
	}

	l := &Layer{
		id:      typeid.NewLayerID(),
		pos:     st.pos,
		rot:     st.rot,
		scale:   st.scale,
		parent:  parent,
		surface: parent.surface,
	}
	l.refresh()
	parent.appendChild(l)
	return l, nil
}

func checkParent(parent *Layer, what string) error {
	if parent == nil {
		return fmt.Errorf("%s without parent layer: %w", what, ErrStructural)
	}
	if parent.disposed {
		return fmt.Errorf("%s in disposed layer %s: %w", what, parent.id, ErrStructural)
	}
	return nil
}

// ID returns the layer ID.
func (l *Layer) ID() string { return l.id }

// Parent returns the enclosing layer, or nil for a surface root.
func (l *Layer) Parent() *Layer { return l.parent }

// Surface returns the surface this layer draws onto.
func (l *Layer) Surface() *Surface { return l.surface }

// Disposed reports whether the layer has been disposed.
func (l *Layer) Disposed() bool { return l.disposed }

// IsRoot reports whether l is the root layer of its surface.
func (l *Layer) IsRoot() bool { return l.parent == nil }

func (l *Layer) Pos() Vec2                { return l.pos }
func (l *Layer) Rotation() Rotation       { return l.rot }
func (l *Layer) Scale() Vec2              { return l.scale }
func (l *Layer) LocalTransform() Matrix2D { return l.local }

// WorldTransform returns the cumulative transform from layer space to
// surface space.
func (l *Layer) WorldTransform() Matrix2D { return l.world }

// SetTransform updates any subset of position, rotation and scale.
// Components without an option keep their previous value.
func (l *Layer) SetTransform(opts ...TransformOption) error {
	if l.disposed {
		return fmt.Errorf("set transform on layer %s: %w", l.id, ErrStructural)
	}
	if l.IsRoot() {
		return fmt.Errorf("set transform on surface root: %w", ErrPreconditionViolation)
	}

	st := transformState{pos: l.pos, rot: l.rot, scale: l.scale}
	for _, opt := range opts {
		opt(&st)
	}
	l.pos, l.rot, l.scale = st.pos, st.rot, st.scale

	l.refresh()
	l.surface.RequestRepaint()
	return nil
}

// SetPos moves the layer.
func (l *Layer) SetPos(p Vec2) error { return l.SetTransform(WithPos(p)) }

// SetRotation rotates the layer.
func (l *Layer) SetRotation(r Rotation) error { return l.SetTransform(WithRotation(r)) }

// SetScale scales the layer.
func (l *Layer) SetScale(s Vec2) error { return l.SetTransform(WithScale(s)) }

// refresh recomputes local and world matrices here and in every sub-layer.
func (l *Layer) refresh() {
	l.local = LocalTransform(l.pos, l.rot, l.scale)
	if l.parent == nil {
		l.world = Identity()
	} else {
		l.world = l.parent.world.Multiply(l.local)
	}
	for _, c := range l.children {
		if sub, ok := c.(*Layer); ok {
			sub.refresh()
		}
	}
}

func (l *Layer) appendChild(c any) {
	l.children = append(l.children, c)
	l.surface.RequestRepaint()
}

// removeChild unlinks c, keeping the order of the rest.
func (l *Layer) removeChild(c any) bool {
	i := slices.Index(l.children, c)
	if i < 0 {
		return false
	}
	l.children = slices.Delete(l.children, i, i+1)
	l.surface.RequestRepaint()
	return true
}

// AddShape re-attaches a shape created in this layer that was removed
// with RemoveShape. It is appended after all current children.
func (l *Layer) AddShape(s Shape) error {
	if l.disposed {
		return fmt.Errorf("add shape to layer %s: %w", l.id, ErrStructural)
	}
	if s.Layer() != l {
		return fmt.Errorf("shape %s belongs to another layer: %w", s.ID(), ErrStructural)
	}
	if s.Disposed() {
		return fmt.Errorf("add disposed shape %s: %w", s.ID(), ErrStructural)
	}
	if slices.Contains(l.children, any(s)) {
		return nil
	}
	l.appendChild(s)
	return nil
}

// RemoveShape detaches s from the draw list without disposing it.
func (l *Layer) RemoveShape(s Shape) bool {
	return l.removeChild(s)
}

// Shapes returns the attached shapes in draw order.
func (l *Layer) Shapes() []Shape {
	var out []Shape
	for _, c := range l.children {
		if s, ok := c.(Shape); ok {
			out = append(out, s)
		}
	}
	return out
}

// Layers returns the sub-layers in draw order.
func (l *Layer) Layers() []*Layer {
	var out []*Layer
	for _, c := range l.children {
		if sub, ok := c.(*Layer); ok {
			out = append(out, sub)
		}
	}
	return out
}

// Dispose unlinks the layer from its parent and disposes everything in it.
// Disposing the root layer of a surface is not allowed.
func (l *Layer) Dispose() error {
	if l.disposed {
		return nil
	}
	if l.IsRoot() {
		return fmt.Errorf("dispose surface root: %w", ErrPreconditionViolation)
	}
	l.parent.removeChild(l)
	l.markDisposed()
	return nil
}

func (l *Layer) markDisposed() {
	l.disposed = true
	for _, c := range l.children {
		switch n := c.(type) {
		case *Layer:
			n.markDisposed()
		case Shape:
			n.base().disposed = true
		}
	}
	l.children = nil
}

// Draw emits every child in creation order. Shapes get this layer's
// current world transform; sub-layers recurse.
func (l *Layer) Draw(p Painter) {
	for _, c := range l.children {
		switch n := c.(type) {
		case *Layer:
			n.Draw(p)
		case Shape:
			n.Draw(p, l.world)
		}
	}
}

// walk visits every descendant depth-first in draw order.
func (l *Layer) walk(fn func(any)) {
	for _, c := range l.children {
		fn(c)
		if sub, ok := c.(*Layer); ok {
			sub.walk(fn)
		}
	}
}

// hitTest returns the topmost shape under the surface-space point.
func (l *Layer) hitTest(x, y float64) Shape {
	for i := len(l.children) - 1; i >= 0; i-- {
		switch n := l.children[i].(type) {
		case *Layer:
			if hit := n.hitTest(x, y); hit != nil {
				return hit
			}
		case Shape:
			if l.world.TransformRect(n.Bounds()).Contains(x, y) {
				return n
			}
		}
	}
	return nil
}

// Bounds returns the surface-space bounding box of everything drawn by l.
func (l *Layer) Bounds() Rect {
	var r Rect
	for _, c := range l.children {
		switch n := c.(type) {
		case *Layer:
			r = r.Union(n.Bounds())
		case Shape:
			r = r.Union(l.world.TransformRect(n.Bounds()))
		}
	}
	return r
}
