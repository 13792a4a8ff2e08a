package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"

	"github.com/gogpu/gg"
)

// Host is the windowing side of a live surface. Invalidate asks the host
// to call Surface.Paint on its next paint cycle.
type Host interface {
	Invalidate()
}

// HostFunc adapts a function to Host.
type HostFunc func()

func (f HostFunc) Invalidate() { f() }

type surfaceKind int

const (
	kindWindow surfaceKind = iota
	kindPixmap
)

func (k surfaceKind) String() string {
	if k == kindWindow {
		return "window"
	}
	return "pixmap"
}

// SurfaceOption configures a surface.
type SurfaceOption func(*Surface)

// WithBackground clears the target with c before every draw pass.
func WithBackground(c color.Color) SurfaceOption {
	return func(s *Surface) { s.background = c }
}

// WithLogger sets the logger used for draw pass diagnostics.
func WithLogger(l *slog.Logger) SurfaceOption {
	return func(s *Surface) { s.log = l }
}

// Surface is the root of a layer tree: either a live window repainted by
// its host, or an offscreen pixmap rendered on demand.
//
// A surface is Unsized until its pixel dimensions are known and Ready
// afterwards; the transition happens once. Painting an unsized surface is
// a precondition violation.
type Surface struct {
	kind surfaceKind
	root *Layer

	width  int
	height int
	ready  bool

	dirty bool
	host  Host

	background color.Color
	log        *slog.Logger

	// pixmap target, created on first render
	dc     *gg.Context
	images imageCache

	passes int
}

// NewWindow creates a live surface. host receives one Invalidate per
// clean-to-dirty transition.
func NewWindow(width, height int, host Host, opts ...SurfaceOption) (*Surface, error) {
	if host == nil {
		return nil, fmt.Errorf("window without host container: %w", ErrStructural)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("window size %dx%d: %w", width, height, ErrPreconditionViolation)
	}
	s := newSurface(kindWindow, opts)
	s.host = host
	s.width, s.height, s.ready = width, height, true
	s.RequestRepaint()
	return s, nil
}

// NewPixmap creates an offscreen surface. With a zero width or height the
// pixmap stays unsized until Resolve.
func NewPixmap(width, height int, opts ...SurfaceOption) (*Surface, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("pixmap size %dx%d: %w", width, height, ErrPreconditionViolation)
	}
	s := newSurface(kindPixmap, opts)
	if width > 0 && height > 0 {
		s.width, s.height, s.ready = width, height, true
	}
	s.dirty = true
	return s, nil
}

func newSurface(kind surfaceKind, opts []SurfaceOption) *Surface {
	s := &Surface{kind: kind, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.root = newRootLayer(s)
	return s
}

// Resolve fixes the size of an unsized surface.
func (s *Surface) Resolve(width, height int) error {
	if s.ready {
		return fmt.Errorf("resolve %s already sized %dx%d: %w", s.kind, s.width, s.height, ErrPreconditionViolation)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resolve %s to %dx%d: %w", s.kind, width, height, ErrPreconditionViolation)
	}
	s.width, s.height, s.ready = width, height, true
	s.RequestRepaint()
	return nil
}

// Root returns the root layer. Its transform is always identity.
func (s *Surface) Root() *Layer { return s.root }

// Size returns the pixel size; ok is false while the surface is unsized.
func (s *Surface) Size() (width, height int, ok bool) {
	return s.width, s.height, s.ready
}

// Ready reports whether the surface has its pixel size.
func (s *Surface) Ready() bool { return s.ready }

// Dirty reports whether a repaint has been requested since the last pass.
func (s *Surface) Dirty() bool { return s.dirty }

// Passes returns how many draw passes have completed.
func (s *Surface) Passes() int { return s.passes }

// IsWindow reports whether s is a live window surface.
func (s *Surface) IsWindow() bool { return s.kind == kindWindow }

// RequestRepaint marks the surface dirty. Repeated requests before the
// next pass collapse into one; a window host is notified only on the
// first.
func (s *Surface) RequestRepaint() {
	if s.dirty {
		return
	}
	s.dirty = true
	if s.host != nil {
		s.host.Invalidate()
	}
}

// Paint runs a full draw pass through p. Window hosts call it from their
// paint callback.
func (s *Surface) Paint(p Painter) error {
	if !s.ready {
		return fmt.Errorf("paint unsized %s: %w", s.kind, ErrPreconditionViolation)
	}
	if s.background != nil {
		p.Clear(s.background)
	}
	s.root.Draw(p)
	s.dirty = false
	s.passes++
	s.log.Debug("draw pass", "surface", s.kind.String(), "pass", s.passes, "width", s.width, "height", s.height)
	return nil
}

// RenderToBuffer redraws an offscreen surface from its current state and
// returns a copy of the pixels.
func (s *Surface) RenderToBuffer() (*image.RGBA, error) {
	if s.kind != kindPixmap {
		return nil, fmt.Errorf("render %s to buffer: %w", s.kind, ErrPreconditionViolation)
	}
	if !s.ready {
		return nil, fmt.Errorf("render unsized pixmap: %w", ErrPreconditionViolation)
	}
	if s.dc == nil {
		s.dc = gg.NewContext(s.width, s.height)
	}
	s.dc.ClearWithColor(gg.RGBA{})

	if s.images == nil {
		s.images = imageCache{}
	}
	p := NewRasterPainter(s.dc)
	p.images = s.images
	if err := s.Paint(p); err != nil {
		return nil, err
	}
	if err := s.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush pixmap: %w", err)
	}
	return toRGBA(s.dc.Image()), nil
}

// EncodePNG renders an offscreen surface and writes it as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	img, err := s.RenderToBuffer()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// HitTest returns the topmost shape whose surface-space bounds contain
// (x, y), or nil.
func (s *Surface) HitTest(x, y float64) Shape {
	return s.root.hitTest(x, y)
}

// Close releases the offscreen target, if any.
func (s *Surface) Close() error {
	if s.dc == nil {
		return nil
	}
	err := s.dc.Close()
	s.dc = nil
	s.images = nil
	return err
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
