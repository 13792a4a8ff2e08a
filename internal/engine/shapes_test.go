package engine

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	green = color.RGBA{G: 0xff, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
)

var identity = []float64{1, 0, 0, 1, 0, 0}

func record(t *testing.T, s *Surface) []DrawCommand {
	t.Helper()
	rec := NewRecorder()
	if err := s.Paint(rec); err != nil {
		t.Fatal(err)
	}
	return rec.Commands()
}

func TestPenAndBrushDefaults(t *testing.T) {
	s := newTestPixmap(t)
	root := s.Root()

	// filled rect without a pen: no outline
	if _, err := NewRectangle(root, V(0, 0), V(10, 10), nil, NewBrush(red)); err != nil {
		t.Fatal(err)
	}
	// outlined circle without a brush: no fill, and the red brush above
	// must not leak into it
	if _, err := NewCircle(root, V(5, 5), 3, NewPen(green, 2), nil); err != nil {
		t.Fatal(err)
	}
	// line without a pen: default pen
	if _, err := NewLine(root, V(0, 0), V(1, 1), nil); err != nil {
		t.Fatal(err)
	}
	// rect with neither: invisible, but still drawn as a command
	if _, err := NewRectangle(root, V(1, 1), V(2, 2), nil, nil); err != nil {
		t.Fatal(err)
	}

	want := []DrawCommand{
		{Op: "rect", Transform: identity, Fill: "#ff0000", Rect: []float64{0, 0, 10, 10}},
		{Op: "ellipse", Transform: identity, Stroke: "#00ff00", StrokeWidth: 2, Points: []float64{5, 5}, RX: 3, RY: 3},
		{Op: "line", Transform: identity, Stroke: "#000000", StrokeWidth: 1, Points: []float64{0, 0, 1, 1}},
		{Op: "rect", Transform: identity, Rect: []float64{1, 1, 2, 2}},
	}
	if diff := cmp.Diff(want, record(t, s)); diff != "" {
		t.Errorf("draw commands mismatch (-want +got):\n%s", diff)
	}
}

func TestTextUsesPenColor(t *testing.T) {
	s := newTestPixmap(t)
	if _, err := NewText(s.Root(), V(20, 20), V(100, 50), AlignLeft, "Text", NewPen(blue, 1), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := NewText(s.Root(), V(0, 0), V(10, 10), AlignCenter, "c", nil, &Font{Size: 18}); err != nil {
		t.Fatal(err)
	}

	want := []DrawCommand{
		{Op: "text", Transform: identity, Stroke: "#0000ff", StrokeWidth: 1, Rect: []float64{20, 20, 100, 50}, Text: "Text", Anchor: []float64{0, 0}},
		{Op: "text", Transform: identity, Stroke: "#000000", StrokeWidth: 1, Rect: []float64{0, 0, 10, 10}, Text: "c", Anchor: []float64{0.5, 0.5}, FontSize: 18},
	}
	if diff := cmp.Diff(want, record(t, s)); diff != "" {
		t.Errorf("draw commands mismatch (-want +got):\n%s", diff)
	}
}

func TestLinesNeedPairs(t *testing.T) {
	s := newTestPixmap(t)
	_, err := NewLines(s.Root(), []Vec2{V(0, 0), V(1, 1), V(2, 2)}, nil)
	if !errors.Is(err, ErrUnrecognizedInput) {
		t.Errorf("NewLines with 3 points error = %v, want ErrUnrecognizedInput", err)
	}
	if len(s.Root().Shapes()) != 0 {
		t.Error("rejected shape was attached")
	}

	l, err := NewLines(s.Root(), []Vec2{V(0, 0), V(1, 1), V(2, 2), V(3, 3)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := l.Bounds(); got != (Rect{Width: 3, Height: 3}) {
		t.Errorf("Bounds() = %+v", got)
	}
}

func TestCircleRejectsNegativeRadius(t *testing.T) {
	s := newTestPixmap(t)
	if _, err := NewCircle(s.Root(), V(0, 0), -1, nil, nil); !errors.Is(err, ErrUnrecognizedInput) {
		t.Errorf("error = %v, want ErrUnrecognizedInput", err)
	}
}

func TestImageSourceRect(t *testing.T) {
	s := newTestPixmap(t)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	whole, err := NewImage(s.Root(), V(1, 2), nil, img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := whole.Dest(); got != (Rect{X: 1, Y: 2, Width: 4, Height: 4}) {
		t.Errorf("default dest = %+v, want natural image size", got)
	}

	src := image.Rect(1, 1, 3, 3)
	part, err := NewImage(s.Root(), V(0, 0), nil, img, &src)
	if err != nil {
		t.Fatal(err)
	}
	if got := part.Dest(); got != (Rect{Width: 2, Height: 2}) {
		t.Errorf("dest = %+v, want source rect size", got)
	}

	size := V(8, 8)
	scaled, err := NewImage(s.Root(), V(0, 0), &size, img, &src)
	if err != nil {
		t.Fatal(err)
	}
	if got := scaled.Dest(); got != (Rect{Width: 8, Height: 8}) {
		t.Errorf("dest = %+v, want explicit size", got)
	}

	outside := image.Rect(2, 2, 6, 6)
	if _, err := NewImage(s.Root(), V(0, 0), nil, img, &outside); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("out-of-bounds source error = %v, want ErrPreconditionViolation", err)
	}
	if _, err := NewImage(s.Root(), V(0, 0), nil, nil, nil); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("nil image error = %v, want ErrPreconditionViolation", err)
	}

	rec := NewRecorder()
	rec.ImageRef = func(image.Image) string { return "asset_x" }
	if err := s.Paint(rec); err != nil {
		t.Fatal(err)
	}
	cmd := rec.Commands()[1]
	want := DrawCommand{Op: "image", Transform: identity, Rect: []float64{0, 0, 2, 2}, ImageAssetID: "asset_x", SrcRect: []int{1, 1, 2, 2}}
	if diff := cmp.Diff(want, cmd); diff != "" {
		t.Errorf("image command mismatch (-want +got):\n%s", diff)
	}
}

func TestShapeDispose(t *testing.T) {
	s := newTestPixmap(t)
	c, err := NewCircle(s.Root(), V(0, 0), 1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Paint(NewRecorder()); err != nil {
		t.Fatal(err)
	}

	c.Dispose()
	if !c.Disposed() {
		t.Error("Disposed() = false")
	}
	if !s.Dirty() {
		t.Error("disposing a shape did not request a repaint")
	}
	if len(s.Root().Shapes()) != 0 {
		t.Error("disposed shape still attached")
	}
	if err := s.Root().AddShape(c); !errors.Is(err, ErrStructural) {
		t.Errorf("re-adding disposed shape error = %v, want ErrStructural", err)
	}
}
