package engine

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
)

type countingHost struct{ n int }

func (h *countingHost) Invalidate() { h.n++ }

func TestWindowNeedsHost(t *testing.T) {
	if _, err := NewWindow(10, 10, nil); !errors.Is(err, ErrStructural) {
		t.Errorf("NewWindow without host error = %v, want ErrStructural", err)
	}
	if _, err := NewWindow(0, 10, &countingHost{}); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("NewWindow 0x10 error = %v, want ErrPreconditionViolation", err)
	}
}

func TestRepaintRequestsCoalesce(t *testing.T) {
	host := &countingHost{}
	s, err := NewWindow(200, 100, host)
	if err != nil {
		t.Fatal(err)
	}
	if host.n != 1 || !s.Dirty() {
		t.Fatalf("new window: invalidations = %d, dirty = %v", host.n, s.Dirty())
	}

	l := mustLayer(t, s.Root())
	for i := range 5 {
		if err := l.SetPos(V(float64(i), 0)); err != nil {
			t.Fatal(err)
		}
	}
	s.RequestRepaint()
	if host.n != 1 {
		t.Errorf("invalidations before paint = %d, want 1", host.n)
	}

	if err := s.Paint(NewRecorder()); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("still dirty after paint")
	}
	if s.Passes() != 1 {
		t.Errorf("passes = %d, want 1", s.Passes())
	}

	if err := l.SetPos(V(9, 9)); err != nil {
		t.Fatal(err)
	}
	if host.n != 2 {
		t.Errorf("invalidations after second change = %d, want 2", host.n)
	}
}

func TestUnsizedPixmap(t *testing.T) {
	s, err := NewPixmap(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Ready() {
		t.Fatal("zero-size pixmap is ready")
	}
	if err := s.Paint(NewRecorder()); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("Paint on unsized error = %v, want ErrPreconditionViolation", err)
	}
	if _, err := s.RenderToBuffer(); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("RenderToBuffer on unsized error = %v, want ErrPreconditionViolation", err)
	}

	// shapes can be built before the size is known
	if _, err := NewCircle(s.Root(), V(8, 8), 4, nil, NewBrush(red)); err != nil {
		t.Fatal(err)
	}

	if err := s.Resolve(16, 16); err != nil {
		t.Fatal(err)
	}
	if w, h, ok := s.Size(); !ok || w != 16 || h != 16 {
		t.Errorf("Size() = %d, %d, %v", w, h, ok)
	}
	if err := s.Resolve(32, 32); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("second Resolve error = %v, want ErrPreconditionViolation", err)
	}
	if _, err := s.RenderToBuffer(); err != nil {
		t.Errorf("RenderToBuffer after Resolve: %v", err)
	}

	if _, err := NewPixmap(-1, 4); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("negative size error = %v, want ErrPreconditionViolation", err)
	}
}

func TestRenderToBufferOnWindow(t *testing.T) {
	s, err := NewWindow(10, 10, HostFunc(func() {}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RenderToBuffer(); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("error = %v, want ErrPreconditionViolation", err)
	}
}

func TestCircleInTranslatedLayer(t *testing.T) {
	s := newTestPixmap(t)
	l := mustLayer(t, s.Root(), WithPos(V(10, 10)))
	c, err := NewCircle(l, V(50, 50), 5, nil, NewBrush(green))
	if err != nil {
		t.Fatal(err)
	}

	if got := l.WorldTransform().Apply(c.Center()); !approxVec(got, V(60, 60)) {
		t.Errorf("circle center on surface = %v, want (60,60)", got)
	}
	if hit := s.HitTest(60, 60); hit != Shape(c) {
		t.Errorf("HitTest(60,60) = %v, want the circle", hit)
	}
	if hit := s.HitTest(50, 50); hit != nil {
		t.Errorf("HitTest(50,50) = %v, want nil", hit)
	}

	cmds := record(t, s)
	if len(cmds) != 1 || cmds[0].Transform[4] != 10 || cmds[0].Transform[5] != 10 {
		t.Errorf("commands = %+v", cmds)
	}
}

func TestHitTestTopmostFirst(t *testing.T) {
	s := newTestPixmap(t)
	bottom, _ := NewRectangle(s.Root(), V(0, 0), V(50, 50), nil, nil)
	l := mustLayer(t, s.Root())
	top, _ := NewRectangle(l, V(10, 10), V(10, 10), nil, nil)

	if hit := s.HitTest(15, 15); hit != Shape(top) {
		t.Errorf("HitTest(15,15) = %v, want top rect", hit)
	}
	if hit := s.HitTest(40, 40); hit != Shape(bottom) {
		t.Errorf("HitTest(40,40) = %v, want bottom rect", hit)
	}
}

func TestRenderToBufferPixels(t *testing.T) {
	s, err := NewPixmap(64, 64, WithBackground(color.White))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	l := mustLayer(t, s.Root(), WithPos(V(32, 32)))
	if _, err := NewRectangle(l, V(-10, -10), V(20, 20), nil, NewBrush(red)); err != nil {
		t.Fatal(err)
	}

	img, err := s.RenderToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("image bounds = %v", img.Bounds())
	}

	r, g, b, _ := img.At(32, 32).RGBA()
	if r>>8 < 200 || g>>8 > 50 || b>>8 > 50 {
		t.Errorf("center pixel = %v, want red", img.At(32, 32))
	}
	r, g, b, _ = img.At(2, 2).RGBA()
	if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
		t.Errorf("corner pixel = %v, want white background", img.At(2, 2))
	}
	if s.Dirty() {
		t.Error("dirty after render")
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("EncodePNG output does not decode: %v", err)
	}
}
