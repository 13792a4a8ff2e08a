package engine

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func approxVec(a, b Vec2) bool { return approx(a.X, b.X) && approx(a.Y, b.Y) }

func TestLocalTransformOrder(t *testing.T) {
	// scale, then rotate, then translate
	m := LocalTransform(V(10, 20), Degrees(90), V(2, 3))
	got := m.Apply(V(1, 0))
	if want := V(10, 22); !approxVec(got, want) {
		t.Errorf("Apply(1,0) = %v, want %v", got, want)
	}
	got = m.Apply(V(0, 1))
	if want := V(7, 20); !approxVec(got, want) {
		t.Errorf("Apply(0,1) = %v, want %v", got, want)
	}

	composed := Translate(10, 20).Multiply(Rotate(Degrees(90))).Multiply(Scale(2, 3))
	if !m.ApproxEqual(composed) {
		t.Errorf("LocalTransform = %v, want T*R*S = %v", m, composed)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := LocalTransform(V(-5, 7), Angle(0.7), V(1.5, 0.25))
	p := V(3, 4)
	back := m.Invert().Apply(m.Apply(p))
	if !approxVec(back, p) {
		t.Errorf("round trip of %v = %v", p, back)
	}
	if !m.Multiply(m.Invert()).IsIdentity() {
		t.Error("m * m^-1 is not identity")
	}
}

func TestInvertSingular(t *testing.T) {
	if got := Scale(0, 1).Invert(); !got.IsIdentity() {
		t.Errorf("Invert of singular matrix = %v, want identity", got)
	}
}

func TestTransformRect(t *testing.T) {
	r := Rotate(Degrees(90)).TransformRect(Rect{X: 0, Y: 0, Width: 10, Height: 5})
	want := Rect{X: -5, Y: 0, Width: 5, Height: 10}
	if !approx(r.X, want.X) || !approx(r.Y, want.Y) || !approx(r.Width, want.Width) || !approx(r.Height, want.Height) {
		t.Errorf("TransformRect = %+v, want %+v", r, want)
	}
}
