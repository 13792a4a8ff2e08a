package engine

import (
	"fmt"
	"math"
)

// Vec2 is a 2D point or extent.
type Vec2 struct {
	X float64
	Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// ParseVec2 builds a vector from up to two components.
// Missing components are zero. Supplying more than two is an error;
// the input is never truncated.
func ParseVec2(components ...float64) (Vec2, error) {
	var v Vec2
	switch len(components) {
	case 0:
	case 1:
		v.X = components[0]
	case 2:
		v.X, v.Y = components[0], components[1]
	default:
		return Vec2{}, fmt.Errorf("vec2 from %d components: %w", len(components), ErrUnrecognizedInput)
	}
	return v, nil
}

// ParseScale builds a scale vector. A single component is broadcast to a
// uniform (s, s) scale.
func ParseScale(components ...float64) (Vec2, error) {
	switch len(components) {
	case 1:
		return Vec2{X: components[0], Y: components[0]}, nil
	case 2:
		return Vec2{X: components[0], Y: components[1]}, nil
	default:
		return Vec2{}, fmt.Errorf("scale from %d components: %w", len(components), ErrUnrecognizedInput)
	}
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Rotation is a 2D rotation stored as a unit complex number.
// The zero value is not a valid rotation; use NoRotation.
type Rotation struct {
	Cos float64
	Sin float64
}

// NoRotation is the identity rotation.
var NoRotation = Rotation{Cos: 1, Sin: 0}

// Angle converts an angle in radians to a rotation.
func Angle(radians float64) Rotation {
	return Rotation{Cos: math.Cos(radians), Sin: math.Sin(radians)}
}

// Degrees converts an angle in degrees to a rotation.
func Degrees(degrees float64) Rotation {
	return Angle(degrees * math.Pi / 180.0)
}

// Radians returns the rotation angle in (-pi, pi].
func (r Rotation) Radians() float64 {
	return math.Atan2(r.Sin, r.Cos)
}

// normalized rescales r onto the unit circle. A degenerate rotation becomes
// the identity.
func (r Rotation) normalized() Rotation {
	n := math.Hypot(r.Cos, r.Sin)
	if n == 0 {
		return NoRotation
	}
	return Rotation{Cos: r.Cos / n, Sin: r.Sin / n}
}
