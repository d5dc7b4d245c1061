package math

import "math"

// Vec2 is a vector in the horizontal plane. Y holds the world Z coordinate.
type Vec2 struct {
	X, Y float32
}

// Polar returns the point at angle radians and distance radius from the origin.
func Polar(angle, radius float32) Vec2 {
	s, c := math.Sincos(float64(angle))
	return Vec2{radius * float32(c), radius * float32(s)}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Normalize returns a unit vector, or zero for the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Lift returns the 3D point at height y above v.
func (v Vec2) Lift(y float32) Vec3 {
	return Vec3{v.X, y, v.Y}
}
