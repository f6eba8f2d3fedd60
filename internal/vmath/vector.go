package vmath

import "math"

const twoPi = float32(2 * math.Pi)

// Vector2 is a single analog stick sample. Y grows upwards.
type Vector2 struct {
	X float32
	Y float32
}

func (v Vector2) MagnitudeSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vector2) Magnitude() float32 {
	return float32(math.Sqrt(float64(v.MagnitudeSquared())))
}

// Normalized returns the unit vector pointing the same way as v.
// The zero vector is returned unchanged.
func (v Vector2) Normalized() Vector2 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return Vector2{X: v.X / mag, Y: v.Y / mag}
}

func (v *Vector2) Scale(factor float32) {
	v.X *= factor
	v.Y *= factor
}

// Angle reports the direction of v in radians within [0, 2π).
// Up (0, 1) is 0 and the angle advances clockwise, so right (1, 0) is π/2.
// The sum is taken in float32 so sector boundaries round the same way on
// every platform.
func (v Vector2) Angle() float32 {
	a := float32(math.Pi) + float32(math.Atan2(float64(-v.X), float64(-v.Y)))
	if a >= twoPi || a < 0 {
		return 0
	}
	return a
}
