// Package motion describes uniformly accelerated motion: a Course is a velocity and an
// acceleration along one axis, a Course2 pairs one Course per coordinate. Moving values
// tie a target (scalar, point or line) to the course governing its future position.
package motion

import (
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/go-gl/mathgl/mgl64"
)

// Course is the motion along a single axis.
type Course struct {
	V float64 // velocity
	A float64 // acceleration
}

// Displacement returns V·t + A·t²/2.
func (c Course) Displacement(t float64) float64 {
	return c.V*t + c.A*t*t/2
}

// OffsetValue returns value + V·t + A·t²/2.
func (c Course) OffsetValue(value, t float64) float64 {
	return value + c.Displacement(t)
}

// Offset returns the course after t: the velocity has absorbed the acceleration.
func (c Course) Offset(t float64) Course {
	return Course{V: c.V + c.A*t, A: c.A}
}

func (c Course) Sub(other Course) Course {
	return Course{V: c.V - other.V, A: c.A - other.A}
}

func (c Course) Equals(cmp numeric.Comparer, other Course) bool {
	return cmp.Equals(c.V, other.V) && cmp.Equals(c.A, other.A)
}

func (c Course) IsZero(cmp numeric.Comparer) bool {
	return cmp.IsZero(c.V) && cmp.IsZero(c.A)
}

// Course2 is the motion of a 2D value, one Course per axis.
type Course2 struct {
	X Course
	Y Course
}

// NewCourse2 builds a course from velocity and acceleration vectors.
func NewCourse2(velocity, acceleration mgl64.Vec2) Course2 {
	return Course2{
		X: Course{V: velocity.X(), A: acceleration.X()},
		Y: Course{V: velocity.Y(), A: acceleration.Y()},
	}
}

func (c Course2) Velocity() mgl64.Vec2 {
	return mgl64.Vec2{c.X.V, c.Y.V}
}

func (c Course2) Acceleration() mgl64.Vec2 {
	return mgl64.Vec2{c.X.A, c.Y.A}
}

func (c Course2) Displacement(t float64) mgl64.Vec2 {
	return mgl64.Vec2{c.X.Displacement(t), c.Y.Displacement(t)}
}

func (c Course2) Offset(t float64) Course2 {
	return Course2{X: c.X.Offset(t), Y: c.Y.Offset(t)}
}

func (c Course2) Sub(other Course2) Course2 {
	return Course2{X: c.X.Sub(other.X), Y: c.Y.Sub(other.Y)}
}

// Project reduces the course to the axis n.
func (c Course2) Project(n mgl64.Vec2) Course {
	return Course{V: c.Velocity().Dot(n), A: c.Acceleration().Dot(n)}
}

func (c Course2) Equals(cmp numeric.Comparer, other Course2) bool {
	return c.X.Equals(cmp, other.X) && c.Y.Equals(cmp, other.Y)
}

func (c Course2) IsZero(cmp numeric.Comparer) bool {
	return c.X.IsZero(cmp) && c.Y.IsZero(cmp)
}
