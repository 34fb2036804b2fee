package motion

import (
	"github.com/PavelBfl/CollisionFlow-sub000/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Moved is a scalar following a course.
type Moved struct {
	Value  float64
	Course Course
}

func (m Moved) Offset(t float64) Moved {
	return Moved{Value: m.Course.OffsetValue(m.Value, t), Course: m.Course.Offset(t)}
}

// MovingPoint is a point following a course.
type MovingPoint struct {
	Position mgl64.Vec2
	Course   Course2
}

func (m MovingPoint) Offset(t float64) MovingPoint {
	return MovingPoint{Position: m.Position.Add(m.Course.Displacement(t)), Course: m.Course.Offset(t)}
}

// Project reduces the point to the axis n.
func (m MovingPoint) Project(n mgl64.Vec2) Moved {
	return Moved{Value: m.Position.Dot(n), Course: m.Course.Project(n)}
}

// MovingLine is a line translating along a course. Its slope never changes.
type MovingLine struct {
	Line   geometry.Line
	Course Course2
}

func (m MovingLine) Offset(t float64) MovingLine {
	return MovingLine{Line: m.Line.OffsetBy(m.Course.Displacement(t)), Course: m.Course.Offset(t)}
}

// Project reduces the line to its position along the axis n, usually its own normal.
func (m MovingLine) Project(n mgl64.Vec2) Moved {
	return Moved{Value: m.Line.Point().Dot(n), Course: m.Course.Project(n)}
}
