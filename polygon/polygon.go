// Package polygon models convex polygons whose edges move under uniformly accelerated motion.
//
// A polygon is stored as its ordered edges. Vertices are never primary data: vertex i is the
// crossing of edge i-1 and edge i, and its velocity and acceleration are derived from the
// same crossing applied to the edges' velocity and acceleration components. Vertices and
// bounds are cached and dropped whenever Offset moves the edges.
//
// Polygons are classified once, when built:
//   - Static: every edge has a zero course. Offset is a no-op.
//   - Undeformable: every edge shares one course, the shape translates rigidly.
//   - Common: edges carry distinct courses, the shape deforms over time.
package polygon

import (
	"errors"
	"fmt"

	"github.com/PavelBfl/CollisionFlow-sub000/geometry"
	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrDegenerate    = errors.New("degenerate polygon")
	ErrParallelEdges = errors.New("consecutive edges are parallel")
	ErrNotConvex     = errors.New("polygon is not convex")
)

// Kind represents the motion class of a polygon
type Kind int

const (
	// KindStatic polygons never move (walls, ground)
	KindStatic Kind = iota
	// KindUndeformable polygons translate rigidly, all edges share one course
	KindUndeformable
	// KindCommon polygons have edges with distinct courses
	KindCommon
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindUndeformable:
		return "undeformable"
	case KindCommon:
		return "common"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Polygon is the interface shared by the three motion classes.
// Returned slices are owned by the polygon and must not be modified.
type Polygon interface {
	Kind() Kind
	Comparer() numeric.Comparer
	// Edges in order. Edge i runs from vertex i to vertex i+1.
	Edges() []motion.MovingLine
	// Normals holds the outward unit normal of every edge. Edges only translate, so
	// normals never change.
	Normals() []mgl64.Vec2
	Vertices() []motion.MovingPoint
	Bounds() geometry.Rect
	// CourseBounds bounds the velocities and accelerations of the vertices.
	CourseBounds() CourseBounds
	// Offset advances every edge by t.
	Offset(t float64)
}

// Rigid is implemented by polygons that move as a whole.
type Rigid interface {
	Polygon
	Course() motion.Course2
}

// CourseBounds holds per-axis ranges of vertex velocities and accelerations.
type CourseBounds struct {
	Velocity     geometry.Rect
	Acceleration geometry.Rect
}

type derived struct {
	vertices []motion.MovingPoint
	bounds   geometry.Rect
	courses  CourseBounds
}

// shape holds the edge data and the lazily derived state shared by every kind.
type shape struct {
	cmp     numeric.Comparer
	edges   []motion.MovingLine
	normals []mgl64.Vec2
	// rigid is the shared course of Static and Undeformable polygons, nil for Common
	rigid *motion.Course2
	cache *derived
}

func (s *shape) Comparer() numeric.Comparer {
	return s.cmp
}

func (s *shape) Edges() []motion.MovingLine {
	return s.edges
}

func (s *shape) Normals() []mgl64.Vec2 {
	return s.normals
}

func (s *shape) Vertices() []motion.MovingPoint {
	return s.derive().vertices
}

func (s *shape) Bounds() geometry.Rect {
	return s.derive().bounds
}

func (s *shape) CourseBounds() CourseBounds {
	return s.derive().courses
}

func (s *shape) invalidate() {
	s.cache = nil
}

func (s *shape) derive() *derived {
	if s.cache != nil {
		return s.cache
	}

	n := len(s.edges)
	vertices := make([]motion.MovingPoint, n)
	positions := make([]mgl64.Vec2, n)
	velocities := make([]mgl64.Vec2, n)
	accelerations := make([]mgl64.Vec2, n)
	for i := range s.edges {
		prev, next := s.edges[(i+n-1)%n], s.edges[i]
		position, ok := prev.Line.Crossing(s.cmp, next.Line)
		if !ok {
			panic(fmt.Sprintf("polygon: edges %d and %d became parallel", (i+n-1)%n, i))
		}

		var course motion.Course2
		if s.rigid != nil {
			course = *s.rigid
		} else {
			course = crossingCourse(s.cmp, prev, next)
		}

		vertices[i] = motion.MovingPoint{Position: position, Course: course}
		positions[i] = position
		velocities[i] = course.Velocity()
		accelerations[i] = course.Acceleration()
	}

	s.cache = &derived{
		vertices: vertices,
		bounds:   geometry.RectOf(s.cmp, positions...),
		courses: CourseBounds{
			Velocity:     geometry.RectOf(s.cmp, velocities...),
			Acceleration: geometry.RectOf(s.cmp, accelerations...),
		},
	}

	return s.cache
}

// crossingCourse derives the course of the crossing point of two translating lines.
// The crossing is linear in the lines' displacements, so its velocity is the crossing of
// the two lines moved to pass through their velocities, and likewise for acceleration.
func crossingCourse(cmp numeric.Comparer, prev, next motion.MovingLine) motion.Course2 {
	velocity, _ := prev.Line.PassThrough(prev.Course.Velocity()).Crossing(cmp, next.Line.PassThrough(next.Course.Velocity()))
	acceleration, _ := prev.Line.PassThrough(prev.Course.Acceleration()).Crossing(cmp, next.Line.PassThrough(next.Course.Acceleration()))

	return motion.NewCourse2(velocity, acceleration)
}

// FromEdges validates the edges and builds the polygon of the matching kind.
// The slice is copied.
func FromEdges(cmp numeric.Comparer, edges []motion.MovingLine) (Polygon, error) {
	n := len(edges)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d edges, need at least 3", ErrDegenerate, n)
	}

	positions := make([]mgl64.Vec2, n)
	for i := range edges {
		position, ok := edges[(i+n-1)%n].Line.Crossing(cmp, edges[i].Line)
		if !ok {
			return nil, fmt.Errorf("%w: edges %d and %d", ErrParallelEdges, (i+n-1)%n, i)
		}
		positions[i] = position
	}
	for i := range positions {
		if cmp.Vec2Equals(positions[i], positions[(i+1)%n]) {
			return nil, fmt.Errorf("%w: edge %d has zero length", ErrDegenerate, i)
		}
	}

	area := signedArea(positions)
	if cmp.IsZero(area) {
		return nil, fmt.Errorf("%w: zero area", ErrDegenerate)
	}

	normals := make([]mgl64.Vec2, n)
	for i, edge := range edges {
		d := positions[(i+1)%n].Sub(positions[i])
		outward := mgl64.Vec2{d.Y(), -d.X()}
		if area < 0 {
			outward = outward.Mul(-1)
		}

		normal := edge.Line.Normal()
		if normal.Dot(outward) < 0 {
			normal = normal.Mul(-1)
		}
		normals[i] = normal

		for j, p := range positions {
			if cmp.Sign(normal.Dot(p.Sub(positions[i]))) > 0 {
				return nil, fmt.Errorf("%w: vertex %d outside edge %d", ErrNotConvex, j, i)
			}
		}
	}

	s := shape{
		cmp:     cmp,
		edges:   append([]motion.MovingLine(nil), edges...),
		normals: normals,
	}

	switch kind, course := classify(cmp, edges); kind {
	case KindStatic:
		return newStatic(s), nil
	case KindUndeformable:
		return newUndeformable(s, course), nil
	default:
		return newCommon(s), nil
	}
}

// classify compares every edge course to the first one.
func classify(cmp numeric.Comparer, edges []motion.MovingLine) (Kind, motion.Course2) {
	first := edges[0].Course
	for _, edge := range edges[1:] {
		if !edge.Course.Equals(cmp, first) {
			return KindCommon, motion.Course2{}
		}
	}
	if first.IsZero(cmp) {
		return KindStatic, motion.Course2{}
	}

	return KindUndeformable, first
}

func signedArea(points []mgl64.Vec2) float64 {
	area := 0.0
	for i, p := range points {
		q := points[(i+1)%len(points)]
		area += p.X()*q.Y() - q.X()*p.Y()
	}

	return area / 2
}
