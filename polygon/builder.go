package polygon

import (
	"fmt"

	"github.com/PavelBfl/CollisionFlow-sub000/geometry"
	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/go-gl/mathgl/mgl64"
)

// EdgesOf converts an ordered vertex list to moving edges. Edge i runs from vertex i to
// vertex i+1 and follows courses[i].
func EdgesOf(cmp numeric.Comparer, vertices []mgl64.Vec2, courses []motion.Course2) ([]motion.MovingLine, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: %d vertices, need at least 3", ErrDegenerate, len(vertices))
	}
	if len(courses) != len(vertices) {
		return nil, fmt.Errorf("%w: %d courses for %d vertices", ErrDegenerate, len(courses), len(vertices))
	}

	edges := make([]motion.MovingLine, len(vertices))
	for i, begin := range vertices {
		line, err := geometry.NewLine(cmp, begin, vertices[(i+1)%len(vertices)])
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges[i] = motion.MovingLine{Line: line, Course: courses[i]}
	}

	return edges, nil
}

// New builds a polygon whose edges all follow the same course.
func New(cmp numeric.Comparer, vertices []mgl64.Vec2, course motion.Course2) (Polygon, error) {
	courses := make([]motion.Course2, len(vertices))
	for i := range courses {
		courses[i] = course
	}

	return NewPerEdge(cmp, vertices, courses)
}

// NewPerEdge builds a polygon where courses[i] drives the edge starting at vertex i.
func NewPerEdge(cmp numeric.Comparer, vertices []mgl64.Vec2, courses []motion.Course2) (Polygon, error) {
	edges, err := EdgesOf(cmp, vertices, courses)
	if err != nil {
		return nil, err
	}

	return FromEdges(cmp, edges)
}
