package polygon

import (
	"math"

	"github.com/PavelBfl/CollisionFlow-sub000/geometry"
	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
)

var _ Rigid = (*Undeformable)(nil)

// Undeformable is a polygon translating as a whole: every edge shares one course.
type Undeformable struct {
	shape
	course motion.Course2
}

func newUndeformable(s shape, course motion.Course2) *Undeformable {
	p := &Undeformable{shape: s, course: course}
	p.rigid = &p.course

	return p
}

func (p *Undeformable) Kind() Kind {
	return KindUndeformable
}

func (p *Undeformable) Course() motion.Course2 {
	return p.course
}

func (p *Undeformable) Offset(t float64) {
	displacement := p.course.Displacement(t)
	p.course = p.course.Offset(t)
	for i, edge := range p.edges {
		p.edges[i] = motion.MovingLine{Line: edge.Line.OffsetBy(displacement), Course: p.course}
	}
	p.invalidate()
}

// MinWait returns the earliest time at which the bounding boxes of two rigid polygons could
// touch, computed per axis from the gap between the boxes and the relative course on that
// axis. The boxes of rigid polygons keep their size, so no exact contact can happen before.
// never is true when the boxes cannot meet at any time ahead.
func MinWait(cmp numeric.Comparer, a, b Rigid) (wait float64, never bool) {
	boundsA, boundsB := a.Bounds(), b.Bounds()
	courseA, courseB := a.Course(), b.Course()

	waitX, neverX := axisWait(cmp, boundsA.Horizontal, boundsB.Horizontal, courseA.X, courseB.X)
	if neverX {
		return math.Inf(1), true
	}
	waitY, neverY := axisWait(cmp, boundsA.Vertical, boundsB.Vertical, courseA.Y, courseB.Y)
	if neverY {
		return math.Inf(1), true
	}

	return math.Max(waitX, waitY), false
}

func axisWait(cmp numeric.Comparer, a, b geometry.Range, courseA, courseB motion.Course) (float64, bool) {
	gap, before := a.Gap(cmp, b)
	if cmp.IsZero(gap) {
		return 0, false
	}

	var low, high motion.Moved
	if before {
		low, high = motion.Moved{Value: a.Max, Course: courseA}, motion.Moved{Value: b.Min, Course: courseB}
	} else {
		low, high = motion.Moved{Value: b.Max, Course: courseB}, motion.Moved{Value: a.Min, Course: courseA}
	}

	for _, t := range motion.Collisions(cmp, low, high) {
		if cmp.Sign(t) >= 0 && motion.Closing(cmp, low, high, t) {
			return t, false
		}
	}

	return math.Inf(1), true
}
