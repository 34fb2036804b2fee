package collisionflow

import (
	"fmt"
	"math"

	"github.com/PavelBfl/CollisionFlow-sub000/geometry"
	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/PavelBfl/CollisionFlow-sub000/polygon"
)

// ResultKind tells how a Result must be read
type ResultKind uint8

const (
	// RESULT_NEVER means the pair cannot collide at any time ahead
	RESULT_NEVER ResultKind = iota
	// RESULT_WAIT means no contact can happen before Offset
	RESULT_WAIT
	// RESULT_COLLISION means Contacts happen at Offset
	RESULT_COLLISION
)

func (k ResultKind) String() string {
	switch k {
	case RESULT_NEVER:
		return "never"
	case RESULT_WAIT:
		return "wait"
	case RESULT_COLLISION:
		return "collision"
	default:
		return fmt.Sprintf("ResultKind(%d)", uint8(k))
	}
}

// Result is the outcome of a pairwise time of impact search.
type Result struct {
	Kind     ResultKind
	Offset   float64
	Contacts []Contact
}

// Relation caches the time of impact search between two polygons.
//
// A relation is either Separated or Overlapping. The flag is computed once, when the
// relation is built, and only flips when the owner marks a collision of the pair as handled.
// Separated pairs look for the earliest contact, Overlapping pairs look for the instant they
// come apart.
type Relation struct {
	cmp         numeric.Comparer
	a, b        *Entry
	overlapping bool
	result      *Result
	// handled is the dispatcher batch that last flipped overlapping, 0 for none
	handled uint64
}

func newRelation(cmp numeric.Comparer, a, b *Entry) *Relation {
	if a == nil || b == nil || a.Polygon == nil || b.Polygon == nil {
		panic("collisionflow: relation needs two polygons")
	}

	return &Relation{
		cmp:         cmp,
		a:           a,
		b:           b,
		overlapping: polygon.Overlaps(a.Polygon, b.Polygon),
	}
}

func (r *Relation) Overlapping() bool {
	return r.overlapping
}

// Handle flips the Separated/Overlapping state after a collision of the pair was consumed.
func (r *Relation) Handle() {
	r.overlapping = !r.overlapping
	r.Invalidate()
}

// Invalidate drops the cached result, after a course change for instance.
func (r *Relation) Invalidate() {
	r.result = nil
}

// Result returns the pair's time of impact for the given budget, reusing the cached
// result until a pending wait expires within the budget.
func (r *Relation) Result(budget float64) Result {
	if r.result != nil {
		if r.result.Kind != RESULT_WAIT || !r.cmp.LessOrEqual(r.result.Offset, budget) {
			return *r.result
		}
	}

	result := r.compute(budget)
	r.result = &result

	return result
}

// Step shifts the cached result by the time the owner actually advanced.
func (r *Relation) Step(t float64) {
	if r.result == nil || r.result.Kind == RESULT_NEVER {
		return
	}

	offset := r.result.Offset - t
	switch r.cmp.Sign(offset) {
	case -1:
		if r.result.Kind == RESULT_COLLISION {
			// stepped over an unconsumed contact, the cached search no longer holds
			r.result = nil
			return
		}
		offset = 0
	case 0:
		offset = 0
	}
	r.result.Offset = offset
}

func (r *Relation) compute(budget float64) Result {
	if r.overlapping {
		return r.resolve()
	}

	if r.diverging() {
		return Result{Kind: RESULT_NEVER}
	}

	rigidA, okA := r.a.Polygon.(polygon.Rigid)
	rigidB, okB := r.b.Polygon.(polygon.Rigid)
	if okA && okB {
		wait, never := polygon.MinWait(r.cmp, rigidA, rigidB)
		if never {
			return Result{Kind: RESULT_NEVER}
		}
		if !r.cmp.LessOrEqual(wait, budget) {
			return r.wait(wait)
		}
	}

	return r.search()
}

func (r *Relation) wait(t float64) Result {
	if r.cmp.Sign(t) < 0 {
		panic(fmt.Sprintf("collisionflow: negative wait %v", t))
	}

	return Result{Kind: RESULT_WAIT, Offset: t}
}

// diverging is the flat check: the bounding boxes are apart on one axis and no vertex
// course can close the gap on that axis.
func (r *Relation) diverging() bool {
	boundsA, boundsB := r.a.Polygon.Bounds(), r.b.Polygon.Bounds()
	coursesA, coursesB := r.a.Polygon.CourseBounds(), r.b.Polygon.CourseBounds()

	return axisDiverging(r.cmp,
		[3]geometry.Range{boundsA.Horizontal, coursesA.Velocity.Horizontal, coursesA.Acceleration.Horizontal},
		[3]geometry.Range{boundsB.Horizontal, coursesB.Velocity.Horizontal, coursesB.Acceleration.Horizontal},
	) || axisDiverging(r.cmp,
		[3]geometry.Range{boundsA.Vertical, coursesA.Velocity.Vertical, coursesA.Acceleration.Vertical},
		[3]geometry.Range{boundsB.Vertical, coursesB.Velocity.Vertical, coursesB.Acceleration.Vertical},
	)
}

// axisDiverging takes position, velocity and acceleration ranges of both polygons on one axis.
func axisDiverging(cmp numeric.Comparer, a, b [3]geometry.Range) bool {
	gap, before := a[0].Gap(cmp, b[0])
	if cmp.IsZero(gap) {
		return false
	}
	if !before {
		a, b = b, a
	}

	// a lies below b: its top can only reach b's bottom by moving up faster
	return cmp.LessOrEqual(a[1].Max, b[1].Min) && cmp.LessOrEqual(a[2].Max, b[2].Min)
}

// search looks for the earliest contact of a separated pair.
func (r *Relation) search() Result {
	best := math.Inf(1)
	var contacts []Contact

	for _, side := range r.sides() {
		for edge := range side.edges.Polygon.Edges() {
			for vertex := range side.vertices.Polygon.Vertices() {
				roots := r.roots(side, edge, vertex)
				if len(roots) == 0 {
					continue
				}

				t := roots[0]
				switch r.cmp.Compare(t, best) {
				case -1:
					best = t
					contacts = contacts[:0]
					fallthrough
				case 0:
					contacts = append(contacts, side.contact(edge, vertex))
				}

				if r.cmp.IsZero(best) {
					return Result{Kind: RESULT_COLLISION, Offset: 0, Contacts: contacts}
				}
			}
		}
	}

	if math.IsInf(best, 1) {
		return Result{Kind: RESULT_NEVER}
	}

	// stop just before the contact so the next search does not start on the boundary
	return Result{Kind: RESULT_COLLISION, Offset: math.Max(0, best-r.cmp.Epsilon), Contacts: contacts}
}

// resolve looks for the instant an overlapping pair comes apart: the last vertex leaving.
func (r *Relation) resolve() Result {
	best := math.Inf(-1)
	var contacts []Contact

	for _, side := range r.sides() {
		for edge := range side.edges.Polygon.Edges() {
			for vertex := range side.vertices.Polygon.Vertices() {
				roots := r.roots(side, edge, vertex)
				if len(roots) == 0 {
					continue
				}

				t := roots[len(roots)-1]
				switch r.cmp.Compare(t, best) {
				case 1:
					best = t
					contacts = contacts[:0]
					fallthrough
				case 0:
					contacts = append(contacts, side.contact(edge, vertex))
				}
			}
		}
	}

	if math.IsInf(best, -1) {
		return Result{Kind: RESULT_NEVER}
	}

	// step just past the separation point
	return Result{Kind: RESULT_COLLISION, Offset: best + r.cmp.Epsilon, Contacts: contacts}
}

// side is one direction of the search: edges of one polygon against vertices of the other.
type side struct {
	edges    *Entry
	vertices *Entry
}

func (s side) contact(edge, vertex int) Contact {
	return Contact{
		Edge:   Ref{Handle: s.edges.Handle, Index: edge},
		Vertex: Ref{Handle: s.vertices.Handle, Index: vertex},
	}
}

func (r *Relation) sides() [2]side {
	return [2]side{{edges: r.a, vertices: r.b}, {edges: r.b, vertices: r.a}}
}

// roots returns, in ascending order, the times at which the vertex crosses the edge's line
// from the side it started on, while lying inside the edge segment.
//
// The 2D motion is reduced to 1D along the edge's outward normal. The edge goes first so
// that a vertex lying exactly on the line counts as outside.
func (r *Relation) roots(s side, edge, vertex int) []float64 {
	owner := s.edges.Polygon
	normal := owner.Normals()[edge]
	line := owner.Edges()[edge]
	point := s.vertices.Polygon.Vertices()[vertex]

	edgeMoved, vertexMoved := line.Project(normal), point.Project(normal)

	var roots []float64
	for _, t := range motion.Collisions(r.cmp, edgeMoved, vertexMoved) {
		if r.cmp.Sign(t) < 0 || !motion.Closing(r.cmp, edgeMoved, vertexMoved, t) {
			continue
		}
		if r.insideSegment(owner, edge, point, t) {
			roots = append(roots, t)
		}
	}

	return roots
}

// insideSegment checks that the vertex, advanced by t, projects inside the edge segment
// advanced by t.
func (r *Relation) insideSegment(owner polygon.Polygon, edge int, point motion.MovingPoint, t float64) bool {
	vertices := owner.Vertices()
	direction := owner.Edges()[edge].Line.Direction()
	begin := vertices[edge].Offset(t).Position
	end := vertices[(edge+1)%len(vertices)].Offset(t).Position

	span := geometry.NewRange(r.cmp, direction.Dot(begin), direction.Dot(end))

	return span.Contains(r.cmp, direction.Dot(point.Offset(t).Position))
}
