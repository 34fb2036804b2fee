// Package collisionflow computes exact times of impact between convex polygons moving under
// uniformly accelerated motion.
//
// A Dispatcher owns a set of polygons. Each call to Offset looks for the earliest contact of
// any pair within the requested budget, advances every polygon to that instant and returns
// every contact tied at it. A simulation calls Offset in a loop with the remaining budget,
// applying its own collision response between calls, until Offset returns no batch.
package collisionflow

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/PavelBfl/CollisionFlow-sub000/polygon"
	"go.uber.org/zap"
)

var (
	ErrNegativeBudget = errors.New("negative budget")
	ErrUnknownHandle  = errors.New("unknown polygon handle")
)

// Handle identifies a polygon inside its Dispatcher
type Handle uint64

// Entry is a polygon owned by a Dispatcher.
type Entry struct {
	Handle  Handle
	Polygon polygon.Polygon
	// Attachment is free for the owner, to map the polygon back to its own body.
	// The dispatcher never reads it.
	Attachment any
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// Dispatcher drives the pairwise time of impact searches of a polygon set.
// It is not safe for concurrent use; separate dispatchers are independent.
type Dispatcher struct {
	config    Config
	cmp       numeric.Comparer
	entries   map[Handle]*Entry
	relations map[pairKey]*Relation
	// lastHandle is the per-dispatcher handle counter
	lastHandle Handle
	// batches counts the batches returned by Offset
	batches uint64
	logger  *zap.Logger
}

func NewDispatcher(config Config, opts ...Option) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		config:    config,
		cmp:       config.Comparer(),
		entries:   make(map[Handle]*Entry),
		relations: make(map[pairKey]*Relation),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

func (d *Dispatcher) Comparer() numeric.Comparer {
	return d.cmp
}

// Add builds a polygon from its moving edges and takes ownership of it.
func (d *Dispatcher) Add(edges []motion.MovingLine) (Handle, error) {
	p, err := polygon.FromEdges(d.cmp, edges)
	if err != nil {
		return 0, fmt.Errorf("add polygon: %w", err)
	}

	return d.AddPolygon(p)
}

// AddPolygon takes ownership of an already built polygon.
func (d *Dispatcher) AddPolygon(p polygon.Polygon) (Handle, error) {
	if p == nil {
		return 0, fmt.Errorf("add polygon: %w: nil polygon", polygon.ErrDegenerate)
	}

	d.lastHandle++
	h := d.lastHandle
	d.entries[h] = &Entry{Handle: h, Polygon: p}

	d.logger.Debug("polygon added",
		zap.Uint64("handle", uint64(h)),
		zap.Stringer("kind", p.Kind()),
		zap.Int("edges", len(p.Edges())),
	)

	return h, nil
}

// Remove drops a polygon and every relation referencing it. It returns false for an
// unknown handle.
func (d *Dispatcher) Remove(h Handle) bool {
	if _, ok := d.entries[h]; !ok {
		return false
	}

	delete(d.entries, h)
	for key := range d.relations {
		if key.low == h || key.high == h {
			delete(d.relations, key)
		}
	}

	d.logger.Debug("polygon removed", zap.Uint64("handle", uint64(h)))

	return true
}

func (d *Dispatcher) Get(h Handle) (*Entry, bool) {
	e, ok := d.entries[h]
	return e, ok
}

// Attach stores opaque owner data on a polygon.
func (d *Dispatcher) Attach(h Handle, data any) error {
	e, ok := d.entries[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	e.Attachment = data

	return nil
}

// Len returns the number of owned polygons.
func (d *Dispatcher) Len() int {
	return len(d.entries)
}

// Handles returns the owned handles in ascending order.
func (d *Dispatcher) Handles() []Handle {
	handles := make([]Handle, 0, len(d.entries))
	for h := range d.entries {
		handles = append(handles, h)
	}
	slices.Sort(handles)

	return handles
}

// SetCourse gives every edge of a polygon the same new course, typically after a collision
// response. Cached results involving the polygon are dropped, overlap flags are kept.
func (d *Dispatcher) SetCourse(h Handle, course motion.Course2) error {
	e, ok := d.entries[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	courses := make([]motion.Course2, len(e.Polygon.Edges()))
	for i := range courses {
		courses[i] = course
	}

	return d.SetCourses(h, courses)
}

// SetCourses replaces the course of each edge of a polygon.
func (d *Dispatcher) SetCourses(h Handle, courses []motion.Course2) error {
	e, ok := d.entries[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	edges := slices.Clone(e.Polygon.Edges())
	if len(courses) != len(edges) {
		return fmt.Errorf("set courses: %w: %d courses for %d edges", polygon.ErrDegenerate, len(courses), len(edges))
	}
	for i := range edges {
		edges[i].Course = courses[i]
	}

	p, err := polygon.FromEdges(d.cmp, edges)
	if err != nil {
		return fmt.Errorf("set courses: %w", err)
	}
	e.Polygon = p

	for key, relation := range d.relations {
		if key.low == h || key.high == h {
			relation.Invalidate()
		}
	}

	d.logger.Debug("polygon course changed",
		zap.Uint64("handle", uint64(h)),
		zap.Stringer("kind", p.Kind()),
	)

	return nil
}

// Handled marks the collision of the pair named by the contact as consumed: a separated
// pair becomes overlapping and the other way around. Contacts of the same pair from one
// batch flip it once.
func (d *Dispatcher) Handled(c Contact) error {
	relation, err := d.relation(c.Edge.Handle, c.Vertex.Handle)
	if err != nil {
		return err
	}
	if d.batches > 0 && relation.handled == d.batches {
		return nil
	}
	relation.handled = d.batches
	relation.Handle()

	d.logger.Debug("pair handled",
		zap.Uint64("edge_handle", uint64(c.Edge.Handle)),
		zap.Uint64("vertex_handle", uint64(c.Vertex.Handle)),
		zap.Bool("overlapping", relation.Overlapping()),
	)

	return nil
}

// Overlapping reports the cached overlap flag of a pair, building the relation of a pair
// that was never evaluated.
func (d *Dispatcher) Overlapping(a, b Handle) (bool, error) {
	for _, h := range [2]Handle{a, b} {
		if _, ok := d.entries[h]; !ok {
			return false, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
		}
	}
	if a == b {
		return false, fmt.Errorf("%w: pair of %d with itself", ErrUnknownHandle, a)
	}

	key := makePairKey(a, b)
	relation, ok := d.relations[key]
	if !ok {
		relation = newRelation(d.cmp, d.entries[a], d.entries[b])
		d.relations[key] = relation
	}

	return relation.Overlapping(), nil
}

// relation returns the existing relation of two known polygons, creating none.
func (d *Dispatcher) relation(a, b Handle) (*Relation, error) {
	for _, h := range [2]Handle{a, b} {
		if _, ok := d.entries[h]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
		}
	}

	relation, ok := d.relations[makePairKey(a, b)]
	if !ok {
		panic(fmt.Sprintf("collisionflow: no relation between %d and %d", a, b))
	}

	return relation, nil
}

// Offset advances every polygon by budget, or up to the earliest contact if one happens
// within the budget. It returns the contacts tied at that instant, or nil when the whole
// budget was consumed without contact.
func (d *Dispatcher) Offset(budget float64) (*Batch, error) {
	if math.IsNaN(budget) || d.cmp.Sign(budget) < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeBudget, budget)
	}
	budget = math.Max(budget, 0)

	relations := d.pairs()
	results := make([]Result, len(relations))
	task(d.config.Workers, relations, func(i int, relation *Relation) {
		results[i] = relation.Result(budget)
	})

	best := math.Inf(1)
	for _, result := range results {
		if result.Kind != RESULT_COLLISION || !d.cmp.LessOrEqual(result.Offset, budget) {
			continue
		}
		if d.cmp.Compare(result.Offset, best) < 0 {
			best = result.Offset
		}
	}

	if math.IsInf(best, 1) {
		d.advance(budget)
		d.logger.Debug("budget consumed", zap.Float64("budget", budget), zap.Int("pairs", len(relations)))
		return nil, nil
	}

	offset := math.Min(best, budget)
	batch := &Batch{Offset: offset}
	for _, result := range results {
		if result.Kind != RESULT_COLLISION || !d.cmp.Equals(result.Offset, best) {
			continue
		}
		for _, contact := range result.Contacts {
			contact.Offset = offset
			batch.Contacts = append(batch.Contacts, contact)
		}
	}
	d.advance(offset)
	d.batches++

	d.logger.Debug("collision found",
		zap.Float64("budget", budget),
		zap.Float64("offset", offset),
		zap.Int("contacts", len(batch.Contacts)),
	)

	return batch, nil
}

// pairs returns the relation of every unordered pair in handle order, creating missing
// relations. Derived polygon state is computed here so that pair evaluation only reads it.
func (d *Dispatcher) pairs() []*Relation {
	handles := d.Handles()
	for _, h := range handles {
		p := d.entries[h].Polygon
		p.Vertices()
		p.CourseBounds()
	}

	relations := make([]*Relation, 0, len(handles)*(len(handles)-1)/2)
	for i, a := range handles {
		for _, b := range handles[i+1:] {
			key := makePairKey(a, b)
			relation, ok := d.relations[key]
			if !ok {
				relation = newRelation(d.cmp, d.entries[a], d.entries[b])
				d.relations[key] = relation
			}
			relations = append(relations, relation)
		}
	}

	return relations
}

func (d *Dispatcher) advance(t float64) {
	for _, e := range d.entries {
		e.Polygon.Offset(t)
	}
	for _, relation := range d.relations {
		relation.Step(t)
	}
}
