package collisionflow

import (
	"fmt"
	"math"
	"testing"

	"github.com/PavelBfl/CollisionFlow-sub000/motion"
	"github.com/PavelBfl/CollisionFlow-sub000/polygon"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestDispatcher(t *testing.T, workers int) *Dispatcher {
	t.Helper()
	config := DefaultConfig()
	config.Workers = workers
	d, err := NewDispatcher(config)
	require.NoError(t, err)
	return d
}

func addPolygon(t *testing.T, d *Dispatcher, vertices []mgl64.Vec2, course motion.Course2) Handle {
	t.Helper()
	p, err := polygon.New(d.Comparer(), vertices, course)
	require.NoError(t, err)
	h, err := d.AddPolygon(p)
	require.NoError(t, err)
	return h
}

// square returns the unit square centered on center, turned so its first edge faces -axis.
func square(center, axis mgl64.Vec2) []mgl64.Vec2 {
	side := mgl64.Vec2{-axis.Y(), axis.X()}
	half, halfSide := axis.Mul(0.5), side.Mul(0.5)

	return []mgl64.Vec2{
		center.Sub(half).Sub(halfSide),
		center.Add(half).Sub(halfSide),
		center.Add(half).Add(halfSide),
		center.Sub(half).Add(halfSide),
	}
}

// =============================================================================
// Ownership
// =============================================================================

func TestNewDispatcher_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Workers = 0

	d, err := NewDispatcher(config)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, d)
}

func TestDispatcher_AddRemove(t *testing.T) {
	d := newTestDispatcher(t, 1)

	a := addPolygon(t, d, box(0, 0, 1, 1), motion.Course2{})
	edges, err := polygon.EdgesOf(d.Comparer(), box(2, 0, 3, 1), make([]motion.Course2, 4))
	require.NoError(t, err)
	b, err := d.Add(edges)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []Handle{a, b}, d.Handles())

	entry, ok := d.Get(b)
	require.True(t, ok)
	assert.Equal(t, b, entry.Handle)
	assert.Equal(t, polygon.KindStatic, entry.Polygon.Kind())

	_, err = d.Offset(1)
	require.NoError(t, err)
	assert.Len(t, d.relations, 1)

	assert.True(t, d.Remove(a))
	assert.False(t, d.Remove(a))
	assert.Equal(t, 1, d.Len())
	assert.Empty(t, d.relations)

	_, ok = d.Get(a)
	assert.False(t, ok)

	// handles are never reused
	c := addPolygon(t, d, box(5, 5, 6, 6), motion.Course2{})
	assert.Greater(t, c, b)
}

func TestDispatcher_AddErrors(t *testing.T) {
	d := newTestDispatcher(t, 1)

	_, err := d.Add([]motion.MovingLine{{}, {}})
	assert.ErrorIs(t, err, polygon.ErrDegenerate)

	_, err = d.AddPolygon(nil)
	assert.ErrorIs(t, err, polygon.ErrDegenerate)

	assert.Zero(t, d.Len())
}

func TestDispatcher_Attach(t *testing.T) {
	d := newTestDispatcher(t, 1)
	h := addPolygon(t, d, box(0, 0, 1, 1), motion.Course2{})

	type body struct{ name string }
	require.NoError(t, d.Attach(h, &body{name: "crate"}))

	entry, _ := d.Get(h)
	assert.Equal(t, &body{name: "crate"}, entry.Attachment)

	assert.ErrorIs(t, d.Attach(h+1, nil), ErrUnknownHandle)
}

func TestDispatcher_UnknownHandles(t *testing.T) {
	d := newTestDispatcher(t, 1)
	h := addPolygon(t, d, box(0, 0, 1, 1), motion.Course2{})

	assert.ErrorIs(t, d.SetCourse(42, motion.Course2{}), ErrUnknownHandle)
	assert.ErrorIs(t, d.SetCourses(42, nil), ErrUnknownHandle)
	assert.ErrorIs(t, d.Handled(Contact{Edge: Ref{Handle: h}, Vertex: Ref{Handle: 42}}), ErrUnknownHandle)

	_, err := d.Overlapping(h, 42)
	assert.ErrorIs(t, err, ErrUnknownHandle)
	_, err = d.Overlapping(h, h)
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestDispatcher_HandledWithoutRelationPanics(t *testing.T) {
	d := newTestDispatcher(t, 1)
	a := addPolygon(t, d, box(0, 0, 1, 1), motion.Course2{})
	b := addPolygon(t, d, box(2, 0, 3, 1), motion.Course2{})

	assert.Panics(t, func() {
		_ = d.Handled(Contact{Edge: Ref{Handle: a}, Vertex: Ref{Handle: b}})
	})
}

// =============================================================================
// Offset
// =============================================================================

func TestDispatcher_OffsetBudget(t *testing.T) {
	d := newTestDispatcher(t, 1)
	addPolygon(t, d, box(0, 0, 1, 1), velocity(1, 0))

	tests := []struct {
		name    string
		budget  float64
		wantErr bool
	}{
		{"negative", -1, true},
		{"not a number", math.NaN(), true},
		{"zero", 0, false},
		{"negative within epsilon", -1e-9, false},
		{"positive", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := d.Offset(tt.budget)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNegativeBudget)
				return
			}
			assert.NoError(t, err)
			assert.Nil(t, batch)
		})
	}
}

func TestDispatcher_EmptyAndSingle(t *testing.T) {
	d := newTestDispatcher(t, 1)

	batch, err := d.Offset(10)
	require.NoError(t, err)
	assert.Nil(t, batch)

	h := addPolygon(t, d, box(0, 0, 1, 1), velocity(1, 0))
	batch, err = d.Offset(2)
	require.NoError(t, err)
	assert.Nil(t, batch)

	entry, _ := d.Get(h)
	assert.InDelta(t, 2, entry.Polygon.Bounds().Horizontal.Min, 1e-9)
}

func TestDispatcher_NoRelativeMotion(t *testing.T) {
	shared := motion.NewCourse2(mgl64.Vec2{1, 0.5}, mgl64.Vec2{})
	falling := motion.NewCourse2(mgl64.Vec2{1, 0.5}, mgl64.Vec2{0, -9.8})

	tests := []struct {
		name        string
		boxes       [][]mgl64.Vec2
		course      motion.Course2
		overlapping bool
	}{
		{
			name:  "all static",
			boxes: [][]mgl64.Vec2{box(0, 0, 1, 1), box(2, 0, 3, 1), box(0, 2, 1, 3)},
		},
		{
			name:   "shared velocity",
			boxes:  [][]mgl64.Vec2{box(0, 0, 1, 1), box(2, 0, 3, 1)},
			course: shared,
		},
		{
			name:   "shared velocity and acceleration",
			boxes:  [][]mgl64.Vec2{box(0, 0, 1, 1), box(2, 0, 3, 1)},
			course: falling,
		},
		{
			name:        "overlapping pair with a shared course",
			boxes:       [][]mgl64.Vec2{box(0, 0, 2, 2), box(1, 1, 3, 3)},
			course:      shared,
			overlapping: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(t, 1)
			handles := make([]Handle, len(tt.boxes))
			for i, vertices := range tt.boxes {
				handles[i] = addPolygon(t, d, vertices, tt.course)
			}

			overlapping, err := d.Overlapping(handles[0], handles[1])
			require.NoError(t, err)
			assert.Equal(t, tt.overlapping, overlapping)

			for _, budget := range []float64{0, 1, 100} {
				batch, err := d.Offset(budget)
				require.NoError(t, err)
				assert.Nil(t, batch, "budget %v", budget)
			}

			for _, relation := range d.relations {
				assert.Equal(t, RESULT_NEVER, relation.Result(1).Kind)
			}
		})
	}
}

func TestDispatcher_ContactWithinEpsilon(t *testing.T) {
	d := newTestDispatcher(t, 1)
	triangle := addPolygon(t, d, []mgl64.Vec2{{0, 0}, {1, 0.5}, {0, 1}}, velocity(1, 0))
	wall := addPolygon(t, d, box(1+1e-6, -1, 2, 2), motion.Course2{})

	batch, err := d.Offset(1)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.InDelta(t, 0, batch.Offset, 1e-9)
	assert.Equal(t, []Contact{{
		Edge:   Ref{Handle: wall, Index: 3},
		Vertex: Ref{Handle: triangle, Index: 1},
		Offset: batch.Offset,
	}}, batch.Contacts)

	overlapping, err := d.Overlapping(triangle, wall)
	require.NoError(t, err)
	assert.False(t, overlapping)

	// once handled the triangle passes through the wall
	require.NoError(t, d.Handled(batch.Contacts[0]))
	overlapping, _ = d.Overlapping(triangle, wall)
	assert.True(t, overlapping)

	batch, err = d.Offset(5)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.InDelta(t, 2, batch.Offset, 1e-5)
	assert.Len(t, batch.Contacts, 2)
	for _, contact := range batch.Contacts {
		assert.Equal(t, Ref{Handle: wall, Index: 1}, contact.Edge)
		assert.Equal(t, triangle, contact.Vertex.Handle)
	}
}

func TestDispatcher_RotationInvariance(t *testing.T) {
	for _, degrees := range []float64{0, 30, 45, 60, 90, 135} {
		t.Run(fmt.Sprintf("%v degrees", degrees), func(t *testing.T) {
			angle := mgl64.DegToRad(degrees)
			axis := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}

			d := newTestDispatcher(t, 1)
			addPolygon(t, d, square(axis.Mul(-1), axis), motion.NewCourse2(axis, mgl64.Vec2{}))
			addPolygon(t, d, square(axis, axis), motion.NewCourse2(axis.Mul(-1), mgl64.Vec2{}))

			batch, err := d.Offset(1)
			require.NoError(t, err)
			require.NotNil(t, batch, "rotation %v", degrees)
			assert.InDelta(t, 0.5, batch.Offset, 1e-5, "rotation %v", degrees)
			assert.NotEmpty(t, batch.Contacts)
		})
	}
}

func TestDispatcher_SimultaneousContacts(t *testing.T) {
	d := newTestDispatcher(t, 1)
	triangle := []mgl64.Vec2{{0, 0}, {1, 0.5}, {0, 1}}
	lifted := []mgl64.Vec2{{0, 100}, {1, 100.5}, {0, 101}}

	first := addPolygon(t, d, triangle, velocity(1, 0))
	addPolygon(t, d, box(2, -1, 3, 2), motion.Course2{})
	second := addPolygon(t, d, lifted, velocity(1, 0))
	addPolygon(t, d, box(2, 99, 3, 102), motion.Course2{})

	batch, err := d.Offset(3)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.InDelta(t, 1, batch.Offset, 1e-5)
	require.Len(t, batch.Contacts, 2)

	vertices := []Handle{batch.Contacts[0].Vertex.Handle, batch.Contacts[1].Vertex.Handle}
	assert.ElementsMatch(t, []Handle{first, second}, vertices)
	for _, contact := range batch.Contacts {
		assert.Equal(t, batch.Offset, contact.Offset)
	}
}

func TestDispatcher_EarliestPairWins(t *testing.T) {
	d := newTestDispatcher(t, 1)
	near := addPolygon(t, d, box(0, 0, 1, 1), velocity(1, 0))
	addPolygon(t, d, box(2, 0, 3, 1), motion.Course2{})
	addPolygon(t, d, box(0, 10, 1, 11), velocity(1, 0))
	addPolygon(t, d, box(4, 10, 5, 11), motion.Course2{})

	batch, err := d.Offset(10)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.InDelta(t, 1, batch.Offset, 1e-5)
	for _, contact := range batch.Contacts {
		assert.Contains(t, []Handle{contact.Edge.Handle, contact.Vertex.Handle}, near)
	}

	// every polygon was advanced to the contact time
	entry, _ := d.Get(near + 2)
	assert.InDelta(t, 1, entry.Polygon.Bounds().Horizontal.Min, 1e-5)
}

func TestDispatcher_OverlappingPair(t *testing.T) {
	d := newTestDispatcher(t, 1)
	a := addPolygon(t, d, box(0, 0, 2, 1), motion.Course2{})
	b := addPolygon(t, d, box(1, 0.25, 3, 0.75), velocity(1, 0))

	overlapping, err := d.Overlapping(a, b)
	require.NoError(t, err)
	require.True(t, overlapping)

	batch, err := d.Offset(0.5)
	require.NoError(t, err)
	assert.Nil(t, batch)

	batch, err = d.Offset(2)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.InDelta(t, 0.5+d.Comparer().Epsilon, batch.Offset, 1e-9)
	require.Len(t, batch.Contacts, 2)

	// both contacts belong to the same pair, it flips once
	for _, contact := range batch.Contacts {
		require.NoError(t, d.Handled(contact))
	}
	overlapping, _ = d.Overlapping(a, b)
	assert.False(t, overlapping)

	batch, err = d.Offset(1)
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestDispatcher_SetCourse(t *testing.T) {
	d := newTestDispatcher(t, 1)
	mover := addPolygon(t, d, box(0, 0, 1, 1), velocity(1, 0))
	addPolygon(t, d, box(3, -1, 4, 2), motion.Course2{})

	batch, err := d.Offset(0.5)
	require.NoError(t, err)
	require.Nil(t, batch)

	// turning back drops the cached contact
	require.NoError(t, d.SetCourse(mover, velocity(-1, 0)))
	batch, err = d.Offset(5)
	require.NoError(t, err)
	assert.Nil(t, batch)

	entry, _ := d.Get(mover)
	assert.InDelta(t, -4.5, entry.Polygon.Bounds().Horizontal.Min, 1e-9)

	require.NoError(t, d.SetCourse(mover, motion.Course2{}))
	entry, _ = d.Get(mover)
	assert.Equal(t, polygon.KindStatic, entry.Polygon.Kind())

	assert.ErrorIs(t, d.SetCourses(mover, make([]motion.Course2, 3)), polygon.ErrDegenerate)
}

func TestDispatcher_SetCoursesDeforms(t *testing.T) {
	d := newTestDispatcher(t, 1)
	h := addPolygon(t, d, box(0, 0, 1, 1), motion.Course2{})
	addPolygon(t, d, box(3, 0, 4, 1), motion.Course2{})

	require.NoError(t, d.SetCourses(h, []motion.Course2{{}, velocity(1, 0), {}, {}}))
	entry, _ := d.Get(h)
	assert.Equal(t, polygon.KindCommon, entry.Polygon.Kind())

	batch, err := d.Offset(5)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.InDelta(t, 2, batch.Offset, 1e-5)
}

// =============================================================================
// Reproducibility
// =============================================================================

func TestDispatcher_SplitBudget(t *testing.T) {
	build := func(t *testing.T) *Dispatcher {
		d := newTestDispatcher(t, 1)
		addPolygon(t, d, box(0, 0, 1, 1), motion.NewCourse2(mgl64.Vec2{1, 0.5}, mgl64.Vec2{0.5, 0}))
		addPolygon(t, d, box(20, 20, 21, 21), motion.Course2{})
		return d
	}

	whole, split := build(t), build(t)
	require.Equal(t, whole.Fingerprint(), split.Fingerprint())

	batch, err := whole.Offset(1)
	require.NoError(t, err)
	require.Nil(t, batch)

	for range 4 {
		batch, err = split.Offset(0.25)
		require.NoError(t, err)
		require.Nil(t, batch)
	}

	assert.Equal(t, whole.Fingerprint(), split.Fingerprint())

	entry, _ := whole.Get(1)
	assert.True(t, whole.Comparer().Vec2Equals(mgl64.Vec2{1.25, 0.5}, entry.Polygon.Bounds().Min()))
}

// fallingBoxes drops a row of boxes at different heights onto a floor and records every batch.
func fallingBoxes(t *testing.T, workers int) ([]Batch, uint64) {
	d := newTestDispatcher(t, workers)
	addPolygon(t, d, box(-1, -1, 20, 0), motion.Course2{})
	for i := range 8 {
		x := float64(i) * 2
		addPolygon(t, d, box(x, 1+float64(i)*0.5, x+1, 2+float64(i)*0.5), motion.NewCourse2(mgl64.Vec2{}, mgl64.Vec2{0, -2}))
	}

	var batches []Batch
	remaining := 3.0
	for range 32 {
		batch, err := d.Offset(remaining)
		require.NoError(t, err)
		if batch == nil {
			break
		}
		batches = append(batches, *batch)
		remaining -= batch.Offset

		for _, contact := range batch.Contacts {
			for _, h := range []Handle{contact.Edge.Handle, contact.Vertex.Handle} {
				if entry, _ := d.Get(h); entry.Polygon.Kind() != polygon.KindStatic {
					require.NoError(t, d.SetCourse(h, motion.Course2{}))
				}
			}
		}
	}

	return batches, d.Fingerprint()
}

func TestDispatcher_WorkersAgree(t *testing.T) {
	sequential, sequentialFingerprint := fallingBoxes(t, 1)
	require.Len(t, sequential, 8)

	for _, workers := range []int{2, 4, 8} {
		parallel, parallelFingerprint := fallingBoxes(t, workers)
		assert.Equal(t, sequential, parallel, "workers %d", workers)
		assert.Equal(t, sequentialFingerprint, parallelFingerprint, "workers %d", workers)
	}
}

func TestDispatcher_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d, err := NewDispatcher(DefaultConfig(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	addPolygon(t, d, box(0, 0, 1, 1), velocity(1, 0))
	addPolygon(t, d, box(2, -1, 3, 2), motion.Course2{})
	_, err = d.Offset(5)
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("polygon added").Len())
	collisions := logs.FilterMessage("collision found").All()
	require.Len(t, collisions, 1)
	assert.EqualValues(t, 2, collisions[0].ContextMap()["contacts"])
}
