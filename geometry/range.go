package geometry

import (
	"fmt"

	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// NewRange orders a and b with the comparer and builds the range.
func NewRange(cmp numeric.Comparer, a, b float64) Range {
	return Range{Min: cmp.Min(a, b), Max: cmp.Max(b, a)}
}

// MustRange builds a range from already ordered bounds and panics if min > max.
func MustRange(cmp numeric.Comparer, min, max float64) Range {
	if cmp.Compare(min, max) > 0 {
		panic(fmt.Sprintf("geometry: range min %v greater than max %v", min, max))
	}

	return Range{Min: min, Max: max}
}

// RangeOf returns the smallest range holding every value. It panics on an empty slice.
func RangeOf(cmp numeric.Comparer, values ...float64) Range {
	if len(values) == 0 {
		panic("geometry: range of no values")
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = cmp.Min(min, v)
		max = cmp.Max(max, v)
	}

	return MustRange(cmp, min, max)
}

func (r Range) Size() float64 {
	return r.Max - r.Min
}

// Contains checks min <= v <= max.
func (r Range) Contains(cmp numeric.Comparer, v float64) bool {
	return cmp.Compare(r.Min, v) <= 0 && cmp.Compare(v, r.Max) <= 0
}

// ContainsExclusive checks min < v < max.
func (r Range) ContainsExclusive(cmp numeric.Comparer, v float64) bool {
	return cmp.Compare(r.Min, v) < 0 && cmp.Compare(v, r.Max) < 0
}

// Intersects reports whether the closed ranges share at least one value.
func (r Range) Intersects(cmp numeric.Comparer, other Range) bool {
	return cmp.Compare(r.Min, other.Max) <= 0 && cmp.Compare(other.Min, r.Max) <= 0
}

// IntersectsExclusive reports whether the open ranges share a value. Touching ends do not count.
func (r Range) IntersectsExclusive(cmp numeric.Comparer, other Range) bool {
	return cmp.Compare(r.Min, other.Max) < 0 && cmp.Compare(other.Min, r.Max) < 0
}

// Gap returns the distance separating two ranges, 0 when they intersect.
// before is true when r lies entirely below other.
func (r Range) Gap(cmp numeric.Comparer, other Range) (gap float64, before bool) {
	switch {
	case cmp.Compare(r.Max, other.Min) < 0:
		return other.Min - r.Max, true
	case cmp.Compare(other.Max, r.Min) < 0:
		return r.Min - other.Max, false
	default:
		return 0, false
	}
}
