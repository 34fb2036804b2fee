package motion

import (
	"math"

	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
)

// order returns the operand with the smaller value first. On a tie a stays first.
func order(cmp numeric.Comparer, a, b Moved) (min, max Moved) {
	if cmp.Compare(a.Value, b.Value) <= 0 {
		return a, b
	}

	return b, a
}

// Collisions returns the times at which two moving scalars hold the same value,
// in ascending order. It returns nil when the gap between them never closes.
//
// The gap s = max - min is measured from the operand with the smaller current value,
// with relative velocity v = Vmin - Vmax and relative acceleration a = Amin - Amax:
//
//	(a/2)·t² + v·t - s = 0
//
// Both roots of the quadratic are returned, negative ones included, as long as they lie
// inside the comparer's guard band. Use Closing to keep the one reached while approaching.
func Collisions(cmp numeric.Comparer, a, b Moved) []float64 {
	min, max := order(cmp, a, b)
	v := min.Course.V - max.Course.V
	acc := min.Course.A - max.Course.A
	s := max.Value - min.Value

	if cmp.Sign(v) <= 0 && cmp.Sign(acc) <= 0 {
		return nil
	}

	if cmp.IsZero(acc) {
		t := s / v
		if !cmp.InRange(t) {
			return nil
		}
		return []float64{t}
	}

	d := v*v + 2*acc*s
	switch cmp.Sign(d) {
	case -1:
		return nil
	case 0:
		t := -v / acc
		if !cmp.InRange(t) {
			return nil
		}
		return []float64{t}
	}

	sqrt := math.Sqrt(d)
	t1 := (-v - sqrt) / acc
	t2 := (-v + sqrt) / acc
	if t2 < t1 {
		t1, t2 = t2, t1
	}

	roots := make([]float64, 0, 2)
	for _, t := range [2]float64{t1, t2} {
		if cmp.InRange(t) {
			roots = append(roots, t)
		}
	}
	if len(roots) == 0 {
		return nil
	}

	return roots
}

// Closing reports whether, at time t, the operand that currently has the smaller value
// is still moving towards the other one. A root of Collisions that is closing is the
// instant the gap is crossed from the side it started on.
func Closing(cmp numeric.Comparer, a, b Moved, t float64) bool {
	min, max := order(cmp, a, b)
	rate := min.Course.Offset(t).Sub(max.Course.Offset(t)).V

	return cmp.Sign(rate) >= 0
}
