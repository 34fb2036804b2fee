// Package numeric implements the epsilon model shared by every geometric predicate.
//
// A Comparer maps a float64 to an integer unit at a fixed resolution. Two values are
// equal when their units match, and ordering is done on units as well. Geometry code
// never compares raw floats with == for contact or containment decisions; it goes
// through a Comparer so that ties are decided the same way everywhere.
package numeric

import (
	"cmp"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_EPSILON   = 1e-6
	DEFAULT_GUARD_MIN = -1e9
	DEFAULT_GUARD_MAX = 1e9
)

// Comparer quantizes values to multiples of Epsilon.
// GuardMin and GuardMax bound the values accepted by InRange.
type Comparer struct {
	Epsilon  float64
	GuardMin float64
	GuardMax float64
}

// Default is the comparer used when no other is configured.
var Default = NewComparer(DEFAULT_EPSILON, DEFAULT_GUARD_MIN, DEFAULT_GUARD_MAX)

// NewComparer creates a comparer. It panics on a non-positive epsilon or an empty guard band.
func NewComparer(epsilon, guardMin, guardMax float64) Comparer {
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		panic(fmt.Sprintf("numeric: invalid epsilon %v", epsilon))
	}
	if !(guardMin < guardMax) {
		panic(fmt.Sprintf("numeric: invalid guard band [%v, %v]", guardMin, guardMax))
	}

	return Comparer{Epsilon: epsilon, GuardMin: guardMin, GuardMax: guardMax}
}

// Quantize returns round(x / epsilon), clamped to the int64 range.
// NaN quantizes to 0.
func (c Comparer) Quantize(x float64) int64 {
	if math.IsNaN(x) {
		return 0
	}
	// float64(math.MaxInt64) rounds up to 2^63, so keep one unit of headroom
	units := mgl64.Clamp(math.Round(x/c.Epsilon), math.MinInt64, math.MaxInt64-1024)

	return int64(units)
}

func (c Comparer) Equals(x, y float64) bool {
	return c.Quantize(x) == c.Quantize(y)
}

// Compare returns -1, 0 or 1 ordering x and y by their quantized units.
func (c Comparer) Compare(x, y float64) int {
	return cmp.Compare(c.Quantize(x), c.Quantize(y))
}

func (c Comparer) IsZero(x float64) bool {
	return c.Quantize(x) == 0
}

// Sign returns the sign of x after quantization.
func (c Comparer) Sign(x float64) int {
	return c.Compare(x, 0)
}

func (c Comparer) Less(x, y float64) bool {
	return c.Compare(x, y) < 0
}

func (c Comparer) LessOrEqual(x, y float64) bool {
	return c.Compare(x, y) <= 0
}

// InRange reports whether x is finite and inside the guard band.
func (c Comparer) InRange(x float64) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return false
	}

	return x >= c.GuardMin && x <= c.GuardMax
}

// Min returns the smaller value. On a tie the first argument wins.
func (c Comparer) Min(x, y float64) float64 {
	if c.Compare(y, x) < 0 {
		return y
	}

	return x
}

// Max returns the larger value. On a tie the first argument wins.
func (c Comparer) Max(x, y float64) float64 {
	if c.Compare(y, x) > 0 {
		return y
	}

	return x
}

// Vec2Equals compares two vectors component-wise.
func (c Comparer) Vec2Equals(a, b mgl64.Vec2) bool {
	return a.ApproxFuncEqual(b, c.Equals)
}

// Vec2IsZero reports whether both components quantize to zero.
func (c Comparer) Vec2IsZero(v mgl64.Vec2) bool {
	return c.IsZero(v.X()) && c.IsZero(v.Y())
}
