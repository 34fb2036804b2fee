// Package geometry holds the stateless 2D primitives used by polygons: implicit lines,
// closed ranges and axis-aligned rects. Every comparison goes through a numeric.Comparer.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrCoincidentPoints = errors.New("line points coincide")

// LineKind tells how Slope and Offset are interpreted
type LineKind int

const (
	// LineKindSloped is y = Slope*x + Offset
	LineKindSloped LineKind = iota
	// LineKindVertical is x = Offset, Slope is +Inf
	LineKindVertical
	// LineKindHorizontal is y = Offset, Slope is 0
	LineKindHorizontal
)

// Line is an infinite line in implicit form.
type Line struct {
	Kind   LineKind
	Slope  float64
	Offset float64
}

// NewLine builds the line going through begin and end.
func NewLine(cmp numeric.Comparer, begin, end mgl64.Vec2) (Line, error) {
	if cmp.Vec2Equals(begin, end) {
		return Line{}, fmt.Errorf("%w: %v", ErrCoincidentPoints, begin)
	}

	switch {
	case cmp.Equals(begin.X(), end.X()):
		return Vertical(begin.X()), nil
	case cmp.Equals(begin.Y(), end.Y()):
		return Horizontal(begin.Y()), nil
	}

	slope := (end.Y() - begin.Y()) / (end.X() - begin.X())
	return Line{Kind: LineKindSloped, Slope: slope, Offset: begin.Y() - slope*begin.X()}, nil
}

// Vertical returns the line x = x.
func Vertical(x float64) Line {
	return Line{Kind: LineKindVertical, Slope: math.Inf(1), Offset: x}
}

// Horizontal returns the line y = y.
func Horizontal(y float64) Line {
	return Line{Kind: LineKindHorizontal, Slope: 0, Offset: y}
}

// At evaluates y for a given x. Vertical lines have no single value.
func (l Line) At(x float64) (float64, bool) {
	switch l.Kind {
	case LineKindVertical:
		return 0, false
	case LineKindHorizontal:
		return l.Offset, true
	default:
		return l.Slope*x + l.Offset, true
	}
}

// AtY evaluates x for a given y. Horizontal lines have no single value.
func (l Line) AtY(y float64) (float64, bool) {
	switch l.Kind {
	case LineKindVertical:
		return l.Offset, true
	case LineKindHorizontal:
		return 0, false
	default:
		return (y - l.Offset) / l.Slope, true
	}
}

// Point returns the reference point of the line: where it crosses an axis.
func (l Line) Point() mgl64.Vec2 {
	switch l.Kind {
	case LineKindVertical:
		return mgl64.Vec2{l.Offset, 0}
	default:
		return mgl64.Vec2{0, l.Offset}
	}
}

// Perpendicular rotates the line by 90 degrees keeping the same offset.
func (l Line) Perpendicular() Line {
	switch l.Kind {
	case LineKindVertical:
		return Horizontal(l.Offset)
	case LineKindHorizontal:
		return Vertical(l.Offset)
	default:
		return Line{Kind: LineKindSloped, Slope: -1 / l.Slope, Offset: l.Offset}
	}
}

// PassThrough keeps the slope and re-derives the offset so that the line contains p.
func (l Line) PassThrough(p mgl64.Vec2) Line {
	switch l.Kind {
	case LineKindVertical:
		return Vertical(p.X())
	case LineKindHorizontal:
		return Horizontal(p.Y())
	default:
		return Line{Kind: LineKindSloped, Slope: l.Slope, Offset: p.Y() - l.Slope*p.X()}
	}
}

// OffsetBy translates the line by v.
func (l Line) OffsetBy(v mgl64.Vec2) Line {
	return l.PassThrough(l.Point().Add(v))
}

// Crossing returns the intersection point. ok is false for parallel lines.
func (l Line) Crossing(cmp numeric.Comparer, other Line) (mgl64.Vec2, bool) {
	switch {
	case l.Kind == other.Kind && l.Kind != LineKindSloped:
		return mgl64.Vec2{}, false
	case l.Kind == LineKindVertical && other.Kind == LineKindHorizontal:
		return mgl64.Vec2{l.Offset, other.Offset}, true
	case l.Kind == LineKindHorizontal && other.Kind == LineKindVertical:
		return mgl64.Vec2{other.Offset, l.Offset}, true
	case l.Kind == LineKindVertical:
		y, _ := other.At(l.Offset)
		return mgl64.Vec2{l.Offset, y}, true
	case other.Kind == LineKindVertical:
		y, _ := l.At(other.Offset)
		return mgl64.Vec2{other.Offset, y}, true
	case l.Kind == LineKindHorizontal:
		x, _ := other.AtY(l.Offset)
		return mgl64.Vec2{x, l.Offset}, true
	case other.Kind == LineKindHorizontal:
		x, _ := l.AtY(other.Offset)
		return mgl64.Vec2{x, other.Offset}, true
	}

	if cmp.Equals(l.Slope, other.Slope) {
		return mgl64.Vec2{}, false
	}
	x := (other.Offset - l.Offset) / (l.Slope - other.Slope)

	return mgl64.Vec2{x, l.Slope*x + l.Offset}, true
}

// Normal returns a unit vector perpendicular to the line. Its side is arbitrary but stable.
func (l Line) Normal() mgl64.Vec2 {
	return l.Perpendicular().Direction()
}

// Direction returns a unit vector along the line.
func (l Line) Direction() mgl64.Vec2 {
	switch l.Kind {
	case LineKindVertical:
		return mgl64.Vec2{0, 1}
	case LineKindHorizontal:
		return mgl64.Vec2{1, 0}
	default:
		return mgl64.Vec2{1, l.Slope}.Normalize()
	}
}

// Contains reports whether p lies on the line.
func (l Line) Contains(cmp numeric.Comparer, p mgl64.Vec2) bool {
	return cmp.IsZero(l.Normal().Dot(p.Sub(l.Point())))
}
