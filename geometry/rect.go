package geometry

import (
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/go-gl/mathgl/mgl64"
)

// Rect represents an axis-aligned bounding box
type Rect struct {
	Horizontal Range
	Vertical   Range
}

// RectOf builds the bounding box of a point set. It panics on an empty set.
func RectOf(cmp numeric.Comparer, points ...mgl64.Vec2) Rect {
	if len(points) == 0 {
		panic("geometry: rect of no points")
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X(), p.Y()
	}

	return Rect{Horizontal: RangeOf(cmp, xs...), Vertical: RangeOf(cmp, ys...)}
}

func (r Rect) Min() mgl64.Vec2 {
	return mgl64.Vec2{r.Horizontal.Min, r.Vertical.Min}
}

func (r Rect) Max() mgl64.Vec2 {
	return mgl64.Vec2{r.Horizontal.Max, r.Vertical.Max}
}

// ContainsPoint checks if a point is inside the rect, borders included
func (r Rect) ContainsPoint(cmp numeric.Comparer, point mgl64.Vec2) bool {
	return r.Horizontal.Contains(cmp, point.X()) && r.Vertical.Contains(cmp, point.Y())
}

// Intersects checks if two rects overlap, touching borders included
func (r Rect) Intersects(cmp numeric.Comparer, other Rect) bool {
	// Rects overlap if they overlap on both axes
	return r.Horizontal.Intersects(cmp, other.Horizontal) && r.Vertical.Intersects(cmp, other.Vertical)
}
