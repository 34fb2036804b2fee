package polygon

import (
	"github.com/PavelBfl/CollisionFlow-sub000/geometry"
	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"github.com/go-gl/mathgl/mgl64"
)

// ContainsPoint reports whether p lies strictly inside the polygon, using an even-odd ray
// cast across the vertex Y spans. Points on the border are outside.
func ContainsPoint(p Polygon, point mgl64.Vec2) bool {
	cmp := p.Comparer()
	vertices := p.Vertices()
	n := len(vertices)

	for i := range vertices {
		if onSegment(cmp, vertices[i].Position, vertices[(i+1)%n].Position, point) {
			return false
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := vertices[i].Position, vertices[j].Position
		if (cmp.Compare(a.Y(), point.Y()) > 0) == (cmp.Compare(b.Y(), point.Y()) > 0) {
			continue
		}

		x := (b.X()-a.X())*(point.Y()-a.Y())/(b.Y()-a.Y()) + a.X()
		if cmp.Compare(point.X(), x) < 0 {
			inside = !inside
		}
	}

	return inside
}

// Overlaps reports whether two polygons share interior area at their current positions.
// It is a separating axis test over the outward normals of both polygons: the projections
// must overlap on every axis. Touching borders do not count.
func Overlaps(a, b Polygon) bool {
	cmp := a.Comparer()
	if !a.Bounds().Intersects(cmp, b.Bounds()) {
		return false
	}

	for _, owner := range [2]Polygon{a, b} {
		for _, axis := range owner.Normals() {
			if !project(cmp, a, axis).IntersectsExclusive(cmp, project(cmp, b, axis)) {
				return false
			}
		}
	}

	return true
}

// project returns the extent of the polygon's vertices along axis.
func project(cmp numeric.Comparer, p Polygon, axis mgl64.Vec2) geometry.Range {
	vertices := p.Vertices()
	values := make([]float64, len(vertices))
	for i, v := range vertices {
		values[i] = axis.Dot(v.Position)
	}

	return geometry.RangeOf(cmp, values...)
}

// spanOf projects a segment of the line onto the line direction.
func spanOf(cmp numeric.Comparer, line geometry.Line, seg [2]mgl64.Vec2) geometry.Range {
	direction := line.Direction()

	return geometry.NewRange(cmp, direction.Dot(seg[0]), direction.Dot(seg[1]))
}

func onSegment(cmp numeric.Comparer, a, b, p mgl64.Vec2) bool {
	line, err := geometry.NewLine(cmp, a, b)
	if err != nil {
		return cmp.Vec2Equals(a, p)
	}

	return line.Contains(cmp, p) && spanOf(cmp, line, [2]mgl64.Vec2{a, b}).Contains(cmp, line.Direction().Dot(p))
}
