package polygon

var _ Polygon = (*Common)(nil)

// Common is a polygon whose edges follow distinct courses.
type Common struct {
	shape
}

func newCommon(s shape) *Common {
	return &Common{shape: s}
}

func (p *Common) Kind() Kind {
	return KindCommon
}

func (p *Common) Offset(t float64) {
	for i, edge := range p.edges {
		p.edges[i] = edge.Offset(t)
	}
	p.invalidate()
}
