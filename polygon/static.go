package polygon

import "github.com/PavelBfl/CollisionFlow-sub000/motion"

var _ Rigid = (*Static)(nil)

// Static is a polygon that never moves. Its vertices and bounds are derived once.
type Static struct {
	shape
}

func newStatic(s shape) *Static {
	s.rigid = &motion.Course2{}
	p := &Static{shape: s}
	p.derive()

	return p
}

func (p *Static) Kind() Kind {
	return KindStatic
}

func (p *Static) Course() motion.Course2 {
	return motion.Course2{}
}

// Offset does nothing: a static polygon stays where it was built.
func (p *Static) Offset(float64) {}
