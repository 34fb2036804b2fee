package collisionflow

// Ref points at an edge or a vertex of a polygon owned by a Dispatcher.
type Ref struct {
	Handle Handle
	Index  int
}

// Contact is one edge of a polygon touched by one vertex of another polygon.
type Contact struct {
	Edge   Ref
	Vertex Ref
	// Offset is the time, from the start of the dispatch call, at which contact happens
	Offset float64
}

// Batch is every contact found at the earliest time of impact of a dispatch call.
type Batch struct {
	Offset   float64
	Contacts []Contact
}

type pairKey struct {
	low  Handle
	high Handle
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(a, b Handle) pairKey {
	if b < a {
		a, b = b, a
	}

	return pairKey{low: a, high: b}
}
