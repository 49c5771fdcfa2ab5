package core

// FallbackPolicy decides what happens to the remaining worklist when one of
// a package's events is vetoed or replaced.
type FallbackPolicy int

const (
	// AbortChain discards every pending event still on the worklist. The
	// replacement events of the altering listener still run.
	AbortChain FallbackPolicy = iota
	// ContinueChain leaves the rest of the worklist intact.
	ContinueChain
)

func (p FallbackPolicy) String() string {
	if p == ContinueChain {
		return "continue_chain"
	}
	return "abort_chain"
}

// ActionPackage is the unit of external input: an ordered batch of proposed
// events plus the fallback policy applied when one of them is altered.
// Translating a player or AI move intent into a package is the only place
// raw intent enters the event vocabulary; everything downstream is pure
// event transformation.
type ActionPackage struct {
	Events   []Event
	Fallback FallbackPolicy
}

// Empty reports whether the package proposes no events. An empty AbortChain
// package is the defensive representation of invalid intent (for example a
// move referencing an empty source cell) — never an error.
func (p ActionPackage) Empty() bool {
	return len(p.Events) == 0
}
