package engine

import (
	"sort"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
)

// collectListeners gathers every extension point reachable from the current
// state: every tile that declares listener behavior, plus for every piece
// each layer of its ability chain (outermost wrapper down to the concrete
// piece) that declares one.
//
// The collection is recomputed fresh before every event — never cached
// across events — because a chain reaction created mid-run may add, remove
// or reshape listeners, and a listener that did not exist before the
// reaction must still observe it.
//
// Ordering: ascending priority; ties preserve row-major board discovery
// order (tiles first, then pieces, then chain layers outermost-first).
func collectListeners(s *board.State) []core.Listener {
	var out []core.Listener

	for _, t := range s.Tiles() {
		if l := t.Listener(); l != nil {
			out = append(out, l)
		}
	}

	for _, p := range s.Pieces() {
		for layer := p; ; {
			if l := layer.Listener(); l != nil {
				out = append(out, l)
			}
			a, ok := layer.(core.Ability)
			if !ok {
				break
			}
			layer = a.Inner()
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}
