package engine

import (
	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
)

// Move is a proposed move intent as handed in by a player, the manager, or
// an AI: relocate whatever stands on From to To. Legality is the RuleSet's
// concern; translation only shapes intent into events.
type Move struct {
	From core.Coord
	To   core.Coord
}

// TranslateMove is the entry adapter turning raw intent into an action
// package — the only place intent enters the event vocabulary.
//
// If no piece stands on From, the result is an empty AbortChain package: a
// defensive no-op against stale intent, never an error. If To is occupied,
// a Capture precedes the Move; the package fallback is AbortChain because
// an aborted capture must also abort the dependent move.
func TranslateMove(st *board.State, mv Move) core.ActionPackage {
	mover := st.PieceAt(mv.From)
	if mover == nil {
		return core.ActionPackage{Fallback: core.AbortChain}
	}

	var events []core.Event
	if occupant := st.PieceAt(mv.To); occupant != nil {
		capture := core.NewCapture(core.SourcePlayer, mover.Owner(), mover.PieceID(), occupant.PieceID(), mv.From, mv.To)
		capture.PlayerInitiated = true
		events = append(events, capture)
	}
	move := core.NewMove(core.SourcePlayer, mover.Owner(), mover.PieceID(), mv.From, mv.To)
	move.PlayerInitiated = true
	events = append(events, move)

	return core.ActionPackage{Events: events, Fallback: core.AbortChain}
}
