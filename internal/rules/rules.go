// Package rules supplies move legality and win detection on top of the raw
// event engine. The engine resolves any event it is handed; a RuleSet is the
// gatekeeper deciding which player intents are allowed in.
package rules

import (
	"errors"
	"fmt"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
)

// Outcome reports whether and how a match has ended.
type Outcome struct {
	Over   bool
	Winner core.Color
	Reason string
}

// RuleSet decides legality and termination for one game variant.
type RuleSet interface {
	// CheckMove validates a move intent against the current state. A nil
	// return means the intent may be resolved.
	CheckMove(st *board.State, mv engine.Move) error
	// LegalMoves enumerates every legal move for the side to play.
	LegalMoves(st *board.State) []engine.Move
	// Outcome inspects a state for a terminal condition.
	Outcome(st *board.State) Outcome
}

// IllegalMoveError reports a rejected move intent and the reason.
type IllegalMoveError struct {
	Move   engine.Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s->%s: %s", e.Move.From, e.Move.To, e.Reason)
}

// IsIllegalMoveError reports whether err is an IllegalMoveError.
func IsIllegalMoveError(err error) bool {
	var e *IllegalMoveError
	return errors.As(err, &e)
}

// BasicRules is the default variant: a move is legal when the mover belongs
// to the side to play and the destination is among the piece's geometric
// candidates, and a side loses when its royal piece has left the board.
type BasicRules struct {
	royalName string
}

// NewBasicRules builds the default ruleset. royalName is the catalog name of
// the piece whose absence ends the match, normally "king".
func NewBasicRules(royalName string) *BasicRules {
	return &BasicRules{royalName: royalName}
}

// CheckMove implements RuleSet.
func (r *BasicRules) CheckMove(st *board.State, mv engine.Move) error {
	mover := st.PieceAt(mv.From)
	if mover == nil {
		return &IllegalMoveError{Move: mv, Reason: "no piece on source cell"}
	}
	if mover.Owner() != st.CurrentPlayer() {
		return &IllegalMoveError{Move: mv, Reason: fmt.Sprintf("piece belongs to %s, %s to play", mover.Owner(), st.CurrentPlayer())}
	}
	if !st.InBounds(mv.To) {
		return &IllegalMoveError{Move: mv, Reason: "destination out of bounds"}
	}
	for _, c := range mover.Moves(st) {
		if c == mv.To {
			return nil
		}
	}
	return &IllegalMoveError{Move: mv, Reason: fmt.Sprintf("%s cannot reach %s", core.Unwrap(mover).Name(), mv.To)}
}

// LegalMoves implements RuleSet. Moves are enumerated in row-major piece
// order, each piece's candidates in its generator's order, so the listing is
// deterministic for a given state.
func (r *BasicRules) LegalMoves(st *board.State) []engine.Move {
	var out []engine.Move
	for _, p := range st.Pieces() {
		if p.Owner() != st.CurrentPlayer() {
			continue
		}
		for _, to := range p.Moves(st) {
			out = append(out, engine.Move{From: p.Pos(), To: to})
		}
	}
	return out
}

// Outcome implements RuleSet. The match ends when a side has no royal piece
// left; if both royals are gone at once the match is a draw with no winner.
func (r *BasicRules) Outcome(st *board.State) Outcome {
	whiteRoyal, blackRoyal := false, false
	for _, p := range st.Pieces() {
		if core.Unwrap(p).Name() != r.royalName {
			continue
		}
		switch p.Owner() {
		case core.White:
			whiteRoyal = true
		case core.Black:
			blackRoyal = true
		}
	}
	switch {
	case whiteRoyal && blackRoyal:
		return Outcome{}
	case whiteRoyal:
		return Outcome{Over: true, Winner: core.White, Reason: fmt.Sprintf("black %s eliminated", r.royalName)}
	case blackRoyal:
		return Outcome{Over: true, Winner: core.Black, Reason: fmt.Sprintf("white %s eliminated", r.royalName)}
	default:
		return Outcome{Over: true, Winner: core.NoColor, Reason: "both royals eliminated"}
	}
}
