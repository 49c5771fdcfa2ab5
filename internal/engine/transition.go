package engine

import (
	"log/slog"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
)

// Apply is the canonical state transition: a pure (event, state) -> state
// mapping for each event variant. It always clones the board first, then
// re-resolves referenced entities by id on the clone — never trusting piece
// references captured inside the event payload, which may be stale once the
// board has been cloned.
//
// Removal variants are idempotent: capturing or destroying an entity that a
// prior reaction already removed is a no-op, not an error. Only structural
// faults (out-of-bounds cells, missing replacement entities) are fatal,
// since they indicate a catalog defect rather than ordinary gameplay.
//
// Post-condition: every occupied cell's piece position equals that cell's
// coordinate.
func Apply(ev core.Event, st *board.State) (*board.State, error) {
	switch ev.Kind {
	case core.KindMove:
		return applyMove(ev, st)
	case core.KindCapture:
		return applyCapture(ev, st)
	case core.KindDestroy:
		return applyDestroy(ev, st)
	case core.KindTransform:
		return applyTransform(ev, st)
	case core.KindSwap:
		return applySwap(ev, st)
	case core.KindTileChanged:
		return applyTileChanged(ev, st)
	case core.KindTurnAdvanced:
		ns := st.Clone()
		ns.SetTurn(ev.Player, ev.Turn)
		return ns, nil
	case core.KindTurnStart, core.KindTurnEnd, core.KindTimeExpired, core.KindGameOver:
		// Lifecycle markers leave the board untouched; they still produce a
		// fresh snapshot so every canonical event maps to one new state.
		return st.Clone(), nil
	default:
		return nil, &RuntimeError{
			Code:    ErrCodeUnknownKind,
			Message: "event has no transition case",
			EventID: ev.ID,
			Kind:    ev.Kind,
		}
	}
}

func applyMove(ev core.Event, st *board.State) (*board.State, error) {
	if !st.InBounds(ev.From) || !st.InBounds(ev.To) {
		at := ev.From
		if st.InBounds(ev.From) {
			at = ev.To
		}
		return nil, newOutOfBoundsError(ev, at)
	}
	ns := st.Clone()
	p := ns.PieceByID(ev.Piece)
	if p == nil {
		// Stale reference: the mover was removed by a prior reaction.
		slog.Debug("move target absent, no-op", "id", ev.ID, "piece", ev.Piece)
		return ns, nil
	}
	if occ := ns.PieceAt(ev.To); occ != nil {
		// Destination filled mid-chain (for example a rebirth reaction).
		// The move fizzles rather than stacking two pieces on one cell.
		slog.Debug("move destination occupied, no-op", "id", ev.ID, "to", ev.To.String())
		return ns, nil
	}
	if err := ns.Relocate(p.Pos(), ev.To); err != nil {
		return nil, err
	}
	p.RecordMove()
	return ns, nil
}

func applyCapture(ev core.Event, st *board.State) (*board.State, error) {
	if !st.InBounds(ev.To) {
		return nil, newOutOfBoundsError(ev, ev.To)
	}
	ns := st.Clone()
	target := ns.PieceByID(ev.Target)
	if target == nil {
		// Already removed by a prior reaction: idempotent no-op.
		return ns, nil
	}
	ns.Remove(target.Pos())
	if attacker := ns.PieceByID(ev.Piece); attacker != nil {
		attacker.RecordCapture()
	}
	return ns, nil
}

func applyDestroy(ev core.Event, st *board.State) (*board.State, error) {
	if !st.InBounds(ev.At) {
		return nil, newOutOfBoundsError(ev, ev.At)
	}
	ns := st.Clone()
	target := ns.PieceByID(ev.Target)
	if target == nil {
		return ns, nil
	}
	ns.Remove(target.Pos())
	return ns, nil
}

func applyTransform(ev core.Event, st *board.State) (*board.State, error) {
	if !st.InBounds(ev.At) {
		return nil, newOutOfBoundsError(ev, ev.At)
	}
	if ev.NewPiece == nil {
		return nil, &RuntimeError{
			Code:    ErrCodeBadEvent,
			Message: "transform event carries no replacement piece",
			EventID: ev.ID,
			Kind:    ev.Kind,
		}
	}
	ns := st.Clone()
	if old := ns.PieceByID(ev.Piece); old != nil {
		ns.Remove(old.Pos())
	}
	if occ := ns.PieceAt(ev.At); occ != nil {
		// Another piece claimed the cell mid-chain; placing would break the
		// one-piece-per-cell invariant, so the transform fizzles.
		slog.Warn("transform cell occupied, no-op", "id", ev.ID, "at", ev.At.String(), "occupant", occ.PieceID())
		return ns, nil
	}
	// Place a clone, never the instance carried in the event payload.
	if err := ns.Place(ev.NewPiece.Clone(), ev.At); err != nil {
		return nil, err
	}
	return ns, nil
}

func applySwap(ev core.Event, st *board.State) (*board.State, error) {
	ns := st.Clone()
	a := ns.PieceByID(ev.Piece)
	b := ns.PieceByID(ev.Target)
	if a == nil || b == nil {
		// One side vanished mid-chain: nothing sensible to exchange.
		return ns, nil
	}
	if err := ns.Exchange(a.Pos(), b.Pos()); err != nil {
		return nil, err
	}
	return ns, nil
}

func applyTileChanged(ev core.Event, st *board.State) (*board.State, error) {
	if !st.InBounds(ev.At) {
		return nil, newOutOfBoundsError(ev, ev.At)
	}
	if ev.NewTile == nil {
		return nil, &RuntimeError{
			Code:    ErrCodeBadEvent,
			Message: "tile_changed event carries no replacement tile",
			EventID: ev.ID,
			Kind:    ev.Kind,
		}
	}
	ns := st.Clone()
	// A fresh clone per placement: the instance in the payload is never
	// installed, so no two cells (or states) alias one tile.
	if err := ns.SetTile(ev.NewTile.Clone(), ev.At); err != nil {
		return nil, err
	}
	return ns, nil
}
