package catalog

import (
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// abilityBase is the common wrapper layer: it owns exactly one inner piece
// and forwards every capability it does not override, so a wrapped piece is
// indistinguishable from a bare one except through the overridden behavior
// and the additive value.
//
// Identity is forwarded — wrapping never changes which piece this is. The
// wrapper's own identity (ListenerID) is derived from the ability kind and
// the bearer id, which keeps it stable across clones.
type abilityBase struct {
	inner    core.Piece
	kind     string
	ownValue int
}

func (a *abilityBase) Inner() core.Piece { return a.inner }

func (a *abilityBase) PieceID() string     { return a.inner.PieceID() }
func (a *abilityBase) Name() string        { return a.inner.Name() }
func (a *abilityBase) Owner() core.Color   { return a.inner.Owner() }
func (a *abilityBase) Pos() core.Coord     { return a.inner.Pos() }
func (a *abilityBase) SetPos(c core.Coord) { a.inner.SetPos(c) }

// Value is value(inner) + this layer's own contribution, so the total is
// independent of wrap order.
func (a *abilityBase) Value() int { return a.inner.Value() + a.ownValue }

func (a *abilityBase) Moves(s core.Snapshot) []core.Coord { return a.inner.Moves(s) }
func (a *abilityBase) MovesMade() int                     { return a.inner.MovesMade() }
func (a *abilityBase) CapturesMade() int                  { return a.inner.CapturesMade() }
func (a *abilityBase) RecordMove()                        { a.inner.RecordMove() }
func (a *abilityBase) RecordCapture()                     { a.inner.RecordCapture() }

// Listener reports this layer's own extension point. The base declares
// none; listening abilities override. Forwarding inner's listener here
// would double-count chain layers during collection.
func (a *abilityBase) Listener() core.Listener { return nil }

// listenerID is "<kind>:<bearer>", e.g. "volatile:white-rook-d4".
func (a *abilityBase) listenerID() string {
	return fmt.Sprintf("%s:%s", a.kind, a.inner.PieceID())
}

// Volatile makes its bearer explode when captured or destroyed: every
// occupied neighboring cell receives a Destroy chain event. A volatile
// neighbor caught in the blast explodes in turn; the source-id guard stops
// each layer from reacting to its own blast.
type Volatile struct {
	abilityBase
}

// NewVolatile wraps inner with the volatile ability.
func NewVolatile(inner core.Piece) core.Piece {
	return &Volatile{abilityBase{inner: inner, kind: "volatile", ownValue: 2}}
}

func (v *Volatile) Clone() core.Piece {
	return &Volatile{abilityBase{inner: v.inner.Clone(), kind: v.kind, ownValue: v.ownValue}}
}

func (v *Volatile) Listener() core.Listener { return v }
func (v *Volatile) ListenerID() string      { return v.listenerID() }
func (v *Volatile) Priority() int           { return 50 }

func (v *Volatile) Before(ev core.Event, ctx core.HookContext) core.Reaction {
	return core.Unchanged()
}

func (v *Volatile) After(ev core.Event, ctx core.HookContext) []core.Event {
	var center core.Coord
	switch {
	case ev.Kind == core.KindCapture && ev.Target == v.PieceID():
		center = ev.To
	case ev.Kind == core.KindDestroy && ev.Target == v.PieceID():
		center = ev.At
	default:
		return nil
	}

	var blast []core.Event
	for _, n := range center.Neighbors() {
		if !ctx.State.InBounds(n) {
			continue
		}
		if occ := ctx.State.PieceAt(n); occ != nil {
			blast = append(blast, core.NewDestroy(v.listenerID(), v.Owner(), occ.PieceID(), n, "caught in blast"))
		}
	}
	return blast
}

// Shielded absorbs one capture aimed at its bearer. Instead of mutating
// hook-side state, the shield replaces the Capture with a Transform that
// sheds its own layer: the bearer survives unshielded, and the consumption
// is itself a canonical logged event.
type Shielded struct {
	abilityBase
}

// NewShielded wraps inner with the shielded ability.
func NewShielded(inner core.Piece) core.Piece {
	return &Shielded{abilityBase{inner: inner, kind: "shielded", ownValue: 1}}
}

func (s *Shielded) Clone() core.Piece {
	return &Shielded{abilityBase{inner: s.inner.Clone(), kind: s.kind, ownValue: s.ownValue}}
}

func (s *Shielded) Listener() core.Listener { return s }
func (s *Shielded) ListenerID() string      { return s.listenerID() }

// The shield must verdict before damage-reactive abilities observe the
// capture, hence the early priority.
func (s *Shielded) Priority() int { return 10 }

func (s *Shielded) Before(ev core.Event, ctx core.HookContext) core.Reaction {
	if ev.Kind != core.KindCapture || ev.Target != s.PieceID() {
		return core.Unchanged()
	}
	bearer := ctx.State.PieceByID(s.PieceID())
	if bearer == nil {
		return core.Unchanged()
	}
	shed := s.inner.Clone()
	return core.ReplaceWith(
		core.NewTransform(s.listenerID(), s.Owner(), s.PieceID(), shed, bearer.Pos()),
	)
}

func (s *Shielded) After(ev core.Event, ctx core.HookContext) []core.Event {
	return nil
}

// Phoenix rebirths its bearer after destruction: the Destroy resolves
// normally, then a chain Transform places a fresh pawn on the vacated cell.
// The rebirth event carries the phoenix's own source id, so the reborn
// piece is not re-triggered by its own creation.
type Phoenix struct {
	abilityBase
	rebornAs string
}

// NewPhoenix wraps inner with the phoenix ability.
func NewPhoenix(inner core.Piece) core.Piece {
	return &Phoenix{
		abilityBase: abilityBase{inner: inner, kind: "phoenix", ownValue: 3},
		rebornAs:    "pawn",
	}
}

func (p *Phoenix) Clone() core.Piece {
	return &Phoenix{
		abilityBase: abilityBase{inner: p.inner.Clone(), kind: p.kind, ownValue: p.ownValue},
		rebornAs:    p.rebornAs,
	}
}

func (p *Phoenix) Listener() core.Listener { return p }
func (p *Phoenix) ListenerID() string      { return p.listenerID() }
func (p *Phoenix) Priority() int           { return 80 }

func (p *Phoenix) Before(ev core.Event, ctx core.HookContext) core.Reaction {
	return core.Unchanged()
}

func (p *Phoenix) After(ev core.Event, ctx core.HookContext) []core.Event {
	if ev.Kind != core.KindDestroy || ev.Target != p.PieceID() {
		return nil
	}
	reborn := NewBuiltinPiece(p.rebornAs, p.Owner(), ev.At)
	return []core.Event{
		core.NewTransform(p.listenerID(), p.Owner(), p.PieceID(), reborn, ev.At),
	}
}
