package testutil

import (
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// StubPiece is a minimal core.Piece for engine-level tests: fixed identity,
// a scriptable move list, and an optional attached listener. The catalog's
// real pieces are deliberately not used in engine tests so the engine's
// behavior is pinned independently of catalog changes.
type StubPiece struct {
	ID       string
	Kind     string
	Side     core.Color
	At       core.Coord
	Val      int
	MoveList []core.Coord
	Hook     core.Listener

	movesMade    int
	capturesMade int
}

// NewStubPiece builds a stub with an id derived from kind and side.
func NewStubPiece(kind string, side core.Color, at core.Coord) *StubPiece {
	return &StubPiece{
		ID:   fmt.Sprintf("%s-%s-%d-%d", side, kind, at.X, at.Y),
		Kind: kind,
		Side: side,
		At:   at,
		Val:  1,
	}
}

func (p *StubPiece) PieceID() string                  { return p.ID }
func (p *StubPiece) Name() string                     { return p.Kind }
func (p *StubPiece) Owner() core.Color                { return p.Side }
func (p *StubPiece) Pos() core.Coord                  { return p.At }
func (p *StubPiece) SetPos(c core.Coord)              { p.At = c }
func (p *StubPiece) Value() int                       { return p.Val }
func (p *StubPiece) Moves(core.Snapshot) []core.Coord { return p.MoveList }
func (p *StubPiece) MovesMade() int                   { return p.movesMade }
func (p *StubPiece) CapturesMade() int                { return p.capturesMade }
func (p *StubPiece) RecordMove()                      { p.movesMade++ }
func (p *StubPiece) RecordCapture()                   { p.capturesMade++ }
func (p *StubPiece) Listener() core.Listener          { return p.Hook }

// Clone copies the stub by value. The attached listener is shared: test
// listeners key off event fields, not per-clone state.
func (p *StubPiece) Clone() core.Piece {
	cp := *p
	return &cp
}

// StubTile is a minimal core.Tile with an optional attached listener.
type StubTile struct {
	ID   string
	Kind string
	At   core.Coord
	Hook core.Listener
}

// NewStubTile builds a stub tile.
func NewStubTile(kind string, at core.Coord) *StubTile {
	return &StubTile{
		ID:   fmt.Sprintf("tile-%s-%d-%d", kind, at.X, at.Y),
		Kind: kind,
		At:   at,
	}
}

func (t *StubTile) TileID() string          { return t.ID }
func (t *StubTile) Name() string            { return t.Kind }
func (t *StubTile) Pos() core.Coord         { return t.At }
func (t *StubTile) SetPos(c core.Coord)     { t.At = c }
func (t *StubTile) Value() int              { return 0 }
func (t *StubTile) Listener() core.Listener { return t.Hook }

func (t *StubTile) Clone() core.Tile {
	cp := *t
	return &cp
}

// ScriptedListener delegates hooks to closures, defaulting to "unchanged"
// and "no chain" when a closure is nil.
type ScriptedListener struct {
	ID       string
	Prio     int
	BeforeFn func(ev core.Event, ctx core.HookContext) core.Reaction
	AfterFn  func(ev core.Event, ctx core.HookContext) []core.Event
}

func (l *ScriptedListener) ListenerID() string { return l.ID }
func (l *ScriptedListener) Priority() int      { return l.Prio }

func (l *ScriptedListener) Before(ev core.Event, ctx core.HookContext) core.Reaction {
	if l.BeforeFn == nil {
		return core.Unchanged()
	}
	return l.BeforeFn(ev, ctx)
}

func (l *ScriptedListener) After(ev core.Event, ctx core.HookContext) []core.Event {
	if l.AfterFn == nil {
		return nil
	}
	return l.AfterFn(ev, ctx)
}
