package core

// Snapshot is the read surface listeners and move generators see. It is
// implemented by board.State; hooks must treat it as immutable.
type Snapshot interface {
	Width() int
	Height() int
	InBounds(Coord) bool
	// PieceAt returns the (possibly wrapped) piece occupying the cell, or
	// nil for an empty cell.
	PieceAt(Coord) Piece
	// TileAt returns the cell's tile. Every in-bounds cell has exactly one.
	TileAt(Coord) Tile
	// PieceByID resolves a piece by identity, or nil if absent.
	PieceByID(string) Piece
	CurrentPlayer() Color
	TurnNumber() int
}

// Piece is the capability surface of a board piece. Ability wrappers expose
// the same surface and must be behaviorally transparent for everything they
// do not override: callers cannot distinguish a wrapped piece from a bare one
// except through the overridden capability and the additive value.
type Piece interface {
	// PieceID is the identity of the underlying piece. Wrappers forward it
	// unchanged; wrapping never changes identity.
	PieceID() string
	// Name is the concrete catalog name ("pawn", "queen"). Wrappers forward.
	Name() string
	Owner() Color
	Pos() Coord
	// SetPos is called only by board mutation on run-owned clones. A piece's
	// stored position always equals the cell it occupies.
	SetPos(Coord)
	// Value is the piece's contribution to a side's evaluation. For a
	// wrapper this is value(inner) + the wrapper's own value, so stacking
	// order never changes the total.
	Value() int
	// Moves enumerates geometric move candidates. Higher-level legality
	// (king safety, win conditions) is the RuleSet's job.
	Moves(Snapshot) []Coord
	MovesMade() int
	CapturesMade() int
	RecordMove()
	RecordCapture()
	// Listener returns the extension point this layer declares, or nil.
	// This is a declared capability: discovery never probes concrete types.
	Listener() Listener
	// Clone deep-copies the piece, its counters, and every wrapper layer.
	// A clone shares no mutable state with the original.
	Clone() Piece
}

// Ability is a wrapper layer around exactly one inner piece. The wrapper
// owns its inner reference; unwrapping walks Inner() to the concrete piece.
type Ability interface {
	Piece
	Inner() Piece
}

// Unwrap walks an ability chain to the innermost concrete piece. Code that
// needs the real catalog type (a ruleset checking for a king) must unwrap
// fully rather than inspect wrapper layers.
func Unwrap(p Piece) Piece {
	for {
		a, ok := p.(Ability)
		if !ok {
			return p
		}
		p = a.Inner()
	}
}

// Tile is the capability surface of a board cell's terrain. Tiles may also
// declare listener behavior (terrain effects).
type Tile interface {
	TileID() string
	Name() string
	Pos() Coord
	SetPos(Coord)
	Value() int
	Listener() Listener
	Clone() Tile
}

// HookContext carries what a hook may inspect while observing an event.
// Before-hooks see the state the event would apply to; after-hooks see the
// new, already-mutated state.
type HookContext struct {
	State Snapshot
}

// Listener is the extension point capability. A listener may observe, veto
// or replace an event before it becomes canonical, and may chain follow-up
// events after it has been applied.
//
// Listeners must ignore events whose Source equals their own ListenerID —
// the dispatcher additionally enforces this centrally — so a reaction never
// re-triggers its own hook.
type Listener interface {
	// ListenerID identifies this extension point. It is stable across
	// state clones and is stamped as Source on every event the listener
	// emits.
	ListenerID() string
	// Priority orders hook execution; lower runs earlier. Ties preserve
	// board discovery order.
	Priority() int
	// Before observes a pending event and returns Unchanged, Veto, or
	// ReplaceWith(events).
	Before(ev Event, ctx HookContext) Reaction
	// After observes a canonical event and returns zero or more chained
	// events. It runs only after the event was applied.
	After(ev Event, ctx HookContext) []Event
}

// ReactionKind tags a before-hook's verdict.
type ReactionKind int

const (
	// ReactUnchanged lets the event pass to the next listener untouched.
	ReactUnchanged ReactionKind = iota
	// ReactVeto drops the event; no canonical effect occurs.
	ReactVeto
	// ReactReplace supersedes the event with the reaction's events, which
	// are processed before anything else pending.
	ReactReplace
)

// Reaction is a before-hook's verdict on a pending event.
type Reaction struct {
	Kind   ReactionKind
	Events []Event
}

// Unchanged reports that the listener does not alter the event.
func Unchanged() Reaction { return Reaction{Kind: ReactUnchanged} }

// Veto drops the event with no replacement.
func Veto() Reaction { return Reaction{Kind: ReactVeto} }

// ReplaceWith supersedes the event with the given events in order.
func ReplaceWith(events ...Event) Reaction {
	return Reaction{Kind: ReactReplace, Events: events}
}

// EntityFactory builds catalog entities by name. It is the boundary through
// which the core stays agnostic to which concrete piece and tile types
// exist; the catalog package provides the production implementation.
type EntityFactory interface {
	NewPiece(name string, owner Color, pos Coord) (Piece, error)
	NewTile(name string, pos Coord) (Tile, error)
}
