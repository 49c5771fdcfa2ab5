package core

import "fmt"

// Kind tags the closed set of event variants. New variants require a new
// constant, a Payload case, and a transition case — the set is closed by
// design; open extensibility lives in listeners, not in the vocabulary.
type Kind int

const (
	KindUnknown Kind = iota
	// KindMove relocates a piece from one cell to another.
	KindMove
	// KindCapture removes the target piece; the attacker's follow-up
	// relocation is a separate KindMove event in the same package.
	KindCapture
	// KindDestroy removes a piece for a non-capture reason.
	KindDestroy
	// KindTransform replaces a piece with a new one at the same cell
	// (promotion, morphing, shedding an ability layer).
	KindTransform
	// KindSwap exchanges two pieces' cells.
	KindSwap
	// KindTileChanged replaces a cell's tile.
	KindTileChanged
	// KindTurnStart through KindGameOver are lifecycle markers. They leave
	// the board untouched but flow through the pipeline and into the log so
	// listeners can react to turn boundaries.
	KindTurnStart
	KindTurnEnd
	KindTurnAdvanced
	KindTimeExpired
	KindGameOver
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindCapture:
		return "capture"
	case KindDestroy:
		return "destroy"
	case KindTransform:
		return "transform"
	case KindSwap:
		return "swap"
	case KindTileChanged:
		return "tile_changed"
	case KindTurnStart:
		return "turn_start"
	case KindTurnEnd:
		return "turn_end"
	case KindTurnAdvanced:
		return "turn_advanced"
	case KindTimeExpired:
		return "time_expired"
	case KindGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// ParseKind converts the serialized form back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := KindMove; k <= KindGameOver; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown event kind %q", s)
}

// Event is one atomic state change, self-describing and immutable once the
// dispatcher has stamped Seq and ID. The variant is tagged by Kind; only the
// fields belonging to that variant are populated (see the constructors).
//
// Source is the authoring extension's listener id (or SourcePlayer /
// SourceManager for externally authored events). It is the mechanism
// extensions use to recognize events they themselves emitted, which prevents
// infinite self-triggering.
type Event struct {
	// Identity, stamped by the dispatcher when the event enters the worklist.
	ID  string
	Seq int64

	// Authorship.
	Source          string
	Actor           Color
	PlayerInitiated bool
	Note            string

	Kind Kind

	// Piece is the primary entity id (mover, attacker, destroyed piece,
	// transformed piece, swap side A). Target is the secondary entity id
	// (capture target, swap side B).
	Piece  string
	Target string

	// From/To frame Move, Capture and Swap. At locates Destroy, Transform
	// and TileChanged.
	From Coord
	To   Coord
	At   Coord

	// Reason describes a Destroy for humans and logs.
	Reason string

	// NewPiece and NewTile carry replacement entities for Transform and
	// TileChanged. The transition function clones them before placement;
	// the instances held here are never installed on a board.
	NewPiece Piece
	NewTile  Tile

	// Player and Turn frame the lifecycle markers. For TurnAdvanced, Player
	// is the next player; for GameOver it is the losing player.
	Player Color
	Turn   int
}

// Well-known source ids for events not authored by a listener.
const (
	SourcePlayer  = "player"
	SourceManager = "manager"
)

// NewMove builds a Move event relocating pieceID from one cell to another.
func NewMove(source string, actor Color, pieceID string, from, to Coord) Event {
	return Event{
		Kind:   KindMove,
		Source: source,
		Actor:  actor,
		Piece:  pieceID,
		From:   from,
		To:     to,
		Note:   fmt.Sprintf("move %s %s->%s", pieceID, from, to),
	}
}

// NewCapture builds a Capture event: attacker at from removes target at to.
func NewCapture(source string, actor Color, attackerID, targetID string, from, to Coord) Event {
	return Event{
		Kind:   KindCapture,
		Source: source,
		Actor:  actor,
		Piece:  attackerID,
		Target: targetID,
		From:   from,
		To:     to,
		Note:   fmt.Sprintf("capture %s by %s at %s", targetID, attackerID, to),
	}
}

// NewDestroy builds a Destroy event removing targetID at the given cell.
func NewDestroy(source string, actor Color, targetID string, at Coord, reason string) Event {
	return Event{
		Kind:   KindDestroy,
		Source: source,
		Actor:  actor,
		Target: targetID,
		At:     at,
		Reason: reason,
		Note:   fmt.Sprintf("destroy %s at %s: %s", targetID, at, reason),
	}
}

// NewTransform builds a Transform event replacing oldID with newPiece at the
// given cell.
func NewTransform(source string, actor Color, oldID string, newPiece Piece, at Coord) Event {
	return Event{
		Kind:     KindTransform,
		Source:   source,
		Actor:    actor,
		Piece:    oldID,
		NewPiece: newPiece,
		At:       at,
		Note:     fmt.Sprintf("transform %s into %s at %s", oldID, newPiece.Name(), at),
	}
}

// NewSwap builds a Swap event exchanging the cells of two pieces.
func NewSwap(source string, actor Color, aID, bID string, posA, posB Coord) Event {
	return Event{
		Kind:   KindSwap,
		Source: source,
		Actor:  actor,
		Piece:  aID,
		Target: bID,
		From:   posA,
		To:     posB,
		Note:   fmt.Sprintf("swap %s %s with %s %s", aID, posA, bID, posB),
	}
}

// NewTileChanged builds a TileChanged event installing a clone of newTile at
// the given cell.
func NewTileChanged(source string, newTile Tile, at Coord) Event {
	return Event{
		Kind:    KindTileChanged,
		Source:  source,
		NewTile: newTile,
		At:      at,
		Note:    fmt.Sprintf("tile at %s becomes %s", at, newTile.Name()),
	}
}

// NewTurnStart builds a TurnStart lifecycle marker.
func NewTurnStart(source string, player Color, turn int) Event {
	return Event{
		Kind:   KindTurnStart,
		Source: source,
		Actor:  player,
		Player: player,
		Turn:   turn,
		Note:   fmt.Sprintf("turn %d starts for %s", turn, player),
	}
}

// NewTurnEnd builds a TurnEnd lifecycle marker.
func NewTurnEnd(source string, player Color, turn int) Event {
	return Event{
		Kind:   KindTurnEnd,
		Source: source,
		Actor:  player,
		Player: player,
		Turn:   turn,
		Note:   fmt.Sprintf("turn %d ends for %s", turn, player),
	}
}

// NewTurnAdvanced builds a TurnAdvanced event handing play to next.
func NewTurnAdvanced(source string, next Color, turn int) Event {
	return Event{
		Kind:   KindTurnAdvanced,
		Source: source,
		Actor:  next,
		Player: next,
		Turn:   turn,
		Note:   fmt.Sprintf("turn %d passes to %s", turn, next),
	}
}

// NewTimeExpired builds a TimeExpired lifecycle marker for player.
func NewTimeExpired(source string, player Color) Event {
	return Event{
		Kind:   KindTimeExpired,
		Source: source,
		Actor:  player,
		Player: player,
		Note:   fmt.Sprintf("time expired for %s", player),
	}
}

// NewGameOver builds a GameOver lifecycle marker naming the losing player.
func NewGameOver(source string, loser Color) Event {
	return Event{
		Kind:   KindGameOver,
		Source: source,
		Player: loser,
		Note:   fmt.Sprintf("game over, %s loses", loser),
	}
}
