package catalog

import (
	"fmt"

	"github.com/mereki/gambit/internal/core"
)

// tile is the concrete terrain value every cell carries. Plain tiles
// declare no listener; terrain effects embed tile and opt in.
type tile struct {
	id   string
	name string
	pos  core.Coord
}

func tileID(name string, pos core.Coord) string {
	return fmt.Sprintf("tile-%s-%c%d", name, 'a'+rune(pos.X), pos.Y+1)
}

func newTile(name string, pos core.Coord) tile {
	return tile{id: tileID(name, pos), name: name, pos: pos}
}

func (t *tile) TileID() string          { return t.id }
func (t *tile) Name() string            { return t.name }
func (t *tile) Pos() core.Coord         { return t.pos }
func (t *tile) SetPos(c core.Coord)     { t.pos = c }
func (t *tile) Value() int              { return 0 }
func (t *tile) Listener() core.Listener { return nil }

type plainTile struct {
	tile
}

func newPlainTile(pos core.Coord) core.Tile {
	return &plainTile{tile: newTile("plain", pos)}
}

func (t *plainTile) Clone() core.Tile {
	cp := *t
	return &cp
}

// promotionTile transforms a piece of one catalog kind into another when it
// finishes a move on the tile — the classic last-rank pawn promotion,
// expressed as a terrain effect instead of a special case in the engine.
type promotionTile struct {
	tile
	promotesFrom string
	promotesTo   string
}

func newPromotionTile(pos core.Coord) core.Tile {
	return &promotionTile{
		tile:         newTile("promotion", pos),
		promotesFrom: "pawn",
		promotesTo:   "queen",
	}
}

func (t *promotionTile) Clone() core.Tile {
	cp := *t
	return &cp
}

func (t *promotionTile) Listener() core.Listener { return t }

func (t *promotionTile) ListenerID() string { return t.id }

// Promotion reacts late so piece abilities settle the move first.
func (t *promotionTile) Priority() int { return 100 }

func (t *promotionTile) Before(ev core.Event, ctx core.HookContext) core.Reaction {
	return core.Unchanged()
}

func (t *promotionTile) After(ev core.Event, ctx core.HookContext) []core.Event {
	if ev.Kind != core.KindMove || ev.To != t.pos {
		return nil
	}
	arrived := ctx.State.PieceAt(t.pos)
	if arrived == nil {
		return nil
	}
	// The arriving piece may be wrapped; the catalog kind lives innermost.
	if core.Unwrap(arrived).Name() != t.promotesFrom {
		return nil
	}
	promoted := NewBuiltinPiece(t.promotesTo, arrived.Owner(), t.pos)
	return []core.Event{
		core.NewTransform(t.id, arrived.Owner(), arrived.PieceID(), promoted, t.pos),
	}
}
