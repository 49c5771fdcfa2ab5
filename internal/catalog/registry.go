package catalog

import (
	"fmt"
	"sort"

	"github.com/mereki/gambit/internal/core"
)

// pieceSpec binds a catalog name to its material value and move generator.
type pieceSpec struct {
	value int
	gen   moveGen
}

var builtinPieces = map[string]pieceSpec{
	"pawn":   {value: 1, gen: pawnMoves},
	"knight": {value: 3, gen: stepMoves(knightJumps)},
	"bishop": {value: 3, gen: rayMoves(diagonals)},
	"rook":   {value: 5, gen: rayMoves(orthogonals)},
	"queen":  {value: 9, gen: rayMoves(royals)},
	"king":   {value: 0, gen: stepMoves(royals)},
}

var builtinTiles = map[string]func(core.Coord) core.Tile{
	"plain":     newPlainTile,
	"promotion": newPromotionTile,
}

var builtinAbilities = map[string]func(core.Piece) core.Piece{
	"volatile": NewVolatile,
	"shielded": NewShielded,
	"phoenix":  NewPhoenix,
}

// NewBuiltinPiece constructs a builtin piece without a Registry. Unknown
// names yield an inert zero-value piece rather than nil, so chain events
// built from configured names never inject a nil into the transition.
func NewBuiltinPiece(name string, owner core.Color, pos core.Coord) core.Piece {
	spec, ok := builtinPieces[name]
	if !ok {
		return newPiece(name, owner, pos, 0, nil)
	}
	return newPiece(name, owner, pos, spec.value, spec.gen)
}

// Registry is the catalog's factory surface. It implements
// core.EntityFactory for the engine-facing packages (store decode, setup
// building) and adds ability wrapping for setup documents.
type Registry struct {
	pieces    map[string]pieceSpec
	tiles     map[string]func(core.Coord) core.Tile
	abilities map[string]func(core.Piece) core.Piece
}

// NewRegistry returns a registry preloaded with the builtin pieces
// (pawn, knight, bishop, rook, queen, king), tiles (plain, promotion) and
// abilities (volatile, shielded, phoenix).
func NewRegistry() *Registry {
	r := &Registry{
		pieces:    make(map[string]pieceSpec, len(builtinPieces)),
		tiles:     make(map[string]func(core.Coord) core.Tile, len(builtinTiles)),
		abilities: make(map[string]func(core.Piece) core.Piece, len(builtinAbilities)),
	}
	for name, spec := range builtinPieces {
		r.pieces[name] = spec
	}
	for name, ctor := range builtinTiles {
		r.tiles[name] = ctor
	}
	for name, ctor := range builtinAbilities {
		r.abilities[name] = ctor
	}
	return r
}

// NewPiece builds a piece by catalog name.
func (r *Registry) NewPiece(name string, owner core.Color, pos core.Coord) (core.Piece, error) {
	spec, ok := r.pieces[name]
	if !ok {
		return nil, fmt.Errorf("unknown piece %q (have %v)", name, r.PieceNames())
	}
	return newPiece(name, owner, pos, spec.value, spec.gen), nil
}

// NewTile builds a tile by catalog name.
func (r *Registry) NewTile(name string, pos core.Coord) (core.Tile, error) {
	ctor, ok := r.tiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown tile %q (have %v)", name, r.TileNames())
	}
	return ctor(pos), nil
}

// Wrap layers the named ability around inner. Wrapping preserves the inner
// piece's identity; only behavior and value change.
func (r *Registry) Wrap(ability string, inner core.Piece) (core.Piece, error) {
	ctor, ok := r.abilities[ability]
	if !ok {
		return nil, fmt.Errorf("unknown ability %q (have %v)", ability, r.AbilityNames())
	}
	return ctor(inner), nil
}

// PieceNames lists the registered piece kinds, sorted.
func (r *Registry) PieceNames() []string { return sortedKeys(r.pieces) }

// TileNames lists the registered tile kinds, sorted.
func (r *Registry) TileNames() []string { return sortedKeys(r.tiles) }

// AbilityNames lists the registered ability kinds, sorted.
func (r *Registry) AbilityNames() []string { return sortedKeys(r.abilities) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
