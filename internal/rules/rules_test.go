package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
	"github.com/mereki/gambit/internal/rules"
)

func boardWith(t *testing.T, placements map[core.Coord]core.Piece) *board.State {
	t.Helper()
	reg := catalog.NewRegistry()
	st, err := board.NewState(8, 8, core.White, func(c core.Coord) core.Tile {
		tile, err := reg.NewTile("plain", c)
		require.NoError(t, err)
		return tile
	})
	require.NoError(t, err)
	for at, p := range placements {
		require.NoError(t, st.Place(p, at))
	}
	return st
}

func piece(t *testing.T, name string, owner core.Color, at core.Coord) core.Piece {
	t.Helper()
	p, err := catalog.NewRegistry().NewPiece(name, owner, at)
	require.NoError(t, err)
	return p
}

func TestCheckMove_AcceptsGeometricCandidate(t *testing.T) {
	st := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "rook", core.White, core.Coord{X: 0, Y: 0}),
	})
	r := rules.NewBasicRules("king")
	assert.NoError(t, r.CheckMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}}))
}

func TestCheckMove_Rejections(t *testing.T) {
	st := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "rook", core.White, core.Coord{X: 0, Y: 0}),
		{X: 7, Y: 7}: piece(t, "rook", core.Black, core.Coord{X: 7, Y: 7}),
		{X: 0, Y: 4}: piece(t, "pawn", core.White, core.Coord{X: 0, Y: 4}),
	})
	r := rules.NewBasicRules("king")

	cases := []struct {
		name string
		mv   engine.Move
	}{
		{"empty source", engine.Move{From: core.Coord{X: 3, Y: 3}, To: core.Coord{X: 3, Y: 4}}},
		{"opponent's piece", engine.Move{From: core.Coord{X: 7, Y: 7}, To: core.Coord{X: 7, Y: 5}}},
		{"unreachable destination", engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 5, Y: 5}}},
		{"blocked by own piece", engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 4}}},
		{"out of bounds", engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 9}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := r.CheckMove(st, tc.mv)
			require.Error(t, err)
			assert.True(t, rules.IsIllegalMoveError(err))
		})
	}
}

func TestLegalMoves_OnlyCurrentPlayerAndDeterministic(t *testing.T) {
	st := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "king", core.White, core.Coord{X: 0, Y: 0}),
		{X: 7, Y: 7}: piece(t, "king", core.Black, core.Coord{X: 7, Y: 7}),
	})
	r := rules.NewBasicRules("king")

	moves := r.LegalMoves(st)
	require.NotEmpty(t, moves)
	for _, mv := range moves {
		assert.Equal(t, core.Coord{X: 0, Y: 0}, mv.From, "only white's king may move")
	}

	again := r.LegalMoves(st)
	assert.Equal(t, moves, again)
}

func TestOutcome_RoyalElimination(t *testing.T) {
	r := rules.NewBasicRules("king")

	both := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "king", core.White, core.Coord{X: 0, Y: 0}),
		{X: 7, Y: 7}: piece(t, "king", core.Black, core.Coord{X: 7, Y: 7}),
	})
	assert.False(t, r.Outcome(both).Over)

	whiteOnly := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "king", core.White, core.Coord{X: 0, Y: 0}),
		{X: 7, Y: 7}: piece(t, "rook", core.Black, core.Coord{X: 7, Y: 7}),
	})
	outcome := r.Outcome(whiteOnly)
	assert.True(t, outcome.Over)
	assert.Equal(t, core.White, outcome.Winner)

	neither := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "rook", core.White, core.Coord{X: 0, Y: 0}),
	})
	outcome = r.Outcome(neither)
	assert.True(t, outcome.Over)
	assert.Equal(t, core.NoColor, outcome.Winner, "both royals gone is a draw")
}

func TestOutcome_SeesThroughAbilityWrappers(t *testing.T) {
	reg := catalog.NewRegistry()
	king, err := reg.NewPiece("king", core.Black, core.Coord{X: 7, Y: 7})
	require.NoError(t, err)
	king, err = reg.Wrap("shielded", king)
	require.NoError(t, err)

	st := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "king", core.White, core.Coord{X: 0, Y: 0}),
	})
	require.NoError(t, st.Place(king, core.Coord{X: 7, Y: 7}))

	r := rules.NewBasicRules("king")
	assert.False(t, r.Outcome(st).Over, "a wrapped king still counts as a royal")
}

func TestOutcome_ConfigurableRoyalName(t *testing.T) {
	st := boardWith(t, map[core.Coord]core.Piece{
		{X: 0, Y: 0}: piece(t, "queen", core.White, core.Coord{X: 0, Y: 0}),
	})
	r := rules.NewBasicRules("queen")
	outcome := r.Outcome(st)
	assert.True(t, outcome.Over)
	assert.Equal(t, core.White, outcome.Winner)
}
