package manager_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
	"github.com/mereki/gambit/internal/manager"
	"github.com/mereki/gambit/internal/rules"
	"github.com/mereki/gambit/internal/store"
)

// twoKingsBoard is a minimal playable position: two kings and a white rook
// that can reach the black king in one move.
func twoKingsBoard(t *testing.T) *board.State {
	t.Helper()
	reg := catalog.NewRegistry()
	st, err := board.NewState(8, 8, core.White, func(c core.Coord) core.Tile {
		tile, err := reg.NewTile("plain", c)
		require.NoError(t, err)
		return tile
	})
	require.NoError(t, err)

	for _, pl := range []struct {
		name  string
		owner core.Color
		at    core.Coord
	}{
		{"king", core.White, core.Coord{X: 4, Y: 0}},
		{"rook", core.White, core.Coord{X: 0, Y: 0}},
		{"king", core.Black, core.Coord{X: 0, Y: 7}},
		{"pawn", core.Black, core.Coord{X: 4, Y: 6}},
	} {
		p, err := reg.NewPiece(pl.name, pl.owner, pl.at)
		require.NoError(t, err)
		require.NoError(t, st.Place(p, pl.at))
	}
	return st
}

func TestPlay_CommitsMoveAndTurnRollover(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	events, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	require.NoError(t, err)

	kinds := make([]core.Kind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []core.Kind{core.KindMove, core.KindTurnEnd, core.KindTurnAdvanced, core.KindTurnStart}, kinds)

	assert.Equal(t, core.Black, mgr.State().CurrentPlayer())
	assert.Equal(t, 2, mgr.State().TurnNumber())
	assert.Equal(t, 1, mgr.Ply())
	finished, _ := mgr.Finished()
	assert.False(t, finished)
}

func TestPlay_RejectsIllegalMoveWithoutCommitting(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	_, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 5, Y: 5}})
	require.Error(t, err)
	assert.True(t, rules.IsIllegalMoveError(err))
	assert.Equal(t, 0, mgr.Ply())
	assert.Equal(t, core.White, mgr.State().CurrentPlayer())
}

func TestPlay_RejectsOpponentPiece(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	_, err := mgr.Play(context.Background(), engine.Move{From: core.Coord{X: 4, Y: 6}, To: core.Coord{X: 4, Y: 5}})
	require.Error(t, err)
	assert.True(t, rules.IsIllegalMoveError(err))
}

func TestPlay_GameOverSkipsRollover(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	// Rook a1 takes the black king on a8.
	events, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 7}})
	require.NoError(t, err)

	last := events[len(events)-1]
	assert.Equal(t, core.KindGameOver, last.Kind)
	assert.Equal(t, core.SourceManager, last.Source)

	for _, ev := range events {
		assert.NotEqual(t, core.KindTurnAdvanced, ev.Kind, "no rollover after a terminal move")
	}

	finished, outcome := mgr.Finished()
	assert.True(t, finished)
	assert.Equal(t, core.White, outcome.Winner)

	_, err = mgr.Play(ctx, engine.Move{From: core.Coord{X: 4, Y: 0}, To: core.Coord{X: 4, Y: 1}})
	assert.Error(t, err, "a finished match accepts no more plays")
}

func TestTimeout_EndsMatchAgainstPlayer(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	events, err := mgr.Timeout(ctx, core.White)
	require.NoError(t, err)

	kinds := make([]core.Kind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []core.Kind{core.KindTimeExpired, core.KindGameOver}, kinds)

	finished, outcome := mgr.Finished()
	assert.True(t, finished)
	assert.Equal(t, core.Black, outcome.Winner)
	assert.Equal(t, "time expired", outcome.Reason)
}

func TestSimulate_DoesNotCommit(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))

	res, err := mgr.Simulate(engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Log)
	assert.NotNil(t, res.State.PieceAt(core.Coord{X: 0, Y: 5}))

	// The authoritative state is untouched and the move is still available.
	assert.Equal(t, 0, mgr.Ply())
	assert.NotNil(t, mgr.State().PieceAt(core.Coord{X: 0, Y: 0}))
	_, err = mgr.Play(context.Background(), engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	assert.NoError(t, err)
}

func TestSimulate_ChecksLegality(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	_, err := mgr.Simulate(engine.Move{From: core.Coord{X: 3, Y: 3}, To: core.Coord{X: 4, Y: 4}})
	require.Error(t, err)
	assert.True(t, rules.IsIllegalMoveError(err))
}

func TestUndoRedo_CursorSemantics(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	assert.Error(t, mgr.Undo(ctx), "nothing to undo at the initial position")

	_, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	require.NoError(t, err)
	require.Equal(t, 1, mgr.Ply())

	require.NoError(t, mgr.Undo(ctx))
	assert.Equal(t, 0, mgr.Ply())
	assert.NotNil(t, mgr.State().PieceAt(core.Coord{X: 0, Y: 0}))
	assert.Equal(t, core.White, mgr.State().CurrentPlayer())

	require.NoError(t, mgr.Redo(ctx))
	assert.Equal(t, 1, mgr.Ply())
	assert.NotNil(t, mgr.State().PieceAt(core.Coord{X: 0, Y: 5}))

	assert.Error(t, mgr.Redo(ctx), "nothing further to redo")
}

func TestUndo_ReopensFinishedMatch(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	_, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 7}})
	require.NoError(t, err)
	finished, _ := mgr.Finished()
	require.True(t, finished)

	require.NoError(t, mgr.Undo(ctx))
	finished, _ = mgr.Finished()
	assert.False(t, finished)

	// Redo re-derives the terminal outcome.
	require.NoError(t, mgr.Redo(ctx))
	finished, outcome := mgr.Finished()
	assert.True(t, finished)
	assert.Equal(t, core.White, outcome.Winner)
}

func TestPlay_AfterUndoDiscardsForwardHistory(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	_, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	require.NoError(t, err)
	require.NoError(t, mgr.Undo(ctx))

	_, err = mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	assert.Error(t, mgr.Redo(ctx), "the diverging play overwrote the undone branch")
	assert.NotNil(t, mgr.State().PieceAt(core.Coord{X: 0, Y: 3}))
}

func TestFullLog_AccumulatesAcrossPlies(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	ctx := context.Background()

	_, err := mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	require.NoError(t, err)
	_, err = mgr.Play(ctx, engine.Move{From: core.Coord{X: 4, Y: 6}, To: core.Coord{X: 4, Y: 5}})
	require.NoError(t, err)

	log := mgr.FullLog()
	assert.Len(t, log, 8, "two plies of move + three lifecycle markers each")
	for _, ev := range log {
		assert.NotEmpty(t, ev.ID)
		assert.NotZero(t, ev.Seq)
	}
}

func TestManager_PersistsThroughEventLog(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	mgr := manager.New(twoKingsBoard(t),
		manager.WithEventLog(st),
		manager.WithMatchID("match-mgr-persist"),
	)
	require.NoError(t, mgr.Register(ctx, "two-kings", "name: two-kings\n"))

	_, err = mgr.Play(ctx, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 5}})
	require.NoError(t, err)

	count, err := st.CountEvents(ctx, "match-mgr-persist")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// Undo truncates the persisted ply; redo writes it back.
	require.NoError(t, mgr.Undo(ctx))
	count, err = st.CountEvents(ctx, "match-mgr-persist")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, mgr.Redo(ctx))
	count, err = st.CountEvents(ctx, "match-mgr-persist")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestLegalMoves_DelegatesToRules(t *testing.T) {
	mgr := manager.New(twoKingsBoard(t))
	moves := mgr.LegalMoves()
	require.NotEmpty(t, moves)
	for _, mv := range moves {
		p := mgr.State().PieceAt(mv.From)
		require.NotNil(t, p)
		assert.Equal(t, core.White, p.Owner())
	}
}

func TestNew_GeneratesUniqueMatchIDs(t *testing.T) {
	a := manager.New(twoKingsBoard(t))
	b := manager.New(twoKingsBoard(t))
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
