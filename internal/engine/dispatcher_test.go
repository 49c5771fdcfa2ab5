package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
	"github.com/mereki/gambit/internal/testutil"
)

func emptyBoard(t *testing.T, w, h int) *board.State {
	t.Helper()
	st, err := board.NewState(w, h, core.White, func(c core.Coord) core.Tile {
		return testutil.NewStubTile("plain", c)
	})
	require.NoError(t, err)
	return st
}

func place(t *testing.T, st *board.State, p core.Piece, at core.Coord) {
	t.Helper()
	require.NoError(t, st.Place(p, at))
}

func TestResolveMove_PlainMove(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	mover := testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0})
	place(t, st, mover, core.Coord{X: 0, Y: 0})

	d := engine.New()
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	require.Len(t, res.Log, 1)
	ev := res.Log[0]
	assert.Equal(t, core.KindMove, ev.Kind)
	assert.Equal(t, int64(1), ev.Seq)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, core.SourcePlayer, ev.Source)
	assert.True(t, ev.PlayerInitiated)

	assert.Nil(t, res.State.PieceAt(core.Coord{X: 0, Y: 0}))
	require.NotNil(t, res.State.PieceAt(core.Coord{X: 0, Y: 3}))
	assert.Equal(t, 1, res.State.PieceAt(core.Coord{X: 0, Y: 3}).MovesMade())
}

func TestResolveMove_InputStateNeverMutated(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	mover := testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0})
	target := testutil.NewStubPiece("pawn", core.Black, core.Coord{X: 0, Y: 3})
	place(t, st, mover, core.Coord{X: 0, Y: 0})
	place(t, st, target, core.Coord{X: 0, Y: 3})

	d := engine.New()
	_, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	// The snapshot handed in still shows the pre-move position.
	assert.Equal(t, core.Piece(mover), st.PieceAt(core.Coord{X: 0, Y: 0}))
	assert.Equal(t, core.Piece(target), st.PieceAt(core.Coord{X: 0, Y: 3}))
	assert.Equal(t, 0, mover.MovesMade())
	assert.Equal(t, 0, mover.CapturesMade())
}

func TestResolveMove_CaptureThenMove(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})
	place(t, st, testutil.NewStubPiece("pawn", core.Black, core.Coord{X: 0, Y: 3}), core.Coord{X: 0, Y: 3})

	d := engine.New()
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	require.Len(t, res.Log, 2)
	assert.Equal(t, core.KindCapture, res.Log[0].Kind)
	assert.Equal(t, core.KindMove, res.Log[1].Kind)
	assert.Equal(t, int64(1), res.Log[0].Seq)
	assert.Equal(t, int64(2), res.Log[1].Seq)

	attacker := res.State.PieceAt(core.Coord{X: 0, Y: 3})
	require.NotNil(t, attacker)
	assert.Equal(t, "rook", attacker.Name())
	assert.Equal(t, 1, attacker.CapturesMade())
}

func TestResolveMove_EmptySourceIsNoOp(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	d := engine.New()

	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 2, Y: 2}, To: core.Coord{X: 3, Y: 3}})
	require.NoError(t, err)
	assert.Empty(t, res.Log)
}

func TestResolve_DeterministicAcrossRuns(t *testing.T) {
	build := func() *board.State {
		st := emptyBoard(t, 4, 4)
		place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})
		place(t, st, testutil.NewStubPiece("pawn", core.Black, core.Coord{X: 0, Y: 3}), core.Coord{X: 0, Y: 3})
		return st
	}
	mv := engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}}
	d := engine.New()

	first, err := d.ResolveMove(build(), mv)
	require.NoError(t, err)
	second, err := d.ResolveMove(build(), mv)
	require.NoError(t, err)

	require.Len(t, second.Log, len(first.Log))
	for i := range first.Log {
		assert.Equal(t, first.Log[i].ID, second.Log[i].ID)
		assert.Equal(t, first.Log[i].Seq, second.Log[i].Seq)
	}
}

func TestResolve_SeqRestartsPerResolution(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})
	d := engine.New()

	first, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 1}})
	require.NoError(t, err)
	second, err := d.ResolveMove(first.State, engine.Move{From: core.Coord{X: 0, Y: 1}, To: core.Coord{X: 0, Y: 2}})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Log[0].Seq)
	assert.Equal(t, int64(1), second.Log[0].Seq)
}

func TestDispatch_BeforeHooksRunInPriorityOrder(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	var order []string
	observe := func(id string) func(core.Event, core.HookContext) core.Reaction {
		return func(ev core.Event, ctx core.HookContext) core.Reaction {
			if ev.Kind == core.KindMove {
				order = append(order, id)
			}
			return core.Unchanged()
		}
	}

	late := testutil.NewStubPiece("watcher", core.Black, core.Coord{X: 3, Y: 3})
	late.Hook = &testutil.ScriptedListener{ID: "late", Prio: 90, BeforeFn: observe("late")}
	early := testutil.NewStubPiece("watcher", core.Black, core.Coord{X: 3, Y: 2})
	early.Hook = &testutil.ScriptedListener{ID: "early", Prio: 10, BeforeFn: observe("early")}
	mover := testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0})

	// Place the late listener first so discovery order alone would run it
	// first; priority must override.
	place(t, st, late, core.Coord{X: 3, Y: 3})
	place(t, st, early, core.Coord{X: 3, Y: 2})
	place(t, st, mover, core.Coord{X: 0, Y: 0})

	d := engine.New()
	_, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 1, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, order)
}

func TestDispatch_SelfAuthoredEventsAreInvisible(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	var seen []string
	listener := &testutil.ScriptedListener{
		ID: "reactor",
		BeforeFn: func(ev core.Event, ctx core.HookContext) core.Reaction {
			seen = append(seen, ev.Source)
			return core.Unchanged()
		},
		AfterFn: func(ev core.Event, ctx core.HookContext) []core.Event {
			if ev.Kind != core.KindMove {
				return nil
			}
			return []core.Event{
				core.NewDestroy("reactor", core.Black, "ghost", core.Coord{X: 1, Y: 1}, "reaction"),
			}
		},
	}
	bearer := testutil.NewStubPiece("watcher", core.Black, core.Coord{X: 3, Y: 3})
	bearer.Hook = listener
	place(t, st, bearer, core.Coord{X: 3, Y: 3})
	place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})

	d := engine.New()
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 1, Y: 0}})
	require.NoError(t, err)

	// The chained destroy is applied but never observed by its author.
	require.Len(t, res.Log, 2)
	assert.Equal(t, core.KindDestroy, res.Log[1].Kind)
	for _, src := range seen {
		assert.NotEqual(t, "reactor", src)
	}
}

func TestDispatch_VetoWithAbortChainDropsDependents(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	guard := testutil.NewStubPiece("guard", core.Black, core.Coord{X: 3, Y: 3})
	guard.Hook = &testutil.ScriptedListener{
		ID: "guard:black-guard-d4",
		BeforeFn: func(ev core.Event, ctx core.HookContext) core.Reaction {
			if ev.Kind == core.KindCapture {
				return core.Veto()
			}
			return core.Unchanged()
		},
	}
	place(t, st, guard, core.Coord{X: 3, Y: 3})
	place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})
	place(t, st, testutil.NewStubPiece("pawn", core.Black, core.Coord{X: 0, Y: 3}), core.Coord{X: 0, Y: 3})

	tracer := engine.NewRecordingTracer()
	d := engine.New(engine.WithTracer(tracer))
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	// Vetoed capture plus AbortChain: the dependent move never runs.
	assert.Empty(t, res.Log)
	assert.NotNil(t, res.State.PieceAt(core.Coord{X: 0, Y: 0}))
	assert.NotNil(t, res.State.PieceAt(core.Coord{X: 0, Y: 3}))
	require.Len(t, tracer.ByOp("vetoed"), 1)
	assert.Empty(t, tracer.ByOp("applied"))
}

func TestDispatch_VetoWithContinueChainKeepsRest(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	guard := testutil.NewStubPiece("guard", core.Black, core.Coord{X: 3, Y: 3})
	guard.Hook = &testutil.ScriptedListener{
		ID: "guard:black-guard-d4",
		BeforeFn: func(ev core.Event, ctx core.HookContext) core.Reaction {
			if ev.Kind == core.KindTurnEnd {
				return core.Veto()
			}
			return core.Unchanged()
		},
	}
	place(t, st, guard, core.Coord{X: 3, Y: 3})

	d := engine.New()
	res, err := d.ResolvePackage(st, core.ActionPackage{
		Events: []core.Event{
			core.NewTurnEnd(core.SourceManager, core.White, 1),
			core.NewTurnAdvanced(core.SourceManager, core.Black, 2),
		},
		Fallback: core.ContinueChain,
	})
	require.NoError(t, err)

	// The independent marker after the vetoed one still applies.
	require.Len(t, res.Log, 1)
	assert.Equal(t, core.KindTurnAdvanced, res.Log[0].Kind)
	assert.Equal(t, 2, res.State.TurnNumber())
}

func TestDispatch_ReplacementRunsBeforePending(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	deflector := testutil.NewStubPiece("deflector", core.Black, core.Coord{X: 0, Y: 3})
	deflector.Hook = &testutil.ScriptedListener{
		ID: "deflect:black-deflector-a4",
		BeforeFn: func(ev core.Event, ctx core.HookContext) core.Reaction {
			if ev.Kind == core.KindCapture && ev.Target == deflector.PieceID() {
				return core.ReplaceWith(
					core.NewDestroy("deflect:black-deflector-a4", core.Black, ev.Piece, ev.From, "deflected"),
				)
			}
			return core.Unchanged()
		},
	}
	attacker := testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0})
	place(t, st, deflector, core.Coord{X: 0, Y: 3})
	place(t, st, attacker, core.Coord{X: 0, Y: 0})

	d := engine.New()
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	// AbortChain cleared the pending move; the replacement destroy applied.
	require.Len(t, res.Log, 1)
	assert.Equal(t, core.KindDestroy, res.Log[0].Kind)
	assert.Equal(t, attacker.PieceID(), res.Log[0].Target)
	assert.Nil(t, res.State.PieceAt(core.Coord{X: 0, Y: 0}))
	assert.NotNil(t, res.State.PieceAt(core.Coord{X: 0, Y: 3}))
}

func TestDispatch_AfterChainObservesPostEventState(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	var sawMoverAtDestination bool
	watcher := testutil.NewStubPiece("watcher", core.Black, core.Coord{X: 3, Y: 3})
	watcher.Hook = &testutil.ScriptedListener{
		ID: "watch:black-watcher-d4",
		AfterFn: func(ev core.Event, ctx core.HookContext) []core.Event {
			if ev.Kind == core.KindMove {
				sawMoverAtDestination = ctx.State.PieceAt(ev.To) != nil
			}
			return nil
		},
	}
	place(t, st, watcher, core.Coord{X: 3, Y: 3})
	place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})

	d := engine.New()
	_, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 1, Y: 0}})
	require.NoError(t, err)
	assert.True(t, sawMoverAtDestination)
}

func TestDispatch_RemovedPieceStillReactsToItsRemoval(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	victim := testutil.NewStubPiece("bomb", core.Black, core.Coord{X: 0, Y: 3})
	victim.Hook = &testutil.ScriptedListener{
		ID: "bomb:" + victim.PieceID(),
		AfterFn: func(ev core.Event, ctx core.HookContext) []core.Event {
			if ev.Kind == core.KindCapture && ev.Target == victim.PieceID() {
				return []core.Event{
					core.NewDestroy("bomb:"+victim.PieceID(), core.Black, ev.Piece, ev.To, "last stand"),
				}
			}
			return nil
		},
	}
	attacker := testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0})
	place(t, st, victim, core.Coord{X: 0, Y: 3})
	place(t, st, attacker, core.Coord{X: 0, Y: 0})

	d := engine.New()
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 0, Y: 3}})
	require.NoError(t, err)

	// Capture applies, the victim's after-hook chains a destroy of the
	// attacker, and the pending move then fizzles on the missing mover.
	kinds := make([]core.Kind, len(res.Log))
	for i, ev := range res.Log {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []core.Kind{core.KindCapture, core.KindDestroy, core.KindMove}, kinds)
	assert.Nil(t, res.State.PieceAt(core.Coord{X: 0, Y: 0}))
	assert.Nil(t, res.State.PieceAt(core.Coord{X: 0, Y: 3}))
}

func TestDispatch_StepQuotaAbortsRunawayChains(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	ping := testutil.NewStubPiece("ping", core.White, core.Coord{X: 0, Y: 0})
	ping.Hook = &testutil.ScriptedListener{
		ID: "ping",
		AfterFn: func(ev core.Event, ctx core.HookContext) []core.Event {
			return []core.Event{core.NewDestroy("ping", core.White, "ghost", core.Coord{X: 1, Y: 1}, "echo")}
		},
	}
	pong := testutil.NewStubPiece("pong", core.Black, core.Coord{X: 3, Y: 3})
	pong.Hook = &testutil.ScriptedListener{
		ID: "pong",
		AfterFn: func(ev core.Event, ctx core.HookContext) []core.Event {
			return []core.Event{core.NewDestroy("pong", core.Black, "ghost", core.Coord{X: 2, Y: 2}, "echo")}
		},
	}
	place(t, st, ping, core.Coord{X: 0, Y: 0})
	place(t, st, pong, core.Coord{X: 3, Y: 3})

	d := engine.New(engine.WithMaxSteps(25))
	_, err := d.ResolveEvent(st, core.NewTurnStart(core.SourceManager, core.White, 1))
	require.Error(t, err)
	assert.True(t, engine.IsStepsExceededError(err))
}

func TestDispatch_HookPanicIsRecoveredAsUnchanged(t *testing.T) {
	st := emptyBoard(t, 4, 4)
	faulty := testutil.NewStubPiece("faulty", core.Black, core.Coord{X: 3, Y: 3})
	faulty.Hook = &testutil.ScriptedListener{
		ID: "faulty",
		BeforeFn: func(ev core.Event, ctx core.HookContext) core.Reaction {
			panic("broken extension")
		},
	}
	place(t, st, faulty, core.Coord{X: 3, Y: 3})
	place(t, st, testutil.NewStubPiece("rook", core.White, core.Coord{X: 0, Y: 0}), core.Coord{X: 0, Y: 0})

	tracer := engine.NewRecordingTracer()
	d := engine.New(engine.WithTracer(tracer))
	res, err := d.ResolveMove(st, engine.Move{From: core.Coord{X: 0, Y: 0}, To: core.Coord{X: 1, Y: 0}})
	require.NoError(t, err)

	// The move still applies; the fault is recorded.
	require.Len(t, res.Log, 1)
	assert.Equal(t, core.KindMove, res.Log[0].Kind)
	require.Len(t, tracer.ByOp("fault"), 1)
	assert.Equal(t, "faulty", tracer.ByOp("fault")[0].ListenerID)
}

func TestDispatch_MidChainListenerObservesLaterEvents(t *testing.T) {
	// A piece created by a chain reaction must be discovered for events
	// processed after its creation: the collection is rebuilt per event.
	st := emptyBoard(t, 4, 4)

	var spawnedSaw int
	spawnedHook := &testutil.ScriptedListener{
		ID: "spawned-watcher",
		BeforeFn: func(ev core.Event, ctx core.HookContext) core.Reaction {
			spawnedSaw++
			return core.Unchanged()
		},
	}
	spawned := testutil.NewStubPiece("sentinel", core.Black, core.Coord{X: 2, Y: 2})
	spawned.Hook = spawnedHook

	spawner := testutil.NewStubPiece("spawner", core.Black, core.Coord{X: 3, Y: 3})
	spawner.Hook = &testutil.ScriptedListener{
		ID: "spawner:black-spawner-d4",
		AfterFn: func(ev core.Event, ctx core.HookContext) []core.Event {
			if ev.Kind != core.KindTurnStart {
				return nil
			}
			return []core.Event{
				core.NewTransform("spawner:black-spawner-d4", core.Black, "nobody", spawned, core.Coord{X: 2, Y: 2}),
			}
		},
	}
	place(t, st, spawner, core.Coord{X: 3, Y: 3})

	d := engine.New()
	res, err := d.ResolvePackage(st, core.ActionPackage{
		Events: []core.Event{
			core.NewTurnStart(core.SourceManager, core.White, 1),
			core.NewTurnEnd(core.SourceManager, core.White, 1),
		},
		Fallback: core.ContinueChain,
	})
	require.NoError(t, err)

	require.Len(t, res.Log, 3)
	assert.Equal(t, core.KindTransform, res.Log[1].Kind)
	// The spawned sentinel existed for exactly one later event: turn_end.
	assert.Equal(t, 1, spawnedSaw)
}
