package harness

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
	"github.com/mereki/gambit/internal/manager"
	"github.com/mereki/gambit/internal/setup"
	"github.com/mereki/gambit/internal/store"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build the initial board from the inline setup document.
//  2. Open a fresh in-memory store and a manager with a pinned match id.
//  3. Drive the flow steps through the manager.
//  4. Replay the persisted log from scratch and compare against the live
//     board; a divergence fails the run.
//  5. Evaluate assertions against the trace and final board.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	registry := catalog.NewRegistry()

	initial, err := setup.Build(&scenario.Setup, registry)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: failed to create in-memory store: %w", scenario.Name, err)
	}
	defer st.Close()

	// The match id is pinned to the scenario name so persisted rows, traces
	// and golden files stay identical across runs.
	matchID := "match-" + scenario.Name
	mgr := manager.New(initial,
		manager.WithEventLog(st),
		manager.WithMatchID(matchID),
	)

	setupYAML, err := yaml.Marshal(&scenario.Setup)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if err := mgr.Register(ctx, scenario.Setup.Name, string(setupYAML)); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		stepNo := i + 1
		switch {
		case step.Move != nil:
			events, err := mgr.Play(ctx, engine.Move{
				From: step.Move.From.Coord(),
				To:   step.Move.To.Coord(),
			})
			if err != nil {
				return nil, fmt.Errorf("scenario %s: flow[%d]: %w", scenario.Name, i, err)
			}
			result.addTrace(stepNo, events)
		case step.Timeout != nil:
			player, err := core.ParseColor(step.Timeout.Player)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: flow[%d]: %w", scenario.Name, i, err)
			}
			events, err := mgr.Timeout(ctx, player)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: flow[%d]: %w", scenario.Name, i, err)
			}
			result.addTrace(stepNo, events)
		case step.Undo:
			if err := mgr.Undo(ctx); err != nil {
				return nil, fmt.Errorf("scenario %s: flow[%d]: %w", scenario.Name, i, err)
			}
		case step.Redo:
			if err := mgr.Redo(ctx); err != nil {
				return nil, fmt.Errorf("scenario %s: flow[%d]: %w", scenario.Name, i, err)
			}
		}
	}

	result.Log = mgr.FullLog()
	result.Final = mgr.State()

	// Determinism check: replaying the persisted log over a freshly built
	// initial board must land on the same position the live match reached.
	fresh, err := setup.Build(&scenario.Setup, registry)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: rebuild initial: %w", scenario.Name, err)
	}
	replayed, err := st.Replay(ctx, matchID, fresh, registry)
	if err != nil {
		result.AddError(fmt.Sprintf("replay failed: %v", err))
	} else if err := compareBoards(result.Final, replayed.State); err != nil {
		result.AddError(fmt.Sprintf("replay diverged: %v", err))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// compareBoards checks cell-by-cell equivalence of two states: occupant
// kind and owner plus tile name per cell, and the turn counter. Occupants
// compare by catalog name rather than id because a replayed Transform
// derives the replacement's id from its landing square, while the live
// piece keeps the id of its creation square.
func compareBoards(live, replayed *board.State) error {
	if live.Width() != replayed.Width() || live.Height() != replayed.Height() {
		return fmt.Errorf("size %dx%d vs %dx%d", live.Width(), live.Height(), replayed.Width(), replayed.Height())
	}
	for y := 0; y < live.Height(); y++ {
		for x := 0; x < live.Width(); x++ {
			c := core.Coord{X: x, Y: y}
			lp, rp := live.PieceAt(c), replayed.PieceAt(c)
			switch {
			case lp == nil && rp == nil:
			case lp == nil || rp == nil:
				return fmt.Errorf("cell %s: occupancy mismatch", c)
			case core.Unwrap(lp).Name() != core.Unwrap(rp).Name() || lp.Owner() != rp.Owner():
				return fmt.Errorf("cell %s: piece %s/%s vs %s/%s", c,
					lp.Owner(), core.Unwrap(lp).Name(), rp.Owner(), core.Unwrap(rp).Name())
			}
			lt, rt := live.TileAt(c), replayed.TileAt(c)
			if lt.Name() != rt.Name() {
				return fmt.Errorf("cell %s: tile %s vs %s", c, lt.Name(), rt.Name())
			}
		}
	}
	if live.TurnNumber() != replayed.TurnNumber() {
		return fmt.Errorf("turn %d vs %d", live.TurnNumber(), replayed.TurnNumber())
	}
	return nil
}
