package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/core"
	"github.com/mereki/gambit/internal/engine"
	"github.com/mereki/gambit/internal/manager"
	"github.com/mereki/gambit/internal/setup"
	"github.com/mereki/gambit/internal/store"
)

// PlayResult is the JSON payload of the play command.
type PlayResult struct {
	MatchID  string   `json:"match_id"`
	Plies    int      `json:"plies"`
	Events   []string `json:"events"`
	Finished bool     `json:"finished"`
	Winner   string   `json:"winner,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	var moves []string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "play <setup.yaml>",
		Short: "Play a sequence of moves against a setup",
		Long: `Build the initial board from a setup document and resolve a sequence of
moves through the full pipeline. Moves use square notation, "a2-a4".

With --db, the match and its canonical event log are persisted and can be
replayed or traced later.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(rootOpts, cmd, args[0], moves, dbPath)
		},
	}

	cmd.Flags().StringSliceVar(&moves, "moves", nil, "moves to play, e.g. a2-a4,b7-b5")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to persist the match log")

	return cmd
}

func runPlay(opts *RootOptions, cmd *cobra.Command, setupPath string, moves []string, dbPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := setup.Load(setupPath)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid setup", err)
	}

	registry := catalog.NewRegistry()
	initial, err := setup.Build(doc, registry)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid setup", err)
	}

	mgrOpts := []manager.Option{}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "open database", err)
		}
		defer st.Close()
		mgrOpts = append(mgrOpts, manager.WithEventLog(st))
	}

	mgr := manager.New(initial, mgrOpts...)

	ctx := context.Background()
	if dbPath != "" {
		raw, readErr := rawSetup(setupPath)
		if readErr != nil {
			_ = formatter.Error(ErrCodeStoreError, readErr.Error(), nil)
			return WrapExitError(ExitCommandError, "register match", readErr)
		}
		if err := mgr.Register(ctx, doc.Name, raw); err != nil {
			_ = formatter.Error(ErrCodeStoreError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "register match", err)
		}
	}

	result := PlayResult{MatchID: mgr.ID()}
	for _, text := range moves {
		mv, err := ParseMove(text)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid move", err)
		}
		events, err := mgr.Play(ctx, mv)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
			return WrapExitError(ExitFailure, fmt.Sprintf("move %s rejected", text), err)
		}
		for _, ev := range events {
			result.Events = append(result.Events, ev.Note)
			formatter.VerboseLog("  [%d] %s", ev.Seq, ev.Note)
		}
		result.Plies++
		if finished, _ := mgr.Finished(); finished {
			break
		}
	}

	if finished, outcome := mgr.Finished(); finished {
		result.Finished = true
		result.Winner = outcome.Winner.String()
		result.Reason = outcome.Reason
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "match %s: %d plies, %d events\n", result.MatchID, result.Plies, len(result.Events))
	for _, note := range result.Events {
		fmt.Fprintf(formatter.Writer, "  %s\n", note)
	}
	if result.Finished {
		fmt.Fprintf(formatter.Writer, "finished: %s wins (%s)\n", result.Winner, result.Reason)
	}
	return nil
}

// ParseMove parses square notation ("a2-a4") into a move intent.
// Files are letters from 'a', ranks are 1-based numbers.
func ParseMove(s string) (engine.Move, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return engine.Move{}, fmt.Errorf("malformed move %q: want <from>-<to>, e.g. a2-a4", s)
	}
	from, err := ParseSquare(parts[0])
	if err != nil {
		return engine.Move{}, fmt.Errorf("malformed move %q: %w", s, err)
	}
	to, err := ParseSquare(parts[1])
	if err != nil {
		return engine.Move{}, fmt.Errorf("malformed move %q: %w", s, err)
	}
	return engine.Move{From: from, To: to}, nil
}

// ParseSquare parses one square ("a2") into a coordinate.
func ParseSquare(s string) (core.Coord, error) {
	if len(s) < 2 {
		return core.Coord{}, fmt.Errorf("malformed square %q", s)
	}
	file := s[0]
	if file < 'a' || file > 'z' {
		return core.Coord{}, fmt.Errorf("malformed square %q: bad file %q", s, string(file))
	}
	rank, err := strconv.Atoi(s[1:])
	if err != nil || rank < 1 {
		return core.Coord{}, fmt.Errorf("malformed square %q: bad rank", s)
	}
	return core.Coord{X: int(file - 'a'), Y: rank - 1}, nil
}
