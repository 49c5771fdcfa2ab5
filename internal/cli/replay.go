package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/setup"
	"github.com/mereki/gambit/internal/store"
)

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	MatchID       string `json:"match_id"`
	Events        int    `json:"events"`
	FinalTurn     int    `json:"final_turn"`
	CurrentPlayer string `json:"current_player"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "replay <match-id>",
		Short: "Re-derive a match's final state from its persisted log",
		Long: `Rebuild the initial board from the match's stored setup document, then
re-apply the canonical event log in logical order. Every event's
content-addressed id is recomputed and checked, so tampered or corrupted
rows fail loudly instead of replaying into a divergent state.

Exit codes:
  0 - Replay succeeded and the log verified
  1 - Replay failed (corrupted log, stored setup no longer builds)
  2 - Command error (database or match not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd, args[0], dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database holding the match (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command, matchID, dbPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	ctx := context.Background()
	registry := catalog.NewRegistry()

	match, err := st.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("match %s not found", matchID), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("match %s not found", matchID))
		}
		_ = formatter.Error(ErrCodeStoreError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load match", err)
	}

	doc, err := setup.Parse([]byte(match.Setup))
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitFailure, "stored setup is invalid", err)
	}
	initial, err := setup.Build(doc, registry)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitFailure, "stored setup is invalid", err)
	}

	formatter.VerboseLog("replaying match %s from %s", matchID, dbPath)
	res, err := st.Replay(ctx, matchID, initial, registry)
	if err != nil {
		_ = formatter.Error(ErrCodeDiverged, err.Error(), nil)
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	result := ReplayResult{
		MatchID:       matchID,
		Events:        len(res.Log),
		FinalTurn:     res.State.TurnNumber(),
		CurrentPlayer: res.State.CurrentPlayer().String(),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ match %s replayed: %d events, turn %d, %s to play\n",
		result.MatchID, result.Events, result.FinalTurn, result.CurrentPlayer)
	return nil
}
