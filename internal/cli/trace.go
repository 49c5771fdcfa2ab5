package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/store"
)

// TraceEntry is one event in the trace timeline.
type TraceEntry struct {
	Ply    int    `json:"ply"`
	Seq    int64  `json:"seq"`
	ID     string `json:"id"`
	Source string `json:"source"`
	Actor  string `json:"actor"`
	Kind   string `json:"kind"`
	Note   string `json:"note,omitempty"`
}

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	MatchID  string       `json:"match_id"`
	Timeline []TraceEntry `json:"timeline"`
	Total    int          `json:"total"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var kindFilter string

	cmd := &cobra.Command{
		Use:   "trace <match-id>",
		Short: "Print a match's canonical event log",
		Long: `Print every persisted event of a match in logical order (ply, then seq
within the ply). Each line shows who authored the event and why it exists,
making causal chains visible: a capture followed by manager-authored
destroys is an ability reacting, not a player move.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, cmd, args[0], dbPath, kindFilter)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database holding the match (required)")
	cmd.Flags().StringVar(&kindFilter, "kind", "", "only show events of this kind")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *RootOptions, cmd *cobra.Command, matchID, dbPath, kindFilter string) error {
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
	entries, err := st.ReadLog(ctx, matchID, catalog.NewRegistry())
	if err != nil {
		_ = formatter.Error(ErrCodeStoreError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read log", err)
	}
	if len(entries) == 0 {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("no events for match %s", matchID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("no events for match %s", matchID))
	}

	result := TraceResult{MatchID: matchID, Timeline: []TraceEntry{}}
	for _, entry := range entries {
		ev := entry.Event
		if kindFilter != "" && ev.Kind.String() != kindFilter {
			continue
		}
		result.Timeline = append(result.Timeline, TraceEntry{
			Ply:    entry.Ply,
			Seq:    ev.Seq,
			ID:     ev.ID,
			Source: ev.Source,
			Actor:  ev.Actor.String(),
			Kind:   ev.Kind.String(),
			Note:   ev.Note,
		})
	}
	result.Total = len(result.Timeline)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "match %s: %d event(s)\n", matchID, result.Total)
	for _, te := range result.Timeline {
		fmt.Fprintf(formatter.Writer, "  ply %2d seq %2d  %-14s %-8s %s\n", te.Ply, te.Seq, te.Kind, te.Actor, te.Note)
		if formatter.Verbose {
			fmt.Fprintf(formatter.Writer, "      source=%s id=%s\n", te.Source, te.ID)
		}
	}
	return nil
}
