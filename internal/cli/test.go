package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mereki/gambit/internal/harness"
)

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test run result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run scenario files through the conformance harness",
		Long: `Run scenario files through the full pipeline: build the setup, drive the
flow through the match manager, verify the persisted log replays to the
identical board, and evaluate the scenario's assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenario)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(rootOpts, cmd, args, filter)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only run scenarios whose name matches this glob")

	return cmd
}

func runTests(opts *RootOptions, cmd *cobra.Command, paths []string, filter string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := collectYAMLFiles(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "collect scenario files", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNotFound, "no scenario files found", nil)
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, path := range files {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("%s: %v", path, err), nil)
			return WrapExitError(ExitCommandError, "load scenario", err)
		}

		if filter != "" {
			match, globErr := filepath.Match(filter, scenario.Name)
			if globErr != nil {
				_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("bad filter %q: %v", filter, globErr), nil)
				return WrapExitError(ExitCommandError, "bad filter", globErr)
			}
			if !match {
				formatter.VerboseLog("skipping %s (filtered)", scenario.Name)
				continue
			}
		}

		formatter.VerboseLog("running %s", scenario.Name)
		run, err := harness.Run(scenario)
		if err != nil {
			result.Scenarios = append(result.Scenarios, ScenarioResult{
				Name:   scenario.Name,
				Pass:   false,
				Errors: []string{err.Error()},
			})
			result.Failed++
			result.Total++
			continue
		}

		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:   scenario.Name,
			Pass:   run.Pass,
			Errors: run.Errors,
		})
		result.Total++
		if run.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if err := outputTestResult(formatter, result); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total))
	}
	return nil
}

func outputTestResult(formatter *OutputFormatter, result TestResult) error {
	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: result})
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			fmt.Fprintf(formatter.Writer, "✓ %s\n", sr.Name)
			continue
		}
		fmt.Fprintf(formatter.Writer, "✗ %s\n", sr.Name)
		for _, msg := range sr.Errors {
			fmt.Fprintf(formatter.Writer, "    %s\n", msg)
		}
	}
	fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	return nil
}
