package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mereki/gambit/internal/catalog"
	"github.com/mereki/gambit/internal/setup"
)

// ValidationResult holds validation results for one or more setup files.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one failed file with its reason.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <setup.yaml|dir>...",
		Short: "Validate setup documents without playing",
		Long: `Validate setup documents against the schema and the entity catalog
without building a board or resolving anything.

Checks YAML strictness, the embedded schema (coordinates, player colors,
board dimensions), and that every piece, tile, and ability name resolves
in the catalog. Directories are walked for .yaml and .yml files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, paths []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := collectYAMLFiles(paths)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "collect setup files", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNotFound, "no setup files found", nil)
		return NewExitError(ExitCommandError, "no setup files found")
	}

	registry := catalog.NewRegistry()
	result := ValidationResult{Valid: true, Files: len(files)}

	for _, path := range files {
		formatter.VerboseLog("validating %s", path)
		doc, err := setup.Load(path)
		if err == nil {
			_, err = setup.Build(doc, registry)
		}
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{Path: path, Message: err.Error()})
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ %d setup file(s) valid\n", result.Files)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		for _, ve := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", ve.Path, ve.Message)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", len(result.Errors)))
	}
	return nil
}

// collectYAMLFiles expands the argument list: files pass through, directories
// are walked for .yaml/.yml entries. Results are sorted for stable output.
func collectYAMLFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(p))
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// rawSetup reads a setup file verbatim for persistence alongside the match.
func rawSetup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
