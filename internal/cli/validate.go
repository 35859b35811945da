package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/facet/query"
)

// FileReport holds the validation outcome for one document.
type FileReport struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Deferred bool   `json:"deferred,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Code     string `json:"code,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ValidationReport holds validation results across all input files.
type ValidationReport struct {
	Files  []FileReport `json:"files"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate query documents",
		Long: `Validate query documents without producing normalized output.

Each file is loaded by extension (.json, .yaml, .yml, .cue) and checked
against the query shape rules. A null document reports as deferred and
counts as valid.

Exit codes:
  0 - All documents valid (or deferred)
  1 - One or more documents invalid
  2 - Command error (missing file, unreadable input, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	report := ValidationReport{Files: make([]FileReport, 0, len(files))}
	for _, file := range files {
		fr, err := validateFile(opts, file)
		if err != nil {
			return err
		}
		report.Files = append(report.Files, fr)
		if fr.Valid {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if opts.Format == "json" {
		if err := outputJSONReport(formatter, report); err != nil {
			return err
		}
	} else {
		outputTextReport(formatter, report)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d document(s) invalid", report.Failed))
	}
	return nil
}

// validateFile loads and validates one document. Load errors abort the
// whole command; validation errors become part of the report.
func validateFile(opts *RootOptions, file string) (FileReport, error) {
	raw, err := LoadDocument(file)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return FileReport{}, WrapExitError(ExitCommandError,
				fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message), err)
		}
		return FileReport{}, WrapExitError(ExitCommandError, "load failed", err)
	}

	res, verr := query.Validate(raw)
	if verr != nil {
		qe, ok := query.AsQueryError(verr)
		if !ok {
			return FileReport{}, WrapExitError(ExitCommandError, "validation failed", verr)
		}
		opts.Logger.Debug("document invalid",
			zap.String("file", file),
			zap.String("kind", string(qe.Kind)),
			zap.String("path", qe.Path))
		return FileReport{
			File:    file,
			Valid:   false,
			Code:    MapKindToErrorCode(qe.Kind),
			Kind:    string(qe.Kind),
			Path:    qe.Path,
			Message: qe.Message,
		}, nil
	}

	if res.Deferred {
		return FileReport{File: file, Valid: true, Deferred: true}, nil
	}

	hash, err := query.Hash(res.Query)
	if err != nil {
		return FileReport{}, WrapExitError(ExitCommandError, "hash failed", err)
	}
	opts.Logger.Debug("document valid", zap.String("file", file), zap.String("hash", hash))
	return FileReport{File: file, Valid: true, Hash: hash}, nil
}

func outputJSONReport(formatter *OutputFormatter, report ValidationReport) error {
	if report.Failed == 0 {
		return formatter.Success(report)
	}

	first := firstFailure(report)
	return writeJSON(formatter, CLIResponse{
		Status: "error",
		Data:   report,
		Error: &CLIError{
			Code:    first.Code,
			Message: first.Message,
			Path:    first.Path,
		},
	})
}

func outputTextReport(formatter *OutputFormatter, report ValidationReport) {
	w := formatter.Writer
	for _, fr := range report.Files {
		switch {
		case fr.Deferred:
			fmt.Fprintf(w, "- %s (deferred)\n", fr.File)
		case fr.Valid:
			fmt.Fprintf(w, "✓ %s\n", fr.File)
			formatter.VerboseLog("  hash %s", fr.Hash)
		default:
			fmt.Fprintf(w, "✗ %s\n", fr.File)
			fmt.Fprintf(w, "  %s %s at %s: %s\n", fr.Code, fr.Kind, fr.Path, fr.Message)
		}
	}

	fmt.Fprintln(w)
	if report.Failed > 0 {
		fmt.Fprintf(w, "%d valid, %d invalid\n", report.Passed, report.Failed)
		return
	}
	fmt.Fprintf(w, "✓ All %d document(s) valid\n", report.Passed)
}

func firstFailure(report ValidationReport) FileReport {
	for _, fr := range report.Files {
		if !fr.Valid {
			return fr
		}
	}
	return FileReport{}
}
