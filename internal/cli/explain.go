package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/query"
)

// ExplainReport is the JSON payload for the explain command.
type ExplainReport struct {
	File    string `json:"file"`
	Hash    string `json:"hash"`
	Summary string `json:"summary"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <file>",
		Short: "Describe a query document in human-readable form",
		Long: `Explain a query document.

Prints each namespace with its filters, ordering, field selection, and
pagination window rendered as readable text, plus the canonical hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	res, err := validateDocument(formatter, file)
	if err != nil {
		return err
	}
	if res.Deferred {
		fmt.Fprintln(formatter.Writer, "deferred (no query)")
		return nil
	}

	hash, err := query.Hash(res.Query)
	if err != nil {
		return WrapExitError(ExitCommandError, "hash failed", err)
	}
	summary := query.Render(res.Query)

	if opts.Format == "json" {
		return formatter.Success(ExplainReport{File: file, Hash: hash, Summary: summary})
	}

	fmt.Fprintln(formatter.Writer, summary)
	fmt.Fprintf(formatter.Writer, "hash: %s\n", hash)
	return nil
}
