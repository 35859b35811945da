package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/query"
)

// HashReport is the JSON payload for the hash command.
type HashReport struct {
	File string `json:"file"`
	Hash string `json:"hash"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the canonical content hash of query documents",
		Long: `Hash query documents.

The hash is a SHA-256 over the canonical (sorted, NFC-normalized)
encoding of the normalized query, so two clients holding the same query
in different key orders agree on one value. Deferred documents have no
hash and report an error.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runHash(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reports := make([]HashReport, 0, len(files))
	for _, file := range files {
		res, err := validateDocument(formatter, file)
		if err != nil {
			return err
		}
		if res.Deferred {
			_ = formatter.Error(ErrCodeGeneric, "deferred document has no hash", "")
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: deferred document has no hash", file))
		}

		hash, err := query.Hash(res.Query)
		if err != nil {
			return WrapExitError(ExitCommandError, "hash failed", err)
		}
		reports = append(reports, HashReport{File: file, Hash: hash})
	}

	if opts.Format == "json" {
		return formatter.Success(reports)
	}
	for _, r := range reports {
		if len(files) > 1 {
			fmt.Fprintf(formatter.Writer, "%s  %s\n", r.Hash, r.File)
		} else {
			fmt.Fprintln(formatter.Writer, r.Hash)
		}
	}
	return nil
}
