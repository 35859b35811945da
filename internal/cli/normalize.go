package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/query"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Canonical bool // emit the hash-input form instead of insertion order
	Pretty    bool // indent the output
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Print the normalized form of a query document",
		Long: `Normalize a query document and print its JSON encoding.

By default the output preserves the document's key order with all
options materialized. --canonical prints the sorted hash-input form
instead. --pretty indents either form.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "emit canonical (sorted, NFC) form")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "indent output")

	return cmd
}

func runNormalize(opts *NormalizeOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := validateDocument(formatter, file)
	if err != nil {
		return err
	}
	if res.Deferred {
		fmt.Fprintln(formatter.Writer, "null")
		return nil
	}

	encoded, err := query.EncodeJSON(res.Query)
	if err != nil {
		return WrapExitError(ExitCommandError, "encode failed", err)
	}
	if opts.Canonical {
		tree, err := query.ParseJSON(encoded)
		if err != nil {
			return WrapExitError(ExitCommandError, "re-parse failed", err)
		}
		encoded, err = query.MarshalCanonical(tree)
		if err != nil {
			return WrapExitError(ExitCommandError, "canonicalize failed", err)
		}
	}
	if opts.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, encoded, "", "  "); err != nil {
			return WrapExitError(ExitCommandError, "indent failed", err)
		}
		encoded = buf.Bytes()
	}

	fmt.Fprintln(formatter.Writer, string(encoded))
	return nil
}

// validateDocument loads and validates one document, emitting the
// error report on failure. Shared by normalize, hash, and explain.
func validateDocument(formatter *OutputFormatter, file string) (query.Result, error) {
	raw, err := LoadDocument(file)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, "")
			return query.Result{}, WrapExitError(ExitCommandError,
				fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message), err)
		}
		return query.Result{}, WrapExitError(ExitCommandError, "load failed", err)
	}

	res, verr := query.Validate(raw)
	if verr != nil {
		qe, ok := query.AsQueryError(verr)
		if !ok {
			return query.Result{}, WrapExitError(ExitCommandError, "validation failed", verr)
		}
		code := MapKindToErrorCode(qe.Kind)
		_ = formatter.Error(code, qe.Message, qe.Path)
		return query.Result{}, WrapExitError(ExitFailure,
			fmt.Sprintf("%s: %s at %s", code, qe.Kind, qe.Path), verr)
	}
	return res, nil
}
