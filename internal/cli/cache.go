package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/snapshot"
	"github.com/roach88/facet/query"
)

// CacheOptions holds flags shared by the cache subcommands.
type CacheOptions struct {
	*RootOptions
	DB string // snapshot database path
}

// CacheEntry is the JSON payload for cache ls.
type CacheEntry struct {
	Hash      string `json:"hash"`
	Canonical string `json:"canonical"`
	Revisions int64  `json:"revisions"`
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and update the local snapshot store",
		Long: `Work with the SQLite snapshot store that caches the last results
seen for each query, keyed by canonical hash.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "facet.db", "snapshot database path")

	cmd.AddCommand(newCachePutCommand(opts))
	cmd.AddCommand(newCacheGetCommand(opts))
	cmd.AddCommand(newCacheLsCommand(opts))

	return cmd
}

func newCachePutCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <query-file> <result.json>",
		Short: "Store a result snapshot for a query",
		Long: `Validate a query document and store a result payload under its
canonical hash. Re-putting an identical payload does not create a new
revision.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCachePut(opts, args[0], args[1], cmd)
		},
	}
}

func newCacheGetCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <query-file>",
		Short:         "Print the latest cached result for a query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheGet(opts, args[0], cmd)
		},
	}
}

func newCacheLsCommand(opts *CacheOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ls",
		Short:         "List cached queries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheLs(opts, cmd)
		},
	}
}

func runCachePut(opts *CacheOptions, queryFile, resultFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	q, err := cacheQuery(formatter, queryFile)
	if err != nil {
		return err
	}

	resultData, err := os.ReadFile(resultFile)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("read result file %s", resultFile), err)
	}
	var result any
	if err := json.Unmarshal(resultData, &result); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("parse result file %s", resultFile), err)
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Put(cmd.Context(), q, result)
	if err != nil {
		return WrapExitError(ExitCommandError, "store snapshot", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"id":       snap.ID.String(),
			"hash":     snap.QueryHash,
			"revision": snap.Revision,
		})
	}
	fmt.Fprintf(formatter.Writer, "stored %s revision %d (snapshot %s)\n", snap.QueryHash, snap.Revision, snap.ID)
	return nil
}

func runCacheGet(opts *CacheOptions, queryFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	q, err := cacheQuery(formatter, queryFile)
	if err != nil {
		return err
	}
	hash, err := query.Hash(q)
	if err != nil {
		return WrapExitError(ExitCommandError, "hash failed", err)
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Get(cmd.Context(), hash)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no snapshot for %s", hash), err)
	}

	var result any
	if err := snap.Decode(&result); err != nil {
		return WrapExitError(ExitCommandError, "decode snapshot payload", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"hash":       snap.QueryHash,
			"revision":   snap.Revision,
			"created_at": snap.CreatedAt,
			"result":     result,
		})
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encode result", err)
	}
	formatter.VerboseLog("hash %s revision %d created %s", snap.QueryHash, snap.Revision, snap.CreatedAt)
	fmt.Fprintln(formatter.Writer, string(encoded))
	return nil
}

func runCacheLs(opts *CacheOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Queries(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "list queries", err)
	}

	if opts.Format == "json" {
		out := make([]CacheEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, CacheEntry{Hash: e.Hash, Canonical: e.Canonical, Revisions: e.Revisions})
		}
		return formatter.Success(out)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No cached queries.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%s  rev %d  %s\n", e.Hash, e.Revisions, e.Canonical)
	}
	return nil
}

// cacheQuery loads and validates a query document for cache use.
// Deferred documents are rejected, there is nothing to key on.
func cacheQuery(formatter *OutputFormatter, file string) (*query.Query, error) {
	res, err := validateDocument(formatter, file)
	if err != nil {
		return nil, err
	}
	if res.Deferred {
		_ = formatter.Error(ErrCodeGeneric, "deferred document cannot be cached", "")
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: deferred document cannot be cached", file))
	}
	return res.Query, nil
}

// openStore opens the snapshot store at the configured path.
func openStore(opts *CacheOptions) (*snapshot.Store, error) {
	store, err := snapshot.Open(opts.DB, snapshot.WithLogger(opts.Logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("open snapshot store %s", opts.DB), err)
	}
	return store, nil
}
