package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/namedump/internal/store"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	HashFlags
	Database string
}

// IndexResult summarizes one catalog import.
type IndexResult struct {
	Catalog  string `json:"catalog"`
	Database string `json:"database"`
	store.ImportStats
	Total int `json:"total"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index <catalog>",
		Short: "Import a catalog into the SQLite name index",
		Long: `Import every name of a catalog into a SQLite index, keyed by hash.

The database is created if it does not exist. Importing the same catalog
again adds nothing; names already indexed keep their first sequence number.

Examples:
  namedump index --db names.db name_db.txt
  namedump index --db names.db --hash lfsr name_db.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, args[0], cmd)
		},
	}

	opts.HashFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runIndex(opts *IndexOptions, catalogPath string, cmd *cobra.Command) error {
	alg, err := opts.algorithm()
	if err != nil {
		return err
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	stats, err := st.ImportCatalog(ctx, catalogPath, alg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to import catalog", err)
	}
	total, err := st.Count(ctx, alg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count names", err)
	}
	slog.Debug("catalog indexed", "catalog", catalogPath, "added", stats.Added, "total", total)

	result := IndexResult{Catalog: catalogPath, Database: opts.Database, ImportStats: stats, Total: total}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if f.IsJSON() {
		return f.Success(result)
	}
	return f.Success(fmt.Sprintf("indexed %s: %d line(s), %d added, %d duplicate(s), %d total",
		catalogPath, stats.Lines, stats.Added, stats.Duplicates, total))
}

func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
