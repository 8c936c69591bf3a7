package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/namedump/internal/store"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	HashFlags
	Database string
}

// StatsResult is the per-extension breakdown of an index.
type StatsResult struct {
	Algorithm  string                 `json:"algorithm"`
	Total      int                    `json:"total"`
	Extensions []store.ExtensionCount `json:"extensions"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the SQLite name index by extension",
		Long: `Print how many names the index holds per extension, most common first.

Example:
  namedump stats --db names.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	opts.HashFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
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
	counts, err := st.Stats(ctx, alg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stats", err)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if counts == nil {
		counts = []store.ExtensionCount{}
	}

	result := StatsResult{Algorithm: alg.Name(), Total: total, Extensions: counts}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if f.IsJSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, c := range counts {
		ext := c.Extension
		if ext == "" {
			ext = "(none)"
		}
		fmt.Fprintf(w, "%8d %s\n", c.Count, ext)
	}
	fmt.Fprintf(w, "%8d total (%s)\n", total, alg.Name())
	return nil
}
