package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// SortOptions holds flags for the sort command.
type SortOptions struct {
	*RootOptions
	HashFlags
	Output string
}

// SortResult summarizes a sort run written to a file.
type SortResult struct {
	Output string `json:"output"`
	Names  int    `json:"names"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SortOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sort <catalog>",
		Short: "Write a sorted, deduplicated dictionary",
		Long: `Read a name catalog and write its names in byte order, keeping the
first name seen for each hash and dropping "$HASH" placeholders.

Without --output the dictionary goes to stdout. --output may name the input
file to sort it in place.

Examples:
  namedump sort name_db.txt > dictionary.txt
  namedump sort name_db.txt -o name_db.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(opts, args[0], cmd)
		},
	}

	opts.HashFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runSort(opts *SortOptions, catalogPath string, cmd *cobra.Command) error {
	alg, err := opts.algorithm()
	if err != nil {
		return err
	}
	dict, err := loadDictionary(catalogPath, alg)
	if err != nil {
		return err
	}

	if opts.Output == "" {
		if err := dict.WriteSorted(cmd.OutOrStdout()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write dictionary", err)
		}
		return nil
	}

	// Write beside the target and rename so an in-place sort never truncates
	// its own input.
	tmp, err := os.CreateTemp(filepath.Dir(opts.Output), ".namedump-sort-*")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output", err)
	}
	defer os.Remove(tmp.Name())
	if err := dict.WriteSorted(tmp); err != nil {
		tmp.Close()
		return WrapExitError(ExitCommandError, "failed to write dictionary", err)
	}
	if err := tmp.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write dictionary", err)
	}
	if err := os.Rename(tmp.Name(), opts.Output); err != nil {
		return WrapExitError(ExitCommandError, "failed to write dictionary", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if f.IsJSON() {
		return f.Success(SortResult{Output: opts.Output, Names: dict.Len()})
	}
	return f.Success(fmt.Sprintf("wrote %d name(s) to %s", dict.Len(), opts.Output))
}
