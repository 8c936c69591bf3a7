package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	HashFlags
}

// QueryResult is the lookup outcome for one placeholder.
type QueryResult struct {
	Placeholder string `json:"placeholder"`
	Name        string `json:"name,omitempty"`
	Known       bool   `json:"known"`
}

// unknownName is printed for placeholders the catalog cannot resolve.
const unknownName = "<unknown>"

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <catalog> <$HASH.ext>...",
		Short: "Look up placeholders in a catalog",
		Long: `Resolve "$HASH.ext" placeholder file names against a name catalog.

For 32-bit hashes the extension must match the recorded name's extension.

Exit codes:
  0 - Every placeholder was resolved
  1 - One or more placeholders are unknown
  2 - Command error (unreadable catalog, bad flags)

Examples:
  namedump query name_db.txt '$3DD3626C.dds'
  namedump query --hash lfsr name_db.txt '$FF06270EE554E57B.dds'`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1:], cmd)
		},
	}

	opts.HashFlags.register(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, catalogPath string, placeholders []string, cmd *cobra.Command) error {
	alg, err := opts.algorithm()
	if err != nil {
		return err
	}
	dict, err := loadDictionary(catalogPath, alg)
	if err != nil {
		return err
	}

	results := make([]QueryResult, 0, len(placeholders))
	unknown := 0
	for _, p := range placeholders {
		name, ok := dict.LookupPlaceholder(p)
		if !ok {
			unknown++
		}
		results = append(results, QueryResult{Placeholder: p, Name: name, Known: ok})
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	f.VerboseLog("catalog %s holds %d name(s)", catalogPath, dict.Len())

	if f.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: results}
		if unknown > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: CodeUnknownName, Message: fmt.Sprintf("%d placeholder(s) unknown", unknown)}
		}
		if err := f.Respond(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range results {
			name := r.Name
			if !r.Known {
				name = unknownName
			}
			fmt.Fprintf(w, "%s %s\n", r.Placeholder, name)
		}
	}

	if unknown > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d placeholder(s) unknown", unknown))
	}
	return nil
}
