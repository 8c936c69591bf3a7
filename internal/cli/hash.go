package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/namehash"
)

// HashOptions holds flags for the hash command.
type HashOptions struct {
	*RootOptions
	HashFlags
	Encoding string // host code page the names are stored in, e.g. shift_jis
	NFC      bool   // normalize to NFC before encoding
}

// HashResult is one hashed name.
type HashResult struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HashOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hash [names...]",
		Short: "Hash names the way the host archive does",
		Long: `Print the "$HASH" placeholder stem for each name.

Names are read from the arguments, or one per line from stdin when none are
given. Names are UTF-8 on input; --encoding re-encodes them into the code
page the host stores them in before hashing.

Examples:
  namedump hash tex/a.dds
  namedump hash --hash lfsr sound/bgm.nsf
  namedump hash --profile zestiria --encoding shift_jis "テスト.txt"
  namedump hash < name_db.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(opts, args, cmd)
		},
	}

	opts.HashFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "re-encode names before hashing (e.g. shift_jis, windows-1252)")
	cmd.Flags().BoolVar(&opts.NFC, "nfc", false, "normalize names to Unicode NFC before hashing")

	return cmd
}

func runHash(opts *HashOptions, args []string, cmd *cobra.Command) error {
	alg, err := opts.algorithm()
	if err != nil {
		return err
	}

	encode := func(s string) ([]byte, error) { return []byte(s), nil }
	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return WrapExitError(ExitCommandError, "unknown encoding", err)
		}
		encode = func(s string) ([]byte, error) {
			return enc.NewEncoder().Bytes([]byte(s))
		}
	}

	names := args
	if len(names) == 0 {
		names, err = catalog.ReadNames(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read names", err)
		}
	}

	results := make([]HashResult, 0, len(names))
	for _, name := range names {
		if opts.NFC {
			name = norm.NFC.String(name)
		}
		b, err := encode(name)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot encode %q as %s", name, opts.Encoding), err)
		}
		results = append(results, HashResult{
			Name:        name,
			Placeholder: namehash.Format(alg.Sum(b), alg.Width()),
		})
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	f.VerboseLog("hashed %d name(s) with %s", len(results), alg.Name())
	if f.IsJSON() {
		return f.Success(results)
	}
	w := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", r.Placeholder, r.Name)
	}
	return nil
}
