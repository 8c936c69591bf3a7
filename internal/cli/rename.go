package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/namehash"
)

// RenameOptions holds flags for the rename command.
type RenameOptions struct {
	*RootOptions
	HashFlags
	DryRun bool
}

// Rename is one planned or applied file move, relative to the root.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RenameResult summarizes a rename run.
type RenameResult struct {
	Renamed []Rename `json:"renamed"`
	Unknown []string `json:"unknown,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
	DryRun  bool     `json:"dry_run"`
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rename <dir> <catalog>",
		Short: "Rename extracted $HASH.ext files to their real names",
		Long: `Walk an extracted archive directory and move every "$HASH.ext" file
to the path its catalog name gives, relative to <dir>.

Files whose hash is not in the catalog are left in place. Existing files
are never overwritten, and names that would escape <dir> are skipped.

Examples:
  namedump rename ./extracted name_db.txt --dry-run
  namedump rename --profile berseria ./extracted name_db.txt`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(opts, args[0], args[1], cmd)
		},
	}

	opts.HashFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the renames without moving anything")

	return cmd
}

func runRename(opts *RenameOptions, root, catalogPath string, cmd *cobra.Command) error {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("directory not found: %s", root))
	}
	alg, err := opts.algorithm()
	if err != nil {
		return err
	}
	dict, err := loadDictionary(catalogPath, alg)
	if err != nil {
		return err
	}

	result, err := renameTree(root, dict, opts.DryRun)
	if err != nil {
		return WrapExitError(ExitCommandError, "rename failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if f.IsJSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, r := range result.Renamed {
		fmt.Fprintf(w, "%s -> %s\n", r.From, r.To)
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "skipped %s\n", s)
	}
	verb := "renamed"
	if result.DryRun {
		verb = "would rename"
	}
	fmt.Fprintf(w, "%s %d file(s), %d unknown, %d skipped\n", verb, len(result.Renamed), len(result.Unknown), len(result.Skipped))
	return nil
}

// renameTree plans every rename first so that moves never feed back into
// the walk.
func renameTree(root string, dict *catalog.Dictionary, dryRun bool) (*RenameResult, error) {
	result := &RenameResult{Renamed: []Rename{}, DryRun: dryRun}

	var planned []Rename
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !namehash.IsPlaceholder(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		name, ok := dict.LookupPlaceholder(d.Name())
		if !ok {
			result.Unknown = append(result.Unknown, rel)
			return nil
		}
		to, ok := safeRelative(name)
		if !ok {
			result.Skipped = append(result.Skipped, rel)
			slog.Warn("catalog name escapes the directory", "file", rel, "name", name)
			return nil
		}
		planned = append(planned, Rename{From: rel, To: to})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(planned, func(i, j int) bool { return planned[i].From < planned[j].From })

	claimed := make(map[string]bool, len(planned))
	for _, r := range planned {
		dst := filepath.Join(root, filepath.FromSlash(r.To))
		if claimed[r.To] || exists(dst) {
			result.Skipped = append(result.Skipped, r.From)
			slog.Debug("rename target taken", "file", r.From, "target", r.To)
			continue
		}
		claimed[r.To] = true
		if !dryRun {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return nil, err
			}
			if err := os.Rename(filepath.Join(root, filepath.FromSlash(r.From)), dst); err != nil {
				return nil, err
			}
		}
		result.Renamed = append(result.Renamed, r)
	}
	return result, nil
}

// safeRelative turns a catalog name into a clean slash path that stays
// inside the rename root.
func safeRelative(name string) (string, bool) {
	p := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if p == "." || path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") || strings.Contains(p, ":") {
		return "", false
	}
	return p, true
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return !errors.Is(err, fs.ErrNotExist)
}
