package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/namedump/internal/profile"
)

// ProfilesOptions holds flags for the profiles command.
type ProfilesOptions struct {
	*RootOptions
	File string
}

// ProfileSummary is one listed profile.
type ProfileSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Arch        string   `json:"arch"`
	Hash        string   `json:"hash"`
	Catalog     string   `json:"catalog"`
	Bootstrap   string   `json:"bootstrap"`
	Captures    []string `json:"captures"`
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfilesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List host profiles",
		Long: `List the built-in host profiles, or validate and list the profiles of
a YAML file.

Examples:
  namedump profiles
  namedump profiles --file ./hosts.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "profiles YAML file (default built-in)")

	return cmd
}

func runProfiles(opts *ProfilesOptions, cmd *cobra.Command) error {
	profiles := profile.Builtin()
	if opts.File != "" {
		var err error
		profiles, err = profile.LoadFile(opts.File)
		if err != nil {
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			_ = f.Error(CodeBadProfile, "invalid profiles file", err.Error())
			return WrapExitError(ExitCommandError, "invalid profiles file", err)
		}
	}

	summaries := make([]ProfileSummary, 0, len(profiles))
	for i := range profiles {
		s, err := summarize(&profiles[i])
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid profile", err)
		}
		summaries = append(summaries, s)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if f.IsJSON() {
		return f.Success(summaries)
	}

	w := cmd.OutOrStdout()
	for _, s := range summaries {
		fmt.Fprintf(w, "%s (%s, %s)\n", s.Name, s.Arch, s.Hash)
		if s.Description != "" {
			fmt.Fprintf(w, "  %s\n", s.Description)
		}
		fmt.Fprintf(w, "  catalog:   %s\n", s.Catalog)
		fmt.Fprintf(w, "  bootstrap: %s\n", s.Bootstrap)
		fmt.Fprintf(w, "  captures:  %s\n", strings.Join(s.Captures, ", "))
	}
	return nil
}

func summarize(p *profile.Profile) (ProfileSummary, error) {
	alg, err := p.Algorithm()
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	s := ProfileSummary{
		Name:        p.Name,
		Description: p.Description,
		Arch:        p.Arch,
		Hash:        alg.Name(),
		Catalog:     p.CatalogPath(),
		Bootstrap:   p.Bootstrap.String(),
	}
	for _, c := range p.Captures {
		s.Captures = append(s.Captures, fmt.Sprintf("%s [%s]", c.Target, c.Convention))
	}
	return s, nil
}
