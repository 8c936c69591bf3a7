package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/namehash"
	"github.com/roach88/namedump/internal/profile"
)

// HashFlags selects the hash algorithm for commands that hash names, either
// by preset name or by a built-in profile.
type HashFlags struct {
	Hash    string
	Profile string
}

func (h *HashFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&h.Hash, "hash", namehash.PresetRolling, fmt.Sprintf("hash preset %v", namehash.Presets))
	cmd.Flags().StringVar(&h.Profile, "profile", "", "take the hash from a built-in profile")
	cmd.MarkFlagsMutuallyExclusive("hash", "profile")
}

// algorithm resolves the flags. A profile wins over the default preset.
func (h *HashFlags) algorithm() (namehash.Algorithm, error) {
	if h.Profile != "" {
		p, err := profile.Lookup(h.Profile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "unknown profile", err)
		}
		alg, err := p.Algorithm()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid profile hash", err)
		}
		return alg, nil
	}
	alg, err := namehash.ByName(h.Hash)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid hash", err)
	}
	return alg, nil
}

// loadDictionary reads a catalog file into a dictionary keyed by alg.
func loadDictionary(path string, alg namehash.Algorithm) (*catalog.Dictionary, error) {
	d := catalog.NewDictionary(alg)
	if _, err := d.AddFile(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return d, nil
}
