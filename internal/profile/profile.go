package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/hook"
	"github.com/roach88/namedump/internal/namehash"
	"github.com/roach88/namedump/internal/resolve"
)

//go:embed profile.cue
var schemaSource []byte

//go:embed profiles.yaml
var builtinSource []byte

// ErrNotFound is returned by Lookup for an unknown profile name.
var ErrNotFound = errors.New("profile not found")

// Profile is one host variant.
type Profile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Arch        string         `yaml:"arch"`
	Catalog     string         `yaml:"catalog,omitempty"`
	Hash        HashConfig     `yaml:"hash"`
	Bootstrap   resolve.Target `yaml:"bootstrap"`
	Captures    []Capture      `yaml:"captures"`
}

// HashConfig selects the catalog's hash function.
type HashConfig struct {
	Algorithm string `yaml:"algorithm"`
	Case      string `yaml:"case,omitempty"`
	NoXor     bool   `yaml:"no_xor,omitempty"`
}

// Capture is one name-resolution entry point.
type Capture struct {
	Target       resolve.Target `yaml:"target"`
	Convention   string         `yaml:"convention"`
	NameArg      int            `yaml:"name_arg"`
	QualifierArg *int           `yaml:"qualifier_arg,omitempty"`
}

// File is the top level of a profiles document.
type File struct {
	Profiles []Profile `yaml:"profiles"`
}

// Algorithm builds the configured hash function.
func (p *Profile) Algorithm() (namehash.Algorithm, error) {
	return p.Hash.Build()
}

// CatalogPath returns the catalog file name, defaulting to name_db.txt.
func (p *Profile) CatalogPath() string {
	if p.Catalog == "" {
		return catalog.DefaultPath
	}
	return p.Catalog
}

// Build returns the configured hash function.
func (h HashConfig) Build() (namehash.Algorithm, error) {
	mode, err := namehash.ParseCaseMode(h.Case)
	if err != nil {
		return nil, err
	}
	switch h.Algorithm {
	case "rolling":
		// The rolling family only ever folds to upper case; an unset case
		// means the folding default.
		if mode == namehash.CaseLower {
			return nil, fmt.Errorf("rolling hash does not support case %q", h.Case)
		}
		return namehash.NewRolling(namehash.RollingOptions{
			FoldUpper: h.Case == "" || mode == namehash.CaseUpper,
			NoXor:     h.NoXor,
		}), nil
	case "lfsr":
		if h.NoXor {
			return nil, errors.New("no_xor only applies to the rolling hash")
		}
		return namehash.NewLFSR(mode), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", h.Algorithm)
	}
}

// Layout returns which arguments carry the name and qualifier.
func (c Capture) Layout() hook.Layout {
	if c.QualifierArg == nil {
		return hook.Qualified(c.NameArg)
	}
	return hook.Split(c.NameArg, *c.QualifierArg)
}

// CallingConvention returns the named convention.
func (c Capture) CallingConvention() (hook.Convention, error) {
	return hook.ConventionByName(c.Convention)
}

// Validate checks what the schema cannot express.
func (p *Profile) Validate() error {
	if _, err := p.Algorithm(); err != nil {
		return fmt.Errorf("profile %s: hash: %w", p.Name, err)
	}
	if p.Bootstrap.Module == "" && !p.Bootstrap.IsExport() && p.Bootstrap.Offset == 0 {
		return fmt.Errorf("profile %s: bootstrap target is empty", p.Name)
	}
	if len(p.Captures) == 0 {
		return fmt.Errorf("profile %s: no capture targets", p.Name)
	}
	for i, c := range p.Captures {
		if _, err := c.CallingConvention(); err != nil {
			return fmt.Errorf("profile %s: captures[%d]: %w", p.Name, i, err)
		}
		if c.QualifierArg != nil && *c.QualifierArg == c.NameArg {
			return fmt.Errorf("profile %s: captures[%d]: name_arg and qualifier_arg are both %d", p.Name, i, c.NameArg)
		}
		if c.Target == p.Bootstrap {
			return fmt.Errorf("profile %s: captures[%d]: target %s is also the bootstrap target", p.Name, i, c.Target)
		}
	}
	return nil
}

// Parse validates data against the schema and decodes it.
func Parse(data []byte) ([]Profile, error) {
	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	seen := make(map[string]bool, len(f.Profiles))
	for i := range f.Profiles {
		p := &f.Profiles[i]
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Profiles, nil
}

// LoadFile reads and parses a profiles file.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	profiles, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// checkSchema unifies the document with #File and requires a concrete result.
func checkSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse profiles: %w", err)
	}
	if doc == nil {
		return errors.New("profiles document is empty")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("profile.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile profile schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#File")).Unify(ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("profile schema: %w", err)
	}
	return nil
}

// Builtin returns the embedded profiles, sorted by name.
func Builtin() []Profile {
	profiles, err := Parse(builtinSource)
	if err != nil {
		panic(fmt.Sprintf("embedded profiles are invalid: %v", err))
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

// Lookup returns the built-in profile with the given name.
func Lookup(name string) (*Profile, error) {
	return Find(Builtin(), name)
}

// Find returns the profile with the given name from profiles.
func Find(profiles []Profile, name string) (*Profile, error) {
	for i := range profiles {
		if profiles[i].Name == name {
			return &profiles[i], nil
		}
	}
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrNotFound, name, names)
}
