package namehash

import (
	"fmt"
	"strconv"
	"strings"
)

// Hash is a name hash. 32-bit algorithms leave the upper half zero.
type Hash uint64

// Algorithm computes name hashes for one host variant.
//
// Implementations are pure: the same input always yields the same Hash, and
// Sum never retains b.
type Algorithm interface {
	// Name returns the preset name accepted by ByName.
	Name() string

	// Width returns the hash width in bits (32 or 64).
	Width() int

	// Sum hashes the canonical bytes of a name.
	Sum(b []byte) Hash
}

// CaseMode selects the ASCII case folding applied before hashing.
type CaseMode int

const (
	CaseNone CaseMode = iota
	CaseLower
	CaseUpper
)

// String returns the configuration spelling of the mode.
func (m CaseMode) String() string {
	switch m {
	case CaseLower:
		return "lower"
	case CaseUpper:
		return "upper"
	default:
		return "none"
	}
}

// ParseCaseMode parses "none", "lower" or "upper". The empty string is none.
func ParseCaseMode(s string) (CaseMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CaseNone, nil
	case "lower":
		return CaseLower, nil
	case "upper":
		return CaseUpper, nil
	}
	return CaseNone, fmt.Errorf("unknown case mode %q", s)
}

// fold applies m to a single byte. Only ASCII letters are touched.
func (m CaseMode) fold(b byte) byte {
	switch m {
	case CaseUpper:
		if b-'a' < 26 {
			return b - ('a' - 'A')
		}
	case CaseLower:
		if b-'A' < 26 {
			return b + ('a' - 'A')
		}
	}
	return b
}

// Canonical joins a base name and its qualifier the way the host does before
// hashing. An empty qualifier means name is already fully qualified.
func Canonical(name, qualifier string) string {
	if qualifier == "" {
		return name
	}
	return name + "." + qualifier
}

// SumString hashes s with alg.
func SumString(alg Algorithm, s string) Hash {
	return alg.Sum([]byte(s))
}

// Format renders h as the placeholder stem used for unnamed entries,
// e.g. "$1A2B3C4D" for 32-bit or "$00112233445566FF" for 64-bit hashes.
func Format(h Hash, width int) string {
	if width == 32 {
		return fmt.Sprintf("$%08X", uint32(h))
	}
	return fmt.Sprintf("$%016X", uint64(h))
}

// Parse reads a placeholder stem produced by Format. The leading '$' is
// optional.
func Parse(s string) (Hash, error) {
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, fmt.Errorf("empty hash")
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return Hash(v), nil
}

// IsPlaceholder reports whether name is an unresolved "$HASH" entry.
func IsPlaceholder(name string) bool {
	return strings.HasPrefix(name, "$")
}

// Presets accepted by ByName.
const (
	PresetRolling      = "rolling"
	PresetRollingCS    = "rolling-cs"
	PresetRollingNoXor = "rolling-noxor"
	PresetLFSR         = "lfsr"
	PresetLFSRLower    = "lfsr-lower"
	PresetLFSRUpper    = "lfsr-upper"
)

// Presets lists every name ByName understands, in display order.
var Presets = []string{
	PresetRolling,
	PresetRollingCS,
	PresetRollingNoXor,
	PresetLFSR,
	PresetLFSRLower,
	PresetLFSRUpper,
}

// ByName returns a preset algorithm. The archive tool spellings "tlhash",
// "zarc", "zarc-lower" and "zarc-upper" are accepted as aliases.
func ByName(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case PresetRolling, "tlhash", "":
		return NewRolling(RollingOptions{FoldUpper: true}), nil
	case PresetRollingCS:
		return NewRolling(RollingOptions{}), nil
	case PresetRollingNoXor, "tlhash-noxor":
		return NewRolling(RollingOptions{FoldUpper: true, NoXor: true}), nil
	case PresetLFSR, "zarc":
		return NewLFSR(CaseNone), nil
	case PresetLFSRLower, "zarc-lower":
		return NewLFSR(CaseLower), nil
	case PresetLFSRUpper, "zarc-upper":
		return NewLFSR(CaseUpper), nil
	}
	return nil, fmt.Errorf("unknown hash algorithm %q (known: %s)", name, strings.Join(Presets, ", "))
}
