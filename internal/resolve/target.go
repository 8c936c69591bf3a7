package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsupported    = errors.New("target resolution is not supported on this platform")
	ErrModuleNotFound = errors.New("module not loaded")
	ErrSymbolNotFound = errors.New("symbol not exported")
	ErrBadTarget      = errors.New("malformed target")
)

// Target is a host function location. Exactly one of Offset or Symbol is
// meaningful: a non-empty Symbol selects an export, otherwise Offset is
// added to the module base. An empty Module means the main executable.
type Target struct {
	Module string
	Offset uint64
	Symbol string
}

// ParseTarget parses "module+0xOFFSET", "+0xOFFSET" or "module!Symbol".
// Offsets are hexadecimal; the 0x prefix is optional.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrBadTarget)
	}

	if mod, sym, ok := strings.Cut(s, "!"); ok {
		if mod == "" || sym == "" {
			return Target{}, fmt.Errorf("%w: %q: want module!Symbol", ErrBadTarget, s)
		}
		return Target{Module: mod, Symbol: sym}, nil
	}

	i := strings.LastIndexByte(s, '+')
	if i < 0 {
		return Target{}, fmt.Errorf("%w: %q: want module+0xOFFSET or module!Symbol", ErrBadTarget, s)
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s[i+1:], "0x"), "0X")
	off, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %q: bad offset: %v", ErrBadTarget, s, err)
	}
	return Target{Module: s[:i], Offset: off}, nil
}

// IsExport reports whether t names an exported symbol.
func (t Target) IsExport() bool { return t.Symbol != "" }

func (t Target) String() string {
	if t.IsExport() {
		return t.Module + "!" + t.Symbol
	}
	return fmt.Sprintf("%s+0x%X", t.Module, t.Offset)
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(b []byte) error {
	parsed, err := ParseTarget(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
