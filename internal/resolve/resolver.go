package resolve

import (
	"fmt"
	"strings"
)

// Resolver maps a Target to an absolute address in the host.
type Resolver interface {
	Resolve(t Target) (uintptr, error)
}

// Static resolves targets from fixed module bases and export addresses.
// Module and symbol names are matched case-insensitively, the way the
// Windows loader matches module names.
type Static struct {
	bases   map[string]uintptr
	exports map[string]uintptr
}

// NewStatic returns an empty Static resolver.
func NewStatic() *Static {
	return &Static{
		bases:   make(map[string]uintptr),
		exports: make(map[string]uintptr),
	}
}

// AddModule records the base address of module. Use "" for the main
// executable.
func (s *Static) AddModule(module string, base uintptr) *Static {
	s.bases[strings.ToLower(module)] = base
	return s
}

// AddExport records the address of module!symbol.
func (s *Static) AddExport(module, symbol string, addr uintptr) *Static {
	s.exports[exportKey(module, symbol)] = addr
	return s
}

// Resolve implements Resolver.
func (s *Static) Resolve(t Target) (uintptr, error) {
	if t.IsExport() {
		if addr, ok := s.exports[exportKey(t.Module, t.Symbol)]; ok {
			return addr, nil
		}
		if _, ok := s.bases[strings.ToLower(t.Module)]; !ok {
			return 0, fmt.Errorf("%s: %w", t, ErrModuleNotFound)
		}
		return 0, fmt.Errorf("%s: %w", t, ErrSymbolNotFound)
	}
	base, ok := s.bases[strings.ToLower(t.Module)]
	if !ok {
		return 0, fmt.Errorf("%s: %w", t, ErrModuleNotFound)
	}
	return base + uintptr(t.Offset), nil
}

func exportKey(module, symbol string) string {
	return strings.ToLower(module) + "!" + symbol
}
