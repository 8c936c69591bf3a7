//go:build windows

package resolve

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type processResolver struct{}

// Process returns a Resolver for modules loaded in the current process.
func Process() (Resolver, error) {
	return processResolver{}, nil
}

func (processResolver) Resolve(t Target) (uintptr, error) {
	mod, err := moduleHandle(t.Module)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", t, ErrModuleNotFound, err)
	}
	if t.IsExport() {
		addr, err := windows.GetProcAddress(mod, t.Symbol)
		if err != nil {
			return 0, fmt.Errorf("%s: %w: %v", t, ErrSymbolNotFound, err)
		}
		return addr, nil
	}
	return uintptr(mod) + uintptr(t.Offset), nil
}

// moduleHandle returns the base of an already-loaded module without taking a
// reference on it. An empty name selects the main executable.
func moduleHandle(name string) (windows.Handle, error) {
	var namePtr *uint16
	if name != "" {
		p, err := windows.UTF16PtrFromString(name)
		if err != nil {
			return 0, err
		}
		namePtr = p
	}
	var h windows.Handle
	err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, namePtr, &h)
	if err != nil {
		return 0, err
	}
	return h, nil
}
