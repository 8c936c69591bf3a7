package hook

import (
	"fmt"
	"runtime/debug"
	"unsafe"
)

// DefaultMaxCString bounds how far ProcessMemory scans for a terminator.
const DefaultMaxCString = 4096

// ProcessMemory reads C strings directly from the current address space.
// It is the Memory used when the hooks run inside the host process.
//
// A fault while reading is turned into an error instead of crashing the
// host: reads run with debug.SetPanicOnFault enabled for the calling
// goroutine and the resulting panic is recovered.
type ProcessMemory struct {
	// MaxLen caps the string length. Zero means DefaultMaxCString.
	MaxLen int
}

// CString implements Memory.
func (m ProcessMemory) CString(addr uintptr) (s string, err error) {
	if addr == 0 {
		return "", ErrNullPointer
	}
	limit := m.MaxLen
	if limit <= 0 {
		limit = DefaultMaxCString
	}

	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		if r := recover(); r != nil {
			s, err = "", fmt.Errorf("%w: %#x: %v", ErrBadAddress, addr, r)
		}
	}()

	if s, ok := scanCString(addr, limit); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: no terminator within %d bytes at %#x", ErrStringTooLong, limit, addr)
}

// scanCString copies bytes at addr up to the first NUL, looking at no more
// than limit bytes. addr points at host memory the Go runtime does not own,
// so pointer checks are disabled here.
//
//go:nocheckptr
func scanCString(addr uintptr, limit int) (string, bool) {
	base := unsafe.Pointer(addr)
	for n := 0; n < limit; n++ {
		if *(*byte)(unsafe.Add(base, n)) == 0 {
			return string(unsafe.Slice((*byte)(base), n)), true
		}
	}
	return "", false
}
