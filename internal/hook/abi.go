package hook

import (
	"fmt"
	"sort"
	"sync"
)

// Frame is the argument vector of one host call, in the order the native
// convention delivers arguments (first register first, then stack slots).
// Detours must treat a Frame as read-only.
type Frame struct {
	Args []uintptr
}

// Arg returns argument i, or an error if the frame is too short.
func (f *Frame) Arg(i int) (uintptr, error) {
	if f == nil || i < 0 || i >= len(f.Args) {
		return 0, fmt.Errorf("%w: %d", ErrArgOutOfRange, i)
	}
	return f.Args[i], nil
}

// Func is a host function as seen through the patcher.
type Func func(f *Frame) uintptr

// Detour intercepts a call. next invokes the original implementation.
type Detour func(f *Frame, next Func) uintptr

// Convention names the argument slots of a native calling convention.
type Convention struct {
	Name  string
	Slots []string
}

// Slot returns the register or stack slot that carries argument i.
func (c Convention) Slot(i int) string {
	if i >= 0 && i < len(c.Slots) {
		return c.Slots[i]
	}
	return fmt.Sprintf("stack[%d]", i-len(c.Slots))
}

var (
	X86Fastcall = Convention{Name: "x86-fastcall", Slots: []string{"ecx", "edx"}}
	X86Thiscall = Convention{Name: "x86-thiscall", Slots: []string{"ecx"}}
	X86Stdcall  = Convention{Name: "x86-stdcall"}
	X86Cdecl    = Convention{Name: "x86-cdecl"}
	X64MS       = Convention{Name: "x64-ms", Slots: []string{"rcx", "rdx", "r8", "r9"}}
	SysVAMD64   = Convention{Name: "sysv-amd64", Slots: []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}}
)

var conventions = map[string]Convention{
	X86Fastcall.Name: X86Fastcall,
	X86Thiscall.Name: X86Thiscall,
	X86Stdcall.Name:  X86Stdcall,
	X86Cdecl.Name:    X86Cdecl,
	X64MS.Name:       X64MS,
	SysVAMD64.Name:   SysVAMD64,
}

// ConventionByName looks up a known convention.
func ConventionByName(name string) (Convention, error) {
	if c, ok := conventions[name]; ok {
		return c, nil
	}
	return Convention{}, fmt.Errorf("unknown calling convention %q (known: %v)", name, ConventionNames())
}

// ConventionNames returns the known convention names, sorted.
func ConventionNames() []string {
	names := make([]string, 0, len(conventions))
	for name := range conventions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Layout says which arguments carry the name and its qualifier.
// A negative QualifierArg means the name argument is already qualified.
type Layout struct {
	NameArg      int
	QualifierArg int
}

// Split returns a layout with separate name and qualifier arguments.
func Split(nameArg, qualifierArg int) Layout {
	return Layout{NameArg: nameArg, QualifierArg: qualifierArg}
}

// Qualified returns a layout where one argument carries the full name.
func Qualified(nameArg int) Layout {
	return Layout{NameArg: nameArg, QualifierArg: -1}
}

// Memory reads NUL-terminated strings out of the host address space.
type Memory interface {
	CString(addr uintptr) (string, error)
}

// StringTable is a Memory backed by a map, for driving hooks without a real
// host. Addresses are handed out by Put and never reused.
type StringTable struct {
	mu   sync.RWMutex
	next uintptr
	strs map[uintptr]string
}

// NewStringTable returns an empty table. The first address is 0x10000 so
// that zero stays a null pointer.
func NewStringTable() *StringTable {
	return &StringTable{next: 0x10000, strs: make(map[uintptr]string)}
}

// Put stores s and returns its address.
func (t *StringTable) Put(s string) uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	addr := t.next
	t.strs[addr] = s
	t.next += uintptr(len(s)+1+15) &^ 15
	return addr
}

// CString implements Memory.
func (t *StringTable) CString(addr uintptr) (string, error) {
	if addr == 0 {
		return "", ErrNullPointer
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.strs[addr]
	if !ok {
		return "", fmt.Errorf("%w: %#x", ErrBadAddress, addr)
	}
	return s, nil
}
