package harness

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/roach88/namedump/internal/hook"
	"github.com/roach88/namedump/internal/profile"
	"github.com/roach88/namedump/internal/resolve"
)

const (
	imageBase      uintptr = 0x400000
	moduleBase     uintptr = 0x70000000
	moduleStride   uintptr = 0x01000000
	exportStride   uintptr = 0x1000
	thisPointer    uintptr = 0xC0FFEE00
	bootstrapValue uintptr = 0xB007
)

// fakeHost is a host process made of Go functions. Module bases and export
// addresses are assigned deterministically from the profile.
type fakeHost struct {
	table    *hook.FuncTable
	mem      *hook.StringTable
	resolver *resolve.Static

	bootstrap uintptr
	captures  []uintptr
	layouts   []hook.Layout

	modules map[string]uintptr
	exports map[string]int

	// originals counts calls that reached an original function.
	originals atomic.Int64
}

func newFakeHost(p *profile.Profile, unresolved []string) (*fakeHost, error) {
	skip := make(map[resolve.Target]bool, len(unresolved))
	for _, s := range unresolved {
		t, err := resolve.ParseTarget(s)
		if err != nil {
			return nil, fmt.Errorf("unresolved: %w", err)
		}
		skip[t] = true
	}

	h := &fakeHost{
		table:    hook.NewFuncTable(),
		mem:      hook.NewStringTable(),
		resolver: resolve.NewStatic(),
		modules:  make(map[string]uintptr),
		exports:  make(map[string]int),
	}

	h.bootstrap = h.place(p.Bootstrap, skip[p.Bootstrap])
	h.table.Register(h.bootstrap, func(*hook.Frame) uintptr {
		h.originals.Add(1)
		return bootstrapValue
	})

	for _, c := range p.Captures {
		addr := h.place(c.Target, skip[c.Target])
		layout := c.Layout()
		h.captures = append(h.captures, addr)
		h.layouts = append(h.layouts, layout)
		h.table.Register(addr, func(f *hook.Frame) uintptr {
			h.originals.Add(1)
			return f.Args[layout.NameArg]
		})
	}
	return h, nil
}

// place assigns an address to t and, unless hidden, makes it resolvable.
func (h *fakeHost) place(t resolve.Target, hidden bool) uintptr {
	key := strings.ToLower(t.Module)
	base, ok := h.modules[key]
	if !ok {
		base = imageBase
		if t.Module != "" {
			base = moduleBase + uintptr(len(h.modules))*moduleStride
		}
		h.modules[key] = base
	}

	if !t.IsExport() {
		if !hidden {
			h.resolver.AddModule(t.Module, base)
		}
		return base + uintptr(t.Offset)
	}

	h.exports[key]++
	addr := base + uintptr(h.exports[key])*exportStride
	h.resolver.AddModule(t.Module, base)
	if !hidden {
		h.resolver.AddExport(t.Module, t.Symbol, addr)
	}
	return addr
}

// resolveFrame builds the argument vector for a call on capture i.
func (h *fakeHost) resolveFrame(i int, name, qualifier string) (*hook.Frame, uintptr) {
	layout := h.layouts[i]
	n := layout.NameArg + 1
	if layout.QualifierArg >= n {
		n = layout.QualifierArg + 1
	}
	args := make([]uintptr, n)
	for j := range args {
		args[j] = thisPointer
	}
	nameAddr := h.mem.Put(name)
	args[layout.NameArg] = nameAddr
	if layout.QualifierArg >= 0 {
		args[layout.QualifierArg] = h.mem.Put(qualifier)
	}
	return &hook.Frame{Args: args}, nameAddr
}
