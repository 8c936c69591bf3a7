package hook

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Patcher redirects calls to host functions through detours.
//
// Changes are staged in a transaction and applied together at Commit, the
// way trampoline libraries bracket attach and detach calls.
type Patcher interface {
	Begin() Txn
}

// Txn is one batch of attach/detach operations.
type Txn interface {
	Attach(target uintptr, d Detour) error
	Detach(target uintptr) error
	Commit() error
	Abort()
}

// FuncTable is an in-process Patcher. Host functions are registered as Go
// functions at chosen addresses and invoked through Call, which routes them
// through any attached detour.
//
// Thread-safety: Call may run concurrently with itself and with transaction
// commits. A detour may begin and commit a transaction from inside its own
// invocation (the bootstrap detour detaches itself this way).
type FuncTable struct {
	mu    sync.RWMutex
	slots map[uintptr]*slot
}

type slot struct {
	original Func
	detour   atomic.Pointer[Detour]
	attaches atomic.Int64
	detaches atomic.Int64
}

// NewFuncTable returns an empty table.
func NewFuncTable() *FuncTable {
	return &FuncTable{slots: make(map[uintptr]*slot)}
}

// Register installs fn as the original implementation at addr, replacing any
// previous registration and its detour.
func (t *FuncTable) Register(addr uintptr, fn Func) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots[addr] = &slot{original: fn}
}

// Call invokes the function at addr through its detour, if any.
func (t *FuncTable) Call(addr uintptr, f *Frame) (uintptr, error) {
	t.mu.RLock()
	s, ok := t.slots[addr]
	t.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnknownTarget, addr)
	}
	if d := s.detour.Load(); d != nil {
		return (*d)(f, s.original), nil
	}
	return s.original(f), nil
}

// CallOriginal invokes the original at addr, bypassing any detour.
func (t *FuncTable) CallOriginal(addr uintptr, f *Frame) (uintptr, error) {
	t.mu.RLock()
	s, ok := t.slots[addr]
	t.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnknownTarget, addr)
	}
	return s.original(f), nil
}

// Attached reports whether addr currently has a detour.
func (t *FuncTable) Attached(addr uintptr) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.slots[addr]
	return ok && s.detour.Load() != nil
}

// AttachCount returns how many committed attaches addr has seen.
func (t *FuncTable) AttachCount(addr uintptr) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.slots[addr]; ok {
		return s.attaches.Load()
	}
	return 0
}

// DetachCount returns how many committed detaches addr has seen.
func (t *FuncTable) DetachCount(addr uintptr) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.slots[addr]; ok {
		return s.detaches.Load()
	}
	return 0
}

// Begin implements Patcher.
func (t *FuncTable) Begin() Txn {
	return &tableTxn{table: t}
}

type tableOp struct {
	target uintptr
	detour *Detour // nil for detach
}

type tableTxn struct {
	table  *FuncTable
	ops    []tableOp
	closed bool
}

func (x *tableTxn) Attach(target uintptr, d Detour) error {
	if x.closed {
		return ErrTxnClosed
	}
	if d == nil {
		return fmt.Errorf("attach %#x: nil detour", target)
	}
	x.ops = append(x.ops, tableOp{target: target, detour: &d})
	return nil
}

func (x *tableTxn) Detach(target uintptr) error {
	if x.closed {
		return ErrTxnClosed
	}
	x.ops = append(x.ops, tableOp{target: target})
	return nil
}

// Commit validates every staged operation against the current table and
// applies all of them, or none.
func (x *tableTxn) Commit() error {
	if x.closed {
		return ErrTxnClosed
	}
	x.closed = true

	t := x.table
	t.mu.Lock()
	defer t.mu.Unlock()

	attached := make(map[uintptr]bool)
	for _, op := range x.ops {
		s, ok := t.slots[op.target]
		if !ok {
			return fmt.Errorf("%w: %#x", ErrUnknownTarget, op.target)
		}
		cur, seen := attached[op.target]
		if !seen {
			cur = s.detour.Load() != nil
		}
		if op.detour != nil && cur {
			return fmt.Errorf("%w: %#x", ErrAlreadyAttached, op.target)
		}
		if op.detour == nil && !cur {
			return fmt.Errorf("%w: %#x", ErrNotAttached, op.target)
		}
		attached[op.target] = op.detour != nil
	}

	for _, op := range x.ops {
		s := t.slots[op.target]
		s.detour.Store(op.detour)
		if op.detour != nil {
			s.attaches.Add(1)
		} else {
			s.detaches.Add(1)
		}
	}
	return nil
}

func (x *tableTxn) Abort() {
	x.closed = true
	x.ops = nil
}
