package hook

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Bootstrap is the temporary detour that delays initialization until the
// host first calls an early, content-irrelevant function.
//
// On the first call it detaches itself, runs init, and forwards the call.
// Every other call, including concurrent ones racing the first, forwards
// immediately without waiting.
type Bootstrap struct {
	patcher Patcher
	target  uintptr
	init    func() error
	logger  *slog.Logger

	armed atomic.Bool
	fired atomic.Bool
	done  chan struct{}
	err   error // written once before done is closed
}

// NewBootstrap prepares a bootstrap detour for target. init runs once.
func NewBootstrap(p Patcher, target uintptr, init func() error, logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrap{
		patcher: p,
		target:  target,
		init:    init,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Arm attaches the detour. Arming twice is an error.
func (b *Bootstrap) Arm() error {
	if !b.armed.CompareAndSwap(false, true) {
		return fmt.Errorf("bootstrap at %#x: %w", b.target, ErrAlreadyAttached)
	}
	txn := b.patcher.Begin()
	if err := txn.Attach(b.target, b.intercept); err != nil {
		txn.Abort()
		b.armed.Store(false)
		return fmt.Errorf("arm bootstrap at %#x: %w", b.target, err)
	}
	if err := txn.Commit(); err != nil {
		b.armed.Store(false)
		return fmt.Errorf("arm bootstrap at %#x: %w", b.target, err)
	}
	return nil
}

func (b *Bootstrap) intercept(f *Frame, next Func) uintptr {
	if b.fired.CompareAndSwap(false, true) {
		b.fire()
	}
	return next(f)
}

func (b *Bootstrap) fire() {
	defer close(b.done)
	defer func() {
		if r := recover(); r != nil {
			b.err = fmt.Errorf("bootstrap init panicked: %v", r)
			b.logger.Error("bootstrap failed", "error", b.err)
		}
	}()

	if err := b.detach(); err != nil {
		// The latch still holds; a stuck detour only forwards.
		b.logger.Warn("bootstrap could not detach itself", "target", fmt.Sprintf("%#x", b.target), "error", err)
	}
	if err := b.init(); err != nil {
		b.err = err
		b.logger.Error("bootstrap failed", "error", err)
	}
}

func (b *Bootstrap) detach() error {
	txn := b.patcher.Begin()
	if err := txn.Detach(b.target); err != nil {
		txn.Abort()
		return err
	}
	return txn.Commit()
}

// Target returns the address the detour is attached to.
func (b *Bootstrap) Target() uintptr { return b.target }

// Armed reports whether Arm succeeded.
func (b *Bootstrap) Armed() bool { return b.armed.Load() }

// Fired reports whether the first invocation has started initialization.
func (b *Bootstrap) Fired() bool { return b.fired.Load() }

// Done is closed once initialization has finished, successfully or not.
func (b *Bootstrap) Done() <-chan struct{} { return b.done }

// Err returns the initialization error. It is only meaningful after Done is
// closed.
func (b *Bootstrap) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}
