package hook

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/namedump/internal/namehash"
)

// Recorder receives canonical names. catalog.Catalog implements it.
type Recorder interface {
	TryRecord(name string) bool
}

// Capture is the permanent detour on a name-resolution function.
type Capture struct {
	sink   Recorder
	conv   Convention
	layout Layout
	mem    Memory
	logger *slog.Logger

	calls    atomic.Int64
	recorded atomic.Int64
	failures atomic.Int64
}

// NewCapture returns a capture hook that extracts strings per conv and
// layout, reads them through mem and records them into sink.
func NewCapture(sink Recorder, conv Convention, layout Layout, mem Memory, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{
		sink:   sink,
		conv:   conv,
		layout: layout,
		mem:    mem,
		logger: logger,
	}
}

// Detour returns the function to attach on the resolution target.
func (c *Capture) Detour() Detour {
	return c.intercept
}

func (c *Capture) intercept(f *Frame, next Func) uintptr {
	c.capture(f)
	return next(f)
}

// capture never lets a failure escape into the host call.
func (c *Capture) capture(f *Frame) {
	c.calls.Add(1)
	defer func() {
		if r := recover(); r != nil {
			c.fail(fmt.Errorf("panic: %v", r))
		}
	}()

	name, qualifier, err := c.extract(f)
	if err != nil {
		c.fail(err)
		return
	}
	c.Observe(name, qualifier)
}

func (c *Capture) extract(f *Frame) (name, qualifier string, err error) {
	addr, err := f.Arg(c.layout.NameArg)
	if err != nil {
		return "", "", fmt.Errorf("name (%s): %w", c.conv.Slot(c.layout.NameArg), err)
	}
	if name, err = c.mem.CString(addr); err != nil {
		return "", "", fmt.Errorf("name (%s): %w", c.conv.Slot(c.layout.NameArg), err)
	}
	if c.layout.QualifierArg < 0 {
		return name, "", nil
	}
	addr, err = f.Arg(c.layout.QualifierArg)
	if err != nil {
		return "", "", fmt.Errorf("qualifier (%s): %w", c.conv.Slot(c.layout.QualifierArg), err)
	}
	if qualifier, err = c.mem.CString(addr); err != nil {
		return "", "", fmt.Errorf("qualifier (%s): %w", c.conv.Slot(c.layout.QualifierArg), err)
	}
	return name, qualifier, nil
}

// Observe is the convention-agnostic capture callback. It returns whether
// the name was new. An empty base name with a qualifier is recorded as
// ".qualifier".
func (c *Capture) Observe(name, qualifier string) bool {
	if name == "" && qualifier == "" {
		return false
	}
	if c.sink.TryRecord(namehash.Canonical(name, qualifier)) {
		c.recorded.Add(1)
		return true
	}
	return false
}

func (c *Capture) fail(err error) {
	n := c.failures.Add(1)
	// Only the first failure is logged at warn level.
	if n == 1 {
		c.logger.Warn("capture failed", "convention", c.conv.Name, "error", err)
		return
	}
	c.logger.Debug("capture failed", "convention", c.conv.Name, "error", err, "failures", n)
}

// Calls returns how many intercepted calls the hook has seen.
func (c *Capture) Calls() int64 { return c.calls.Load() }

// Recorded returns how many calls produced a new catalog entry.
func (c *Capture) Recorded() int64 { return c.recorded.Load() }

// Failures returns how many calls could not be captured.
func (c *Capture) Failures() int64 { return c.failures.Load() }
