package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/hook"
	"github.com/roach88/namedump/internal/lifecycle"
	"github.com/roach88/namedump/internal/profile"
	"github.com/roach88/namedump/internal/testutil"
)

// Option configures Run.
type Option func(*config)

type config struct {
	logger *slog.Logger
	dir    string
}

// WithLogger sets the logger handed to the controller. The default discards
// everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDir runs the scenario with its catalog in dir instead of a temporary
// directory that is removed afterwards.
func WithDir(dir string) Option {
	return func(c *config) { c.dir = dir }
}

// Harness is the scenario execution engine.
// It runs one scenario against a fake host with a fixed session id. Trace
// events are numbered from 1 in the order they happen.
type Harness struct {
	host    *fakeHost
	ctrl    *lifecycle.Controller
	seq     int64
	profile *profile.Profile
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Resolve the profile and build the fake host
//  2. Seed the catalog file
//  3. Attach a lifecycle controller
//  4. Execute flow steps, checking every call for transparency
//  5. Read back the catalog and evaluate assertions
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	dir := cfg.dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "namedump-scenario-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create scenario dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	p, err := scenarioProfile(scenario)
	if err != nil {
		return nil, err
	}

	host, err := newFakeHost(p, scenario.Unresolved)
	if err != nil {
		return nil, err
	}

	catalogPath := filepath.Join(dir, filepath.Base(p.CatalogPath()))
	if len(scenario.Catalog) > 0 {
		if err := seedCatalog(catalogPath, scenario.Catalog); err != nil {
			return nil, err
		}
	}

	ctrl := lifecycle.New(p,
		lifecycle.WithPatcher(host.table),
		lifecycle.WithResolver(host.resolver),
		lifecycle.WithMemory(host.mem),
		lifecycle.WithLogger(cfg.logger),
		lifecycle.WithCatalogPath(catalogPath),
		lifecycle.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
	)
	defer ctrl.Close()

	h := &Harness{
		host:    host,
		ctrl:    ctrl,
		profile: p,
		logger:  cfg.logger,
	}

	result := NewResult()
	result.Session = ctrl.Session()

	h.attach(result)
	for i, step := range scenario.Flow {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
	}

	if err := h.finish(catalogPath, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func scenarioProfile(s *Scenario) (*profile.Profile, error) {
	if s.ProfileFile == "" {
		return profile.Lookup(s.Profile)
	}
	profiles, err := profile.LoadFile(s.ProfileFile)
	if err != nil {
		return nil, err
	}
	if s.Profile == "" && len(profiles) == 1 {
		return &profiles[0], nil
	}
	return profile.Find(profiles, s.Profile)
}

func seedCatalog(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	for _, name := range names {
		if _, err := f.WriteString(name + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	return f.Close()
}

func (h *Harness) nextSeq() int64 {
	h.seq++
	return h.seq
}

func (h *Harness) attach(result *Result) {
	event := TraceEvent{
		Seq:    h.nextSeq(),
		Call:   "attach",
		Target: h.profile.Bootstrap.String(),
	}
	if err := h.ctrl.Attach(context.Background()); err != nil {
		var ce *lifecycle.CompatError
		if errors.As(err, &ce) {
			event.Error = string(ce.Code)
		} else {
			event.Error = err.Error()
		}
	}
	event.State = h.ctrl.State().String()
	result.Trace = append(result.Trace, event)
}

// executeStep issues the step's calls and appends its trace event.
func (h *Harness) executeStep(index int, step Step, result *Result) error {
	event := TraceEvent{
		Seq:  h.nextSeq(),
		Call: step.Call,
	}

	var addr uintptr
	switch step.Call {
	case CallBootstrap:
		addr = h.host.bootstrap
		event.Target = h.profile.Bootstrap.String()
	case CallResolve:
		if step.Capture >= len(h.host.captures) {
			return fmt.Errorf("capture %d out of range (profile %s has %d)", step.Capture, h.profile.Name, len(h.host.captures))
		}
		addr = h.host.captures[step.Capture]
		event.Target = h.profile.Captures[step.Capture].Target.String()
		event.Name = step.Name
		event.Qualifier = step.Qualifier
	}

	recordedBefore := h.recorded()
	originalsBefore := h.host.originals.Load()

	goroutines, perGoroutine := step.calls()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < perGoroutine; n++ {
				if msg := h.call(addr, step); msg != "" {
					mu.Lock()
					failures = append(failures, msg)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	event.Calls = goroutines * perGoroutine
	event.Forwarded = int(h.host.originals.Load() - originalsBefore)
	event.Recorded = h.recorded() - recordedBefore
	event.State = h.ctrl.State().String()
	result.Trace = append(result.Trace, event)

	if event.Forwarded != event.Calls {
		result.AddError(fmt.Sprintf("flow[%d]: %d of %d calls reached the original", index, event.Forwarded, event.Calls))
	}
	for _, msg := range failures {
		result.AddError(fmt.Sprintf("flow[%d]: %s", index, msg))
	}
	h.logger.Debug("scenario step completed", "step", index, "call", step.Call, "calls", event.Calls, "recorded", event.Recorded)
	return nil
}

// call makes one host call and returns a failure message, or "".
func (h *Harness) call(addr uintptr, step Step) string {
	if step.Call == CallBootstrap {
		ret, err := h.host.table.Call(addr, &hook.Frame{})
		if err != nil {
			return err.Error()
		}
		if ret != bootstrapValue {
			return fmt.Sprintf("bootstrap returned %#x, original returned %#x", ret, bootstrapValue)
		}
		return ""
	}

	frame, want := h.host.resolveFrame(step.Capture, step.Name, step.Qualifier)
	ret, err := h.host.table.Call(addr, frame)
	if err != nil {
		return err.Error()
	}
	if ret != want {
		return fmt.Sprintf("resolve returned %#x, original returned %#x", ret, want)
	}
	return ""
}

func (h *Harness) recorded() int64 {
	var n int64
	for _, c := range h.ctrl.Captures() {
		n += c.Recorded()
	}
	return n
}

func (h *Harness) finish(catalogPath string, result *Result) error {
	result.State = h.ctrl.State().String()
	result.Recorded = h.recorded()
	if cat := h.ctrl.Catalog(); cat != nil {
		result.Degraded = cat.Degraded()
	}

	f, err := os.Open(catalogPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	defer f.Close()

	names, err := catalog.ReadNames(f)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	result.Catalog = append(result.Catalog, names...)
	return nil
}
