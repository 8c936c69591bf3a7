package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/namedump/internal/catalog"
	"github.com/roach88/namedump/internal/hook"
	"github.com/roach88/namedump/internal/namehash"
	"github.com/roach88/namedump/internal/profile"
	"github.com/roach88/namedump/internal/resolve"
)

// State is the controller's position in the installation sequence.
type State int32

const (
	Unattached State = iota
	BootstrapArmed
	Initialized
	Failed
)

func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case BootstrapArmed:
		return "bootstrap-armed"
	case Initialized:
		return "initialized"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Option configures a Controller.
type Option func(*Controller)

// WithPatcher sets the patcher used to attach detours. Required.
func WithPatcher(p hook.Patcher) Option {
	return func(c *Controller) { c.patcher = p }
}

// WithResolver sets the target resolver. The default resolves against the
// current process.
func WithResolver(r resolve.Resolver) Option {
	return func(c *Controller) { c.resolver = r }
}

// WithMemory sets how capture hooks read strings. The default reads the
// current address space.
func WithMemory(m hook.Memory) Option {
	return func(c *Controller) { c.mem = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithCatalogPath overrides the profile's catalog path.
func WithCatalogPath(path string) Option {
	return func(c *Controller) { c.catalogPath = path }
}

// WithCatalogOptions passes options through to the catalog.
func WithCatalogOptions(opts ...catalog.Option) Option {
	return func(c *Controller) { c.catalogOpts = append(c.catalogOpts, opts...) }
}

// WithSessionGenerator sets the session id source.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(c *Controller) { c.sessions = g }
}

// Controller drives one profile through Attach and bootstrap.
//
// Thread-safety: all methods are safe for concurrent use. Bootstrap runs on
// whichever host thread first calls the bootstrap target.
type Controller struct {
	profile     *profile.Profile
	patcher     hook.Patcher
	resolver    resolve.Resolver
	mem         hook.Memory
	logger      *slog.Logger
	catalogPath string
	catalogOpts []catalog.Option
	sessions    SessionGenerator

	attached atomic.Bool
	state    atomic.Int32
	session  string

	// Set by Attach before the bootstrap is armed.
	alg       namehash.Algorithm
	plan      []plannedCapture
	bootstrap *hook.Bootstrap

	mu       sync.Mutex
	catalog  *catalog.Catalog
	captures []*hook.Capture
}

type plannedCapture struct {
	target resolve.Target
	addr   uintptr
	conv   hook.Convention
	layout hook.Layout
}

// New returns an unattached controller for p.
func New(p *profile.Profile, opts ...Option) *Controller {
	c := &Controller{
		profile:  p,
		mem:      hook.ProcessMemory{},
		logger:   slog.Default(),
		sessions: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalogPath == "" {
		c.catalogPath = p.CatalogPath()
	}
	c.session = c.sessions.Generate()
	c.logger = c.logger.With("session", c.session, "profile", p.Name)
	return c
}

// Attach resolves every target and arms the bootstrap detour. It does no
// file I/O and never blocks on the host.
func (c *Controller) Attach(ctx context.Context) error {
	if !c.attached.CompareAndSwap(false, true) {
		return ErrAlreadyAttached
	}
	if err := c.arm(ctx); err != nil {
		c.state.Store(int32(Failed))
		c.logger.Error("host is not compatible with profile, capture disabled", "error", err)
		return err
	}
	// A host thread may already have fired the bootstrap.
	c.state.CompareAndSwap(int32(Unattached), int32(BootstrapArmed))
	c.logger.Info("bootstrap armed", "target", c.profile.Bootstrap.String(), "captures", len(c.plan))
	return nil
}

func (c *Controller) arm(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.patcher == nil {
		return ErrNoPatcher
	}

	alg, err := c.profile.Algorithm()
	if err != nil {
		return c.compat(ErrCodeBadProfile, "hash", err)
	}
	c.alg = alg

	if c.resolver == nil {
		r, err := resolve.Process()
		if err != nil {
			return c.compat(ErrCodeUnresolved, "", err)
		}
		c.resolver = r
	}

	bootAddr, err := c.resolver.Resolve(c.profile.Bootstrap)
	if err != nil {
		return c.compat(ErrCodeUnresolved, c.profile.Bootstrap.String(), err)
	}

	plan := make([]plannedCapture, 0, len(c.profile.Captures))
	for _, pc := range c.profile.Captures {
		if err := ctx.Err(); err != nil {
			return err
		}
		conv, err := pc.CallingConvention()
		if err != nil {
			return c.compat(ErrCodeBadProfile, pc.Target.String(), err)
		}
		addr, err := c.resolver.Resolve(pc.Target)
		if err != nil {
			return c.compat(ErrCodeUnresolved, pc.Target.String(), err)
		}
		c.logger.Debug("resolved capture target", "target", pc.Target.String(), "addr", fmt.Sprintf("%#x", addr))
		plan = append(plan, plannedCapture{target: pc.Target, addr: addr, conv: conv, layout: pc.Layout()})
	}
	c.plan = plan

	c.bootstrap = hook.NewBootstrap(c.patcher, bootAddr, c.initialize, c.logger)
	if err := c.bootstrap.Arm(); err != nil {
		return c.compat(ErrCodeArmFailed, c.profile.Bootstrap.String(), err)
	}
	return nil
}

func (c *Controller) compat(code CompatErrorCode, target string, err error) error {
	return &CompatError{Code: code, Profile: c.profile.Name, Target: target, Err: err}
}

// initialize runs once, on the first bootstrap call.
func (c *Controller) initialize() error {
	opts := append([]catalog.Option{catalog.WithLogger(c.logger)}, c.catalogOpts...)
	cat := catalog.Open(c.catalogPath, c.alg, opts...)

	captures := make([]*hook.Capture, len(c.plan))
	txn := c.patcher.Begin()
	for i, pc := range c.plan {
		captures[i] = hook.NewCapture(cat, pc.conv, pc.layout, c.mem, c.logger.With("target", pc.target.String()))
		if err := txn.Attach(pc.addr, captures[i].Detour()); err != nil {
			txn.Abort()
			return c.failInit(cat, fmt.Errorf("attach capture %s: %w", pc.target, err))
		}
	}
	if err := txn.Commit(); err != nil {
		return c.failInit(cat, fmt.Errorf("attach captures: %w", err))
	}

	c.mu.Lock()
	c.catalog = cat
	c.captures = captures
	c.mu.Unlock()
	c.state.Store(int32(Initialized))

	c.logger.Info("name capture initialized",
		"catalog", cat.Path(),
		"known", cat.Len(),
		"persistent", !cat.Degraded(),
		"hash", c.alg.Name())
	return nil
}

func (c *Controller) failInit(cat *catalog.Catalog, err error) error {
	_ = cat.Close()
	c.state.Store(int32(Failed))
	return err
}

// Wait blocks until bootstrap initialization has finished and returns its
// error. It returns ctx.Err() if ctx ends first.
func (c *Controller) Wait(ctx context.Context) error {
	b := c.bootstrapHook()
	if b == nil {
		return ErrNotArmed
	}
	select {
	case <-b.Done():
		return b.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) bootstrapHook() *hook.Bootstrap {
	switch State(c.state.Load()) {
	case BootstrapArmed, Initialized:
		return c.bootstrap
	case Failed:
		// Failed after arming means initialization failed.
		if c.bootstrap != nil && c.bootstrap.Fired() {
			return c.bootstrap
		}
	}
	return nil
}

// State returns the current state.
func (c *Controller) State() State { return State(c.state.Load()) }

// Session returns the session id.
func (c *Controller) Session() string { return c.session }

// Profile returns the controller's profile.
func (c *Controller) Profile() *profile.Profile { return c.profile }

// Catalog returns the live catalog, or nil before initialization.
func (c *Controller) Catalog() *catalog.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog
}

// Captures returns the installed capture hooks in profile order.
func (c *Controller) Captures() []*hook.Capture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*hook.Capture(nil), c.captures...)
}

// CaptureAddrs returns the resolved capture addresses in profile order.
func (c *Controller) CaptureAddrs() []uintptr {
	if c.bootstrapHook() == nil {
		return nil
	}
	addrs := make([]uintptr, len(c.plan))
	for i, pc := range c.plan {
		addrs[i] = pc.addr
	}
	return addrs
}

// Close releases the catalog's file handle. Capture detours stay attached
// and keep recording in memory.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Close()
}
