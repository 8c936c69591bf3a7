package catalog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/roach88/namedump/internal/namehash"
)

// DefaultPath is the catalog file name used when a profile does not set one.
const DefaultPath = "name_db.txt"

// maxLineBytes bounds a single catalog line during Load.
const maxLineBytes = 1 << 20

// Catalog is the thread-safe, append-only set of recorded names.
//
// The zero value is not usable; create one with Open.
type Catalog struct {
	alg    namehash.Algorithm
	path   string
	logger *slog.Logger
	fsync  bool
	verify bool

	mu         sync.Mutex
	seen       map[namehash.Hash]struct{}
	names      map[namehash.Hash]string // only populated with collision checks on
	file       *os.File
	degraded   bool
	collisions int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// WithSync makes every append call fsync in addition to the write.
func WithSync(enabled bool) Option {
	return func(c *Catalog) { c.fsync = enabled }
}

// WithCollisionCheck keeps the first name seen for every hash so that a
// different name with the same hash is counted and logged. Names differing
// only in ASCII case are not counted. Colliding names are still treated as
// duplicates.
func WithCollisionCheck(enabled bool) Option {
	return func(c *Catalog) { c.verify = enabled }
}

// New creates an empty catalog that is not attached to any file yet.
// Call Load and then OpenAppend, or use Open which does both.
func New(path string, alg namehash.Algorithm, opts ...Option) *Catalog {
	c := &Catalog{
		alg:    alg,
		path:   path,
		logger: slog.Default(),
		seen:   make(map[namehash.Hash]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.verify {
		c.names = make(map[namehash.Hash]string)
	}
	return c
}

// Open creates a catalog at path, seeds it from any existing entries and
// opens the file for appending. Open never fails: storage problems leave the
// catalog degraded and are logged.
func Open(path string, alg namehash.Algorithm, opts ...Option) *Catalog {
	c := New(path, alg, opts...)
	c.Load(path)
	c.OpenAppend()
	return c
}

// Load reads existing entries from path into the membership set and returns
// how many distinct hashes were added. A missing file is an empty catalog.
// An unreadable or malformed file is also treated as empty: nothing from it
// is kept.
func (c *Catalog) Load(path string) int {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("catalog unreadable, starting empty", "path", path, "error", err)
		}
		return 0
	}
	defer f.Close()

	loaded, err := ReadNames(f)
	if err != nil {
		c.logger.Warn("catalog malformed, starting empty", "path", path, "error", err)
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, name := range loaded {
		h := namehash.SumString(c.alg, name)
		if _, ok := c.seen[h]; ok {
			continue
		}
		c.seen[h] = struct{}{}
		if c.verify {
			c.names[h] = name
		}
		added++
	}
	c.logger.Debug("catalog loaded", "path", path, "entries", added)
	return added
}

// ReadNames returns the names in a catalog stream, in file order. Blank lines
// are skipped and a trailing carriage return is dropped.
func ReadNames(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	var names []string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// OpenAppend opens the backing file for appending, creating it if needed.
// On failure the catalog is marked degraded.
func (c *Catalog) OpenAppend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file != nil {
		return
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		c.degradeLocked(fmt.Errorf("open %s for append: %w", c.path, err))
		return
	}
	if err := terminateLastLine(f); err != nil {
		f.Close()
		c.degradeLocked(fmt.Errorf("repair %s: %w", c.path, err))
		return
	}
	c.file = f
	c.degraded = false
}

// terminateLastLine appends a newline when an earlier run stopped in the
// middle of a line, so the next entry starts on a line of its own.
func terminateLastLine(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.WriteString("\n")
	return err
}

// TryRecord records name if its hash has not been seen. It returns true when
// the name is new. The membership check, the insertion and the durable append
// happen under a single lock.
//
// Empty names and names containing line terminators cannot be represented
// in the file format and are rejected.
func (c *Catalog) TryRecord(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "\r\n") {
		c.logger.Debug("catalog rejected name with line terminator", "name", name)
		return false
	}
	h := namehash.SumString(c.alg, name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[h]; ok {
		if c.verify && !strings.EqualFold(c.names[h], name) {
			c.collisions++
			c.logger.Warn("hash collision",
				"hash", namehash.Format(h, c.alg.Width()),
				"recorded", c.names[h],
				"dropped", name,
			)
		}
		return false
	}

	c.seen[h] = struct{}{}
	if c.verify {
		c.names[h] = name
	}
	c.appendLocked(name)
	return true
}

// appendLocked writes one line and flushes it. Callers hold c.mu.
func (c *Catalog) appendLocked(name string) {
	if c.file == nil {
		return
	}
	if _, err := c.file.WriteString(name + "\n"); err != nil {
		c.degradeLocked(fmt.Errorf("append to %s: %w", c.path, err))
		return
	}
	if c.fsync {
		if err := c.file.Sync(); err != nil {
			c.degradeLocked(fmt.Errorf("sync %s: %w", c.path, err))
		}
	}
}

func (c *Catalog) degradeLocked(err error) {
	if c.file != nil {
		c.file.Close()
		c.file = nil
	}
	if !c.degraded {
		c.logger.Warn("catalog persistence disabled, continuing in memory", "error", err)
	}
	c.degraded = true
}

// Contains reports whether a name with the same hash has been recorded.
func (c *Catalog) Contains(name string) bool {
	h := namehash.SumString(c.alg, name)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[h]
	return ok
}

// Len returns the number of distinct hashes known.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Collisions returns the number of colliding names dropped. It is always zero
// unless WithCollisionCheck was set.
func (c *Catalog) Collisions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collisions
}

// Degraded reports whether persistence has been disabled.
func (c *Catalog) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// Path returns the backing file path.
func (c *Catalog) Path() string {
	return c.path
}

// Algorithm returns the hash used for membership.
func (c *Catalog) Algorithm() namehash.Algorithm {
	return c.alg
}

// Close releases the file handle. Recording continues in memory afterwards.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
