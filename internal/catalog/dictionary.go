package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/roach88/namedump/internal/namehash"
)

// Dictionary maps hashes back to names. It is not safe for concurrent
// mutation and is meant for offline lookups over a finished catalog.
type Dictionary struct {
	alg   namehash.Algorithm
	names map[namehash.Hash]string
}

// NewDictionary returns an empty dictionary keyed by alg.
func NewDictionary(alg namehash.Algorithm) *Dictionary {
	return &Dictionary{alg: alg, names: make(map[namehash.Hash]string)}
}

// Add inserts name unless it is a placeholder or its hash is already taken.
func (d *Dictionary) Add(name string) bool {
	if name == "" || namehash.IsPlaceholder(name) {
		return false
	}
	h := namehash.SumString(d.alg, name)
	if _, ok := d.names[h]; ok {
		return false
	}
	d.names[h] = name
	return true
}

// AddReader adds every non-empty line of r and returns how many were new.
func (d *Dictionary) AddReader(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	added := 0
	for scanner.Scan() {
		if d.Add(strings.TrimSuffix(scanner.Text(), "\r")) {
			added++
		}
	}
	return added, scanner.Err()
}

// AddFile adds every line of the catalog file at path.
func (d *Dictionary) AddFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	n, err := d.AddReader(f)
	if err != nil {
		return n, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return n, nil
}

// Lookup returns the name recorded for h.
func (d *Dictionary) Lookup(h namehash.Hash) (string, bool) {
	name, ok := d.names[h]
	return name, ok
}

// LookupPlaceholder resolves a "$HASH.ext" file name. For 32-bit hashes the
// extension must match the recorded name's extension (ignoring case) since
// the archive keys those entries by hash and type together.
func (d *Dictionary) LookupPlaceholder(file string) (string, bool) {
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if !namehash.IsPlaceholder(stem) {
		return "", false
	}
	h, err := namehash.Parse(stem)
	if err != nil {
		return "", false
	}
	name, ok := d.names[h]
	if !ok {
		return "", false
	}
	if d.alg.Width() == 32 && ext != "" && !strings.EqualFold(path.Ext(name), ext) {
		return "", false
	}
	return name, true
}

// NameOrPlaceholder returns the recorded name for h, or "$HASH.ext" when the
// hash is unknown.
func (d *Dictionary) NameOrPlaceholder(h namehash.Hash, ext string) string {
	if name, ok := d.names[h]; ok {
		return name
	}
	return namehash.Format(h, d.alg.Width()) + "." + ext
}

// Len returns the number of names.
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Names returns every name in byte order.
func (d *Dictionary) Names() []string {
	out := make([]string, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// WriteSorted writes every name, one per line, in byte order.
func (d *Dictionary) WriteSorted(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range d.Names() {
		if _, err := bw.WriteString(name + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
