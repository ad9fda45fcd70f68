// Package apptable is the in-memory app image registry exec looks
// programs up in by name (spec.md §4.6: "Look up the program image by
// name in the in-memory app table built from the linker-packed user
// binaries"). The original rCore-tutorial builds this table by having
// its build script emit a link_app.S that the kernel's linker script
// pulls in as a data section; Go has no equivalent of pulling arbitrary
// build-time files into a linked binary other than go:embed (the same
// mechanism the pack's tinyrange-cc uses for its bundled assets), so
// Table embeds every file under apps/ as one ELF image keyed by its
// base name.
package apptable

import (
	"embed"
	"sort"
	"strings"
	"sync"
)

//go:embed apps
var embeddedApps embed.FS

// isELFImage filters out non-binary files (README.txt, .gitkeep) that
// live alongside the embedded app images for documentation purposes.
func isELFImage(name string) bool {
	return !strings.HasSuffix(name, ".txt") && !strings.HasPrefix(name, ".")
}

// Table is the app name -> ELF64 image registry. The zero value is
// empty; NewEmbedded populates one from the apps/ directory bundled
// into the binary, and tests populate one directly with Register.
type Table struct {
	mu     sync.RWMutex
	images map[string][]byte
	order  []string
}

// NewEmpty returns a Table with no images registered.
func NewEmpty() *Table {
	return &Table{images: make(map[string][]byte)}
}

// NewEmbedded returns a Table pre-populated from every file embedded
// under apps/, keyed by file name.
func NewEmbedded() (*Table, error) {
	t := NewEmpty()
	entries, err := embeddedApps.ReadDir("apps")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !isELFImage(e.Name()) {
			continue
		}
		data, err := embeddedApps.ReadFile("apps/" + e.Name())
		if err != nil {
			return nil, err
		}
		t.Register(e.Name(), data)
	}
	return t, nil
}

// Register adds or replaces the image for name.
func (t *Table) Register(name string, elf []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.images[name]; !exists {
		t.order = append(t.order, name)
	}
	t.images[name] = elf
}

// Lookup returns the ELF image registered under name, and whether one
// was found — exec returns -1 (ENOENT) when it is not.
func (t *Table) Lookup(name string) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	img, ok := t.images[name]
	return img, ok
}

// Names returns every registered app name in registration order, the
// Go analog of rCore-tutorial's APP_NAMES console listing.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// SortedNames returns every registered app name sorted lexically.
func (t *Table) SortedNames() []string {
	names := t.Names()
	sort.Strings(names)
	return names
}
