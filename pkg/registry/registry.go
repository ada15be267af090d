package registry

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/stepwise/pkg/ports"
)

// Registry manages the utility functions exposed to step code as `helpers`.
// Once handed to an evaluator the set is read-only: Snapshot returns a copy.
type Registry struct {
	mu      sync.RWMutex
	helpers map[string]ports.Helper
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		helpers: make(map[string]ports.Helper),
	}
}

// Default returns a registry holding the built-in helpers.
func Default() *Registry {
	r := NewRegistry()
	r.Register("uppercase", strings.ToUpper)
	r.Register("lowercase", strings.ToLower)
	r.Register("trim", strings.TrimSpace)
	r.Register("trimStart", func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) })
	r.Register("trimEnd", func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) })
	r.Register("capitalize", capitalize)
	r.Register("reverse", reverse)
	r.Register("lines", lines)
	r.Register("words", func(s string) string { return strings.Join(strings.Fields(s), " ") })
	return r
}

// Register adds a helper to the registry.
// If a helper with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ports.Helper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.helpers[name] = fn
}

// Lookup returns the helper registered under name.
func (r *Registry) Lookup(name string) (ports.Helper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.helpers[name]
	return fn, ok
}

// Names returns the sorted helper names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the registered helpers.
func (r *Registry) Snapshot() map[string]ports.Helper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ports.Helper, len(r.helpers))
	for k, v := range r.helpers {
		out[k] = v
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// lines drops blank lines and normalizes line endings to \n.
func lines(s string) string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
