package formats

import (
	"fmt"
	"slices"
	"sync"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/i18n"
)

// Registry maps format names to formats. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]*neurarrow.FormatSchema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]*neurarrow.FormatSchema)}
}

// NewBuiltinRegistry returns a registry holding the built-in formats.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, f := range Builtin() {
		r.formats[f.Name()] = f
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry, seeded with the built-ins.
func Default() *Registry {
	defaultOnce.Do(func() { defaultReg = NewBuiltinRegistry() })
	return defaultReg
}

// Register adds f. A name can be registered once.
func (r *Registry) Register(f *neurarrow.FormatSchema) error {
	if f == nil {
		return fmt.Errorf("formats: nil format")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formats[f.Name()]; exists {
		return neurarrow.Issues{neurarrow.Root().Issue(neurarrow.CodeDuplicateDeclaration,
			i18n.T(neurarrow.CodeDuplicateDeclaration, map[string]string{"name": f.Name()}), "format", f.Name())}
	}
	r.formats[f.Name()] = f
	return nil
}

// Lookup returns the format registered under name.
func (r *Registry) Lookup(name string) (*neurarrow.FormatSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[name]
	return f, ok
}

// MustLookup is Lookup that panics on an unknown name.
func (r *Registry) MustLookup(name string) *neurarrow.FormatSchema {
	f, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Get is Lookup returning an unknown_format issue when name is absent.
func (r *Registry) Get(name string) (*neurarrow.FormatSchema, error) {
	if f, ok := r.Lookup(name); ok {
		return f, nil
	}
	it := neurarrow.Root().Issue(neurarrow.CodeUnknownFormat,
		i18n.T(neurarrow.CodeUnknownFormat, map[string]string{"name": name}), "format", name, "known", r.Names())
	return nil, neurarrow.Issues{it}
}

// Names lists registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.formats))
	for n := range r.formats {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Lookup resolves name in the default registry.
func Lookup(name string) (*neurarrow.FormatSchema, bool) { return Default().Lookup(name) }
