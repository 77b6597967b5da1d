package multiplier

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Factory creates multipliers by registry key. It is safe for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	creators map[string]func() Multiplier
}

// builtin holds the multipliers compiled into every build. Optional ones
// add themselves from init functions guarded by build tags.
var builtin = map[string]func() Multiplier{
	"threaded":  func() Multiplier { return Threaded{} },
	"heap":      func() Multiplier { return Heap{} },
	"classical": func() Multiplier { return Classical{} },
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{creators: make(map[string]func() Multiplier)}
}

// NewDefaultFactory returns a factory holding every compiled-in multiplier.
func NewDefaultFactory() *Factory {
	f := NewFactory()
	for name, create := range builtin {
		f.creators[name] = create
	}
	return f
}

var globalFactory = sync.OnceValue(NewDefaultFactory)

// GlobalFactory returns the process-wide default factory.
func GlobalFactory() *Factory { return globalFactory() }

// Register adds a multiplier under name.
func (f *Factory) Register(name string, create func() Multiplier) error {
	if name == "" || create == nil {
		return fmt.Errorf("invalid registration for %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creators[name]; ok {
		return fmt.Errorf("multiplier %q is already registered", name)
	}
	f.creators[name] = create
	return nil
}

// Get returns a new multiplier registered under name.
func (f *Factory) Get(name string) (Multiplier, error) {
	f.mu.RLock()
	create, ok := f.creators[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (available: %s)", name, strings.Join(f.List(), ", "))
	}
	return create(), nil
}

// MustGet is Get for names known to be registered.
func (f *Factory) MustGet(name string) Multiplier {
	m, err := f.Get(name)
	if err != nil {
		panic(err)
	}
	return m
}

// List returns the registered names in sorted order.
func (f *Factory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
