package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/cascade/pkg/ports"
)

// Opener opens a reaction dataset at path.
type Opener func(ctx context.Context, path string) (ports.ReactionSource, error)

// Registry manages the available data source drivers.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Opener
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Opener),
	}
}

// Register adds a driver to the registry.
// If a driver with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = fn
}

// Open looks up a driver by name and opens path with it.
// Returns an error if the driver is not found.
func (r *Registry) Open(ctx context.Context, name, path string) (ports.ReactionSource, error) {
	r.mu.RLock()
	fn, ok := r.drivers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown source driver %q (supported: %s)", name, strings.Join(r.Drivers(), ", "))
	}

	return fn(ctx, path)
}

// Drivers lists the registered driver names, sorted.
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
