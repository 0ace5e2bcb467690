package collector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/finratio/internal/core"
)

// Registry manages price providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]PriceProvider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]PriceProvider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(p PriceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (PriceProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// MustGet is Get returning a config error for unknown names
func (r *Registry) MustGet(name string) (PriceProvider, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown price provider %q", name))
	}
	return p, nil
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.providers))
	for name := range r.providers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
