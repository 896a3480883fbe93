package flow

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// TabRegistry maps admin console tab ids to their load functions. Tabs
// register once at startup and a single dispatcher activates them; no tab
// wraps or patches the dispatcher.
type TabRegistry struct {
	mu     sync.Mutex
	tabs   map[string]func(ctx context.Context) error
	active string
}

func NewTabRegistry() *TabRegistry {
	return &TabRegistry{tabs: make(map[string]func(ctx context.Context) error)}
}

// Register binds a tab id to its loader. Registering an id twice replaces
// the loader.
func (r *TabRegistry) Register(id string, loader func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabs[id] = loader
}

// Show activates a tab: runs its loader and records it as current.
func (r *TabRegistry) Show(ctx context.Context, id string) error {
	r.mu.Lock()
	loader, ok := r.tabs[id]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown tab: %s", id)
	}
	if err := loader(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	r.active = id
	r.mu.Unlock()
	return nil
}

// Active returns the id of the last successfully shown tab.
func (r *TabRegistry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Tabs lists registered ids in stable order.
func (r *TabRegistry) Tabs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.tabs))
	for id := range r.tabs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
