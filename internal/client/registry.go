package client

import "sync"

// Registry is the embedding application's explicit client registry, keyed
// by configuration-entry identity. One client instance is shared per entry.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Create returns the client registered under entryID, building it with
// build on first use. A failed build registers nothing.
func (r *Registry) Create(entryID string, build func() (*Client, error)) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[entryID]; ok {
		return c, nil
	}
	c, err := build()
	if err != nil {
		return nil, err
	}
	r.clients[entryID] = c
	return c, nil
}

// Lookup finds an existing client.
func (r *Registry) Lookup(entryID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[entryID]
	return c, ok
}

// Destroy removes a client from the registry.
func (r *Registry) Destroy(entryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, entryID)
}
