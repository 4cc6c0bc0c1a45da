package store

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Registry owns one *Store per agent plus the shared swarm store, each
// opened lazily and cached. Callers must clone a *Store handle out under
// Registry.mu and then operate on it without holding the registry lock, so
// a slow agent query never blocks another agent's lookup.
type Registry struct {
	mu      sync.Mutex
	dataDir string
	agents  map[string]*Store
	swarm   *Store
}

// NewRegistry returns a Registry rooted at dataDir, matching the
// <data_dir>/agents/<name>/agent.db and <data_dir>/swarm.db layout.
func NewRegistry(dataDir string) *Registry {
	return &Registry{dataDir: dataDir, agents: make(map[string]*Store)}
}

// Agent returns the Store for name, opening its SQLite file on first use.
func (r *Registry) Agent(name string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.agents[name]; ok {
		return s, nil
	}
	path := filepath.Join(r.dataDir, "agents", name, "agent.db")
	s, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open agent store %s: %w", name, err)
	}
	r.agents[name] = s
	return s, nil
}

// Swarm returns the single shared swarm Store, opening it on first use.
func (r *Registry) Swarm() (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.swarm != nil {
		return r.swarm, nil
	}
	path := filepath.Join(r.dataDir, "swarm.db")
	s, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open swarm store: %w", err)
	}
	r.swarm = s
	return s, nil
}

// CloseAll closes every opened Store. Intended for orderly daemon shutdown.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, s := range r.agents {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close agent store %s: %w", name, err)
		}
	}
	if r.swarm != nil {
		if err := r.swarm.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close swarm store: %w", err)
		}
	}
	return firstErr
}
