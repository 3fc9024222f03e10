package game

import (
	"fmt"
	"sync"
)

// Registry maps game ids to engines.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string
}

func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine)}
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Register(e Engine) error {
	id := e.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.engines[id]; ok {
		return fmt.Errorf("game %q already registered", id)
	}
	r.engines[id] = e
	r.order = append(r.order, id)
	return nil
}

func (r *Registry) Get(id string) (Engine, error) {
	r.mu.RLock()
	e, ok := r.engines[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	return e, nil
}

// List returns the registered games in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.engines[id].Info())
	}
	return out
}
