package cutlist

import "sync"

// Registry is the run-wide set of committed output names. The orchestrator
// owns one per run.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Contains reports whether name was committed earlier in the run.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.names[name]
	return ok
}

// Names returns the committed names in commit order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Release removes names, used when a file whose cuts were already committed
// is abandoned before any of its commands were kept.
func (r *Registry) Release(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := r.names[name]; ok {
			delete(r.names, name)
			drop[name] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := r.order[:0]
	for _, name := range r.order {
		if _, ok := drop[name]; !ok {
			kept = append(kept, name)
		}
	}
	r.order = kept
}

// Reset clears the registry for a new run.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = make(map[string]struct{})
	r.order = nil
}

// commit adds names that the caller has already checked for conflicts.
func (r *Registry) commit(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.names[name]; ok {
			continue
		}
		r.names[name] = struct{}{}
		r.order = append(r.order, name)
	}
}
