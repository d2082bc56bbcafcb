package session

import "sync"

// Registry tracks live sessions by ID. It is mutated only on session create
// and destroy, from many connections' goroutines, so access is lock-guarded.
// Injected into the transport layer rather than held as a package global.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Orchestrator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Orchestrator)}
}

// Add registers a session.
func (r *Registry) Add(id string, o *Orchestrator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = o
}

// Remove unregisters a session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get returns the session with the given ID, if registered.
func (r *Registry) Get(id string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.sessions[id]
	return o, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
