package browser

import (
	"sync"

	"github.com/ternarybob/arbor"
)

// Terminator is the piece of a session the registry needs: best-effort,
// idempotent resource release.
type Terminator interface {
	Terminate()
}

// Registry tracks every session created during a run so a global shutdown
// can terminate all of them even mid-task. It is the one structure mutated
// by multiple session-owning goroutines concurrently.
type Registry struct {
	mu       sync.Mutex
	sessions []Terminator
	logger   arbor.ILogger
}

// NewRegistry creates an empty session registry.
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{logger: logger}
}

// Add registers a live session for global shutdown.
func (r *Registry) Add(s Terminator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
}

// Remove drops a session that was terminated by its owner.
func (r *Registry) Remove(s Terminator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.sessions {
		if existing == s {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return
		}
	}
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// TerminateAll terminates every outstanding session. Termination is
// best-effort; sessions are expected to suppress their own cleanup errors.
func (r *Registry) TerminateAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = nil
	r.mu.Unlock()

	for _, s := range sessions {
		s.Terminate()
	}

	if r.logger != nil && len(sessions) > 0 {
		r.logger.Debug().Int("count", len(sessions)).Msg("All tracked sessions terminated")
	}
}
