package drops

import (
	"sync"

	"github.com/google/uuid"

	"shiplife/internal/domain/drop"
)

// Registry holds drop sessions in memory. At most one session is unfinished
// at a time; an extracted session is kept until the next drop starts.
type Registry struct {
	NewID func() string

	mu       sync.Mutex
	sessions map[string]drop.Session
}

func NewRegistry() *Registry {
	return &Registry{NewID: uuid.NewString, sessions: map[string]drop.Session{}}
}

func (r *Registry) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

func (r *Registry) active() (drop.Session, bool) {
	for _, s := range r.sessions {
		if s.Phase != drop.PhaseFinished {
			return s, true
		}
	}
	return drop.Session{}, false
}

func (r *Registry) get(id string) (drop.Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) put(s drop.Session) {
	if r.sessions == nil {
		r.sessions = map[string]drop.Session{}
	}
	r.sessions[s.ID] = s
}

// pruneFinished forgets extracted sessions once a new drop starts.
func (r *Registry) pruneFinished() {
	for id, s := range r.sessions {
		if s.Phase == drop.PhaseFinished {
			delete(r.sessions, id)
		}
	}
}
