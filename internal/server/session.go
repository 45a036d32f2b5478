package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/form"
)

// SessionCookie names the cookie holding the caller's session ID
const SessionCookie = "pricer_session"

const sweepInterval = time.Minute

// sessionStore keeps each caller's last single prediction in memory. Entries
// expire ttl after their last update.
type sessionStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	items     map[string]*form.Session
	lastSweep time.Time
	now       func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionStore{
		ttl:   ttl,
		items: make(map[string]*form.Session),
		now:   time.Now,
	}
}

// get returns a copy of the session, or false if it is absent or expired
func (s *sessionStore) get(id string) (form.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return form.Session{}, false
	}
	if s.now().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.items, id)
		return form.Session{}, false
	}
	return *sess, true
}

func (s *sessionStore) record(id string, inputs map[string]float64, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > sweepInterval {
		for k, sess := range s.items {
			if now.Sub(sess.UpdatedAt) > s.ttl {
				delete(s.items, k)
			}
		}
		s.lastSweep = now
	}

	sess, ok := s.items[id]
	if !ok {
		sess = &form.Session{}
		s.items[id] = sess
	}
	sess.Record(inputs, price)
	sess.UpdatedAt = now
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// sessionID returns the caller's session ID. When create is set and the
// request carries none, a new ID is issued in a cookie.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request, create bool) (string, bool) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value, true
		}
	}
	if !create {
		return "", false
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.sessions.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}
