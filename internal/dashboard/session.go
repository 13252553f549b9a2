package dashboard

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/ChiCivicLab/violations-dashboard/internal/utils"
)

const sessionCookie = "dash_session"

// Session bundles one browser context's controller with its four adapters.
// Criteria and view state are private to the session; the joined dataset
// underneath is shared and read-only.
type Session struct {
	Controller *Controller
	Map        *MapAdapter
	Series     *TimeSeriesAdapter
	TopFines   *TopFinesAdapter
	Table      *TableAdapter
}

// SessionStore keeps sessions in memory for the process lifetime. Nothing is
// persisted: a restart means fresh default filters for everyone.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	create   func() *Session
}

func NewSessionStore(create func() *Session) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		create:   create,
	}
}

// Middleware guarantees every request downstream has a live session: it reuses
// the cookie's session when known and otherwise creates one, setting the
// cookie on the way out.
func (s *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			id = cookie.Value
		}

		s.mu.Lock()
		_, known := s.sessions[id]
		if !known {
			id = uuid.NewString()
			s.sessions[id] = s.create()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		s.mu.Unlock()

		ctx := context.WithValue(r.Context(), utils.ContextSessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Get returns the request's session. Middleware ordering guarantees it
// exists; the bool guards handlers mounted without the middleware.
func (s *SessionStore) Get(r *http.Request) (*Session, bool) {
	id, ok := utils.GetSessionIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
