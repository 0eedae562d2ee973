package mockapi

import (
	"sync"
	"time"

	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

// User is a registered install.
type User struct {
	ID        int64
	Payload   tracking.UserPayload
	CreatedAt time.Time
}

// Session is a recorded session.
type Session struct {
	ID         int64
	UserID     int64
	Payload    tracking.SessionPayload
	RecordedAt time.Time
}

type installKey struct {
	app      string
	pseudoID string
}

// Registry holds users and sessions in memory. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextUser int64
	nextSess int64
	users    map[int64]User
	installs map[installKey]int64
	sessions map[int64][]Session
}

// NewRegistry returns an empty registry. User and session ids start at 1.
func NewRegistry() *Registry {
	return &Registry{
		now:      time.Now,
		users:    make(map[int64]User),
		installs: make(map[installKey]int64),
		sessions: make(map[int64][]Session),
	}
}

// AddUser registers p and returns its user id. created is false when the
// install was already known.
func (r *Registry) AddUser(p tracking.UserPayload) (id int64, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := installKey{app: p.App, pseudoID: p.PseudoID}
	if id, ok := r.installs[key]; ok {
		return id, false
	}

	r.nextUser++
	id = r.nextUser
	r.users[id] = User{ID: id, Payload: p, CreatedAt: r.now()}
	r.installs[key] = id
	return id, true
}

// AddSession records p for its user.
func (r *Registry) AddSession(p tracking.SessionPayload) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[p.UserID]; !ok {
		return Session{}, ErrUnknownUser
	}

	r.nextSess++
	s := Session{ID: r.nextSess, UserID: p.UserID, Payload: p, RecordedAt: r.now()}
	r.sessions[p.UserID] = append(r.sessions[p.UserID], s)
	return s, nil
}

// User returns a registered user.
func (r *Registry) User(id int64) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

// Users returns the number of registered users.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Sessions returns a copy of the sessions recorded for a user, oldest first.
func (r *Registry) Sessions(userID int64) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Session(nil), r.sessions[userID]...)
}
