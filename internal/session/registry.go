// Package session gives every dashboard user an independent filter engine.
// See doc.go for complete package documentation.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/penguins/internal/dataset"
	"github.com/dreamware/penguins/internal/filter"
)

// ErrSessionNotFound is returned for an unknown or expired session ID
var ErrSessionNotFound = errors.New("session not found")

// Session is one user's view of the dashboard.
//
// The session owns its Engine exclusively; the Dataset behind it is shared
// read-only with every other session.
type Session struct {
	// ID is a random UUID, safe to hand to browsers.
	ID string

	// Created is when the session was opened.
	Created time.Time

	engine     *filter.Engine
	lastAccess atomic.Int64 // Unix nanoseconds
}

// Engine returns the session's filter engine
func (s *Session) Engine() *filter.Engine { return s.engine }

// LastAccess returns when the session was last looked up
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

// Info is a snapshot of a session for listings.
type Info struct {
	ID         string        `json:"id"`
	Created    time.Time     `json:"created"`
	LastAccess time.Time     `json:"last_access"`
	Params     filter.Params `json:"-"`
}

// Registry tracks live sessions by ID.
//
// Concurrency Model:
//   - Lookups use RLock so concurrent requests do not serialize
//   - Create, Delete and Expire take the exclusive lock
//   - Engines synchronize themselves; no registry lock is held while
//     an engine computes
type Registry struct {
	ds         *dataset.Dataset
	engineOpts []filter.Option
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithEngineOptions passes options to every engine the registry creates.
func WithEngineOptions(opts ...filter.Option) RegistryOption {
	return func(r *Registry) { r.engineOpts = append(r.engineOpts, opts...) }
}

// WithLogger sets the registry logger.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry whose sessions filter ds.
func NewRegistry(ds *dataset.Dataset, opts ...RegistryOption) *Registry {
	r := &Registry{
		ds:       ds,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dataset returns the shared dataset
func (r *Registry) Dataset() *dataset.Dataset { return r.ds }

// Create opens a session whose engine starts at p.
func (r *Registry) Create(p filter.Params) *Session {
	now := r.now()
	s := &Session{
		ID:      r.newID(),
		Created: now,
		engine:  filter.NewEngine(r.ds, p, r.engineOpts...),
	}
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.logger.Debug("session created", zap.String("session", s.ID), zap.Int("active", n))
	return s
}

// Get returns the session and marks it as recently used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete closes a session.
// Returns ErrSessionNotFound if it does not exist.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	r.logger.Debug("session deleted", zap.String("session", id))
	return nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns a snapshot of all sessions, oldest first.
func (r *Registry) List() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, Info{
			ID:         s.ID,
			Created:    s.Created,
			LastAccess: s.LastAccess(),
			Params:     s.engine.Params(),
		})
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Info) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Expire removes every session not used since cutoff and returns their IDs.
func (r *Registry) Expire(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for id, s := range r.sessions {
		if s.LastAccess().Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, id)
		}
	}
	slices.Sort(expired)
	return expired
}
