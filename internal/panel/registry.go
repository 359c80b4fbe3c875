package panel

import (
	"sync"
	"time"
)

const (
	// DefaultTTL bounds how long an idle page session is kept.
	DefaultTTL = 30 * time.Minute
	// DefaultMaxSessions bounds how many page sessions are live at once.
	DefaultMaxSessions = 10000
)

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry tracks the mounted controller of every live page session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	max      int
	now      func() time.Time
	observer Observer
}

// RegistryConfig configures a Registry. When MaxSessions sessions are live,
// mounting another evicts the one idle the longest.
type RegistryConfig struct {
	TTL         time.Duration
	MaxSessions int
	Now         func() time.Time
	Observer    Observer
}

// NewRegistry constructs an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	limit := cfg.MaxSessions
	if limit <= 0 {
		limit = DefaultMaxSessions
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*session),
		ttl:      ttl,
		max:      limit,
		now:      now,
		observer: cfg.Observer,
	}
}

// Mount creates the controller for a newly rendered page.
func (r *Registry) Mount() *Controller {
	opts := []Option{WithClock(r.now)}
	if r.observer != nil {
		opts = append(opts, WithObserver(r.observer))
	}
	c := NewController(opts...)

	r.mu.Lock()
	var evicted *Controller
	if len(r.sessions) >= r.max {
		evicted = r.evictOldestLocked()
	}
	r.sessions[c.ID()] = &session{controller: c, lastSeen: r.now()}
	r.mu.Unlock()

	if evicted != nil {
		evicted.Teardown()
	}
	return c
}

func (r *Registry) evictOldestLocked() *Controller {
	var (
		oldestID string
		oldest   *session
	)
	for id, s := range r.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, s
		}
	}
	if oldest == nil {
		return nil
	}
	delete(r.sessions, oldestID)
	return oldest.controller
}

// Lookup returns the controller of a live page and refreshes its idle timer.
func (r *Registry) Lookup(id string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.controller, true
}

// Unmount tears the page session down. It reports whether the page was live.
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.controller.Teardown()
	}
	return ok
}

// Sweep unmounts sessions idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	var expired []*Controller

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s.controller)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Teardown()
	}
	return len(expired)
}

// Len returns the number of live page sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
