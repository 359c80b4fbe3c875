// Package panel owns the definitions panel state of a rendered page.
package panel

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"covidtracking.org/statecards/internal/definitions"
)

// Observer is notified whenever a controller opens a query. repeated is true
// when the query equals the one already shown; the visible state is the same
// either way.
type Observer interface {
	PanelOpened(pageID string, q definitions.Query, repeated bool)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(pageID string, q definitions.Query, repeated bool)

// PanelOpened implements Observer.
func (f ObserverFunc) PanelOpened(pageID string, q definitions.Query, repeated bool) {
	f(pageID, q, repeated)
}

// State is the panel view's read model.
type State struct {
	PageID  string
	Current *definitions.Query
}

// Open reports whether a query is being shown.
func (s State) Open() bool {
	return s.Current != nil
}

// Controller holds the single definitions panel of one page.
type Controller struct {
	mu       sync.Mutex
	id       string
	current  *definitions.Query
	observer Observer
	torn     bool
	now      func() time.Time
}

// Option customises a Controller.
type Option func(*Controller)

// WithObserver registers a telemetry observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithID fixes the page identifier instead of generating one.
func WithID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithClock overrides the time source used for generated identifiers.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController mounts a panel controller for a freshly rendered page.
func NewController(opts ...Option) *Controller {
	c := &Controller{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = ulid.MustNew(ulid.Timestamp(c.now()), rand.Reader).String()
	}
	return c
}

// ID returns the page-session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Open replaces the current query with q. It never toggles the panel closed,
// and a zero query is ignored.
func (c *Controller) Open(q definitions.Query) {
	if q.IsZero() {
		return
	}
	c.mu.Lock()
	if c.torn {
		c.mu.Unlock()
		return
	}
	repeated := c.current != nil && c.current.Equal(q)
	next := q
	c.current = &next
	observer := c.observer
	c.mu.Unlock()

	if observer != nil {
		observer.PanelOpened(c.id, q, repeated)
	}
}

// Dismiss clears the current query; it backs the panel's own close control.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Current returns the query being shown, if any.
func (c *Controller) Current() (definitions.Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return definitions.Query{}, false
	}
	return *c.current, true
}

// State snapshots the controller for rendering.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{PageID: c.id}
	if c.current != nil {
		q := *c.current
		s.Current = &q
	}
	return s
}

// Teardown unmounts the controller. Later Open calls are ignored.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.torn = true
	c.current = nil
}

// Mounted reports whether Teardown has not been called yet.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.torn
}
