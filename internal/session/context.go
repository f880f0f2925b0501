package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ets2dash/tdashboard/pkg/core"
)

// Context holds the current session. A zero Context has no active session.
type Context struct {
	mu      sync.RWMutex
	current *core.Session
	frames  uint64
}

// NewContext creates a new Context with no active session.
func NewContext() *Context {
	return &Context{}
}

// Start opens a new session and returns a copy of it. Any active session is
// replaced.
func (c *Context) Start(game, locale, truckMake, source string, now time.Time) core.Session {
	s := &core.Session{
		ID:        uuid.NewString(),
		StartTime: now.UTC(),
		Game:      game,
		Locale:    locale,
		TruckMake: truckMake,
		Source:    source,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
	c.frames = 0
	return *s
}

// End closes the active session and returns it with EndTime set.
// ok is false when no session was active.
func (c *Context) End(now time.Time) (s core.Session, frames uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return core.Session{}, 0, false
	}
	c.current.EndTime = now.UTC()
	s, frames = *c.current, c.frames
	c.current = nil
	c.frames = 0
	return s, frames, true
}

// Current returns a copy of the active session.
func (c *Context) Current() (core.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return core.Session{}, false
	}
	return *c.current, true
}

// ID returns the active session id, or "" when none is active.
func (c *Context) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.ID
}

// Active reports whether a session is open.
func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// CountFrame records one frame against the active session and returns the
// new total.
func (c *Context) CountFrame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	c.frames++
	return c.frames
}

// SetTruck updates the truck make of the active session.
func (c *Context) SetTruck(truckMake string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.TruckMake = truckMake
	}
}

// LogAttrs returns the attributes attached to every log record while a
// session is active.
func (c *Context) LogAttrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	return []slog.Attr{
		slog.String("sessionId", c.current.ID),
		slog.String("game", c.current.Game),
		slog.String("locale", c.current.Locale),
	}
}
