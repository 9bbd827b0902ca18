package marketplace

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

// SessionGate wraps the identity provider.  It caches the last known
// session, fans changes out to scoped subscribers and gates mutating
// operations.  Until Start completes the gate is loading and
// RequireSession fails with ErrLoading.
type SessionGate struct {
	provider IdentityProvider
	log      *logrus.Entry

	mu          sync.RWMutex
	loaded      bool
	session     *model.Session
	handlers    map[int]func(model.Session, bool)
	nextID      int
	unsubscribe func()
}

func NewSessionGate(provider IdentityProvider) *SessionGate {
	if provider == nil {
		panic("nil identity provider passed to NewSessionGate")
	}
	return &SessionGate{
		provider: provider,
		log:      logger.WithComponent("session_gate"),
		handlers: make(map[int]func(model.Session, bool)),
	}
}

// Start subscribes to provider changes and performs the initial lookup.
// A failed lookup is logged and leaves the gate signed out.  A change
// delivered while the lookup is in flight wins over the lookup result.
func (g *SessionGate) Start(ctx context.Context) {
	unsub := g.provider.Subscribe(g.apply)
	g.mu.Lock()
	g.unsubscribe = unsub
	g.mu.Unlock()

	s, ok, err := g.provider.CurrentSession(ctx)
	if err != nil {
		g.log.WithError(err).Warn("initial session lookup failed")
		ok = false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loaded {
		return
	}
	g.loaded = true
	if ok {
		g.session = &s
	}
}

func (g *SessionGate) apply(s model.Session, ok bool) {
	g.mu.Lock()
	g.loaded = true
	if ok {
		g.session = &s
	} else {
		g.session = nil
	}
	handlers := make([]func(model.Session, bool), 0, len(g.handlers))
	for _, h := range g.handlers {
		handlers = append(handlers, h)
	}
	g.mu.Unlock()

	g.log.WithFields(logrus.Fields{"signed_in": ok, "user_id": s.UserID}).Debug("session changed")
	for _, h := range handlers {
		h(s, ok)
	}
}

// Loading reports whether the initial lookup is still outstanding.
func (g *SessionGate) Loading() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.loaded
}

// Current returns the last known session.
func (g *SessionGate) Current() (model.Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return model.Session{}, false
	}
	return *g.session, true
}

// RequireSession returns the session or a typed failure.
func (g *SessionGate) RequireSession() (model.Session, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.loaded {
		return model.Session{}, ErrLoading
	}
	if g.session == nil {
		return model.Session{}, ErrUnauthenticated
	}
	return *g.session, nil
}

// OnChange registers handler for sign-in, sign-out and refresh events.
// The returned function releases the registration; Close releases all.
func (g *SessionGate) OnChange(handler func(model.Session, bool)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.handlers[id] = handler
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.handlers, id)
			g.mu.Unlock()
		})
	}
}

// SignOut asks the provider to end the session.  The gate learns about
// the change through its subscription.
func (g *SessionGate) SignOut(ctx context.Context) error {
	return g.provider.SignOut(ctx)
}

// Close releases the provider subscription and every handler.
func (g *SessionGate) Close() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.handlers = make(map[int]func(model.Session, bool))
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
