// ABOUTME: Session cache mirroring the auth provider into memory and the durable slot
// ABOUTME: A slot value read at start is provisional until the provider's first notification
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/auth"
	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/slot"
)

// Cache holds the current session. It is safe for concurrent use.
type Cache struct {
	provider auth.Provider
	slot     slot.Slot
	log      zerolog.Logger

	// applyMu keeps the slot, memory and subscriber deliveries in step across writers.
	applyMu sync.Mutex

	mu          sync.RWMutex
	current     *models.Session
	confirmed   bool
	started     bool
	unsubscribe func()
	subs        map[int]func(*models.Session)
	nextSub     int
	confirmedCh chan struct{}
}

// New creates a cache. Call Start before use.
func New(provider auth.Provider, s slot.Slot, log zerolog.Logger) *Cache {
	return &Cache{
		provider:    provider,
		slot:        s,
		log:         log,
		subs:        make(map[int]func(*models.Session)),
		confirmedCh: make(chan struct{}),
	}
}

// Start loads the provisional session and subscribes to the provider.
// Calling it twice is a no-op.
func (c *Cache) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.current = c.loadSlot()
	c.mu.Unlock()

	unsubscribe := c.provider.OnAuthStateChanged(c.onAuthStateChanged)

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

func (c *Cache) loadSlot() *models.Session {
	raw, err := c.slot.Get(slot.UserKey)
	if errors.Is(err, slot.ErrNotFound) {
		return nil
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to read cached session")
		return nil
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil || s.UID == "" {
		c.log.Warn().Err(err).Msg("discarding unreadable cached session")
		_ = c.slot.Delete(slot.UserKey)
		return nil
	}
	c.log.Debug().Str("uid", s.UID).Msg("loaded provisional session")
	return &s
}

func (c *Cache) onAuthStateChanged(u *auth.User) {
	var s *models.Session
	if u != nil {
		s = &models.Session{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
	}
	c.apply(s, true)
}

// apply writes s to memory and the slot, then notifies subscribers if it
// changed. Delivery happens under applyMu so every subscriber sees changes
// in the order they were applied. Subscribers must not call Login, Signup
// or Logout from the callback.
func (c *Cache) apply(s *models.Session, confirm bool) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.persist(s)

	c.mu.Lock()
	changed := !sameSession(c.current, s)
	c.current = s
	if confirm && !c.confirmed {
		c.confirmed = true
		close(c.confirmedCh)
	}
	subs := make([]func(*models.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(copySession(s))
	}
}

func (c *Cache) persist(s *models.Session) {
	if s == nil {
		if err := c.slot.Delete(slot.UserKey); err != nil {
			c.log.Warn().Err(err).Msg("failed to clear cached session")
		}
		return
	}

	raw, err := json.Marshal(s)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to encode session")
		return
	}
	if err := c.slot.Set(slot.UserKey, raw); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache session")
	}
}

// Current returns a copy of the session, or nil when signed out.
func (c *Cache) Current() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySession(c.current)
}

// Loading reports whether the provider has not yet confirmed the session.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.confirmed
}

// Confirmed reports whether the provider has delivered its first notification.
func (c *Cache) Confirmed() bool {
	return !c.Loading()
}

// WaitConfirmed blocks until the first provider notification or ctx is done.
func (c *Cache) WaitConfirmed(ctx context.Context) error {
	select {
	case <-c.confirmedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to be called with each new session value.
func (c *Cache) Subscribe(fn func(*models.Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Login signs in with the provider. It never navigates.
func (c *Cache) Login(ctx context.Context, email, password string) (*models.Session, error) {
	u, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		c.log.Info().Err(err).Str("code", auth.CodeOf(err)).Msg("login failed")
		return nil, loginError(err)
	}

	s := &models.Session{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
	c.apply(s, false)
	return copySession(s), nil
}

// Signup creates an account and best-effort sets its display name.
func (c *Cache) Signup(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	u, err := c.provider.CreateAccount(ctx, email, password)
	if err != nil {
		c.log.Info().Err(err).Str("code", auth.CodeOf(err)).Msg("signup failed")
		return nil, signupError(err)
	}

	s := &models.Session{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName}
	if displayName != "" {
		if err := c.provider.UpdateProfile(ctx, displayName); err != nil {
			c.log.Warn().Err(err).Str("uid", u.UID).Msg("failed to set display name")
		} else {
			s.DisplayName = displayName
		}
	}

	c.apply(s, false)
	return copySession(s), nil
}

// Logout signs out and clears the cached session whatever the provider says.
func (c *Cache) Logout(ctx context.Context) error {
	err := c.provider.SignOut(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("sign out failed")
	}
	c.apply(nil, false)
	return err
}

// Close stops listening to the provider.
func (c *Cache) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func sameSession(a, b *models.Session) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
