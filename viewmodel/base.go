// ABOUTME: Mount/unmount lifecycle shared by the data screens
// ABOUTME: A generation counter drops fetch results that arrive after unmount or a newer fetch
package viewmodel

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
)

// fetchFunc loads a snapshot for uid and returns a closure that installs it.
// The closure runs with the controller lock held.
type fetchFunc func(ctx context.Context, uid string) (apply func(), err error)

type base struct {
	session SessionSource
	nav     Navigator
	log     zerolog.Logger

	// fetchErr is shown when fetch fails.
	fetchErr string
	fetch    fetchFunc

	mu          sync.Mutex
	gen         uint64
	mounted     bool
	loading     bool
	errMsg      string
	uid         string
	unsubscribe func()
}

func newBase(session SessionSource, nav Navigator, log zerolog.Logger, fetchErr string) base {
	if nav == nil {
		nav = NopNavigator{}
	}
	return base{session: session, nav: nav, log: log, fetchErr: fetchErr, loading: true}
}

// Mount starts watching the session and loads data when signed in.
func (b *base) Mount(ctx context.Context) {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	b.loading = true
	b.gen++
	b.mu.Unlock()

	unsubscribe := b.session.Subscribe(func(s *models.Session) {
		b.onSession(ctx, s)
	})

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()

	b.onSession(ctx, b.session.Current())
}

func (b *base) onSession(ctx context.Context, s *models.Session) {
	b.mu.Lock()
	if !b.mounted {
		b.mu.Unlock()
		return
	}
	if s == nil {
		b.uid = ""
		b.mu.Unlock()
		b.nav.Redirect(PathLogin)
		return
	}
	b.uid = s.UID
	b.mu.Unlock()

	_ = b.Refresh(ctx)
}

// Unmount stops watching the session; in-flight fetches are discarded.
func (b *base) Unmount() {
	b.mu.Lock()
	b.mounted = false
	b.gen++
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Refresh re-fetches the snapshot. Only the newest fetch of the current
// mount may install its result.
func (b *base) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if !b.mounted || b.uid == "" {
		b.mu.Unlock()
		return ErrNoSession
	}
	b.gen++
	gen := b.gen
	uid := b.uid
	b.mu.Unlock()

	apply, err := b.fetch(ctx, uid)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		b.log.Debug().Uint64("gen", gen).Msg("dropping stale fetch result")
		return nil
	}
	b.loading = false
	if err != nil {
		b.log.Error().Stack().Err(err).Str("uid", uid).Msg(b.fetchErr)
		b.errMsg = b.fetchErr
		return failure(b.fetchErr, err)
	}
	apply()
	return nil
}

// currentUID returns the signed-in uid, or ErrNoSession when signed out
// or unmounted. Writes check it first so they never land without a refetch.
func (b *base) currentUID() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted || b.uid == "" {
		return "", ErrNoSession
	}
	return b.uid, nil
}

func (b *base) setError(msg string) {
	b.mu.Lock()
	b.errMsg = msg
	b.mu.Unlock()
}

// fail logs err, records msg for display and returns it as an *Error.
func (b *base) fail(msg string, err error) error {
	b.log.Error().Stack().Err(err).Msg(msg)
	b.setError(msg)
	return failure(msg, err)
}

func (b *base) invalid(msg string) error {
	b.setError(msg)
	return validationError(msg)
}

// Loading is true until the first fetch of this mount resolves.
func (b *base) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Error returns the last user-facing failure, or "".
func (b *base) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}

// ClearError dismisses the current failure message.
func (b *base) ClearError() {
	b.setError("")
}
