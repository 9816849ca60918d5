// ABOUTME: Login and registration controllers
// ABOUTME: Both send an already signed-in user straight to the dashboard
package viewmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/session"
)

// authScreen is the shared state of the login and register screens.
type authScreen struct {
	sessions SessionManager
	nav      Navigator
	log      zerolog.Logger

	mu          sync.Mutex
	errMsg      string
	submitting  bool
	unsubscribe func()
}

// Mount redirects to the dashboard once a session exists.
func (a *authScreen) Mount() {
	unsubscribe := a.sessions.Subscribe(func(s *models.Session) {
		if s != nil {
			a.nav.Redirect(PathDashboard)
		}
	})
	a.mu.Lock()
	a.unsubscribe = unsubscribe
	a.mu.Unlock()

	if a.sessions.Current() != nil {
		a.nav.Redirect(PathDashboard)
	}
}

func (a *authScreen) Unmount() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (a *authScreen) Error() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Submitting is true while a request is in flight.
func (a *authScreen) Submitting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitting
}

func (a *authScreen) begin() {
	a.mu.Lock()
	a.errMsg = ""
	a.submitting = true
	a.mu.Unlock()
}

func (a *authScreen) finish(msg string) {
	a.mu.Lock()
	a.errMsg = msg
	a.submitting = false
	a.mu.Unlock()
}

// authMessage extracts the display message from a session error.
func authMessage(err error, fallback string) string {
	var ae *session.AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return fallback
}

type Login struct {
	authScreen
}

func NewLogin(sessions SessionManager, nav Navigator, log zerolog.Logger) *Login {
	if nav == nil {
		nav = NopNavigator{}
	}
	return &Login{authScreen{sessions: sessions, nav: nav, log: log}}
}

// Submit signs in and navigates to the dashboard on success.
func (l *Login) Submit(ctx context.Context, email, password string) error {
	l.begin()
	if _, err := l.sessions.Login(ctx, email, password); err != nil {
		msg := authMessage(err, "Failed to login")
		l.log.Info().Err(err).Str("email", email).Msg("login rejected")
		l.finish(msg)
		return failure(msg, err)
	}
	l.finish("")
	l.nav.Redirect(PathDashboard)
	return nil
}

type Register struct {
	authScreen
}

func NewRegister(sessions SessionManager, nav Navigator, log zerolog.Logger) *Register {
	if nav == nil {
		nav = NopNavigator{}
	}
	return &Register{authScreen{sessions: sessions, nav: nav, log: log}}
}

// Submit creates the account when both passwords match.
func (r *Register) Submit(ctx context.Context, displayName, email, password, confirm string) error {
	if password != confirm {
		r.finish("Passwords don't match")
		return validationError("Passwords don't match")
	}

	r.begin()
	if _, err := r.sessions.Signup(ctx, email, password, displayName); err != nil {
		msg := authMessage(err, "Failed to create an account")
		r.log.Info().Err(err).Str("email", email).Msg("signup rejected")
		r.finish(msg)
		return failure(msg, err)
	}
	r.finish("")
	r.nav.Redirect(PathDashboard)
	return nil
}
