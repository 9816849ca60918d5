// ABOUTME: SQLite-backed auth provider with bcrypt password hashes
// ABOUTME: Persists the signed-in principal so it survives restarts like a hosted provider
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const authSchema = `
CREATE TABLE IF NOT EXISTS auth_users (
	uid TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	uid TEXT
);
`

// LocalProvider implements Provider against tables in a SQLite database.
type LocalProvider struct {
	db       *sql.DB
	cost     int
	notifier *Notifier

	mu      sync.Mutex
	current *User
}

// LocalOption configures a LocalProvider.
type LocalOption func(*LocalProvider)

// WithBcryptCost overrides the hashing cost.
func WithBcryptCost(cost int) LocalOption {
	return func(p *LocalProvider) { p.cost = cost }
}

// NewLocalProvider creates the auth tables if needed and restores the
// persisted principal.
func NewLocalProvider(db *sql.DB, opts ...LocalOption) (*LocalProvider, error) {
	if _, err := db.Exec(authSchema); err != nil {
		return nil, fmt.Errorf("failed to create auth schema: %w", err)
	}

	p := &LocalProvider{
		db:       db,
		cost:     bcrypt.DefaultCost,
		notifier: NewNotifier(),
	}
	for _, opt := range opts {
		opt(p)
	}

	current, err := p.loadCurrent(context.Background())
	if err != nil {
		return nil, err
	}
	p.current = current
	return p, nil
}

func (p *LocalProvider) loadCurrent(ctx context.Context) (*User, error) {
	var uid sql.NullString
	err := p.db.QueryRowContext(ctx, `SELECT uid FROM auth_state WHERE id = 1`).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !uid.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load auth state: %w", err)
	}

	u, _, err := p.findUser(ctx, "uid", uid.String)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (p *LocalProvider) findUser(ctx context.Context, column, value string) (*User, string, error) {
	query := `SELECT uid, email, display_name, password_hash FROM auth_users WHERE ` + column + ` = ?`
	var u User
	var hash string
	err := p.db.QueryRowContext(ctx, query, value).Scan(&u.UID, &u.Email, &u.DisplayName, &hash)
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

func (p *LocalProvider) setCurrent(ctx context.Context, u *User) error {
	var uid interface{}
	if u != nil {
		uid = u.UID
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO auth_state (id, uid) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET uid = excluded.uid
	`, uid)
	if err != nil {
		return newError(CodeInternal, err)
	}

	p.mu.Lock()
	p.current = u
	p.notifier.Publish(u)
	p.mu.Unlock()
	return nil
}

// SignIn verifies credentials and makes the user current.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	u, hash, err := p.findUser(ctx, "email", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(CodeUserNotFound, nil)
	}
	if err != nil {
		return nil, newError(CodeInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword, nil)
	}

	if err := p.setCurrent(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateAccount registers a new user and signs them in.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, nil)
	}

	if _, _, err := p.findUser(ctx, "email", email); err == nil {
		return nil, newError(CodeEmailAlreadyInUse, nil)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, newError(CodeInternal, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, newError(CodeInternal, err)
	}

	u := &User{UID: uuid.New().String(), Email: email}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO auth_users (uid, email, password_hash, display_name, created_at)
		VALUES (?, ?, ?, '', ?)
	`, u.UID, u.Email, string(hash), time.Now().UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, newError(CodeEmailAlreadyInUse, nil)
		}
		return nil, newError(CodeInternal, err)
	}

	if err := p.setCurrent(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile sets the display name of the current user.
func (p *LocalProvider) UpdateProfile(ctx context.Context, displayName string) error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current == nil {
		return newError(CodeNoCurrentUser, nil)
	}

	if _, err := p.db.ExecContext(ctx,
		`UPDATE auth_users SET display_name = ? WHERE uid = ?`, displayName, current.UID); err != nil {
		return newError(CodeInternal, err)
	}

	updated := *current
	updated.DisplayName = displayName
	return p.setCurrent(ctx, &updated)
}

// SignOut clears the current user.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	return p.setCurrent(ctx, nil)
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (p *LocalProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	u := *p.current
	return &u
}

// OnAuthStateChanged subscribes fn to principal changes.
func (p *LocalProvider) OnAuthStateChanged(fn func(*User)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notifier.Subscribe(fn, p.current)
}

// normalizeEmail accepts a bare address only and lowercases it.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", newError(CodeInvalidEmail, err)
	}
	return strings.ToLower(email), nil
}
