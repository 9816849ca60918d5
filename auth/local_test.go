package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupProvider(t *testing.T) (*LocalProvider, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	p, err := NewLocalProvider(db, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return p, db
}

func nextState(t *testing.T, ch <-chan *User) *User {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for auth state")
		return nil
	}
}

func TestCreateAccountAndSignIn(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	u, err := p.CreateAccount(ctx, "Ada@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.UID)
	assert.Equal(t, "ada@example.com", u.Email)

	require.NoError(t, p.SignOut(ctx))
	assert.Nil(t, p.CurrentUser())

	signedIn, err := p.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.UID, signedIn.UID)
	assert.Equal(t, u.UID, p.CurrentUser().UID)
}

func TestSignInErrorCodes(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"unknown user", "nobody@x.io", "secret1", CodeUserNotFound},
		{"wrong password", "ada@example.com", "nope123", CodeWrongPassword},
		{"malformed email", "not-an-email", "secret1", CodeInvalidEmail},
		{"display name form", "Ada <ada@example.com>", "secret1", CodeInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SignIn(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
}

func TestCreateAccountErrorCodes(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "ADA@example.com", "another1")
	assert.Equal(t, CodeEmailAlreadyInUse, CodeOf(err))

	_, err = p.CreateAccount(ctx, "bob@example.com", "12345")
	assert.Equal(t, CodeWeakPassword, CodeOf(err))

	_, err = p.CreateAccount(ctx, "bob@", "secret1")
	assert.Equal(t, CodeInvalidEmail, CodeOf(err))
}

func TestUpdateProfileRequiresCurrentUser(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	err := p.UpdateProfile(ctx, "Ada")
	assert.Equal(t, CodeNoCurrentUser, CodeOf(err))

	_, err = p.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.UpdateProfile(ctx, "Ada"))
	assert.Equal(t, "Ada", p.CurrentUser().DisplayName)
}

func TestCurrentUserSurvivesReopen(t *testing.T) {
	p, db := setupProvider(t)
	ctx := context.Background()

	u, err := p.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	reopened, err := NewLocalProvider(db, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NotNil(t, reopened.CurrentUser())
	assert.Equal(t, u.UID, reopened.CurrentUser().UID)
}

func TestOnAuthStateChangedDeliversInOrder(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	states := make(chan *User, 16)
	unsubscribe := p.OnAuthStateChanged(func(u *User) { states <- u })
	defer unsubscribe()

	// initial state is signed out
	assert.Nil(t, nextState(t, states))

	_, err := p.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.UpdateProfile(ctx, "Ada"))
	require.NoError(t, p.SignOut(ctx))

	created := nextState(t, states)
	require.NotNil(t, created)
	assert.Equal(t, "", created.DisplayName)

	renamed := nextState(t, states)
	require.NotNil(t, renamed)
	assert.Equal(t, "Ada", renamed.DisplayName)

	assert.Nil(t, nextState(t, states))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	states := make(chan *User, 16)
	unsubscribe := p.OnAuthStateChanged(func(u *User) { states <- u })
	nextState(t, states)
	unsubscribe()
	unsubscribe()

	_, err := p.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	select {
	case u := <-states:
		t.Fatalf("unexpected delivery after unsubscribe: %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}
