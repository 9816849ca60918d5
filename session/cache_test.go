package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/shaft/auth"
	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/slot"
)

// fakeProvider lets tests drive auth notifications by hand.
type fakeProvider struct {
	mu         sync.Mutex
	listener   func(*auth.User)
	signInErr  error
	createErr  error
	profileErr error
	signOutErr error
	user       *auth.User
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &auth.User{UID: "u1", Email: email}, nil
}

func (f *fakeProvider) CreateAccount(ctx context.Context, email, password string) (*auth.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &auth.User{UID: "u2", Email: email}, nil
}

func (f *fakeProvider) UpdateProfile(ctx context.Context, displayName string) error {
	return f.profileErr
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	return f.signOutErr
}

func (f *fakeProvider) OnAuthStateChanged(fn func(*auth.User)) func() {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.listener = nil
		f.mu.Unlock()
	}
}

func (f *fakeProvider) emit(u *auth.User) {
	f.mu.Lock()
	fn := f.listener
	f.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}

func newCache(t *testing.T, p auth.Provider) (*Cache, *slot.BadgerSlot) {
	t.Helper()
	s, err := slot.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(p, s, zerolog.Nop()), s
}

func slotSession(t *testing.T, s slot.Slot) *models.Session {
	t.Helper()
	raw, err := s.Get(slot.UserKey)
	if errors.Is(err, slot.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)
	var sess models.Session
	require.NoError(t, json.Unmarshal(raw, &sess))
	return &sess
}

func TestStart_ProvisionalThenRefuted(t *testing.T) {
	p := &fakeProvider{}
	c, s := newCache(t, p)

	raw, _ := json.Marshal(models.Session{UID: "u1", Email: "ada@example.com"})
	require.NoError(t, s.Set(slot.UserKey, raw))

	c.Start(context.Background())
	defer c.Close()

	require.NotNil(t, c.Current())
	assert.Equal(t, "u1", c.Current().UID)
	assert.True(t, c.Loading())
	assert.False(t, c.Confirmed())

	p.emit(nil)

	assert.Nil(t, c.Current())
	assert.True(t, c.Confirmed())
	assert.Nil(t, slotSession(t, s))
}

func TestStart_ProvisionalThenConfirmed(t *testing.T) {
	p := &fakeProvider{}
	c, s := newCache(t, p)

	raw, _ := json.Marshal(models.Session{UID: "u1", Email: "ada@example.com"})
	require.NoError(t, s.Set(slot.UserKey, raw))

	c.Start(context.Background())
	defer c.Close()

	p.emit(&auth.User{UID: "u1", Email: "ada@example.com", DisplayName: "Ada"})

	require.NotNil(t, c.Current())
	assert.Equal(t, "Ada", c.Current().DisplayName)
	assert.True(t, c.Confirmed())
	assert.Equal(t, "Ada", slotSession(t, s).DisplayName)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.WaitConfirmed(ctx))
}

func TestStart_UnreadableSlotIsDiscarded(t *testing.T) {
	p := &fakeProvider{}
	c, s := newCache(t, p)
	require.NoError(t, s.Set(slot.UserKey, []byte("{not json")))

	c.Start(context.Background())
	defer c.Close()

	assert.Nil(t, c.Current())
	assert.Nil(t, slotSession(t, s))
}

func TestSubscribe_NotifiesOnChangeOnly(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newCache(t, p)
	c.Start(context.Background())
	defer c.Close()

	var seen []*models.Session
	unsubscribe := c.Subscribe(func(s *models.Session) { seen = append(seen, s) })

	p.emit(&auth.User{UID: "u1"})
	p.emit(&auth.User{UID: "u1"})
	p.emit(nil)
	unsubscribe()
	p.emit(&auth.User{UID: "u3"})

	require.Len(t, seen, 2)
	assert.Equal(t, "u1", seen[0].UID)
	assert.Nil(t, seen[1])
}

func TestSubscribe_LastDeliveryMatchesCurrent(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newCache(t, p)
	c.Start(context.Background())
	defer c.Close()

	var (
		mu   sync.Mutex
		last *models.Session
	)
	c.Subscribe(func(s *models.Session) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	for i := 0; i < 50; i++ {
		p.emit(&auth.User{UID: "u2"})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.emit(nil)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Login(context.Background(), "ada@example.com", "secret1")
		}()
		wg.Wait()

		mu.Lock()
		got := last
		mu.Unlock()
		if current := c.Current(); current == nil {
			assert.Nil(t, got, "iteration %d", i)
		} else {
			require.NotNil(t, got, "iteration %d", i)
			assert.Equal(t, current.UID, got.UID, "iteration %d", i)
		}
	}
}

func TestLogin_ErrorMessages(t *testing.T) {
	tests := []struct {
		code    string
		kind    Kind
		message string
	}{
		{auth.CodeUserNotFound, KindNoSuchAccount, "No account exists with this email"},
		{auth.CodeWrongPassword, KindWrongPassword, "Incorrect password"},
		{auth.CodeInvalidEmail, KindInvalidEmail, "Invalid email address"},
		{"auth/network-request-failed", KindGeneric, "Failed to login"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			p := &fakeProvider{signInErr: &auth.Error{Code: tt.code}}
			c, s := newCache(t, p)

			sess, err := c.Login(context.Background(), "nobody@x.io", "pw")
			assert.Nil(t, sess)

			var ae *AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.kind, ae.Kind)
			assert.Equal(t, tt.message, ae.Error())
			assert.Nil(t, c.Current())
			assert.Nil(t, slotSession(t, s))
		})
	}
}

func TestLogin_StoresSession(t *testing.T) {
	c, s := newCache(t, &fakeProvider{})

	sess, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UID)
	assert.Equal(t, "u1", c.Current().UID)
	assert.Equal(t, "u1", slotSession(t, s).UID)
}

func TestSignup_ErrorMessages(t *testing.T) {
	tests := []struct {
		code    string
		message string
	}{
		{auth.CodeEmailAlreadyInUse, "An account already exists with this email"},
		{auth.CodeInvalidEmail, "Invalid email address"},
		{auth.CodeWeakPassword, "Password should be at least 6 characters"},
		{"auth/operation-not-allowed", "Failed to create account"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, _ := newCache(t, &fakeProvider{createErr: &auth.Error{Code: tt.code}})
			_, err := c.Signup(context.Background(), "ada@example.com", "pw", "Ada")
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestSignup_ProfileFailureIsNotFatal(t *testing.T) {
	c, _ := newCache(t, &fakeProvider{profileErr: errors.New("quota")})

	sess, err := c.Signup(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "u2", sess.UID)
	assert.Empty(t, sess.DisplayName)
}

func TestSignup_SetsDisplayName(t *testing.T) {
	c, _ := newCache(t, &fakeProvider{})

	sess, err := c.Signup(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.DisplayName)
	assert.Equal(t, "Ada", c.Current().DisplayName)
}

func TestLogout_ClearsEvenWhenProviderFails(t *testing.T) {
	p := &fakeProvider{signOutErr: errors.New("offline")}
	c, s := newCache(t, p)

	_, err := c.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	err = c.Logout(context.Background())
	assert.EqualError(t, err, "offline")
	assert.Nil(t, c.Current())
	assert.Nil(t, slotSession(t, s))
}

func TestWaitConfirmed_AsyncNotification(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newCache(t, p)
	c.Start(context.Background())
	defer c.Close()

	go p.emit(&auth.User{UID: "u1"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.WaitConfirmed(ctx))
	assert.Equal(t, "u1", c.Current().UID)
}

func TestCache_AgainstLocalProvider(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	p, err := auth.NewLocalProvider(db, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	c, s := newCache(t, p)
	c.Start(context.Background())
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.WaitConfirmed(ctx))
	assert.Nil(t, c.Current())

	_, err = c.Login(context.Background(), "nobody@x.io", "secret1")
	assert.EqualError(t, err, "No account exists with this email")

	sess, err := c.Signup(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.DisplayName)

	// the provider's own notifications settle on the same principal
	assert.Eventually(t, func() bool {
		cur := c.Current()
		return cur != nil && cur.UID == sess.UID && cur.DisplayName == "Ada"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, sess.UID, slotSession(t, s).UID)

	require.NoError(t, c.Logout(context.Background()))
	assert.Eventually(t, func() bool { return c.Current() == nil }, 2*time.Second, 10*time.Millisecond)
}
