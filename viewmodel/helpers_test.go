package viewmodel

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/shaft/auth"
	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
	"github.com/harperreed/shaft/session"
	"github.com/harperreed/shaft/slot"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)}
	store, err := docstore.OpenSQLite(filepath.Join(t.TempDir(), "shaft.db"), docstore.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return repository.New(store)
}

// fakeSessions is a synchronous SessionManager.
type fakeSessions struct {
	mu        sync.Mutex
	current   *models.Session
	subs      map[int]func(*models.Session)
	next      int
	logoutErr error
}

func newFakeSessions(current *models.Session) *fakeSessions {
	return &fakeSessions{current: current, subs: make(map[int]func(*models.Session))}
}

func signedIn(uid string) *fakeSessions {
	return newFakeSessions(&models.Session{UID: uid, Email: uid + "@example.com"})
}

func (f *fakeSessions) Current() *models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSessions) Subscribe(fn func(*models.Session)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeSessions) set(s *models.Session) {
	f.mu.Lock()
	f.current = s
	subs := make([]func(*models.Session), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (*models.Session, error) {
	return nil, &session.AuthError{Kind: session.KindNoSuchAccount, Message: "No account exists with this email"}
}

func (f *fakeSessions) Signup(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	s := &models.Session{UID: "new", Email: email, DisplayName: displayName}
	f.set(s)
	return s, nil
}

func (f *fakeSessions) Logout(ctx context.Context) error {
	f.set(nil)
	return f.logoutErr
}

func (f *fakeSessions) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type recordingNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNav) Redirect(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *recordingNav) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type scriptedConfirm struct {
	answer  bool
	prompts []string
}

func (c *scriptedConfirm) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

// countingDeals records how often writes reach the repository.
type countingDeals struct {
	DealStore
	mu     sync.Mutex
	writes int
}

func (c *countingDeals) Create(ctx context.Context, userID string, in repository.DealInput) (models.Deal, error) {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.DealStore.Create(ctx, userID, in)
}

func (c *countingDeals) Update(ctx context.Context, id string, in repository.DealInput) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.DealStore.Update(ctx, id, in)
}

func (c *countingDeals) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// gatedContacts blocks List until release is closed.
type gatedContacts struct {
	ContactStore
	entered chan struct{}
	release chan struct{}
	fail    error
}

func (g *gatedContacts) List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Contact, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.fail != nil {
		return nil, g.fail
	}
	return g.ContactStore.List(ctx, userID, opts)
}

func nopLog() zerolog.Logger { return zerolog.Nop() }

// localSessions wires a real session cache over a SQLite auth provider.
func localSessions(t *testing.T) *session.Cache {
	t.Helper()
	store, err := docstore.OpenSQLite(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	provider, err := auth.NewLocalProvider(store.DB(), auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	s, err := slot.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	cache := session.New(provider, s, nopLog())
	cache.Start(context.Background())
	t.Cleanup(cache.Close)
	return cache
}

var repositoryAll = repository.ListOptions{}

func contactInput(name string) repository.ContactInput {
	return repository.ContactInput{Name: name}
}
