package viewmodel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/shaft/models"
)

func TestContacts_MountWithoutSessionRedirects(t *testing.T) {
	repos := setupRepos(t)
	nav := &recordingNav{}
	c := NewContacts(newFakeSessions(nil), repos.Contacts, nav, &scriptedConfirm{}, nopLog())

	c.Mount(context.Background())
	defer c.Unmount()

	assert.Equal(t, []string{PathLogin}, nav.Paths())
	assert.True(t, c.Loading())
	assert.Empty(t, c.Contacts())
}

func TestContacts_CreateThenList(t *testing.T) {
	repos := setupRepos(t)
	c := NewContacts(signedIn("u1"), repos.Contacts, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()

	c.Mount(ctx)
	defer c.Unmount()
	assert.False(t, c.Loading())

	c.SetForm(ContactForm{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, c.Submit(ctx))

	list := c.Contacts()
	require.Len(t, list, 1)
	assert.Equal(t, "Ada", list[0].Name)
	assert.Equal(t, "u1", list[0].UserID)
	assert.Equal(t, ContactForm{}, c.Form())
	assert.Empty(t, c.Error())
}

func TestContacts_EmptyNameIsValidationError(t *testing.T) {
	repos := setupRepos(t)
	c := NewContacts(signedIn("u1"), repos.Contacts, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()
	c.Mount(ctx)
	defer c.Unmount()

	c.SetForm(ContactForm{Name: "  "})
	err := c.Submit(ctx)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Name is required", c.Error())

	list, err := repos.Contacts.List(ctx, "u1", repositoryAll)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestContacts_EditAndCancel(t *testing.T) {
	repos := setupRepos(t)
	c := NewContacts(signedIn("u1"), repos.Contacts, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()
	c.Mount(ctx)
	defer c.Unmount()

	c.SetForm(ContactForm{Name: "Ada"})
	require.NoError(t, c.Submit(ctx))
	id := c.Contacts()[0].ID

	require.True(t, c.Edit(id))
	assert.Equal(t, id, c.Editing())
	assert.Equal(t, "Ada", c.Form().Name)

	c.CancelEdit()
	assert.Empty(t, c.Editing())

	require.True(t, c.Edit(id))
	c.SetForm(ContactForm{Name: "Ada Lovelace", Phone: "555"})
	require.NoError(t, c.Submit(ctx))

	list := c.Contacts()
	require.Len(t, list, 1)
	assert.Equal(t, "Ada Lovelace", list[0].Name)
	assert.Empty(t, c.Editing())

	assert.False(t, c.Edit("missing"))
}

func TestContacts_DeleteNeedsConfirmation(t *testing.T) {
	repos := setupRepos(t)
	confirm := &scriptedConfirm{answer: false}
	c := NewContacts(signedIn("u1"), repos.Contacts, &recordingNav{}, confirm, nopLog())
	ctx := context.Background()
	c.Mount(ctx)
	defer c.Unmount()

	c.SetForm(ContactForm{Name: "Ada"})
	require.NoError(t, c.Submit(ctx))
	id := c.Contacts()[0].ID

	require.NoError(t, c.Delete(ctx, id))
	assert.Len(t, c.Contacts(), 1)
	assert.Equal(t, []string{"Are you sure you want to delete this contact?"}, confirm.prompts)

	confirm.answer = true
	require.NoError(t, c.Delete(ctx, id))
	assert.Empty(t, c.Contacts())

	// deleting the same id again is harmless
	require.NoError(t, c.Delete(ctx, id))
	assert.Empty(t, c.Contacts())
	assert.Empty(t, c.Error())
}

func TestContacts_FetchFailureKeepsSnapshot(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	_, err := repos.Contacts.Create(ctx, "u1", contactInput("Ada"))
	require.NoError(t, err)

	gated := &gatedContacts{ContactStore: repos.Contacts}
	c := NewContacts(signedIn("u1"), gated, &recordingNav{}, &scriptedConfirm{}, nopLog())
	c.Mount(ctx)
	defer c.Unmount()
	require.Len(t, c.Contacts(), 1)

	gated.fail = errors.New("store offline")
	err = c.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch contacts", err.Error())
	assert.Equal(t, "Failed to fetch contacts", c.Error())
	assert.Len(t, c.Contacts(), 1)
}

func TestContacts_UnmountDropsInFlightFetch(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	_, err := repos.Contacts.Create(ctx, "u1", contactInput("Ada"))
	require.NoError(t, err)

	gated := &gatedContacts{
		ContactStore: repos.Contacts,
		entered:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	sessions := signedIn("u1")
	c := NewContacts(sessions, gated, &recordingNav{}, &scriptedConfirm{}, nopLog())

	done := make(chan struct{})
	go func() {
		c.Mount(ctx)
		close(done)
	}()

	select {
	case <-gated.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
	}
	c.Unmount()
	close(gated.release)
	<-done

	assert.Empty(t, c.Contacts())
	assert.True(t, c.Loading())
	assert.Zero(t, sessions.subscribers())
}

func TestContacts_SessionChangeRedirects(t *testing.T) {
	repos := setupRepos(t)
	sessions := signedIn("u1")
	nav := &recordingNav{}
	c := NewContacts(sessions, repos.Contacts, nav, &scriptedConfirm{}, nopLog())
	ctx := context.Background()

	_, err := repos.Contacts.Create(ctx, "u2", contactInput("Grace"))
	require.NoError(t, err)

	c.Mount(ctx)
	defer c.Unmount()
	assert.Empty(t, c.Contacts())

	sessions.set(&models.Session{UID: "u2"})
	require.Len(t, c.Contacts(), 1)
	assert.Equal(t, "Grace", c.Contacts()[0].Name)

	sessions.set(nil)
	assert.Equal(t, []string{PathLogin}, nav.Paths())

	err = c.Submit(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}
