package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
)

func dealInput(name string, amount float64) repository.DealInput {
	return repository.DealInput{Name: name, Amount: amount, Stage: models.StageProspecting}
}

func TestDashboard_RecentCardsAndStats(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := repos.Contacts.Create(ctx, "u1", contactInput(fmt.Sprintf("contact %d", i)))
		require.NoError(t, err)
		_, err = repos.Deals.Create(ctx, "u1", dealInput(fmt.Sprintf("deal %d", i), 100))
		require.NoError(t, err)
		start := docstore.TimestampFromTime(time.Date(2024, 6, 10-i, 9, 0, 0, 0, time.UTC))
		_, err = repos.Events.Create(ctx, "u1", repository.EventInput{Title: fmt.Sprintf("event %d", i), Start: start})
		require.NoError(t, err)
	}
	task, err := repos.Tasks.Create(ctx, "u1", repository.TaskInput{Title: "done"})
	require.NoError(t, err)
	require.NoError(t, repos.Tasks.SetCompleted(ctx, task.ID, true))
	_, err = repos.Tasks.Create(ctx, "u1", repository.TaskInput{Title: "open"})
	require.NoError(t, err)

	dash := NewDashboard(signedIn("u1"), StoresFrom(repos), &recordingNav{}, nopLog())
	dash.Mount(ctx)
	defer dash.Unmount()
	require.False(t, dash.Loading())

	snap := dash.Snapshot()
	require.Len(t, snap.RecentContacts, RecentLimit)
	assert.Equal(t, "contact 6", snap.RecentContacts[0].Name)
	require.Len(t, snap.RecentDeals, RecentLimit)
	assert.Equal(t, "deal 6", snap.RecentDeals[0].Name)
	require.Len(t, snap.UpcomingEvents, RecentLimit)
	assert.Equal(t, "event 6", snap.UpcomingEvents[0].Title)
	assert.Equal(t, 4, snap.UpcomingEvents[0].Start.Day())

	assert.Equal(t, 7, snap.Stats.TotalContacts)
	assert.Equal(t, 7, snap.Stats.TotalDeals)
	assert.Equal(t, 700.0, snap.Stats.TotalDealValue)
	assert.Equal(t, 1, snap.Stats.Tasks.Completed)
	assert.Equal(t, 1, snap.Stats.Tasks.Incomplete)
}

func TestDashboard_LogoutRedirects(t *testing.T) {
	repos := setupRepos(t)
	sessions := signedIn("u1")
	nav := &recordingNav{}
	dash := NewDashboard(sessions, StoresFrom(repos), nav, nopLog())
	ctx := context.Background()
	dash.Mount(ctx)
	defer dash.Unmount()

	require.NoError(t, dash.Logout(ctx))
	assert.Nil(t, sessions.Current())
	assert.Contains(t, nav.Paths(), PathLogin)
}

func TestDashboard_LogoutFailureStillClearsSession(t *testing.T) {
	repos := setupRepos(t)
	sessions := signedIn("u1")
	sessions.logoutErr = errors.New("offline")
	nav := &recordingNav{}
	dash := NewDashboard(sessions, StoresFrom(repos), nav, nopLog())
	ctx := context.Background()
	dash.Mount(ctx)
	defer dash.Unmount()

	err := dash.Logout(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to log out", dash.Error())
	assert.Nil(t, sessions.Current())
	// the session subscription still sends the user to login
	assert.Contains(t, nav.Paths(), PathLogin)
}

func TestAnalytics_Snapshot(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	_, err := repos.Deals.Create(ctx, "u1", dealInput("Acme", 1500))
	require.NoError(t, err)
	_, err = repos.Deals.Create(ctx, "u1", repository.DealInput{Name: "Globex", Amount: 500, Stage: models.StageClosedWon})
	require.NoError(t, err)
	_, err = repos.Tasks.Create(ctx, "u1", repository.TaskInput{Title: "open"})
	require.NoError(t, err)

	a := NewAnalytics(signedIn("u1"), repos.Deals, repos.Tasks, &recordingNav{}, nopLog())
	a.Mount(ctx)
	defer a.Unmount()

	snap := a.Snapshot()
	assert.Equal(t, 2000.0, snap.TotalValue)
	assert.Equal(t, 1, snap.Stages[0].Count)
	require.Len(t, snap.Monthly, 1)
	assert.Equal(t, "Apr 2024", snap.Monthly[0].Month)
	assert.Equal(t, 2000.0, snap.Monthly[0].Value)
	assert.Equal(t, 1, snap.Tasks.Incomplete)
}
