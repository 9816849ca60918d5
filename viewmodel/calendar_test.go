package viewmodel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func may(day int) time.Time {
	return time.Date(2024, 5, day, 9, 30, 0, 0, time.UTC)
}

func TestCalendar_DragEventToAnotherDay(t *testing.T) {
	repos := setupRepos(t)
	cal := NewCalendar(signedIn("u1"), repos.Events, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()
	cal.Mount(ctx)
	defer cal.Unmount()

	require.NoError(t, cal.Add(ctx, "Demo", may(5), time.Time{}))
	require.NoError(t, cal.Add(ctx, "Review", may(6), may(6).Add(time.Hour)))

	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Demo", events[0].Title)
	demo := events[0]

	require.NoError(t, cal.Drop(ctx, demo.ID, may(7), may(7).Add(30*time.Minute)))

	events = cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Review", events[0].Title)
	assert.Equal(t, "Demo", events[1].Title)
	assert.Equal(t, 7, events[1].Start.Day())
	assert.True(t, events[1].Start.Equal(may(7)))
	assert.True(t, events[1].End.Equal(may(7).Add(30*time.Minute)))
}

func TestCalendar_Validation(t *testing.T) {
	repos := setupRepos(t)
	cal := NewCalendar(signedIn("u1"), repos.Events, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()
	cal.Mount(ctx)
	defer cal.Unmount()

	assert.True(t, IsValidation(cal.Add(ctx, "", may(5), may(5))))
	assert.True(t, IsValidation(cal.Add(ctx, "Backwards", may(5), may(4))))
	assert.True(t, IsValidation(cal.Drop(ctx, "any", may(5), may(4))))

	assert.True(t, IsValidation(cal.Add(ctx, "No start", time.Time{}, time.Time{})))
	assert.Equal(t, "Event start is required", cal.Error())
	assert.True(t, IsValidation(cal.Drop(ctx, "any", time.Time{}, may(5))))
	assert.Empty(t, cal.Events())
}

func TestCalendar_KeepsDatesOutsideNanosecondRange(t *testing.T) {
	repos := setupRepos(t)
	cal := NewCalendar(signedIn("u1"), repos.Events, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()
	cal.Mount(ctx)
	defer cal.Unmount()

	far := time.Date(2300, 3, 5, 9, 0, 0, 0, time.UTC)
	epoch := time.Unix(0, 0).UTC()
	require.NoError(t, cal.Add(ctx, "far future", far, far.Add(time.Hour)))
	require.NoError(t, cal.Add(ctx, "epoch", epoch, time.Time{}))

	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "epoch", events[0].Title)
	assert.True(t, events[0].Start.Equal(epoch))
	assert.Equal(t, "far future", events[1].Title)
	assert.True(t, events[1].Start.Equal(far))
	assert.True(t, events[1].End.Equal(far.Add(time.Hour)))
}

func TestCalendar_WritesAfterUnmountAreRejected(t *testing.T) {
	repos := setupRepos(t)
	confirm := &scriptedConfirm{answer: true}
	cal := NewCalendar(signedIn("u1"), repos.Events, &recordingNav{}, confirm, nopLog())
	ctx := context.Background()
	cal.Mount(ctx)

	require.NoError(t, cal.Add(ctx, "Demo", may(5), may(5)))
	id := cal.Events()[0].ID
	cal.Unmount()

	assert.ErrorIs(t, cal.Drop(ctx, id, may(7), may(7)), ErrNoSession)
	assert.ErrorIs(t, cal.Delete(ctx, id), ErrNoSession)
	assert.Empty(t, confirm.prompts)

	stored, err := repos.Events.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Start.ToTime().Equal(may(5)))
}

func TestCalendar_DeletePromptsWithTitle(t *testing.T) {
	repos := setupRepos(t)
	confirm := &scriptedConfirm{answer: true}
	cal := NewCalendar(signedIn("u1"), repos.Events, &recordingNav{}, confirm, nopLog())
	ctx := context.Background()
	cal.Mount(ctx)
	defer cal.Unmount()

	require.NoError(t, cal.Add(ctx, "Demo", may(5), may(5)))
	id := cal.Events()[0].ID

	require.NoError(t, cal.Delete(ctx, id))
	assert.Empty(t, cal.Events())
	assert.Equal(t, []string{"Are you sure you want to delete the event 'Demo'"}, confirm.prompts)
}
