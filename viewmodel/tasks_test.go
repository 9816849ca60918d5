package viewmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskList_ToggleTwiceRestores(t *testing.T) {
	repos := setupRepos(t)
	tl := NewTaskList(signedIn("u1"), repos.Tasks, &recordingNav{}, &scriptedConfirm{answer: true}, nopLog())
	ctx := context.Background()
	tl.Mount(ctx)
	defer tl.Unmount()

	tl.SetNewTitle("Call Ada")
	require.NoError(t, tl.Add(ctx))
	assert.Empty(t, tl.NewTitle())

	tasks := tl.Tasks()
	require.Len(t, tasks, 1)
	id := tasks[0].ID
	assert.False(t, tasks[0].Completed)

	require.NoError(t, tl.Toggle(ctx, id))
	assert.True(t, tl.Tasks()[0].Completed)

	require.NoError(t, tl.Toggle(ctx, id))
	assert.False(t, tl.Tasks()[0].Completed)
}

func TestTaskList_NewestFirstAndDelete(t *testing.T) {
	repos := setupRepos(t)
	confirm := &scriptedConfirm{answer: true}
	tl := NewTaskList(signedIn("u1"), repos.Tasks, &recordingNav{}, confirm, nopLog())
	ctx := context.Background()
	tl.Mount(ctx)
	defer tl.Unmount()

	for _, title := range []string{"first", "second"} {
		tl.SetNewTitle(title)
		require.NoError(t, tl.Add(ctx))
	}
	tasks := tl.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)

	require.NoError(t, tl.Delete(ctx, tasks[0].ID))
	require.Len(t, tl.Tasks(), 1)
	assert.Equal(t, "first", tl.Tasks()[0].Title)
	assert.Len(t, confirm.prompts, 1)
}

func TestTaskList_Validation(t *testing.T) {
	repos := setupRepos(t)
	tl := NewTaskList(signedIn("u1"), repos.Tasks, &recordingNav{}, &scriptedConfirm{}, nopLog())
	ctx := context.Background()
	tl.Mount(ctx)
	defer tl.Unmount()

	tl.SetNewTitle(" ")
	assert.True(t, IsValidation(tl.Add(ctx)))
	assert.True(t, IsValidation(tl.Toggle(ctx, "missing")))
	assert.Empty(t, tl.Tasks())
}

func TestTaskList_ToggleAfterUnmountIsRejected(t *testing.T) {
	repos := setupRepos(t)
	tl := NewTaskList(signedIn("u1"), repos.Tasks, &recordingNav{}, &scriptedConfirm{answer: true}, nopLog())
	ctx := context.Background()
	tl.Mount(ctx)

	tl.SetNewTitle("Call Ada")
	require.NoError(t, tl.Add(ctx))
	id := tl.Tasks()[0].ID
	tl.Unmount()

	assert.ErrorIs(t, tl.Toggle(ctx, id), ErrNoSession)
	assert.ErrorIs(t, tl.Delete(ctx, id), ErrNoSession)

	stored, err := repos.Tasks.List(ctx, "u1", repositoryAll)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Completed)
}
