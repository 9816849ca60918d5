// ABOUTME: Task list controller
// ABOUTME: Adds tasks, toggles completion from the last snapshot and deletes on confirmation
package viewmodel

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
)

type TaskList struct {
	base
	repo    TaskStore
	confirm Confirmer

	tasks    []models.Task
	newTitle string
}

func NewTaskList(session SessionSource, repo TaskStore, nav Navigator, confirm Confirmer, log zerolog.Logger) *TaskList {
	t := &TaskList{
		base:    newBase(session, nav, log, "Failed to fetch tasks"),
		repo:    repo,
		confirm: confirm,
	}
	t.fetch = t.load
	return t
}

func (t *TaskList) load(ctx context.Context, uid string) (func(), error) {
	tasks, err := t.repo.List(ctx, uid, repository.ListOptions{})
	if err != nil {
		return nil, err
	}
	return func() { t.tasks = tasks }, nil
}

func (t *TaskList) Tasks() []models.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Task(nil), t.tasks...)
}

func (t *TaskList) NewTitle() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.newTitle
}

func (t *TaskList) SetNewTitle(title string) {
	t.mu.Lock()
	t.newTitle = title
	t.mu.Unlock()
}

// Add creates a task from the pending title.
func (t *TaskList) Add(ctx context.Context) error {
	uid, err := t.currentUID()
	if err != nil {
		return err
	}

	t.mu.Lock()
	title := t.newTitle
	t.errMsg = ""
	t.mu.Unlock()

	if strings.TrimSpace(title) == "" {
		return t.invalid("Task title is required")
	}

	if _, err := t.repo.Create(ctx, uid, repository.TaskInput{Title: title}); err != nil {
		return t.fail("Failed to add task", err)
	}

	t.SetNewTitle("")
	return t.Refresh(ctx)
}

// Toggle flips completion relative to the held snapshot.
func (t *TaskList) Toggle(ctx context.Context, id string) error {
	if _, err := t.currentUID(); err != nil {
		return err
	}
	t.mu.Lock()
	var (
		current bool
		found   bool
	)
	for _, task := range t.tasks {
		if task.ID == id {
			current, found = task.Completed, true
			break
		}
	}
	t.mu.Unlock()
	if !found {
		return t.invalid("Task not found")
	}

	if err := t.repo.SetCompleted(ctx, id, !current); err != nil {
		return t.fail("Failed to update task", err)
	}
	return t.Refresh(ctx)
}

func (t *TaskList) Delete(ctx context.Context, id string) error {
	if _, err := t.currentUID(); err != nil {
		return err
	}
	if !t.confirm.Confirm("Are you sure you want to delete this task?") {
		return nil
	}
	if err := t.repo.Delete(ctx, id); err != nil {
		return t.fail("Failed to delete task", err)
	}
	return t.Refresh(ctx)
}
