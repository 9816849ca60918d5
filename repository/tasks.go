// ABOUTME: Task repository
// ABOUTME: Tasks carry only createdAt; completion is toggled in place
package repository

import (
	"context"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
)

type TaskInput struct {
	Title string
}

type Tasks struct {
	c collection[models.Task]
}

func NewTasks(store docstore.Store) *Tasks {
	return &Tasks{c: collection[models.Task]{
		store:  store,
		name:   TasksCollection,
		plural: "tasks",
		single: "task",
		order:  docstore.Order{Field: fieldCreatedAt, Desc: true},
		decode: decodeTask,
	}}
}

func decodeTask(doc docstore.Document) models.Task {
	f := doc.Fields
	return models.Task{
		ID:        doc.ID,
		UserID:    f.String(fieldUserID),
		Title:     f.String("title"),
		Completed: f.Bool("completed"),
		CreatedAt: f.Timestamp(fieldCreatedAt).ToTime(),
	}
}

func (r *Tasks) List(ctx context.Context, userID string, opts ListOptions) ([]models.Task, error) {
	return r.c.list(ctx, userID, opts)
}

func (r *Tasks) Get(ctx context.Context, id string) (models.Task, error) {
	return r.c.get(ctx, id)
}

// Create adds an incomplete task.
func (r *Tasks) Create(ctx context.Context, userID string, in TaskInput) (models.Task, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return models.Task{}, err
	}
	return r.c.add(ctx, docstore.Fields{
		fieldUserID:    userID,
		"title":        title,
		"completed":    false,
		fieldCreatedAt: docstore.ServerTimestamp,
	})
}

func (r *Tasks) Update(ctx context.Context, id string, in TaskInput) error {
	title, err := requireText("title", in.Title)
	if err != nil {
		return err
	}
	return r.c.update(ctx, id, docstore.Fields{"title": title})
}

// SetCompleted writes the completion flag. Callers toggle by passing the
// negation of the value they last read.
func (r *Tasks) SetCompleted(ctx context.Context, id string, completed bool) error {
	return r.c.update(ctx, id, docstore.Fields{"completed": completed})
}

func (r *Tasks) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
