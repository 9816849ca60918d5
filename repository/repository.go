// ABOUTME: Typed repositories for contacts, deals, tasks and events over the document store
// ABOUTME: Every list is scoped to one user and ordered by the store on native field types
package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
)

// Collection names.
const (
	ContactsCollection = "contacts"
	DealsCollection    = "deals"
	TasksCollection    = "tasks"
	EventsCollection   = "events"
)

// Collections lists every collection the repositories own.
var Collections = []string{ContactsCollection, DealsCollection, TasksCollection, EventsCollection}

// Stored field names shared by all entities.
const (
	fieldUserID    = "userId"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// ErrInvalidInput is returned for writes that fail validation before
// reaching the store.
var ErrInvalidInput = errors.New("invalid input")

// ListOptions tunes a List call. Limit <= 0 returns everything.
type ListOptions struct {
	Limit int
}

// Repositories bundles the entity repositories sharing one store.
type Repositories struct {
	Contacts *Contacts
	Deals    *Deals
	Tasks    *Tasks
	Events   *Events
}

// New creates all repositories over store.
func New(store docstore.Store) *Repositories {
	return &Repositories{
		Contacts: NewContacts(store),
		Deals:    NewDeals(store),
		Tasks:    NewTasks(store),
		Events:   NewEvents(store),
	}
}

// collection holds the query and decode logic shared by every repository.
type collection[T any] struct {
	store  docstore.Store
	name   string
	plural string
	single string
	order  docstore.Order
	decode func(docstore.Document) T
}

func (c collection[T]) list(ctx context.Context, userID string, opts ListOptions) ([]T, error) {
	q := docstore.Query{}.
		Where(fieldUserID, userID).
		Order(c.order.Field, c.order.Desc).
		WithLimit(opts.Limit)

	docs, err := c.store.Get(ctx, c.name, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.plural, err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, c.decode(doc))
	}
	return items, nil
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	doc, err := c.store.GetByID(ctx, c.name, id)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get %s: %w", c.single, err)
	}
	return c.decode(doc), nil
}

func (c collection[T]) add(ctx context.Context, fields docstore.Fields) (T, error) {
	doc, err := c.store.Add(ctx, c.name, fields)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to create %s: %w", c.single, err)
	}
	return c.decode(doc), nil
}

func (c collection[T]) update(ctx context.Context, id string, fields docstore.Fields) error {
	if err := c.store.Update(ctx, c.name, id, fields); err != nil {
		return fmt.Errorf("failed to update %s: %w", c.single, err)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", c.single, err)
	}
	return nil
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return value, nil
}

func validateDeal(amount float64, stage string) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, models.ErrInvalidAmount)
	}
	if !models.IsValidStage(stage) {
		return fmt.Errorf("%w: %w %q", ErrInvalidInput, models.ErrInvalidStage, stage)
	}
	return nil
}
