// ABOUTME: Calendar event repository
// ABOUTME: Start and end stay native store timestamps so ordering happens in the store
package repository

import (
	"context"
	"fmt"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
)

type EventInput struct {
	Title string
	Start docstore.Timestamp
	End   docstore.Timestamp
}

type Events struct {
	c collection[models.Event]
}

func NewEvents(store docstore.Store) *Events {
	return &Events{c: collection[models.Event]{
		store:  store,
		name:   EventsCollection,
		plural: "events",
		single: "event",
		order:  docstore.Order{Field: "start", Desc: false},
		decode: decodeEvent,
	}}
}

func decodeEvent(doc docstore.Document) models.Event {
	f := doc.Fields
	return models.Event{
		ID:     doc.ID,
		UserID: f.String(fieldUserID),
		Title:  f.String("title"),
		Start:  f.Timestamp("start"),
		End:    f.Timestamp("end"),
	}
}

func validateRange(start, end docstore.Timestamp) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}
	if !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end is before start", ErrInvalidInput)
	}
	return nil
}

func (in EventInput) fields() (docstore.Fields, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}
	if err := validateRange(in.Start, in.End); err != nil {
		return nil, err
	}
	end := in.End
	if end.IsZero() {
		end = in.Start
	}
	return docstore.Fields{
		"title": title,
		"start": in.Start,
		"end":   end,
	}, nil
}

// List returns events in ascending start order.
func (r *Events) List(ctx context.Context, userID string, opts ListOptions) ([]models.Event, error) {
	return r.c.list(ctx, userID, opts)
}

func (r *Events) Get(ctx context.Context, id string) (models.Event, error) {
	return r.c.get(ctx, id)
}

func (r *Events) Create(ctx context.Context, userID string, in EventInput) (models.Event, error) {
	fields, err := in.fields()
	if err != nil {
		return models.Event{}, err
	}
	fields[fieldUserID] = userID
	return r.c.add(ctx, fields)
}

func (r *Events) Update(ctx context.Context, id string, in EventInput) error {
	fields, err := in.fields()
	if err != nil {
		return err
	}
	return r.c.update(ctx, id, fields)
}

// Reschedule moves an event, as when it is dragged on the calendar.
func (r *Events) Reschedule(ctx context.Context, id string, start, end docstore.Timestamp) error {
	if err := validateRange(start, end); err != nil {
		return err
	}
	if end.IsZero() {
		end = start
	}
	return r.c.update(ctx, id, docstore.Fields{"start": start, "end": end})
}

func (r *Events) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
