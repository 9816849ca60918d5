// ABOUTME: Calendar controller
// ABOUTME: Converts native store timestamps to time.Time for display and back before each write
package viewmodel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/repository"
)

// CalendarEvent is an event ready for display.
type CalendarEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Calendar struct {
	base
	repo    EventStore
	confirm Confirmer

	events []CalendarEvent
}

func NewCalendar(session SessionSource, repo EventStore, nav Navigator, confirm Confirmer, log zerolog.Logger) *Calendar {
	c := &Calendar{
		base:    newBase(session, nav, log, "Failed to fetch events"),
		repo:    repo,
		confirm: confirm,
	}
	c.fetch = c.load
	return c
}

func (c *Calendar) load(ctx context.Context, uid string) (func(), error) {
	events, err := c.repo.List(ctx, uid, repository.ListOptions{})
	if err != nil {
		return nil, err
	}
	display := make([]CalendarEvent, 0, len(events))
	for _, e := range events {
		display = append(display, CalendarEvent{
			ID:    e.ID,
			Title: e.Title,
			Start: e.Start.ToTime(),
			End:   e.End.ToTime(),
		})
	}
	return func() { c.events = display }, nil
}

// Events returns events in ascending start order.
func (c *Calendar) Events() []CalendarEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CalendarEvent(nil), c.events...)
}

// Add creates an event, as when the user clicks a date and names it. A zero
// end means the event ends when it starts.
func (c *Calendar) Add(ctx context.Context, title string, start, end time.Time) error {
	uid, err := c.currentUID()
	if err != nil {
		return err
	}
	c.setError("")

	if strings.TrimSpace(title) == "" {
		return c.invalid("Event title is required")
	}
	if start.IsZero() {
		return c.invalid("Event start is required")
	}
	if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		return c.invalid("Event end must not be before its start")
	}

	_, err = c.repo.Create(ctx, uid, repository.EventInput{
		Title: title,
		Start: docstore.TimestampFromTime(start),
		End:   docstore.TimestampFromTime(end),
	})
	if err != nil {
		return c.fail("Failed to add event", err)
	}
	return c.Refresh(ctx)
}

// Drop reschedules an event after a drag, then re-fetches.
func (c *Calendar) Drop(ctx context.Context, id string, start, end time.Time) error {
	if _, err := c.currentUID(); err != nil {
		return err
	}
	c.setError("")

	if start.IsZero() {
		return c.invalid("Event start is required")
	}
	if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		return c.invalid("Event end must not be before its start")
	}

	err := c.repo.Reschedule(ctx, id, docstore.TimestampFromTime(start), docstore.TimestampFromTime(end))
	if err != nil {
		return c.fail("Failed to update event", err)
	}
	return c.Refresh(ctx)
}

func (c *Calendar) Delete(ctx context.Context, id string) error {
	if _, err := c.currentUID(); err != nil {
		return err
	}
	title := id
	c.mu.Lock()
	for _, e := range c.events {
		if e.ID == id {
			title = e.Title
			break
		}
	}
	c.mu.Unlock()

	if !c.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete the event '%s'", title)) {
		return nil
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.fail("Failed to delete event", err)
	}
	return c.Refresh(ctx)
}
