// ABOUTME: Calendar MCP tool handlers
// ABOUTME: Implements list_events, add_event and move_event with RFC 3339 times
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/shaft/viewmodel"
)

type AddEventInput struct {
	Title string `json:"title" jsonschema:"Event title (required)"`
	Start string `json:"start" jsonschema:"Start time, RFC 3339 or YYYY-MM-DD (required)"`
	End   string `json:"end,omitempty" jsonschema:"End time, RFC 3339 or YYYY-MM-DD (defaults to start)"`
}

type MoveEventInput struct {
	ID    string `json:"id" jsonschema:"Event ID (required)"`
	Start string `json:"start" jsonschema:"New start time, RFC 3339 or YYYY-MM-DD (required)"`
	End   string `json:"end,omitempty" jsonschema:"New end time (defaults to keeping the duration)"`
}

type EventOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type EventsOutput struct {
	Events []EventOutput `json:"events"`
}

func eventToOutput(e viewmodel.CalendarEvent) EventOutput {
	return EventOutput{
		ID:    e.ID,
		Title: e.Title,
		Start: formatTime(e.Start),
		End:   formatTime(e.End),
	}
}

// parseTime accepts RFC 3339 or a bare date in UTC.
func parseTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s time %q: use RFC 3339 or YYYY-MM-DD", field, s)
	}
	return t, nil
}

func (h *Handlers) calendar(ctx context.Context) (*viewmodel.Calendar, error) {
	nav := &navRecorder{}
	c := viewmodel.NewCalendar(h.sessions, h.stores.Events, nav, viewmodel.AlwaysConfirm{}, h.log)
	if err := mount(ctx, c, nav); err != nil {
		c.Unmount()
		return nil, err
	}
	return c, nil
}

func findEvent(events []viewmodel.CalendarEvent, id string) (viewmodel.CalendarEvent, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return viewmodel.CalendarEvent{}, false
}

func (h *Handlers) ListEvents(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, EventsOutput, error) {
	c, err := h.calendar(ctx)
	if err != nil {
		return nil, EventsOutput{}, err
	}
	defer c.Unmount()

	out := EventsOutput{Events: []EventOutput{}}
	for _, e := range c.Events() {
		out.Events = append(out.Events, eventToOutput(e))
	}
	return nil, out, nil
}

func (h *Handlers) AddEvent(ctx context.Context, _ *mcp.CallToolRequest, input AddEventInput) (*mcp.CallToolResult, EventsOutput, error) {
	start, err := parseTime("start", input.Start)
	if err != nil {
		return nil, EventsOutput{}, err
	}
	if start.IsZero() {
		return nil, EventsOutput{}, fmt.Errorf("start is required")
	}
	end, err := parseTime("end", input.End)
	if err != nil {
		return nil, EventsOutput{}, err
	}

	c, err := h.calendar(ctx)
	if err != nil {
		return nil, EventsOutput{}, err
	}
	defer c.Unmount()

	if err := c.Add(ctx, input.Title, start, end); err != nil {
		return nil, EventsOutput{}, toolError(err)
	}

	out := EventsOutput{Events: []EventOutput{}}
	for _, e := range c.Events() {
		out.Events = append(out.Events, eventToOutput(e))
	}
	return nil, out, nil
}

func (h *Handlers) MoveEvent(ctx context.Context, _ *mcp.CallToolRequest, input MoveEventInput) (*mcp.CallToolResult, EventOutput, error) {
	start, err := parseTime("start", input.Start)
	if err != nil {
		return nil, EventOutput{}, err
	}
	if start.IsZero() {
		return nil, EventOutput{}, fmt.Errorf("start is required")
	}
	end, err := parseTime("end", input.End)
	if err != nil {
		return nil, EventOutput{}, err
	}

	c, err := h.calendar(ctx)
	if err != nil {
		return nil, EventOutput{}, err
	}
	defer c.Unmount()

	current, ok := findEvent(c.Events(), input.ID)
	if !ok {
		return nil, EventOutput{}, fmt.Errorf("event not found: %s", input.ID)
	}
	if end.IsZero() {
		end = start.Add(current.End.Sub(current.Start))
	}

	if err := c.Drop(ctx, input.ID, start, end); err != nil {
		return nil, EventOutput{}, toolError(err)
	}

	moved, ok := findEvent(c.Events(), input.ID)
	if !ok {
		return nil, EventOutput{}, fmt.Errorf("event not found: %s", input.ID)
	}
	return nil, eventToOutput(moved), nil
}
