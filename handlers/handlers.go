// ABOUTME: MCP tool handlers acting as the signed-in user
// ABOUTME: Every tool drives the same controllers as the web and terminal front ends
package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/viewmodel"
)

// ErrSignedOut is returned by every tool while no session exists.
var ErrSignedOut = errors.New("not signed in: run `shaft login` first")

type Handlers struct {
	sessions viewmodel.SessionManager
	stores   viewmodel.Stores
	log      zerolog.Logger
}

func New(sessions viewmodel.SessionManager, stores viewmodel.Stores, log zerolog.Logger) *Handlers {
	return &Handlers{sessions: sessions, stores: stores, log: log}
}

// Register adds every tool and resource to server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts, newest first",
	}, h.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact",
	}, h.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Replace a contact's name, email and phone",
	}, h.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact",
	}, h.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deals",
		Description: "List deals, newest first",
	}, h.ListDeals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_deal",
		Description: "Create a deal with a name, amount and stage",
	}, h.AddDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deal",
		Description: "Update a deal's name, amount and stage",
	}, h.UpdateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deal",
		Description: "Delete a deal",
	}, h.DeleteDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, newest first",
	}, h.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add an incomplete task",
	}, h.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_task",
		Description: "Flip a task between completed and open",
	}, h.ToggleTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "List calendar events in start order",
	}, h.ListEvents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_event",
		Description: "Add a calendar event",
	}, h.AddEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_event",
		Description: "Reschedule a calendar event",
	}, h.MoveEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analytics_summary",
		Description: "Deal stage and monthly value histograms plus task completion",
	}, h.AnalyticsSummary)

	h.registerResources(server)
}

// navRecorder notes whether a controller bounced to the login screen.
type navRecorder struct {
	mu   sync.Mutex
	path string
}

func (n *navRecorder) Redirect(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *navRecorder) signedOut() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path == viewmodel.PathLogin
}

type screen interface {
	Mount(ctx context.Context)
	Error() string
}

func mount(ctx context.Context, sc screen, nav *navRecorder) error {
	sc.Mount(ctx)
	if nav.signedOut() {
		return ErrSignedOut
	}
	if msg := sc.Error(); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func toolError(err error) error {
	if errors.Is(err, viewmodel.ErrNoSession) {
		return ErrSignedOut
	}
	return err
}
