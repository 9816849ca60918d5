// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list_contacts, add_contact, update_contact and delete_contact
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
)

type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of results (default all)"`
}

type ContactInput struct {
	Name  string `json:"name" jsonschema:"Contact name (required)"`
	Email string `json:"email,omitempty" jsonschema:"Email address"`
	Phone string `json:"phone,omitempty" jsonschema:"Phone number"`
}

type UpdateContactInput struct {
	ID    string `json:"id" jsonschema:"Contact ID (required)"`
	Name  string `json:"name" jsonschema:"Contact name (required)"`
	Email string `json:"email,omitempty" jsonschema:"Email address (cleared when omitted)"`
	Phone string `json:"phone,omitempty" jsonschema:"Phone number (cleared when omitted)"`
}

type IDInput struct {
	ID string `json:"id" jsonschema:"Record ID (required)"`
}

type ContactOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

type DeletedOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func contactToOutput(c models.Contact) ContactOutput {
	return ContactOutput{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func contactsOutput(contacts []models.Contact, limit int) ContactsOutput {
	out := ContactsOutput{Contacts: []ContactOutput{}}
	for i, c := range contacts {
		if limit > 0 && i >= limit {
			break
		}
		out.Contacts = append(out.Contacts, contactToOutput(c))
	}
	return out
}

func (h *Handlers) contacts(ctx context.Context) (*viewmodel.Contacts, error) {
	nav := &navRecorder{}
	c := viewmodel.NewContacts(h.sessions, h.stores.Contacts, nav, viewmodel.AlwaysConfirm{}, h.log)
	if err := mount(ctx, c, nav); err != nil {
		c.Unmount()
		return nil, err
	}
	return c, nil
}

func (h *Handlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ContactsOutput, error) {
	c, err := h.contacts(ctx)
	if err != nil {
		return nil, ContactsOutput{}, err
	}
	defer c.Unmount()
	return nil, contactsOutput(c.Contacts(), input.Limit), nil
}

func (h *Handlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	c, err := h.contacts(ctx)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	defer c.Unmount()

	c.SetForm(viewmodel.ContactForm{Name: input.Name, Email: input.Email, Phone: input.Phone})
	if err := c.Submit(ctx); err != nil {
		return nil, ContactOutput{}, toolError(err)
	}

	// newest first, so the new contact leads the refreshed list
	list := c.Contacts()
	if len(list) == 0 {
		return nil, ContactOutput{}, fmt.Errorf("contact was not saved")
	}
	return nil, contactToOutput(list[0]), nil
}

func (h *Handlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	c, err := h.contacts(ctx)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	defer c.Unmount()

	if !c.Edit(input.ID) {
		return nil, ContactOutput{}, fmt.Errorf("contact not found: %s", input.ID)
	}
	c.SetForm(viewmodel.ContactForm{Name: input.Name, Email: input.Email, Phone: input.Phone})
	if err := c.Submit(ctx); err != nil {
		return nil, ContactOutput{}, toolError(err)
	}

	for _, contact := range c.Contacts() {
		if contact.ID == input.ID {
			return nil, contactToOutput(contact), nil
		}
	}
	return nil, ContactOutput{}, fmt.Errorf("contact not found: %s", input.ID)
}

func (h *Handlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeletedOutput, error) {
	c, err := h.contacts(ctx)
	if err != nil {
		return nil, DeletedOutput{}, err
	}
	defer c.Unmount()

	if err := c.Delete(ctx, input.ID); err != nil {
		return nil, DeletedOutput{}, toolError(err)
	}
	return nil, DeletedOutput{ID: input.ID, Deleted: true}, nil
}
