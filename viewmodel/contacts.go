// ABOUTME: Contacts screen controller
// ABOUTME: Lists the user's contacts and handles add, edit and confirmed delete
package viewmodel

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
)

type ContactForm struct {
	Name  string
	Email string
	Phone string
}

type Contacts struct {
	base
	repo    ContactStore
	confirm Confirmer

	contacts  []models.Contact
	form      ContactForm
	editingID string
}

func NewContacts(session SessionSource, repo ContactStore, nav Navigator, confirm Confirmer, log zerolog.Logger) *Contacts {
	c := &Contacts{
		base:    newBase(session, nav, log, "Failed to fetch contacts"),
		repo:    repo,
		confirm: confirm,
	}
	c.fetch = c.load
	return c
}

func (c *Contacts) load(ctx context.Context, uid string) (func(), error) {
	contacts, err := c.repo.List(ctx, uid, repository.ListOptions{})
	if err != nil {
		return nil, err
	}
	return func() { c.contacts = contacts }, nil
}

// Contacts returns the current snapshot, newest first.
func (c *Contacts) Contacts() []models.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Contact(nil), c.contacts...)
}

func (c *Contacts) Form() ContactForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Contacts) SetForm(f ContactForm) {
	c.mu.Lock()
	c.form = f
	c.mu.Unlock()
}

// Editing returns the id being edited, or "".
func (c *Contacts) Editing() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID
}

// Edit loads a contact from the snapshot into the form.
func (c *Contacts) Edit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, contact := range c.contacts {
		if contact.ID == id {
			c.editingID = id
			c.form = ContactForm{Name: contact.Name, Email: contact.Email, Phone: contact.Phone}
			return true
		}
	}
	return false
}

func (c *Contacts) CancelEdit() {
	c.mu.Lock()
	c.editingID = ""
	c.form = ContactForm{}
	c.mu.Unlock()
}

// Submit creates or updates from the form, then re-fetches.
func (c *Contacts) Submit(ctx context.Context) error {
	uid, err := c.currentUID()
	if err != nil {
		return err
	}

	c.mu.Lock()
	form := c.form
	editingID := c.editingID
	c.errMsg = ""
	c.mu.Unlock()

	if strings.TrimSpace(form.Name) == "" {
		return c.invalid("Name is required")
	}

	in := repository.ContactInput{Name: form.Name, Email: form.Email, Phone: form.Phone}
	if editingID != "" {
		err = c.repo.Update(ctx, editingID, in)
	} else {
		_, err = c.repo.Create(ctx, uid, in)
	}
	if err != nil {
		return c.fail("Failed to save contact", err)
	}

	c.CancelEdit()
	return c.Refresh(ctx)
}

// Delete removes a contact after confirmation. Declining is a no-op.
func (c *Contacts) Delete(ctx context.Context, id string) error {
	if _, err := c.currentUID(); err != nil {
		return err
	}
	if !c.confirm.Confirm("Are you sure you want to delete this contact?") {
		return nil
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return c.fail("Failed to delete contact", err)
	}
	return c.Refresh(ctx)
}
