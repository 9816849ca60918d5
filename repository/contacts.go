// ABOUTME: Contact repository
// ABOUTME: Lists newest first and stamps createdAt/updatedAt with the store clock
package repository

import (
	"context"
	"strings"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
)

// ContactInput is the editable part of a contact.
type ContactInput struct {
	Name  string
	Email string
	Phone string
}

type Contacts struct {
	c collection[models.Contact]
}

func NewContacts(store docstore.Store) *Contacts {
	return &Contacts{c: collection[models.Contact]{
		store:  store,
		name:   ContactsCollection,
		plural: "contacts",
		single: "contact",
		order:  docstore.Order{Field: fieldCreatedAt, Desc: true},
		decode: decodeContact,
	}}
}

func decodeContact(doc docstore.Document) models.Contact {
	f := doc.Fields
	return models.Contact{
		ID:        doc.ID,
		UserID:    f.String(fieldUserID),
		Name:      f.String("name"),
		Email:     f.String("email"),
		Phone:     f.String("phone"),
		CreatedAt: f.Timestamp(fieldCreatedAt).ToTime(),
		UpdatedAt: f.Timestamp(fieldUpdatedAt).ToTime(),
	}
}

func (in ContactInput) fields() (docstore.Fields, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	return docstore.Fields{
		"name":  name,
		"email": strings.TrimSpace(in.Email),
		"phone": strings.TrimSpace(in.Phone),
	}, nil
}

func (r *Contacts) List(ctx context.Context, userID string, opts ListOptions) ([]models.Contact, error) {
	return r.c.list(ctx, userID, opts)
}

func (r *Contacts) Get(ctx context.Context, id string) (models.Contact, error) {
	return r.c.get(ctx, id)
}

func (r *Contacts) Create(ctx context.Context, userID string, in ContactInput) (models.Contact, error) {
	fields, err := in.fields()
	if err != nil {
		return models.Contact{}, err
	}
	fields[fieldUserID] = userID
	fields[fieldCreatedAt] = docstore.ServerTimestamp
	fields[fieldUpdatedAt] = docstore.ServerTimestamp
	return r.c.add(ctx, fields)
}

func (r *Contacts) Update(ctx context.Context, id string, in ContactInput) error {
	fields, err := in.fields()
	if err != nil {
		return err
	}
	fields[fieldUpdatedAt] = docstore.ServerTimestamp
	return r.c.update(ctx, id, fields)
}

func (r *Contacts) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
