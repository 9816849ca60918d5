// ABOUTME: Deal repository
// ABOUTME: Rejects non-finite amounts and unknown stages before any write
package repository

import (
	"context"

	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/models"
)

// DealInput is the editable part of a deal. Amount is already parsed.
type DealInput struct {
	Name   string
	Amount float64
	Stage  string
}

type Deals struct {
	c collection[models.Deal]
}

func NewDeals(store docstore.Store) *Deals {
	return &Deals{c: collection[models.Deal]{
		store:  store,
		name:   DealsCollection,
		plural: "deals",
		single: "deal",
		order:  docstore.Order{Field: fieldCreatedAt, Desc: true},
		decode: decodeDeal,
	}}
}

func decodeDeal(doc docstore.Document) models.Deal {
	f := doc.Fields
	amount, _ := f.Float("amount")
	return models.Deal{
		ID:        doc.ID,
		UserID:    f.String(fieldUserID),
		Name:      f.String("name"),
		Amount:    amount,
		Stage:     f.String("stage"),
		CreatedAt: f.Timestamp(fieldCreatedAt).ToTime(),
		UpdatedAt: f.Timestamp(fieldUpdatedAt).ToTime(),
	}
}

func (in DealInput) fields() (docstore.Fields, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateDeal(in.Amount, in.Stage); err != nil {
		return nil, err
	}
	return docstore.Fields{
		"name":   name,
		"amount": in.Amount,
		"stage":  in.Stage,
	}, nil
}

func (r *Deals) List(ctx context.Context, userID string, opts ListOptions) ([]models.Deal, error) {
	return r.c.list(ctx, userID, opts)
}

func (r *Deals) Get(ctx context.Context, id string) (models.Deal, error) {
	return r.c.get(ctx, id)
}

func (r *Deals) Create(ctx context.Context, userID string, in DealInput) (models.Deal, error) {
	fields, err := in.fields()
	if err != nil {
		return models.Deal{}, err
	}
	fields[fieldUserID] = userID
	fields[fieldCreatedAt] = docstore.ServerTimestamp
	fields[fieldUpdatedAt] = docstore.ServerTimestamp
	return r.c.add(ctx, fields)
}

// Update re-validates amount and stage, then overwrites the editable fields.
func (r *Deals) Update(ctx context.Context, id string, in DealInput) error {
	fields, err := in.fields()
	if err != nil {
		return err
	}
	fields[fieldUpdatedAt] = docstore.ServerTimestamp
	return r.c.update(ctx, id, fields)
}

func (r *Deals) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
