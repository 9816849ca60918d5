// ABOUTME: Deals screen controller
// ABOUTME: Amount and stage are validated locally so bad input never reaches the repository
package viewmodel

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
)

// DealForm holds raw user input; Amount is parsed on submit.
type DealForm struct {
	Name   string
	Amount string
	Stage  string
}

func emptyDealForm() DealForm {
	return DealForm{Stage: models.StageProspecting}
}

type Deals struct {
	base
	repo    DealStore
	confirm Confirmer

	deals     []models.Deal
	form      DealForm
	editingID string
}

func NewDeals(session SessionSource, repo DealStore, nav Navigator, confirm Confirmer, log zerolog.Logger) *Deals {
	d := &Deals{
		base:    newBase(session, nav, log, "Failed to fetch deals"),
		repo:    repo,
		confirm: confirm,
		form:    emptyDealForm(),
	}
	d.fetch = d.load
	return d
}

func (d *Deals) load(ctx context.Context, uid string) (func(), error) {
	deals, err := d.repo.List(ctx, uid, repository.ListOptions{})
	if err != nil {
		return nil, err
	}
	return func() { d.deals = deals }, nil
}

// Stages lists the choices for the stage selector.
func (d *Deals) Stages() []string {
	return append([]string(nil), models.Stages...)
}

func (d *Deals) Deals() []models.Deal {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Deal(nil), d.deals...)
}

func (d *Deals) Form() DealForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

func (d *Deals) SetForm(f DealForm) {
	d.mu.Lock()
	d.form = f
	d.mu.Unlock()
}

func (d *Deals) Editing() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editingID
}

func (d *Deals) Edit(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, deal := range d.deals {
		if deal.ID == id {
			d.editingID = id
			d.form = DealForm{
				Name:   deal.Name,
				Amount: strconv.FormatFloat(deal.Amount, 'f', -1, 64),
				Stage:  deal.Stage,
			}
			return true
		}
	}
	return false
}

func (d *Deals) CancelEdit() {
	d.mu.Lock()
	d.editingID = ""
	d.form = emptyDealForm()
	d.mu.Unlock()
}

// Submit validates the form, writes the deal and re-fetches.
func (d *Deals) Submit(ctx context.Context) error {
	uid, err := d.currentUID()
	if err != nil {
		return err
	}

	d.mu.Lock()
	form := d.form
	editingID := d.editingID
	d.errMsg = ""
	d.mu.Unlock()

	if strings.TrimSpace(form.Name) == "" {
		return d.invalid("Failed to save deal: Name is required")
	}
	amount, err := models.ParseAmount(form.Amount)
	if err != nil {
		return d.invalid("Failed to save deal: Invalid amount")
	}
	if !models.IsValidStage(form.Stage) {
		return d.invalid("Failed to save deal: Invalid stage")
	}

	in := repository.DealInput{Name: form.Name, Amount: amount, Stage: form.Stage}
	if editingID != "" {
		err = d.repo.Update(ctx, editingID, in)
	} else {
		_, err = d.repo.Create(ctx, uid, in)
	}
	if err != nil {
		return d.fail("Failed to save deal", err)
	}

	d.CancelEdit()
	return d.Refresh(ctx)
}

func (d *Deals) Delete(ctx context.Context, id string) error {
	if _, err := d.currentUID(); err != nil {
		return err
	}
	if !d.confirm.Confirm("Are you sure you want to delete this deal?") {
		return nil
	}
	if err := d.repo.Delete(ctx, id); err != nil {
		return d.fail("Failed to delete deal", err)
	}
	return d.Refresh(ctx)
}
