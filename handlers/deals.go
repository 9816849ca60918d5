// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements list_deals, add_deal, update_deal and delete_deal
package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
)

type DealInput struct {
	Name   string  `json:"name" jsonschema:"Deal name (required)"`
	Amount float64 `json:"amount" jsonschema:"Deal amount"`
	Stage  string  `json:"stage,omitempty" jsonschema:"Deal stage: Prospecting, Qualification, Proposal, Negotiation, Closed Won, Closed Lost (default Prospecting)"`
}

type UpdateDealInput struct {
	ID     string  `json:"id" jsonschema:"Deal ID (required)"`
	Name   string  `json:"name" jsonschema:"Deal name (required)"`
	Amount float64 `json:"amount" jsonschema:"Deal amount"`
	Stage  string  `json:"stage,omitempty" jsonschema:"Deal stage (default Prospecting)"`
}

type DealOutput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Stage     string  `json:"stage"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type DealsOutput struct {
	Deals []DealOutput `json:"deals"`
}

func dealToOutput(d models.Deal) DealOutput {
	return DealOutput{
		ID:        d.ID,
		Name:      d.Name,
		Amount:    d.Amount,
		Stage:     d.Stage,
		CreatedAt: formatTime(d.CreatedAt),
		UpdatedAt: formatTime(d.UpdatedAt),
	}
}

func (in DealInput) form() viewmodel.DealForm {
	stage := in.Stage
	if stage == "" {
		stage = models.StageProspecting
	}
	return viewmodel.DealForm{
		Name:   in.Name,
		Amount: strconv.FormatFloat(in.Amount, 'f', -1, 64),
		Stage:  stage,
	}
}

func (h *Handlers) deals(ctx context.Context) (*viewmodel.Deals, error) {
	nav := &navRecorder{}
	d := viewmodel.NewDeals(h.sessions, h.stores.Deals, nav, viewmodel.AlwaysConfirm{}, h.log)
	if err := mount(ctx, d, nav); err != nil {
		d.Unmount()
		return nil, err
	}
	return d, nil
}

func (h *Handlers) ListDeals(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, DealsOutput, error) {
	d, err := h.deals(ctx)
	if err != nil {
		return nil, DealsOutput{}, err
	}
	defer d.Unmount()

	out := DealsOutput{Deals: []DealOutput{}}
	for i, deal := range d.Deals() {
		if input.Limit > 0 && i >= input.Limit {
			break
		}
		out.Deals = append(out.Deals, dealToOutput(deal))
	}
	return nil, out, nil
}

func (h *Handlers) AddDeal(ctx context.Context, _ *mcp.CallToolRequest, input DealInput) (*mcp.CallToolResult, DealOutput, error) {
	d, err := h.deals(ctx)
	if err != nil {
		return nil, DealOutput{}, err
	}
	defer d.Unmount()

	d.SetForm(input.form())
	if err := d.Submit(ctx); err != nil {
		return nil, DealOutput{}, toolError(err)
	}

	list := d.Deals()
	if len(list) == 0 {
		return nil, DealOutput{}, fmt.Errorf("deal was not saved")
	}
	return nil, dealToOutput(list[0]), nil
}

func (h *Handlers) UpdateDeal(ctx context.Context, _ *mcp.CallToolRequest, input UpdateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	d, err := h.deals(ctx)
	if err != nil {
		return nil, DealOutput{}, err
	}
	defer d.Unmount()

	if !d.Edit(input.ID) {
		return nil, DealOutput{}, fmt.Errorf("deal not found: %s", input.ID)
	}
	d.SetForm(DealInput{Name: input.Name, Amount: input.Amount, Stage: input.Stage}.form())
	if err := d.Submit(ctx); err != nil {
		return nil, DealOutput{}, toolError(err)
	}

	for _, deal := range d.Deals() {
		if deal.ID == input.ID {
			return nil, dealToOutput(deal), nil
		}
	}
	return nil, DealOutput{}, fmt.Errorf("deal not found: %s", input.ID)
}

func (h *Handlers) DeleteDeal(ctx context.Context, _ *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DeletedOutput, error) {
	d, err := h.deals(ctx)
	if err != nil {
		return nil, DeletedOutput{}, err
	}
	defer d.Unmount()

	if err := d.Delete(ctx, input.ID); err != nil {
		return nil, DeletedOutput{}, toolError(err)
	}
	return nil, DeletedOutput{ID: input.ID, Deleted: true}, nil
}
