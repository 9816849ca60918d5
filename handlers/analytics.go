// ABOUTME: Analytics MCP tool handler
// ABOUTME: Returns the stage histogram, monthly values and task split for the signed-in user
package handlers

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/shaft/viewmodel"
	"github.com/harperreed/shaft/viz"
)

type AnalyticsInput struct {
	IncludeGraph bool `json:"include_graph,omitempty" jsonschema:"Also return the pipeline as a Graphviz document"`
}

type AnalyticsOutput struct {
	Stages         []viz.StageCount `json:"stages"`
	Monthly        []viz.MonthValue `json:"monthly"`
	Tasks          viz.TaskSplit    `json:"tasks"`
	CompletionRate float64          `json:"completion_rate"`
	TotalValue     float64          `json:"total_value"`
	PipelineDOT    string           `json:"pipeline_dot,omitempty"`
}

func (h *Handlers) analytics(ctx context.Context) (viewmodel.AnalyticsSnapshot, error) {
	nav := &navRecorder{}
	a := viewmodel.NewAnalytics(h.sessions, h.stores.Deals, h.stores.Tasks, nav, h.log)
	defer a.Unmount()
	if err := mount(ctx, a, nav); err != nil {
		return viewmodel.AnalyticsSnapshot{}, err
	}
	return a.Snapshot(), nil
}

func (h *Handlers) AnalyticsSummary(ctx context.Context, _ *mcp.CallToolRequest, input AnalyticsInput) (*mcp.CallToolResult, AnalyticsOutput, error) {
	snap, err := h.analytics(ctx)
	if err != nil {
		return nil, AnalyticsOutput{}, err
	}

	out := AnalyticsOutput{
		Stages:         snap.Stages,
		Monthly:        snap.Monthly,
		Tasks:          snap.Tasks,
		CompletionRate: snap.Tasks.Ratio(),
		TotalValue:     snap.TotalValue,
	}
	if out.Monthly == nil {
		out.Monthly = []viz.MonthValue{}
	}

	if input.IncludeGraph {
		dot, err := viz.PipelineGraph(ctx, snap.Stages)
		if err != nil {
			return nil, AnalyticsOutput{}, err
		}
		out.PipelineDOT = dot
	}
	return nil, out, nil
}
