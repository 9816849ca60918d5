// ABOUTME: MCP resources exposing the signed-in user's CRM data
// ABOUTME: Serves shaft://contacts, shaft://deals and shaft://pipeline as read-only JSON
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const scheme = "shaft://"

func (h *Handlers) registerResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         scheme + "contacts",
		Name:        "contacts",
		Description: "All contacts, newest first",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         scheme + "deals",
		Name:        "deals",
		Description: "All deals, newest first",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         scheme + "pipeline",
		Name:        "pipeline",
		Description: "Deal counts and value per stage",
		MIMEType:    "application/json",
	}, h.ReadResource)
}

// ReadResource handles resource read requests.
func (h *Handlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, scheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", scheme)
	}

	switch strings.TrimPrefix(uri, scheme) {
	case "contacts":
		_, out, err := h.ListContacts(ctx, nil, ListInput{})
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, out.Contacts)

	case "deals":
		_, out, err := h.ListDeals(ctx, nil, ListInput{})
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, out.Deals)

	case "pipeline":
		snap, err := h.analytics(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, map[string]interface{}{
			"stages":      snap.Stages,
			"total_value": snap.TotalValue,
		})

	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
