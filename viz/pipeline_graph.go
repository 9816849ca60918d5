// ABOUTME: DOT rendering of the deal pipeline
// ABOUTME: One node per stage, labelled with deal count and value, chained in pipeline order
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/shaft/models"
)

// PipelineGraph renders stages as a left-to-right DOT graph. The two closed
// stages both hang off Negotiation.
func PipelineGraph(ctx context.Context, stages []StageCount) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Deal Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	nodes := make(map[string]*cgraph.Node, len(stages))
	for _, s := range stages {
		node, err := graph.CreateNodeByName(s.Stage)
		if err != nil {
			return "", fmt.Errorf("failed to create node %q: %w", s.Stage, err)
		}
		node.SetShape(cgraph.BoxShape)
		node.SetLabel(fmt.Sprintf("%s\n%d deals\n$%s", s.Stage, s.Count, formatAmount(s.Amount)))
		nodes[s.Stage] = node
	}

	link := func(from, to string) error {
		a, okA := nodes[from]
		b, okB := nodes[to]
		if !okA || !okB {
			return nil
		}
		if _, err := graph.CreateEdgeByName(from+"->"+to, a, b); err != nil {
			return fmt.Errorf("failed to create edge %s->%s: %w", from, to, err)
		}
		return nil
	}

	open := []string{
		models.StageProspecting,
		models.StageQualification,
		models.StageProposal,
		models.StageNegotiation,
	}
	for i := 0; i+1 < len(open); i++ {
		if err := link(open[i], open[i+1]); err != nil {
			return "", err
		}
	}
	for _, closed := range []string{models.StageClosedWon, models.StageClosedLost} {
		if err := link(models.StageNegotiation, closed); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
