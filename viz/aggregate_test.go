package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/shaft/models"
)

func deal(name string, amount float64, stage string, created time.Time) models.Deal {
	return models.Deal{Name: name, Amount: amount, Stage: stage, CreatedAt: created}
}

func at(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestTotalDealValue(t *testing.T) {
	deals := []models.Deal{
		deal("a", 1000, models.StageProposal, at(2024, 1, 1)),
		deal("b", 250.5, models.StageClosedWon, at(2024, 1, 2)),
	}
	before := TotalDealValue(deals)
	assert.Equal(t, 1250.5, before)

	deals = append(deals, deal("Acme", 1500, models.StageProspecting, at(2024, 1, 3)))
	assert.Equal(t, before+1500, TotalDealValue(deals))

	assert.Zero(t, TotalDealValue(nil))
}

func TestStageHistogram(t *testing.T) {
	deals := []models.Deal{
		deal("a", 10, models.StageNegotiation, at(2024, 1, 1)),
		deal("b", 20, models.StageProspecting, at(2024, 1, 1)),
		deal("c", 30, models.StageProspecting, at(2024, 1, 1)),
		deal("d", 40, "Legacy", at(2024, 1, 1)),
	}

	hist := StageHistogram(deals)
	require.Len(t, hist, len(models.Stages)+1)

	assert.Equal(t, StageCount{Stage: models.StageProspecting, Count: 2, Amount: 50}, hist[0])
	assert.Equal(t, StageCount{Stage: models.StageQualification}, hist[1])
	assert.Equal(t, 1, hist[3].Count)
	assert.Equal(t, "Legacy", hist[len(hist)-1].Stage)
}

func TestMonthlyDealValue_Chronological(t *testing.T) {
	deals := []models.Deal{
		deal("a", 100, models.StageProposal, at(2024, 2, 10)),
		deal("b", 50, models.StageProposal, at(2023, 12, 31)),
		deal("c", 25, models.StageProposal, at(2024, 2, 1)),
		deal("d", 5, models.StageProposal, at(2024, 1, 15)),
		{Name: "no date", Amount: 999, Stage: models.StageProposal},
	}

	months := MonthlyDealValue(deals)
	require.Len(t, months, 3)
	assert.Equal(t, "Dec 2023", months[0].Month)
	assert.Equal(t, 50.0, months[0].Value)
	assert.Equal(t, "Jan 2024", months[1].Month)
	assert.Equal(t, "Feb 2024", months[2].Month)
	assert.Equal(t, 125.0, months[2].Value)
}

func TestTaskCompletion(t *testing.T) {
	tasks := []models.Task{{Completed: true}, {Completed: false}, {Completed: true}}

	split := TaskCompletion(tasks)
	assert.Equal(t, TaskSplit{Completed: 2, Incomplete: 1}, split)
	assert.InDelta(t, 2.0/3.0, split.Ratio(), 1e-9)
	assert.Zero(t, TaskCompletion(nil).Ratio())
}

func TestGenerateDashboardStats(t *testing.T) {
	stats := GenerateDashboardStats(
		[]models.Contact{{Name: "Ada"}},
		[]models.Deal{
			deal("a", 100, models.StageClosedWon, at(2024, 1, 1)),
			deal("b", 40, models.StageProposal, at(2024, 1, 1)),
		},
		[]models.Task{{Completed: true}},
	)

	assert.Equal(t, 1, stats.TotalContacts)
	assert.Equal(t, 2, stats.TotalDeals)
	assert.Equal(t, 140.0, stats.TotalDealValue)
	assert.Equal(t, 100.0, stats.WonDealValue)
	assert.Equal(t, 1, stats.Tasks.Completed)
}

func TestRenderDashboard(t *testing.T) {
	deals := []models.Deal{deal("Acme", 1500, models.StageProspecting, at(2024, 3, 1))}
	out := RenderDashboard(GenerateDashboardStats(nil, deals, nil), StageHistogram(deals), MonthlyDealValue(deals))

	assert.Contains(t, out, "SHAFT DASHBOARD")
	assert.Contains(t, out, "Prospecting")
	assert.Contains(t, out, "$1500 total")
	assert.Contains(t, out, "Mar 2024")
}

func TestPipelineGraph(t *testing.T) {
	deals := []models.Deal{
		deal("a", 10, models.StageProspecting, at(2024, 1, 1)),
		deal("b", 20, models.StageClosedWon, at(2024, 1, 1)),
	}

	dot, err := PipelineGraph(context.Background(), StageHistogram(deals))
	require.NoError(t, err)
	assert.True(t, strings.Contains(dot, "digraph") || strings.Contains(dot, "graph"))
	assert.Contains(t, dot, "Prospecting")
	assert.Contains(t, dot, "Closed Won")
}
