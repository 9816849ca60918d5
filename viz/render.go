// ABOUTME: Plain-text rendering of dashboard and analytics aggregates
// ABOUTME: Used by the CLI analytics command
package viz

import (
	"fmt"
	"strings"
)

const barWidth = 10

func RenderDashboard(stats DashboardStats, stages []StageCount, months []MonthValue) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  SHAFT DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stages)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  %d contacts  %d deals  $%s total  $%s won\n",
		stats.TotalContacts, stats.TotalDeals, formatAmount(stats.TotalDealValue), formatAmount(stats.WonDealValue)))
	out.WriteString(fmt.Sprintf("  %d tasks done, %d open (%.0f%%)\n\n",
		stats.Tasks.Completed, stats.Tasks.Incomplete, stats.Tasks.Ratio()*100))

	if len(months) > 0 {
		out.WriteString("MONTHLY DEAL VALUE\n")
		for _, m := range months {
			out.WriteString(fmt.Sprintf("  %-9s $%s\n", m.Month, formatAmount(m.Value)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, stages []StageCount) {
	maxCount := 0
	for _, s := range stages {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range stages {
		barLength := (s.Count * barWidth) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", barWidth-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d ($%s)\n",
			s.Stage, bar, s.Count, formatAmount(s.Amount)))
	}
}

// formatAmount prints whole amounts without decimals and others with two.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
