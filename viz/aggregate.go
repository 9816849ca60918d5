// ABOUTME: Aggregates derived from deal and task snapshots
// ABOUTME: Everything is recomputed from the full snapshot on each call
package viz

import (
	"sort"
	"time"

	"github.com/harperreed/shaft/models"
)

// MonthKeyLayout formats the month bucket of a deal's createdAt.
const MonthKeyLayout = "Jan 2006"

type StageCount struct {
	Stage  string  `json:"stage"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
	start time.Time
}

type TaskSplit struct {
	Completed  int `json:"completed"`
	Incomplete int `json:"incomplete"`
}

// Ratio returns the completed fraction, or 0 for no tasks.
func (s TaskSplit) Ratio() float64 {
	total := s.Completed + s.Incomplete
	if total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(total)
}

type DashboardStats struct {
	TotalContacts  int       `json:"totalContacts"`
	TotalDeals     int       `json:"totalDeals"`
	TotalDealValue float64   `json:"totalDealValue"`
	WonDealValue   float64   `json:"wonDealValue"`
	Tasks          TaskSplit `json:"tasks"`
}

// TotalDealValue sums amounts over deals.
func TotalDealValue(deals []models.Deal) float64 {
	var total float64
	for _, d := range deals {
		total += d.Amount
	}
	return total
}

// StageHistogram counts deals per stage: known stages in pipeline order
// (including empty ones), then any unknown stages alphabetically.
func StageHistogram(deals []models.Deal) []StageCount {
	byStage := make(map[string]*StageCount)
	for _, d := range deals {
		stage := d.Stage
		if stage == "" {
			stage = "unknown"
		}
		sc, ok := byStage[stage]
		if !ok {
			sc = &StageCount{Stage: stage}
			byStage[stage] = sc
		}
		sc.Count++
		sc.Amount += d.Amount
	}

	result := make([]StageCount, 0, len(models.Stages)+len(byStage))
	for _, stage := range models.Stages {
		if sc, ok := byStage[stage]; ok {
			result = append(result, *sc)
			delete(byStage, stage)
		} else {
			result = append(result, StageCount{Stage: stage})
		}
	}

	var extra []string
	for stage := range byStage {
		extra = append(extra, stage)
	}
	sort.Strings(extra)
	for _, stage := range extra {
		result = append(result, *byStage[stage])
	}
	return result
}

// MonthlyDealValue sums deal amounts by the calendar month of createdAt,
// oldest month first. Deals without a createdAt are skipped.
func MonthlyDealValue(deals []models.Deal) []MonthValue {
	byMonth := make(map[string]*MonthValue)
	for _, d := range deals {
		if d.CreatedAt.IsZero() {
			continue
		}
		created := d.CreatedAt.UTC()
		key := created.Format(MonthKeyLayout)
		mv, ok := byMonth[key]
		if !ok {
			mv = &MonthValue{
				Month: key,
				start: time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC),
			}
			byMonth[key] = mv
		}
		mv.Value += d.Amount
	}

	result := make([]MonthValue, 0, len(byMonth))
	for _, mv := range byMonth {
		result = append(result, *mv)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].start.Before(result[j].start)
	})
	return result
}

// TaskCompletion splits tasks into completed and the rest.
func TaskCompletion(tasks []models.Task) TaskSplit {
	var split TaskSplit
	for _, t := range tasks {
		if t.Completed {
			split.Completed++
		} else {
			split.Incomplete++
		}
	}
	return split
}

// GenerateDashboardStats computes the dashboard summary from full snapshots.
func GenerateDashboardStats(contacts []models.Contact, deals []models.Deal, tasks []models.Task) DashboardStats {
	stats := DashboardStats{
		TotalContacts:  len(contacts),
		TotalDeals:     len(deals),
		TotalDealValue: TotalDealValue(deals),
		Tasks:          TaskCompletion(tasks),
	}
	for _, d := range deals {
		if d.Stage == models.StageClosedWon {
			stats.WonDealValue += d.Amount
		}
	}
	return stats
}
