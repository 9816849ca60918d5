// ABOUTME: Analytics controller
// ABOUTME: Stage and monthly deal histograms plus the task completion split
package viewmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
	"github.com/harperreed/shaft/viz"
)

type AnalyticsSnapshot struct {
	Stages     []viz.StageCount `json:"stages"`
	Monthly    []viz.MonthValue `json:"monthly"`
	Tasks      viz.TaskSplit    `json:"tasks"`
	TotalValue float64          `json:"totalValue"`
}

type Analytics struct {
	base
	deals DealStore
	tasks TaskStore

	snapshot AnalyticsSnapshot
}

func NewAnalytics(session SessionSource, deals DealStore, tasks TaskStore, nav Navigator, log zerolog.Logger) *Analytics {
	a := &Analytics{
		base:  newBase(session, nav, log, "Failed to fetch analytics"),
		deals: deals,
		tasks: tasks,
	}
	a.fetch = a.load
	return a
}

func (a *Analytics) load(ctx context.Context, uid string) (func(), error) {
	var (
		deals            []models.Deal
		tasks            []models.Task
		dealErr, taskErr error
		wg               sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deals, dealErr = a.deals.List(ctx, uid, repository.ListOptions{})
	}()
	go func() {
		defer wg.Done()
		tasks, taskErr = a.tasks.List(ctx, uid, repository.ListOptions{})
	}()
	wg.Wait()

	if err := errors.Join(dealErr, taskErr); err != nil {
		return nil, err
	}

	snap := AnalyticsSnapshot{
		Stages:     viz.StageHistogram(deals),
		Monthly:    viz.MonthlyDealValue(deals),
		Tasks:      viz.TaskCompletion(tasks),
		TotalValue: viz.TotalDealValue(deals),
	}
	return func() { a.snapshot = snap }, nil
}

func (a *Analytics) Snapshot() AnalyticsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}
