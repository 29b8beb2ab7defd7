package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finch/internal/cache"
	"finch/internal/core"
	"finch/internal/ledger"
)

const (
	cacheKeyUsers   = "users"
	cacheKeySummary = "summary"

	dashboardCacheTTL = 30 * time.Second
)

// Dashboard is everything the main screen needs, loaded in one shot.
type Dashboard struct {
	Users        []core.User
	Summary      []core.BudgetSummaryRow
	Chart        []core.ChartSlice
	Transactions []core.TransactionRecord
}

// DashboardLoader fans out the three ledger reads concurrently and
// memoizes the slow-changing ones (user directory, budget summary)
// in small LRU caches between renders.
type DashboardLoader struct {
	directory ledger.UserDirectory
	budgets   ledger.BudgetStore
	txs       ledger.TransactionStore

	users   *cache.LRU[[]core.User]
	summary *cache.LRU[[]core.BudgetSummaryRow]
}

func NewDashboardLoader(directory ledger.UserDirectory, budgets ledger.BudgetStore, txs ledger.TransactionStore) *DashboardLoader {
	return &DashboardLoader{
		directory: directory,
		budgets:   budgets,
		txs:       txs,
		users:     cache.NewLRU[[]core.User](1, dashboardCacheTTL),
		summary:   cache.NewLRU[[]core.BudgetSummaryRow](1, dashboardCacheTTL),
	}
}

// Load gathers users, budget summary and recent transactions. Any
// failing read fails the whole load; partial dashboards are worse than
// a visible error.
func (l *DashboardLoader) Load(ctx context.Context) (Dashboard, error) {
	var dash Dashboard

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := l.loadUsers(ctx)
		if err != nil {
			return err
		}
		dash.Users = users
		return nil
	})

	g.Go(func() error {
		rows, err := l.loadSummary(ctx)
		if err != nil {
			return err
		}
		dash.Summary = rows
		return nil
	})

	g.Go(func() error {
		records, err := l.txs.Filtered(ctx, core.FilterSpec{})
		if err != nil {
			return err
		}
		dash.Transactions = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	dash.Chart = core.ChartProjection(dash.Summary)
	return dash, nil
}

// Invalidate drops the memoized reads, forcing the next Load to hit
// the ledger. Call it after any mutation.
func (l *DashboardLoader) Invalidate() {
	l.users.Invalidate(cacheKeyUsers)
	l.summary.Invalidate(cacheKeySummary)
}

func (l *DashboardLoader) loadUsers(ctx context.Context) ([]core.User, error) {
	if users, ok := l.users.Get(cacheKeyUsers); ok {
		return users, nil
	}
	users, err := l.directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	l.users.Set(cacheKeyUsers, users)
	return users, nil
}

// loadSummary prefers the service's pre-aggregated summary and falls
// back to aggregating locally when that endpoint fails. Both paths use
// the same integer arithmetic, so the rows are interchangeable.
func (l *DashboardLoader) loadSummary(ctx context.Context) ([]core.BudgetSummaryRow, error) {
	if rows, ok := l.summary.Get(cacheKeySummary); ok {
		return rows, nil
	}

	rows, err := l.budgets.Summary(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Pre-aggregated summary unavailable, aggregating locally",
			"error", err)
		rows, err = l.aggregateLocally(ctx)
		if err != nil {
			return nil, err
		}
	}

	l.summary.Set(cacheKeySummary, rows)
	return rows, nil
}

func (l *DashboardLoader) aggregateLocally(ctx context.Context) ([]core.BudgetSummaryRow, error) {
	budgets, err := l.budgets.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := l.txs.Filtered(ctx, core.FilterSpec{})
	if err != nil {
		return nil, err
	}
	return core.Summarize(budgets, txs), nil
}
