package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Stats summarizes the ledger for the stats report. Income counts paid
// and completed orders; month figures cover the calendar month of the
// given reference time.
type Stats struct {
	Clients        int
	TotalOrders    int
	ActiveOrders   int
	ArchivedOrders int

	// LargestOrder is nil when there are no orders yet.
	LargestOrder *Order

	TotalIncome  float64
	TotalExpense float64
	MonthIncome  float64
	MonthExpense float64
}

// sqlTimeLayout matches the text form of CURRENT_TIMESTAMP.
const sqlTimeLayout = "2006-01-02 15:04:05"

// Balance is total income minus total expense.
func (s *Stats) Balance() float64 { return s.TotalIncome - s.TotalExpense }

// MonthBalance is the calendar-month income minus expense.
func (s *Stats) MonthBalance() float64 { return s.MonthIncome - s.MonthExpense }

// CollectStats gathers the full stats summary in one pass over the
// ledger. now fixes the calendar month for the month figures.
func (l *Ledger) CollectStats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}

	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&stats.Clients)
	if err != nil {
		return nil, fmt.Errorf("collect stats: clients: %w", err)
	}

	err = l.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status IN (?, ?) THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM orders
	`, StatusUnpaid, StatusPaid, StatusCompleted).Scan(&stats.TotalOrders, &stats.ActiveOrders, &stats.ArchivedOrders)
	if err != nil {
		return nil, fmt.Errorf("collect stats: orders: %w", err)
	}

	largest, err := l.largestOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect stats: largest order: %w", err)
	}
	stats.LargestOrder = largest

	// created_at stores UTC CURRENT_TIMESTAMP text, so the month window
	// must be computed in UTC and bound in the same text format to keep
	// the comparison lexical-safe.
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthStart := start.Format(sqlTimeLayout)
	monthEnd := start.AddDate(0, 1, 0).Format(sqlTimeLayout)

	err = l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cost), 0),
		       COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN cost ELSE 0 END), 0)
		FROM orders
		WHERE status IN (?, ?)
	`, monthStart, monthEnd, StatusPaid, StatusCompleted).Scan(&stats.TotalIncome, &stats.MonthIncome)
	if err != nil {
		return nil, fmt.Errorf("collect stats: income: %w", err)
	}

	err = l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cost), 0),
		       COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN cost ELSE 0 END), 0)
		FROM expenses
	`, monthStart, monthEnd).Scan(&stats.TotalExpense, &stats.MonthExpense)
	if err != nil {
		return nil, fmt.Errorf("collect stats: expenses: %w", err)
	}

	return stats, nil
}

func (l *Ledger) largestOrder(ctx context.Context) (*Order, error) {
	orders, err := l.queryOrders(ctx, `
		SELECT o.id, o.name, o.client_id, c.name, o.cost, o.status, o.deadline, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		ORDER BY o.cost DESC, o.id
		LIMIT 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}
