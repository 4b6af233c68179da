package ledger

import (
	"context"
	"fmt"
	"time"
)

// Expense is a standalone outgoing operation.
type Expense struct {
	ID        int64
	Comment   string
	Cost      float64
	CreatedAt time.Time
}

// CreateExpense inserts a new expense and returns its id.
func (l *Ledger) CreateExpense(ctx context.Context, comment string, cost float64) (int64, error) {
	result, err := l.db.ExecContext(ctx, `
		INSERT INTO expenses (comment, cost)
		VALUES (?, ?)
	`, comment, cost)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create expense: last insert id: %w", err)
	}
	return id, nil
}

// ListExpenses returns all expenses, oldest first.
func (l *Ledger) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, comment, cost, created_at
		FROM expenses ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Comment, &e.Cost, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}
