package ledger

import (
	"context"
	"fmt"
	"time"
)

// Payment records money received against an order.
type Payment struct {
	ID        int64
	OrderID   int64
	Amount    float64
	Method    string
	CreatedAt time.Time
}

// CreatePayment inserts a payment against an order and returns its id.
// The order must exist (enforced by the foreign key).
func (l *Ledger) CreatePayment(ctx context.Context, orderID int64, amount float64, method string) (int64, error) {
	result, err := l.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, amount, method)
		VALUES (?, ?, ?)
	`, orderID, amount, method)
	if err != nil {
		return 0, fmt.Errorf("create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create payment: last insert id: %w", err)
	}
	return id, nil
}

// PaymentsForOrder returns all payments recorded against an order,
// oldest first.
func (l *Ledger) PaymentsForOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, order_id, amount, method, created_at
		FROM payments WHERE order_id = ? ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("payments for order: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("payments for order: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payments for order: %w", err)
	}
	return payments, nil
}
