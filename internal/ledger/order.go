package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Status is an order's position in its lifecycle.
// Transitions are unidirectional: unpaid -> paid -> completed.
type Status string

const (
	// StatusUnpaid is the initial status of every order.
	StatusUnpaid Status = "unpaid"
	// StatusPaid marks an order whose payment has been recorded.
	StatusPaid Status = "paid"
	// StatusCompleted marks a finished order; completed orders are archived.
	StatusCompleted Status = "completed"
)

// CanTransition reports whether s may move to next. Only the single
// forward step is permitted; there is no skipping and no going back.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusUnpaid:
		return next == StatusPaid
	case StatusPaid:
		return next == StatusCompleted
	default:
		return false
	}
}

// dateLayout is how deadline dates are stored (ISO, sorts lexically).
const dateLayout = "2006-01-02"

// Order is a deal record tied to a client.
type Order struct {
	ID         int64
	Name       string
	ClientID   int64
	ClientName string
	Cost       float64
	Status     Status
	Deadline   *time.Time
	CreatedAt  time.Time
}

// CreateOrder inserts a new order with status unpaid and returns its id.
// The client must exist (enforced by the foreign key).
func (l *Ledger) CreateOrder(ctx context.Context, name string, clientID int64, cost float64, deadline time.Time) (int64, error) {
	result, err := l.db.ExecContext(ctx, `
		INSERT INTO orders (name, name_norm, client_id, cost, status, deadline)
		VALUES (?, ?, ?, ?, ?, ?)
	`, name, NormalizeName(name), clientID, cost, StatusUnpaid, deadline.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create order: last insert id: %w", err)
	}
	return id, nil
}

// FindOrder resolves a reference to an order by numeric id or exact
// (normalized) name, optionally restricted to a status. Returns
// ErrNotFound on zero matches and ErrAmbiguousName when a name matches
// more than one order.
//
// An order found by id but outside the requested status also returns
// ErrNotFound: from the user's point of view there is no such order in
// the list they were shown.
func (l *Ledger) FindOrder(ctx context.Context, ref string, status Status) (*Order, error) {
	query := `
		SELECT o.id, o.name, o.client_id, c.name, o.cost, o.status, o.deadline, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
	`
	var args []any
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		query += ` WHERE o.id = ?`
		args = append(args, id)
	} else {
		query += ` WHERE o.name_norm = ?`
		args = append(args, NormalizeName(ref))
	}
	if status != "" {
		query += ` AND o.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY o.id LIMIT 2`

	orders, err := l.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	switch len(orders) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &orders[0], nil
	default:
		return nil, ErrAmbiguousName
	}
}

// UpdateOrderStatus moves an order to a new status, enforcing the
// unidirectional lifecycle. Returns the updated order, ErrNotFound, or
// a TransitionError.
func (l *Ledger) UpdateOrderStatus(ctx context.Context, id int64, next Status) (*Order, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update order status: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var current Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&current)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", mapScanErr(err))
	}

	if !current.CanTransition(next) {
		return nil, &TransitionError{OrderID: id, From: current, To: next}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, next, id); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update order status: commit: %w", err)
	}

	order, err := l.FindOrder(ctx, strconv.FormatInt(id, 10), "")
	if err != nil {
		return nil, fmt.Errorf("update order status: reread: %w", err)
	}
	return order, nil
}

// OrdersByStatus returns orders with the given status, oldest first.
func (l *Ledger) OrdersByStatus(ctx context.Context, status Status) ([]Order, error) {
	orders, err := l.queryOrders(ctx, `
		SELECT o.id, o.name, o.client_id, c.name, o.cost, o.status, o.deadline, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.status = ?
		ORDER BY o.id
	`, status)
	if err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	return orders, nil
}

// ActiveOrders returns unpaid and paid orders, oldest first.
func (l *Ledger) ActiveOrders(ctx context.Context) ([]Order, error) {
	orders, err := l.queryOrders(ctx, `
		SELECT o.id, o.name, o.client_id, c.name, o.cost, o.status, o.deadline, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.status IN (?, ?)
		ORDER BY o.id
	`, StatusUnpaid, StatusPaid)
	if err != nil {
		return nil, fmt.Errorf("active orders: %w", err)
	}
	return orders, nil
}

func (l *Ledger) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var deadline *string
		if err := rows.Scan(&o.ID, &o.Name, &o.ClientID, &o.ClientName, &o.Cost, &o.Status, &deadline, &o.CreatedAt); err != nil {
			return nil, err
		}
		if deadline != nil && *deadline != "" {
			parsed, err := time.Parse(dateLayout, *deadline)
			if err != nil {
				return nil, fmt.Errorf("order %d: bad deadline %q: %w", o.ID, *deadline, err)
			}
			o.Deadline = &parsed
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
