package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	led, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })
	return led
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	for i := 0; i < 3; i++ {
		led, err := Open(path)
		require.NoError(t, err, "open iteration %d", i)
		require.NoError(t, led.Close())
	}

	led, err := Open(path)
	require.NoError(t, err)
	defer led.Close()

	ctx := context.Background()
	for _, table := range []string{"clients", "orders", "expenses", "payments"} {
		rows, err := led.Query(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table)
		require.NoError(t, err)
		assert.True(t, rows.Next(), "table %q missing", table)
		require.NoError(t, rows.Close())
	}
}

func TestClientLifecycle(t *testing.T) {
	led := newTestLedger(t)
	ctx := context.Background()

	id, err := led.CreateClient(ctx, "Acme Corp", "+1 555 0100", "prefers email")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := led.FindClient(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "+1 555 0100", got.Contacts)

	// Lookup also works by id and is normalization-insensitive by name.
	byID, err := led.FindClient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, id, byID.ID)

	folded, err := led.FindClient(ctx, "  ACME corp ")
	require.NoError(t, err)
	assert.Equal(t, id, folded.ID)

	clients, err := led.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)

	names, err := led.ClientNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corp"}, names)
}

func TestFindClientNotFoundAndAmbiguous(t *testing.T) {
	led := newTestLedger(t)
	ctx := context.Background()

	_, err := led.FindClient(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = led.FindClient(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)

	// Two clients whose names normalize identically.
	_, err = led.CreateClient(ctx, "Acme", "a", "")
	require.NoError(t, err)
	_, err = led.CreateClient(ctx, "ACME", "b", "")
	require.NoError(t, err)

	_, err = led.FindClient(ctx, "acme")
	assert.ErrorIs(t, err, ErrAmbiguousName)

	// Numeric id still resolves unambiguously.
	got, err := led.FindClient(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Contacts)
}

func TestOrderLifecycle(t *testing.T) {
	led := newTestLedger(t)
	ctx := context.Background()

	clientID, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)

	deadline := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	orderID, err := led.CreateOrder(ctx, "Site redesign", clientID, 1500, deadline)
	require.NoError(t, err)

	order, err := led.FindOrder(ctx, "Site redesign", "")
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, StatusUnpaid, order.Status)
	assert.Equal(t, "Acme", order.ClientName)
	require.NotNil(t, order.Deadline)
	assert.True(t, deadline.Equal(*order.Deadline))

	// Status filter: the order is not in the paid list.
	_, err = led.FindOrder(ctx, "Site redesign", StatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := led.ActiveOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestOrderStatusTransitions(t *testing.T) {
	led := newTestLedger(t)
	ctx := context.Background()

	clientID, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)
	orderID, err := led.CreateOrder(ctx, "Job", clientID, 100, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)

	// Forward steps succeed.
	order, err := led.UpdateOrderStatus(ctx, orderID, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, order.Status)

	order, err = led.UpdateOrderStatus(ctx, orderID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, order.Status)

	// Completed is terminal.
	_, err = led.UpdateOrderStatus(ctx, orderID, StatusPaid)
	require.Error(t, err)
	assert.True(t, IsTransitionError(err))

	// Skipping a step is rejected.
	otherID, err := led.CreateOrder(ctx, "Other", clientID, 100, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	_, err = led.UpdateOrderStatus(ctx, otherID, StatusCompleted)
	assert.True(t, IsTransitionError(err))

	// Unknown order.
	_, err = led.UpdateOrderStatus(ctx, 9999, StatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusUnpaid, StatusPaid, true},
		{StatusPaid, StatusCompleted, true},
		{StatusUnpaid, StatusCompleted, false},
		{StatusPaid, StatusUnpaid, false},
		{StatusCompleted, StatusPaid, false},
		{StatusCompleted, StatusUnpaid, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestExpensesAndPayments(t *testing.T) {
	led := newTestLedger(t)
	ctx := context.Background()

	clientID, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)
	orderID, err := led.CreateOrder(ctx, "Job", clientID, 500, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)

	_, err = led.CreateExpense(ctx, "hosting", 30)
	require.NoError(t, err)
	expenses, err := led.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "hosting", expenses[0].Comment)

	_, err = led.CreatePayment(ctx, orderID, 250, "card")
	require.NoError(t, err)
	_, err = led.CreatePayment(ctx, orderID, 250, "cash")
	require.NoError(t, err)
	payments, err := led.PaymentsForOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "card", payments[0].Method)

	// Foreign key enforcement: payments need an existing order.
	_, err = led.CreatePayment(ctx, 9999, 10, "card")
	assert.Error(t, err)
}

func TestCollectStats(t *testing.T) {
	led := newTestLedger(t)
	ctx := context.Background()
	// Local time on purpose: the month window must land on the rows'
	// UTC timestamps regardless of the caller's zone.
	now := time.Now()

	stats, err := led.CollectStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Clients)
	assert.Nil(t, stats.LargestOrder)

	clientID, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)

	deadline := now.AddDate(0, 0, 7)
	smallID, err := led.CreateOrder(ctx, "Small", clientID, 100, deadline)
	require.NoError(t, err)
	_, err = led.CreateOrder(ctx, "Big", clientID, 900, deadline)
	require.NoError(t, err)

	_, err = led.UpdateOrderStatus(ctx, smallID, StatusPaid)
	require.NoError(t, err)
	_, err = led.UpdateOrderStatus(ctx, smallID, StatusCompleted)
	require.NoError(t, err)

	_, err = led.CreateExpense(ctx, "hosting", 30)
	require.NoError(t, err)

	stats, err = led.CollectStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Clients)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.ActiveOrders)
	assert.Equal(t, 1, stats.ArchivedOrders)
	require.NotNil(t, stats.LargestOrder)
	assert.Equal(t, "Big", stats.LargestOrder.Name)

	// Income counts paid and completed order costs; Big is still unpaid.
	assert.Equal(t, 100.0, stats.TotalIncome)
	assert.Equal(t, 30.0, stats.TotalExpense)
	assert.Equal(t, 70.0, stats.Balance())
	assert.Equal(t, 100.0, stats.MonthIncome)
	assert.Equal(t, 30.0, stats.MonthExpense)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Acme Corp  ", "acme corp"},
		{"ACME", "acme"},
		{"Straße", "strasse"},
		{"Ёлка", "ёлка"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}
