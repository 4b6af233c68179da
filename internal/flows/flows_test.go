package flows

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarpenko/ledgerbot/internal/catalog"
	"github.com/vkarpenko/ledgerbot/internal/engine"
	"github.com/vkarpenko/ledgerbot/internal/form"
	"github.com/vkarpenko/ledgerbot/internal/ledger"
	"github.com/vkarpenko/ledgerbot/internal/session"
)

func newTestSetup(t *testing.T) (*engine.Engine, *ledger.Ledger, *catalog.Catalog) {
	t.Helper()

	led, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	text, err := catalog.Load()
	require.NoError(t, err)

	registry, err := NewRegistry(led, text)
	require.NoError(t, err)

	eng, err := engine.NewEngine(registry, session.NewMemoryStore(), engine.Tokens{
		Cancel: text.Tokens.Cancel,
		Back:   text.Tokens.Back,
		Skip:   text.Tokens.Skip,
	})
	require.NoError(t, err)
	return eng, led, text
}

func TestRegistryContainsAllFlows(t *testing.T) {
	_, led, text := newTestSetup(t)

	registry, err := NewRegistry(led, text)
	require.NoError(t, err)
	assert.Equal(t, []string{
		FormClient, FormExpense, FormMarkCompleted, FormMarkPaid, FormOrder, FormPayment,
	}, registry.Names())
}

func TestClientFlowEndToEnd(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	result, err := eng.StartForm(ctx, "chat-1", FormClient)
	require.NoError(t, err)
	require.Equal(t, engine.ResultPrompt, result.Kind)

	_, err = eng.HandleInput(ctx, "chat-1", "Acme Corp")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "+1 555 0100")
	require.NoError(t, err)
	result, err = eng.HandleInput(ctx, "chat-1", "/skip")
	require.NoError(t, err)
	require.Equal(t, engine.ResultCommitted, result.Kind)

	client, err := led.FindClient(ctx, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, result.RecordID, client.ID)
	assert.Equal(t, "+1 555 0100", client.Contacts)
	assert.Equal(t, "", client.Notes)
}

func TestOrderFlowEndToEnd(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	_, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)

	_, err = eng.StartForm(ctx, "chat-1", FormOrder)
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "Site redesign")
	require.NoError(t, err)

	// The client prompt suggests existing client names.
	state, err := eng.CurrentState(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)

	result, err := eng.HandleInput(ctx, "chat-1", "Nobody")
	require.NoError(t, err)
	require.Equal(t, engine.ResultPrompt, result.Kind)
	require.NotNil(t, result.Prompt.Err)
	assert.Equal(t, form.CodeNotFound, result.Prompt.Err.Code)
	assert.Equal(t, []string{"Acme"}, result.Prompt.Choices)

	_, err = eng.HandleInput(ctx, "chat-1", "Acme")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "1500")
	require.NoError(t, err)

	deadline := time.Now().AddDate(0, 0, 3).Format(form.DateLayout)
	result, err = eng.HandleInput(ctx, "chat-1", deadline)
	require.NoError(t, err)
	require.Equal(t, engine.ResultCommitted, result.Kind)

	order, err := led.FindOrder(ctx, "Site redesign", ledger.StatusUnpaid)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, order.Cost)
	assert.Equal(t, "Acme", order.ClientName)
	require.NotNil(t, order.Deadline)
}

func TestOrderFlowRejectsPastDeadline(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	_, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)

	_, err = eng.StartForm(ctx, "chat-1", FormOrder)
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "Job")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "Acme")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "100")
	require.NoError(t, err)

	past := time.Now().AddDate(0, 0, -1).Format(form.DateLayout)
	result, err := eng.HandleInput(ctx, "chat-1", past)
	require.NoError(t, err)
	require.Equal(t, engine.ResultPrompt, result.Kind)
	require.NotNil(t, result.Prompt.Err)
	assert.Equal(t, form.CodePastDate, result.Prompt.Err.Code)
}

func TestExpenseFlowEndToEnd(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	_, err := eng.StartForm(ctx, "chat-1", FormExpense)
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "hosting")
	require.NoError(t, err)
	result, err := eng.HandleInput(ctx, "chat-1", "29.90")
	require.NoError(t, err)
	require.Equal(t, engine.ResultCommitted, result.Kind)

	expenses, err := led.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 29.9, expenses[0].Cost)
}

func TestPaymentFlowEndToEnd(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	clientID, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)
	orderID, err := led.CreateOrder(ctx, "Job", clientID, 500, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)

	_, err = eng.StartForm(ctx, "chat-1", FormPayment)
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "Job")
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "250")
	require.NoError(t, err)
	result, err := eng.HandleInput(ctx, "chat-1", "card")
	require.NoError(t, err)
	require.Equal(t, engine.ResultCommitted, result.Kind)

	payments, err := led.PaymentsForOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 250.0, payments[0].Amount)
	assert.Equal(t, "card", payments[0].Method)
}

func TestMarkPaidAndCompletedFlows(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	clientID, err := led.CreateClient(ctx, "Acme", "contact", "")
	require.NoError(t, err)
	orderID, err := led.CreateOrder(ctx, "Job", clientID, 500, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)

	// mark_paid only sees unpaid orders.
	_, err = eng.StartForm(ctx, "chat-1", FormMarkPaid)
	require.NoError(t, err)
	result, err := eng.HandleInput(ctx, "chat-1", "Job")
	require.NoError(t, err)
	require.Equal(t, engine.ResultCommitted, result.Kind)
	assert.Equal(t, orderID, result.RecordID)

	order, err := led.FindOrder(ctx, "Job", "")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, order.Status)

	// Running mark_paid again no longer finds the order.
	_, err = eng.StartForm(ctx, "chat-1", FormMarkPaid)
	require.NoError(t, err)
	result, err = eng.HandleInput(ctx, "chat-1", "Job")
	require.NoError(t, err)
	require.Equal(t, engine.ResultPrompt, result.Kind)
	require.NotNil(t, result.Prompt.Err)
	assert.Equal(t, form.CodeNotFound, result.Prompt.Err.Code)
	_, err = eng.HandleInput(ctx, "chat-1", "/cancel")
	require.NoError(t, err)

	// mark_completed picks it up from the paid list.
	_, err = eng.StartForm(ctx, "chat-1", FormMarkCompleted)
	require.NoError(t, err)
	result, err = eng.HandleInput(ctx, "chat-1", "Job")
	require.NoError(t, err)
	require.Equal(t, engine.ResultCommitted, result.Kind)

	order, err = led.FindOrder(ctx, "Job", "")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, order.Status)
}

func TestAmbiguousClientNameSurfaced(t *testing.T) {
	eng, led, _ := newTestSetup(t)
	ctx := context.Background()

	_, err := led.CreateClient(ctx, "Acme", "a", "")
	require.NoError(t, err)
	_, err = led.CreateClient(ctx, "ACME", "b", "")
	require.NoError(t, err)

	_, err = eng.StartForm(ctx, "chat-1", FormOrder)
	require.NoError(t, err)
	_, err = eng.HandleInput(ctx, "chat-1", "Job")
	require.NoError(t, err)

	result, err := eng.HandleInput(ctx, "chat-1", "acme")
	require.NoError(t, err)
	require.Equal(t, engine.ResultPrompt, result.Kind)
	require.NotNil(t, result.Prompt.Err)
	assert.Equal(t, form.CodeMultipleFound, result.Prompt.Err.Code)

	// Picking by id resolves the ambiguity.
	result, err = eng.HandleInput(ctx, "chat-1", "2")
	require.NoError(t, err)
	require.Equal(t, engine.ResultPrompt, result.Kind)
	assert.Nil(t, result.Prompt.Err)
}

func TestUpcomingDateSuggestions(t *testing.T) {
	dates := upcomingDateSuggestions(context.Background())
	require.Len(t, dates, deadlineSuggestionDays)
	assert.Equal(t, time.Now().Format(form.DateLayout), dates[0])

	for _, d := range dates {
		_, err := time.Parse(form.DateLayout, d)
		assert.NoError(t, err, "suggestion %q should match the input layout", d)
	}
}
