// Package flows defines the concrete conversation forms: what the bot
// asks, in what order, how each answer is resolved against the ledger,
// and what gets written when the last answer arrives.
package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vkarpenko/ledgerbot/internal/catalog"
	"github.com/vkarpenko/ledgerbot/internal/form"
	"github.com/vkarpenko/ledgerbot/internal/ledger"
)

// Registered form names. Session state stores these, so they must stay
// stable across releases.
const (
	FormClient        = "client"
	FormOrder         = "order"
	FormExpense       = "expense"
	FormPayment       = "payment"
	FormMarkPaid      = "mark_paid"
	FormMarkCompleted = "mark_completed"
)

// deadlineSuggestionDays is how many upcoming dates the deadline prompt
// offers as quick choices.
const deadlineSuggestionDays = 7

// NewRegistry builds the full form registry over the given ledger, with
// prompts taken from the text catalog.
func NewRegistry(led *ledger.Ledger, text *catalog.Catalog) (*form.Registry, error) {
	client, err := clientForm(led, text)
	if err != nil {
		return nil, err
	}
	order, err := orderForm(led, text)
	if err != nil {
		return nil, err
	}
	expense, err := expenseForm(led, text)
	if err != nil {
		return nil, err
	}
	payment, err := paymentForm(led, text)
	if err != nil {
		return nil, err
	}
	markPaid, err := markStatusForm(led, FormMarkPaid, text.Prompts.MarkPaid.Order,
		ledger.StatusUnpaid, ledger.StatusPaid)
	if err != nil {
		return nil, err
	}
	markCompleted, err := markStatusForm(led, FormMarkCompleted, text.Prompts.MarkCompleted.Order,
		ledger.StatusPaid, ledger.StatusCompleted)
	if err != nil {
		return nil, err
	}

	return form.NewRegistry(client, order, expense, payment, markPaid, markCompleted)
}

func clientForm(led *ledger.Ledger, text *catalog.Catalog) (*form.Definition, error) {
	fields := []form.FieldSpec{
		{Key: "name", Prompt: text.Prompts.Client.Name, Kind: form.KindText, Required: true},
		{Key: "contacts", Prompt: text.Prompts.Client.Contacts, Kind: form.KindText, Required: true, AllowBack: true},
		{Key: "notes", Prompt: text.Prompts.Client.Notes, Kind: form.KindText, Skippable: true, AllowBack: true},
	}
	commit := func(ctx context.Context, v form.Values) (int64, error) {
		return led.CreateClient(ctx, v["name"].Text, v["contacts"].Text, v["notes"].Text)
	}
	return form.New(FormClient, fields, commit)
}

func orderForm(led *ledger.Ledger, text *catalog.Catalog) (*form.Definition, error) {
	fields := []form.FieldSpec{
		{Key: "name", Prompt: text.Prompts.Order.Name, Kind: form.KindText, Required: true},
		{
			Key:       "client",
			Prompt:    text.Prompts.Order.Client,
			Kind:      form.KindReference,
			AllowBack: true,
			Resolve:   clientResolver(led, "client"),
			Suggest:   clientNameSuggestions(led),
		},
		{Key: "cost", Prompt: text.Prompts.Order.Cost, Kind: form.KindAmount, AllowBack: true},
		{
			Key:       "deadline",
			Prompt:    text.Prompts.Order.Deadline,
			Kind:      form.KindDate,
			AllowBack: true,
			Suggest:   upcomingDateSuggestions,
		},
	}
	commit := func(ctx context.Context, v form.Values) (int64, error) {
		return led.CreateOrder(ctx, v["name"].Text, v["client"].Ref, v["cost"].Amount, v["deadline"].Date)
	}
	return form.New(FormOrder, fields, commit)
}

func expenseForm(led *ledger.Ledger, text *catalog.Catalog) (*form.Definition, error) {
	fields := []form.FieldSpec{
		{Key: "comment", Prompt: text.Prompts.Expense.Comment, Kind: form.KindText, Required: true},
		{Key: "cost", Prompt: text.Prompts.Expense.Cost, Kind: form.KindAmount, AllowBack: true},
	}
	commit := func(ctx context.Context, v form.Values) (int64, error) {
		return led.CreateExpense(ctx, v["comment"].Text, v["cost"].Amount)
	}
	return form.New(FormExpense, fields, commit)
}

func paymentForm(led *ledger.Ledger, text *catalog.Catalog) (*form.Definition, error) {
	fields := []form.FieldSpec{
		{
			Key:     "order",
			Prompt:  text.Prompts.Payment.Order,
			Kind:    form.KindReference,
			Resolve: orderResolver(led, "order", ""),
			Suggest: activeOrderSuggestions(led),
		},
		{Key: "amount", Prompt: text.Prompts.Payment.Amount, Kind: form.KindAmount, AllowBack: true},
		{Key: "method", Prompt: text.Prompts.Payment.Method, Kind: form.KindText, Required: true, AllowBack: true},
	}
	commit := func(ctx context.Context, v form.Values) (int64, error) {
		return led.CreatePayment(ctx, v["order"].Ref, v["amount"].Amount, v["method"].Text)
	}
	return form.New(FormPayment, fields, commit)
}

// markStatusForm is the shared shape of the two single-field status
// flows: resolve an order in the `from` status, move it to `to`.
func markStatusForm(led *ledger.Ledger, name, prompt string, from, to ledger.Status) (*form.Definition, error) {
	fields := []form.FieldSpec{
		{
			Key:     "order",
			Prompt:  prompt,
			Kind:    form.KindReference,
			Resolve: orderResolver(led, "order", from),
			Suggest: orderNameSuggestions(led, from),
		},
	}
	commit := func(ctx context.Context, v form.Values) (int64, error) {
		order, err := led.UpdateOrderStatus(ctx, v["order"].Ref, to)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return order.ID, nil
	}
	return form.New(name, fields, commit)
}

// clientResolver resolves client references, translating ledger lookup
// outcomes into per-field validation errors.
func clientResolver(led *ledger.Ledger, field string) form.Resolver {
	return func(ctx context.Context, raw string) (int64, error) {
		client, err := led.FindClient(ctx, raw)
		if err != nil {
			return 0, mapLookupErr(err, field, raw)
		}
		return client.ID, nil
	}
}

// orderResolver resolves order references, optionally restricted to a
// status (empty status matches any).
func orderResolver(led *ledger.Ledger, field string, status ledger.Status) form.Resolver {
	return func(ctx context.Context, raw string) (int64, error) {
		order, err := led.FindOrder(ctx, raw, status)
		if err != nil {
			return 0, mapLookupErr(err, field, raw)
		}
		return order.ID, nil
	}
}

func mapLookupErr(err error, field, raw string) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return &form.ValidationError{
			Code:    form.CodeNotFound,
			Field:   field,
			Message: fmt.Sprintf("nothing matches %q", raw),
		}
	case errors.Is(err, ledger.ErrAmbiguousName):
		return &form.ValidationError{
			Code:    form.CodeMultipleFound,
			Field:   field,
			Message: fmt.Sprintf("%q matches more than one record", raw),
		}
	default:
		return err
	}
}

// clientNameSuggestions offers existing client names as keyboard
// choices. Lookup failures degrade to no suggestions; the prompt still
// accepts typed input.
func clientNameSuggestions(led *ledger.Ledger) func(ctx context.Context) []string {
	return func(ctx context.Context) []string {
		names, err := led.ClientNames(ctx)
		if err != nil {
			return nil
		}
		return names
	}
}

func orderNameSuggestions(led *ledger.Ledger, status ledger.Status) func(ctx context.Context) []string {
	return func(ctx context.Context) []string {
		orders, err := led.OrdersByStatus(ctx, status)
		if err != nil {
			return nil
		}
		return orderNames(orders)
	}
}

// activeOrderSuggestions offers every order a payment can still be
// recorded against.
func activeOrderSuggestions(led *ledger.Ledger) func(ctx context.Context) []string {
	return func(ctx context.Context) []string {
		orders, err := led.ActiveOrders(ctx)
		if err != nil {
			return nil
		}
		return orderNames(orders)
	}
}

func orderNames(orders []ledger.Order) []string {
	names := make([]string, 0, len(orders))
	for _, o := range orders {
		names = append(names, o.Name)
	}
	return names
}

// upcomingDateSuggestions offers today plus the next few days in the
// accepted input layout.
func upcomingDateSuggestions(ctx context.Context) []string {
	today := time.Now()
	dates := make([]string, 0, deadlineSuggestionDays)
	for i := 0; i < deadlineSuggestionDays; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format(form.DateLayout))
	}
	return dates
}
