// Package catalog holds every user-visible string: menu labels, field
// prompts, result messages and the reserved conversation tokens. The
// catalog is declared in CUE, embedded into the binary, and compiled and
// validated once at startup.
package catalog

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed catalog.cue
var catalogCUE []byte

// Tokens are the reserved inputs recognized before any validator runs.
// They must be pairwise distinct.
type Tokens struct {
	Cancel string `json:"cancel"`
	Back   string `json:"back"`
	Skip   string `json:"skip"`
}

// MainMenu labels the top-level sections.
type MainMenu struct {
	Clients    string `json:"clients"`
	Orders     string `json:"orders"`
	Operations string `json:"operations"`
	Stats      string `json:"stats"`
}

// ClientsMenu labels the clients sub-menu.
type ClientsMenu struct {
	New  string `json:"new"`
	List string `json:"list"`
	Back string `json:"back"`
}

// OrdersMenu labels the orders sub-menu.
type OrdersMenu struct {
	New           string `json:"new"`
	List          string `json:"list"`
	Archive       string `json:"archive"`
	MarkPaid      string `json:"markPaid"`
	MarkCompleted string `json:"markCompleted"`
	Back          string `json:"back"`
}

// OperationsMenu labels the money operations sub-menu.
type OperationsMenu struct {
	NewExpense string `json:"newExpense"`
	NewPayment string `json:"newPayment"`
	History    string `json:"history"`
	Back       string `json:"back"`
}

// Menu groups all menu labels.
type Menu struct {
	Main       MainMenu       `json:"main"`
	Clients    ClientsMenu    `json:"clients"`
	Orders     OrdersMenu     `json:"orders"`
	Operations OperationsMenu `json:"operations"`
}

// ClientPrompts are the client form field prompts.
type ClientPrompts struct {
	Name     string `json:"name"`
	Contacts string `json:"contacts"`
	Notes    string `json:"notes"`
}

// OrderPrompts are the order form field prompts.
type OrderPrompts struct {
	Name     string `json:"name"`
	Client   string `json:"client"`
	Cost     string `json:"cost"`
	Deadline string `json:"deadline"`
}

// ExpensePrompts are the expense form field prompts.
type ExpensePrompts struct {
	Comment string `json:"comment"`
	Cost    string `json:"cost"`
}

// PaymentPrompts are the payment form field prompts.
type PaymentPrompts struct {
	Order  string `json:"order"`
	Amount string `json:"amount"`
	Method string `json:"method"`
}

// MarkPrompts are the prompts for the single-field status flows.
type MarkPrompts struct {
	Order string `json:"order"`
}

// Prompts groups field prompts per flow.
type Prompts struct {
	Client        ClientPrompts  `json:"client"`
	Order         OrderPrompts   `json:"order"`
	Expense       ExpensePrompts `json:"expense"`
	Payment       PaymentPrompts `json:"payment"`
	MarkPaid      MarkPrompts    `json:"markPaid"`
	MarkCompleted MarkPrompts    `json:"markCompleted"`
}

// Replies are the non-prompt messages the bot sends.
type Replies struct {
	Start             string `json:"start"`
	ClientsSection    string `json:"clientsSection"`
	OrdersSection     string `json:"ordersSection"`
	OperationsSection string `json:"operationsSection"`

	Cancelled      string            `json:"cancelled"`
	ClientCreated  string            `json:"clientCreated"`
	OrderCreated   string            `json:"orderCreated"`
	ExpenseCreated string            `json:"expenseCreated"`
	PaymentCreated string            `json:"paymentCreated"`
	OrderPaid      string            `json:"orderPaid"`
	OrderCompleted string            `json:"orderCompleted"`
	CommitFailed   string            `json:"commitFailed"`
	UnknownInput   string            `json:"unknownInput"`
	Validation     map[string]string `json:"validation"`
}

// Catalog is the compiled text catalog.
type Catalog struct {
	Tokens  Tokens  `json:"tokens"`
	Menu    Menu    `json:"menu"`
	Prompts Prompts `json:"prompts"`
	Replies Replies `json:"replies"`
}

// Load compiles the embedded catalog and validates it.
func Load() (*Catalog, error) {
	return load(catalogCUE)
}

func load(src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename("catalog.cue"))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("catalog: compiling: %w", err)
	}

	var c Catalog
	if err := value.Decode(&c); err != nil {
		return nil, fmt.Errorf("catalog: decoding: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &c, nil
}

// ValidationMessage returns the user-facing message for a validation
// code, falling back to a generic retry message for unknown codes.
func (c *Catalog) ValidationMessage(code string) string {
	if msg, ok := c.Replies.Validation[code]; ok {
		return msg
	}
	return "That input does not fit, try again."
}

func (c *Catalog) validate() error {
	if c.Tokens.Cancel == "" || c.Tokens.Back == "" || c.Tokens.Skip == "" {
		return fmt.Errorf("all reserved tokens must be set")
	}
	if c.Tokens.Cancel == c.Tokens.Back || c.Tokens.Cancel == c.Tokens.Skip || c.Tokens.Back == c.Tokens.Skip {
		return fmt.Errorf("reserved tokens must be pairwise distinct (cancel=%q back=%q skip=%q)",
			c.Tokens.Cancel, c.Tokens.Back, c.Tokens.Skip)
	}

	prompts := []struct {
		path string
		text string
	}{
		{"prompts.client.name", c.Prompts.Client.Name},
		{"prompts.client.contacts", c.Prompts.Client.Contacts},
		{"prompts.client.notes", c.Prompts.Client.Notes},
		{"prompts.order.name", c.Prompts.Order.Name},
		{"prompts.order.client", c.Prompts.Order.Client},
		{"prompts.order.cost", c.Prompts.Order.Cost},
		{"prompts.order.deadline", c.Prompts.Order.Deadline},
		{"prompts.expense.comment", c.Prompts.Expense.Comment},
		{"prompts.expense.cost", c.Prompts.Expense.Cost},
		{"prompts.payment.order", c.Prompts.Payment.Order},
		{"prompts.payment.amount", c.Prompts.Payment.Amount},
		{"prompts.payment.method", c.Prompts.Payment.Method},
		{"prompts.markPaid.order", c.Prompts.MarkPaid.Order},
		{"prompts.markCompleted.order", c.Prompts.MarkCompleted.Order},
	}
	for _, p := range prompts {
		if p.text == "" {
			return fmt.Errorf("%s is empty", p.path)
		}
	}
	return nil
}
