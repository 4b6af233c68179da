// Package report renders the ledger's read-side replies as plain text:
// client list, active orders, archive, operations history and the stats
// summary. The same renderings serve the bot and the CLI.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vkarpenko/ledgerbot/internal/form"
	"github.com/vkarpenko/ledgerbot/internal/ledger"
)

// Clients renders the full client list.
func Clients(clients []ledger.Client) string {
	if len(clients) == 0 {
		return "No clients yet."
	}

	var b strings.Builder
	b.WriteString("📋 Clients:\n")
	for _, c := range clients {
		fmt.Fprintf(&b, "\n● #%d %s - %s\n", c.ID, c.Name, c.Contacts)
		if c.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", c.Notes)
		}
	}
	return b.String()
}

// ActiveOrders renders unpaid and paid orders in two sections.
func ActiveOrders(unpaid, paid []ledger.Order) string {
	if len(unpaid) == 0 && len(paid) == 0 {
		return "No active orders."
	}

	var b strings.Builder
	b.WriteString("📈 Active orders:\n")
	if len(unpaid) > 0 {
		b.WriteString("\n💳 Unpaid:\n")
		for _, o := range unpaid {
			writeOrderLine(&b, o)
		}
	}
	if len(paid) > 0 {
		b.WriteString("\n✅ Paid:\n")
		for _, o := range paid {
			writeOrderLine(&b, o)
		}
	}
	return b.String()
}

// Archive renders completed orders.
func Archive(completed []ledger.Order) string {
	if len(completed) == 0 {
		return "The archive is empty."
	}

	var b strings.Builder
	b.WriteString("🗄 Completed orders:\n")
	for _, o := range completed {
		fmt.Fprintf(&b, "\n● %s (%s)\n", o.Name, o.ClientName)
		fmt.Fprintf(&b, "  Cost: %s\n", amount(o.Cost))
		fmt.Fprintf(&b, "  Deadline: %s\n", deadline(o.Deadline))
		fmt.Fprintf(&b, "  Created: %s\n", o.CreatedAt.Format(form.DateLayout))
	}
	return b.String()
}

// History renders the operations history: income entries (orders whose
// payment has been recorded) and expenses, with running totals.
func History(income []ledger.Order, expenses []ledger.Expense) string {
	if len(income) == 0 && len(expenses) == 0 {
		return "The operations history is empty."
	}

	var b strings.Builder
	b.WriteString("📋 Operations history:\n")

	var totalIncome, totalExpense float64
	if len(income) > 0 {
		b.WriteString("\n💰 Income (paid orders):\n")
		for _, o := range income {
			totalIncome += o.Cost
			fmt.Fprintf(&b, "● %s - %s - +%s\n", o.CreatedAt.Format(form.DateLayout), o.Name, amount(o.Cost))
		}
	}
	if len(expenses) > 0 {
		b.WriteString("\n💸 Expenses:\n")
		for _, e := range expenses {
			totalExpense += e.Cost
			fmt.Fprintf(&b, "● %s - %s - -%s\n", e.CreatedAt.Format(form.DateLayout), e.Comment, amount(e.Cost))
		}
	}

	b.WriteString("\n📊 Totals:\n")
	fmt.Fprintf(&b, "Income: %s\n", amount(totalIncome))
	fmt.Fprintf(&b, "Expense: %s\n", amount(totalExpense))
	fmt.Fprintf(&b, "Balance: %s\n", amount(totalIncome-totalExpense))
	return b.String()
}

// Stats renders the full stats summary.
func Stats(s *ledger.Stats) string {
	var b strings.Builder
	b.WriteString("📊 Ledger stats\n\n")
	fmt.Fprintf(&b, "👥 Clients: %d\n", s.Clients)
	fmt.Fprintf(&b, "📋 Orders: %d\n", s.TotalOrders)
	fmt.Fprintf(&b, "📈 Active: %d\n", s.ActiveOrders)
	fmt.Fprintf(&b, "🗄 Archived: %d\n", s.ArchivedOrders)
	if s.LargestOrder != nil {
		fmt.Fprintf(&b, "💰 Largest order: %s (%s)\n", s.LargestOrder.Name, amount(s.LargestOrder.Cost))
	} else {
		b.WriteString("💰 Largest order: none yet\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "💵 Total income: %s\n", amount(s.TotalIncome))
	fmt.Fprintf(&b, "💸 Total expense: %s\n", amount(s.TotalExpense))
	fmt.Fprintf(&b, "⚖️ Balance: %s\n", amount(s.Balance()))
	fmt.Fprintf(&b, "📅 Month income: %s\n", amount(s.MonthIncome))
	fmt.Fprintf(&b, "📅 Month expense: %s\n", amount(s.MonthExpense))
	fmt.Fprintf(&b, "📅 Month balance: %s\n", amount(s.MonthBalance()))
	return b.String()
}

func writeOrderLine(b *strings.Builder, o ledger.Order) {
	fmt.Fprintf(b, "#%d %s (%s) - %s\n", o.ID, o.Name, o.ClientName, amount(o.Cost))
	fmt.Fprintf(b, "  Deadline: %s\n", deadline(o.Deadline))
}

// amount formats money without trailing zeros (1500, 99.9).
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deadline(d *time.Time) string {
	if d == nil {
		return "not set"
	}
	return d.Format(form.DateLayout)
}
