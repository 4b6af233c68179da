package report

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/vkarpenko/ledgerbot/internal/ledger"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestClientsGolden(t *testing.T) {
	clients := []ledger.Client{
		{ID: 1, Name: "Acme Corp", Contacts: "+1 555 0100", Notes: "prefers email"},
		{ID: 2, Name: "Globex", Contacts: "globex@example.com"},
	}
	newGoldie(t).Assert(t, "clients", []byte(Clients(clients)))
}

func TestActiveOrdersGolden(t *testing.T) {
	deadline := date(2026, 9, 5)
	unpaid := []ledger.Order{
		{ID: 1, Name: "Site redesign", ClientName: "Acme Corp", Cost: 1500, Status: ledger.StatusUnpaid, Deadline: &deadline},
	}
	paid := []ledger.Order{
		{ID: 2, Name: "Logo", ClientName: "Globex", Cost: 99.9, Status: ledger.StatusPaid},
	}
	newGoldie(t).Assert(t, "active_orders", []byte(ActiveOrders(unpaid, paid)))
}

func TestArchiveGolden(t *testing.T) {
	deadline := date(2026, 1, 10)
	completed := []ledger.Order{
		{
			ID: 3, Name: "Old job", ClientName: "Acme Corp", Cost: 400,
			Status: ledger.StatusCompleted, Deadline: &deadline,
			CreatedAt: date(2025, 12, 1),
		},
	}
	newGoldie(t).Assert(t, "archive", []byte(Archive(completed)))
}

func TestHistoryGolden(t *testing.T) {
	income := []ledger.Order{
		{ID: 1, Name: "Site redesign", Cost: 1500, CreatedAt: date(2026, 2, 10)},
		{ID: 2, Name: "Logo", Cost: 400, CreatedAt: date(2026, 3, 1)},
	}
	expenses := []ledger.Expense{
		{ID: 1, Comment: "hosting", Cost: 30.5, CreatedAt: date(2026, 3, 5)},
	}
	newGoldie(t).Assert(t, "history", []byte(History(income, expenses)))
}

func TestStatsGolden(t *testing.T) {
	stats := &ledger.Stats{
		Clients:        2,
		TotalOrders:    3,
		ActiveOrders:   2,
		ArchivedOrders: 1,
		LargestOrder:   &ledger.Order{Name: "Site redesign", Cost: 1500},
		TotalIncome:    1900,
		TotalExpense:   30.5,
		MonthIncome:    400,
		MonthExpense:   30.5,
	}
	newGoldie(t).Assert(t, "stats", []byte(Stats(stats)))
}

func TestEmptyRenderings(t *testing.T) {
	assert.Equal(t, "No clients yet.", Clients(nil))
	assert.Equal(t, "No active orders.", ActiveOrders(nil, nil))
	assert.Equal(t, "The archive is empty.", Archive(nil))
	assert.Equal(t, "The operations history is empty.", History(nil, nil))
}

func TestStatsWithoutOrders(t *testing.T) {
	text := Stats(&ledger.Stats{})
	assert.Contains(t, text, "Largest order: none yet")
}
