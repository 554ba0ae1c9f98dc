package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/card"
	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/infrastructure/memory"
	"financeiro/internal/shared/clock"
)

const testUser int64 = 1

type fixture struct {
	store   *memory.Store
	clock   clock.Fixed
	card    *card.Card
	account *account.Account
}

// newFixture seeds one user with a card closing on the 24th (due on the
// 5th) and a checking account holding balance.
func newFixture(t *testing.T, today time.Time, balance string) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	c := &card.Card{ID: "card-1", UserID: testUser, Name: "Nubank", ClosingDay: 24, DueDay: 5}
	if err := st.Cards().Create(ctx, c); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	acc := &account.Account{ID: "acc-1", UserID: testUser, Name: "Itaú", Kind: account.KindChecking, Currency: "BRL", Balance: dec(balance)}
	if err := st.Accounts().Create(ctx, acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return &fixture{store: st, clock: clock.Fixed{Date: today}, card: c, account: acc}
}

func (f *fixture) addCard(t *testing.T, id string, closingDay, dueDay int) {
	t.Helper()
	c := &card.Card{ID: id, UserID: testUser, Name: id, ClosingDay: closingDay, DueDay: dueDay}
	if err := f.store.Cards().Create(context.Background(), c); err != nil {
		t.Fatalf("seed card: %v", err)
	}
}

func (f *fixture) invoice(t *testing.T, cardID string, period cycle.Period) *invoice.Invoice {
	t.Helper()
	inv, err := f.store.Invoices().FindByPeriod(context.Background(), testUser, cardID, period)
	if err != nil {
		t.Fatalf("invoice %s %s: %v", cardID, period, err)
	}
	return inv
}

func (f *fixture) noInvoice(t *testing.T, cardID string, period cycle.Period) {
	t.Helper()
	if _, err := f.store.Invoices().FindByPeriod(context.Background(), testUser, cardID, period); err == nil {
		t.Errorf("invoice %s %s still exists", cardID, period)
	}
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Accounts().GetByID(context.Background(), testUser, f.account.ID)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	return acc.Balance
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func period(y int, m time.Month) cycle.Period {
	return cycle.NewPeriod(y, m)
}

func assertAmount(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func assertInvariant(t *testing.T, inv *invoice.Invoice) {
	t.Helper()
	if !inv.RemainingAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)) {
		t.Errorf("remaining %s != total %s - paid %s", inv.RemainingAmount, inv.TotalAmount, inv.PaidAmount)
	}
}

// recordingNotifier captures invoice events
type recordingNotifier struct {
	mu      sync.Mutex
	paid    []string
	overdue []string
}

func (n *recordingNotifier) InvoicePaid(ctx context.Context, inv *invoice.Invoice, c *card.Card) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, inv.ID)
}

func (n *recordingNotifier) InvoiceOverdue(ctx context.Context, inv *invoice.Invoice, c *card.Card) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue = append(n.overdue, inv.ID)
}
