package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"financeiro/internal/domain/card"
	"financeiro/internal/domain/invoice"
)

func TestInvoiceQuery_GetInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 28), "1000")
	purchases := NewPurchaseService(f.store, f.clock)

	for _, amount := range []string{"40", "60"} {
		if _, err := purchases.CreatePurchase(ctx, purchaseParams(amount, day(2025, time.November, 10))); err != nil {
			t.Fatal(err)
		}
	}
	inv := f.invoice(t, "card-1", period(2025, time.November))
	if _, err := NewPaymentProcessor(f.store, f.clock, nil).PayInvoice(ctx, PayInvoiceParams{
		UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec("25"),
	}); err != nil {
		t.Fatal(err)
	}

	q := NewInvoiceQuery(f.store, f.clock)
	detail, err := q.GetInvoice(ctx, testUser, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice() error = %v", err)
	}
	if detail.Card.ID != "card-1" {
		t.Errorf("card = %s", detail.Card.ID)
	}
	if len(detail.Purchases) != 2 || len(detail.Payments) != 1 {
		t.Errorf("purchases = %d, payments = %d", len(detail.Purchases), len(detail.Payments))
	}
	assertAmount(t, "remaining", detail.Invoice.RemainingAmount, "75")

	if _, err := q.GetInvoice(ctx, 2, inv.ID); !errors.Is(err, invoice.ErrInvoiceNotFound) {
		t.Errorf("foreign GetInvoice() error = %v", err)
	}
}

func TestInvoiceQuery_ListAppliesOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	seedInvoice(t, f, "70")

	later := f.clock
	later.Date = day(2025, time.December, 6)
	invoices, err := NewInvoiceQuery(f.store, later).ListByCard(ctx, testUser, "card-1")
	if err != nil {
		t.Fatalf("ListByCard() error = %v", err)
	}
	if len(invoices) != 1 || invoices[0].Status != invoice.StatusOverdue {
		t.Fatalf("invoices = %+v, want one overdue", invoices)
	}

	// the transition was persisted
	if got := f.invoice(t, "card-1", period(2025, time.November)); got.Status != invoice.StatusOverdue {
		t.Errorf("stored status = %s, want overdue", got.Status)
	}

	if _, err := NewInvoiceQuery(f.store, later).ListByCard(ctx, testUser, "card-x"); !errors.Is(err, card.ErrCardNotFound) {
		t.Errorf("unknown card error = %v", err)
	}
}

func TestInvoiceQuery_ListByPeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	f.addCard(t, "card-2", 10, 20)
	purchases := NewPurchaseService(f.store, f.clock)

	// two cards, each with one invoice in 2025-11 and one in 2025-12
	charges := []struct {
		cardID string
		amount string
		date   time.Time
	}{
		{"card-1", "100", day(2025, time.November, 5)},
		{"card-2", "50", day(2025, time.November, 5)},
		{"card-1", "30", day(2025, time.November, 26)},
		{"card-2", "20.5", day(2025, time.November, 11)},
	}
	for _, c := range charges {
		p := purchaseParams(c.amount, c.date)
		p.CardID = c.cardID
		if _, err := purchases.CreatePurchase(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	groups, err := NewInvoiceQuery(f.store, f.clock).ListByPeriod(ctx, testUser)
	if err != nil {
		t.Fatalf("ListByPeriod() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Period != period(2025, time.December) {
		t.Errorf("first group = %s, want latest period first", groups[0].Period)
	}
	assertAmount(t, "december total", groups[0].Total, "50.5")
	assertAmount(t, "november total", groups[1].Total, "150")
	if len(groups[1].Invoices) != 2 {
		t.Errorf("november invoices = %d, want 2", len(groups[1].Invoices))
	}
}

func TestInvoiceQuery_Summaries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 28), "1000")
	f.addCard(t, "card-2", 10, 20)
	purchases := NewPurchaseService(f.store, f.clock)

	for _, date := range []time.Time{day(2025, time.November, 5), day(2025, time.November, 26)} {
		if _, err := purchases.CreatePurchase(ctx, purchaseParams("100", date)); err != nil {
			t.Fatal(err)
		}
	}
	nov := f.invoice(t, "card-1", period(2025, time.November))
	if _, err := NewPaymentProcessor(f.store, f.clock, nil).PayInvoice(ctx, PayInvoiceParams{
		UserID: testUser, InvoiceID: nov.ID, BankAccountID: "acc-1", Amount: dec("100"),
	}); err != nil {
		t.Fatal(err)
	}

	q := NewInvoiceQuery(f.store, f.clock)
	summary, err := q.CardSummary(ctx, testUser, "card-1")
	if err != nil {
		t.Fatalf("CardSummary() error = %v", err)
	}
	if summary.PaidCount != 1 || summary.OpenCount != 1 || summary.OverdueCount != 0 {
		t.Errorf("counts paid=%d open=%d overdue=%d", summary.PaidCount, summary.OpenCount, summary.OverdueCount)
	}
	assertAmount(t, "billed", summary.TotalBilled, "200")
	assertAmount(t, "paid", summary.TotalPaid, "100")
	assertAmount(t, "remaining", summary.TotalRemaining, "100")
	if summary.NextDue == nil || summary.NextDue.Period != period(2025, time.December) {
		t.Errorf("nextDue = %+v, want the december invoice", summary.NextDue)
	}

	all, err := q.Summaries(ctx, testUser)
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("summaries = %d, want 2", len(all))
	}
	for _, s := range all {
		if s.Card.ID == "card-2" && (s.OpenCount != 0 || !s.TotalBilled.IsZero()) {
			t.Errorf("card-2 summary = %+v, want empty", s)
		}
	}
}
