package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/card"
	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/apperror"
)

func purchaseParams(amount string, date time.Time) purchase.CreateParams {
	return purchase.CreateParams{
		UserID:           testUser,
		CardID:           "card-1",
		Description:      "Mercado Livre",
		Category:         "compras",
		TotalAmount:      dec(amount),
		InstallmentCount: 1,
		PurchaseDate:     date,
	}
}

func TestCreatePurchase_ResolvesInvoice(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name        string
		date        time.Time
		wantPeriod  cycle.Period
		wantClosing time.Time
		wantDue     time.Time
	}{
		{
			name:        "before closing",
			date:        day(2025, time.November, 18),
			wantPeriod:  period(2025, time.November),
			wantClosing: day(2025, time.November, 24),
			wantDue:     day(2025, time.December, 5),
		},
		{
			name:        "on closing day",
			date:        day(2025, time.November, 24),
			wantPeriod:  period(2025, time.November),
			wantClosing: day(2025, time.November, 24),
			wantDue:     day(2025, time.December, 5),
		},
		{
			name:        "after closing",
			date:        day(2025, time.November, 25),
			wantPeriod:  period(2025, time.December),
			wantClosing: day(2025, time.December, 24),
			wantDue:     day(2026, time.January, 5),
		},
		{
			name:        "after closing in december",
			date:        day(2025, time.December, 26),
			wantPeriod:  period(2026, time.January),
			wantClosing: day(2026, time.January, 24),
			wantDue:     day(2026, time.February, 5),
		},
		{
			name:        "late evening keeps the local date",
			date:        time.Date(2025, time.November, 24, 23, 30, 0, 0, brt),
			wantPeriod:  period(2025, time.November),
			wantClosing: day(2025, time.November, 24),
			wantDue:     day(2025, time.December, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, day(2025, time.November, 18), "1000")
			svc := NewPurchaseService(f.store, f.clock)

			p, err := svc.CreatePurchase(context.Background(), purchaseParams("100", tt.date))
			if err != nil {
				t.Fatalf("CreatePurchase() error = %v", err)
			}
			if p.Period != tt.wantPeriod {
				t.Errorf("period = %s, want %s", p.Period, tt.wantPeriod)
			}

			inv := f.invoice(t, "card-1", tt.wantPeriod)
			if !inv.ClosingDate.Equal(tt.wantClosing) {
				t.Errorf("closingDate = %v, want %v", inv.ClosingDate, tt.wantClosing)
			}
			if !inv.DueDate.Equal(tt.wantDue) {
				t.Errorf("dueDate = %v, want %v", inv.DueDate, tt.wantDue)
			}
			if inv.Status != invoice.StatusOpen {
				t.Errorf("status = %s, want open", inv.Status)
			}
			assertAmount(t, "total", inv.TotalAmount, "100")
			assertInvariant(t, inv)
		})
	}
}

func TestCreatePurchase_MirrorsTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	svc := NewPurchaseService(f.store, f.clock)

	p, err := svc.CreatePurchase(ctx, purchaseParams("89.90", day(2025, time.November, 18)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	if p.TransactionID == "" {
		t.Fatal("purchase has no transaction link")
	}

	tx, err := f.store.Transactions().GetByID(ctx, testUser, p.TransactionID)
	if err != nil {
		t.Fatalf("mirrored transaction: %v", err)
	}
	if tx.PurchaseID != p.ID {
		t.Errorf("transaction.PurchaseID = %q, want %q", tx.PurchaseID, p.ID)
	}
	if tx.Method != payment.MethodCreditCard || tx.CardID != "card-1" {
		t.Errorf("transaction method/card = %s/%s", tx.Method, tx.CardID)
	}
	assertAmount(t, "transaction amount", tx.Amount, "89.90")
	if tx.Category != "Compras" {
		t.Errorf("category = %q, want Compras", tx.Category)
	}

	// card purchases never touch the bank balance
	assertAmount(t, "balance", f.balance(t), "1000")
}

func TestCreatePurchase_Accumulates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	svc := NewPurchaseService(f.store, f.clock)

	for _, amount := range []string{"100", "75.50", "24.50"} {
		if _, err := svc.CreatePurchase(ctx, purchaseParams(amount, day(2025, time.November, 10))); err != nil {
			t.Fatalf("CreatePurchase(%s) error = %v", amount, err)
		}
	}

	invoices, err := f.store.Invoices().ListByCard(ctx, testUser, "card-1")
	if err != nil {
		t.Fatalf("ListByCard() error = %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	assertAmount(t, "total", invoices[0].TotalAmount, "200")
	assertInvariant(t, invoices[0])
}

func TestCreatePurchase_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *purchase.CreateParams)
		wantErr error
	}{
		{"foreign card", func(p *purchase.CreateParams) { p.UserID = 2 }, card.ErrCardNotFound},
		{"unknown card", func(p *purchase.CreateParams) { p.CardID = "card-x" }, card.ErrCardNotFound},
		{"zero amount", func(p *purchase.CreateParams) { p.TotalAmount = decimal.Zero }, purchase.ErrInvalidAmount},
		{"too many installments", func(p *purchase.CreateParams) { p.InstallmentCount = 49 }, purchase.ErrInvalidInstallments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, day(2025, time.November, 18), "1000")
			params := purchaseParams("10", day(2025, time.November, 18))
			tt.modify(&params)

			_, err := NewPurchaseService(f.store, f.clock).CreatePurchase(ctx, params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			invoices, _ := f.store.Invoices().ListByUserID(ctx, testUser)
			if len(invoices) != 0 {
				t.Errorf("failed purchase left %d invoices", len(invoices))
			}
		})
	}
}

func TestDeletePurchase_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	svc := NewPurchaseService(f.store, f.clock)
	nov := period(2025, time.November)

	first, err := svc.CreatePurchase(ctx, purchaseParams("50", day(2025, time.November, 3)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	second, err := svc.CreatePurchase(ctx, purchaseParams("120.35", day(2025, time.November, 12)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	assertAmount(t, "total", f.invoice(t, "card-1", nov).TotalAmount, "170.35")

	if err := svc.DeletePurchase(ctx, testUser, second.ID); err != nil {
		t.Fatalf("DeletePurchase() error = %v", err)
	}
	assertAmount(t, "total after delete", f.invoice(t, "card-1", nov).TotalAmount, "50")
	if _, err := f.store.Transactions().GetByID(ctx, testUser, second.TransactionID); !errors.Is(err, transaction.ErrTransactionNotFound) {
		t.Errorf("mirrored transaction not removed: %v", err)
	}

	if err := svc.DeletePurchase(ctx, testUser, first.ID); err != nil {
		t.Fatalf("DeletePurchase() error = %v", err)
	}
	f.noInvoice(t, "card-1", nov)

	if _, err := svc.GetPurchase(ctx, testUser, first.ID); !errors.Is(err, purchase.ErrPurchaseNotFound) {
		t.Errorf("expected purchase gone, got %v", err)
	}
}

func TestEditPurchase_AdjustsAndMoves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	svc := NewPurchaseService(f.store, f.clock)
	nov, dec25 := period(2025, time.November), period(2025, time.December)

	p, err := svc.CreatePurchase(ctx, purchaseParams("100", day(2025, time.November, 18)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	amount := dec("40")
	if _, err := svc.EditPurchase(ctx, testUser, p.ID, purchase.UpdateParams{TotalAmount: &amount}); err != nil {
		t.Fatalf("EditPurchase(amount) error = %v", err)
	}
	inv := f.invoice(t, "card-1", nov)
	assertAmount(t, "total after edit", inv.TotalAmount, "40")
	assertInvariant(t, inv)

	// moving the purchase past the closing day empties November
	moved := day(2025, time.November, 30)
	edited, err := svc.EditPurchase(ctx, testUser, p.ID, purchase.UpdateParams{PurchaseDate: &moved})
	if err != nil {
		t.Fatalf("EditPurchase(date) error = %v", err)
	}
	if edited.Period != dec25 {
		t.Errorf("period = %s, want %s", edited.Period, dec25)
	}
	f.noInvoice(t, "card-1", nov)
	assertAmount(t, "december total", f.invoice(t, "card-1", dec25).TotalAmount, "40")

	tx, err := f.store.Transactions().GetByID(ctx, testUser, p.TransactionID)
	if err != nil {
		t.Fatalf("mirrored transaction: %v", err)
	}
	if !tx.Date.Equal(moved) {
		t.Errorf("transaction date = %v, want %v", tx.Date, moved)
	}
	assertAmount(t, "transaction amount", tx.Amount, "40")
}

func TestEditPurchase_ChangeCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	f.addCard(t, "card-2", 5, 15)
	svc := NewPurchaseService(f.store, f.clock)

	p, err := svc.CreatePurchase(ctx, purchaseParams("60", day(2025, time.November, 18)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	cardID := "card-2"
	edited, err := svc.EditPurchase(ctx, testUser, p.ID, purchase.UpdateParams{CardID: &cardID})
	if err != nil {
		t.Fatalf("EditPurchase() error = %v", err)
	}

	// card-2 closes on the 5th, so the 18th belongs to December
	if edited.Period != period(2025, time.December) {
		t.Errorf("period = %s, want 12/2025", edited.Period)
	}
	f.noInvoice(t, "card-1", period(2025, time.November))
	inv := f.invoice(t, "card-2", period(2025, time.December))
	assertAmount(t, "card-2 total", inv.TotalAmount, "60")
	if !inv.DueDate.Equal(day(2026, time.January, 15)) {
		t.Errorf("dueDate = %v, want 2026-01-15", inv.DueDate)
	}
}

func TestPurchase_ConsistencyFaultWhenInvoiceMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	svc := NewPurchaseService(f.store, f.clock)

	p, err := svc.CreatePurchase(ctx, purchaseParams("100", day(2025, time.November, 18)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	inv := f.invoice(t, "card-1", p.Period)
	if err := f.store.Invoices().Delete(ctx, testUser, inv.ID); err != nil {
		t.Fatalf("drop invoice: %v", err)
	}

	amount := dec("80")
	_, err = svc.EditPurchase(ctx, testUser, p.ID, purchase.UpdateParams{TotalAmount: &amount})
	if !errors.Is(err, ErrConsistencyFault) {
		t.Errorf("EditPurchase() error = %v, want consistency fault", err)
	}
	if apperror.KindOf(err) != apperror.KindConsistency {
		t.Errorf("kind = %v, want consistency", apperror.KindOf(err))
	}

	err = svc.DeletePurchase(ctx, testUser, p.ID)
	if !errors.Is(err, ErrConsistencyFault) {
		t.Errorf("DeletePurchase() error = %v, want consistency fault", err)
	}

	// the failed units rolled back
	stored, err := svc.GetPurchase(ctx, testUser, p.ID)
	if err != nil {
		t.Fatalf("purchase lost after rollback: %v", err)
	}
	assertAmount(t, "purchase amount", stored.TotalAmount, "100")
}

func TestCreatePurchase_ReopensPaidInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 26), "1000")
	purchases := NewPurchaseService(f.store, f.clock)
	payments := NewPaymentProcessor(f.store, f.clock, nil)
	nov := period(2025, time.November)

	first, err := purchases.CreatePurchase(ctx, purchaseParams("100", day(2025, time.November, 10)))
	if err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	inv := f.invoice(t, "card-1", nov)
	if _, err := payments.PayInvoice(ctx, PayInvoiceParams{
		UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec("100"),
	}); err != nil {
		t.Fatalf("PayInvoice() error = %v", err)
	}

	settled, _ := purchases.GetPurchase(ctx, testUser, first.ID)
	if settled.Status != purchase.StatusSettled {
		t.Fatalf("purchase status = %s, want settled", settled.Status)
	}

	// a late charge still dated inside the closed period
	if _, err := purchases.CreatePurchase(ctx, purchaseParams("30", day(2025, time.November, 20))); err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}

	inv = f.invoice(t, "card-1", nov)
	if inv.Status != invoice.StatusOpen {
		t.Errorf("status = %s, want open", inv.Status)
	}
	if inv.PaymentDate != nil {
		t.Error("reopened invoice kept its payment date")
	}
	assertAmount(t, "remaining", inv.RemainingAmount, "30")
	assertInvariant(t, inv)

	reopened, _ := purchases.GetPurchase(ctx, testUser, first.ID)
	if reopened.Status != purchase.StatusOpen {
		t.Errorf("purchase status = %s, want open", reopened.Status)
	}
}

func TestListPurchases(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	f.addCard(t, "card-2", 10, 20)
	svc := NewPurchaseService(f.store, f.clock)

	if _, err := svc.CreatePurchase(ctx, purchaseParams("10", day(2025, time.November, 1))); err != nil {
		t.Fatal(err)
	}
	other := purchaseParams("20", day(2025, time.November, 2))
	other.CardID = "card-2"
	if _, err := svc.CreatePurchase(ctx, other); err != nil {
		t.Fatal(err)
	}

	all, err := svc.ListPurchases(ctx, testUser, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListPurchases(all) = %d, %v", len(all), err)
	}
	byCard, err := svc.ListPurchases(ctx, testUser, "card-2")
	if err != nil || len(byCard) != 1 {
		t.Fatalf("ListPurchases(card-2) = %d, %v", len(byCard), err)
	}
	if _, err := svc.ListPurchases(ctx, 2, "card-2"); !errors.Is(err, card.ErrCardNotFound) {
		t.Errorf("foreign card listing error = %v", err)
	}
}

func TestEditPurchase_RaiseReopensPaidInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 26), "1000")
	purchases := NewPurchaseService(f.store, f.clock)
	inv := seedInvoice(t, f, "100")
	if _, err := NewPaymentProcessor(f.store, f.clock, nil).PayInvoice(ctx, PayInvoiceParams{
		UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec("100"),
	}); err != nil {
		t.Fatalf("PayInvoice() error = %v", err)
	}

	list, _ := purchases.ListPurchases(ctx, testUser, "card-1")
	if len(list) != 1 {
		t.Fatalf("purchases = %d, want 1", len(list))
	}
	amount := dec("150")
	edited, err := purchases.EditPurchase(ctx, testUser, list[0].ID, purchase.UpdateParams{TotalAmount: &amount})
	if err != nil {
		t.Fatalf("EditPurchase() error = %v", err)
	}

	got := f.invoice(t, "card-1", inv.Period)
	if got.Status != invoice.StatusOpen {
		t.Errorf("invoice status = %s, want open", got.Status)
	}
	assertAmount(t, "remaining", got.RemainingAmount, "50")
	assertInvariant(t, got)
	if edited.Status != purchase.StatusOpen {
		t.Errorf("returned purchase status = %s, want open", edited.Status)
	}
	stored, _ := purchases.GetPurchase(ctx, testUser, edited.ID)
	if stored.Status != purchase.StatusOpen {
		t.Errorf("stored purchase status = %s, want open", stored.Status)
	}
}

func TestPurchaseStatus_FollowsInvoicePaidOffByReduction(t *testing.T) {
	nov := period(2025, time.November)

	tests := []struct {
		name   string
		reduce func(t *testing.T, svc *PurchaseService, small *purchase.Purchase)
	}{
		{
			name: "delete",
			reduce: func(t *testing.T, svc *PurchaseService, small *purchase.Purchase) {
				if err := svc.DeletePurchase(context.Background(), testUser, small.ID); err != nil {
					t.Fatalf("DeletePurchase() error = %v", err)
				}
			},
		},
		{
			name: "edit down",
			reduce: func(t *testing.T, svc *PurchaseService, small *purchase.Purchase) {
				amount := dec("0.01")
				if _, err := svc.EditPurchase(context.Background(), testUser, small.ID, purchase.UpdateParams{TotalAmount: &amount}); err != nil {
					t.Fatalf("EditPurchase() error = %v", err)
				}
			},
		},
		{
			name: "move to next period",
			reduce: func(t *testing.T, svc *PurchaseService, small *purchase.Purchase) {
				moved := day(2025, time.November, 30)
				edited, err := svc.EditPurchase(context.Background(), testUser, small.ID, purchase.UpdateParams{PurchaseDate: &moved})
				if err != nil {
					t.Fatalf("EditPurchase() error = %v", err)
				}
				if edited.Status != purchase.StatusOpen {
					t.Errorf("moved purchase status = %s, want open", edited.Status)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			today := day(2025, time.November, 26)
			f := newFixture(t, today, "1000")
			svc := NewPurchaseService(f.store, f.clock)

			big, err := svc.CreatePurchase(ctx, purchaseParams("100", day(2025, time.November, 10)))
			if err != nil {
				t.Fatal(err)
			}
			small, err := svc.CreatePurchase(ctx, purchaseParams("50", day(2025, time.November, 12)))
			if err != nil {
				t.Fatal(err)
			}
			inv := f.invoice(t, "card-1", nov)
			if _, err := NewPaymentProcessor(f.store, f.clock, nil).PayInvoice(ctx, PayInvoiceParams{
				UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec("100.01"),
			}); err != nil {
				t.Fatalf("PayInvoice() error = %v", err)
			}

			tt.reduce(t, svc, small)

			got := f.invoice(t, "card-1", nov)
			if got.Status != invoice.StatusPaid {
				t.Errorf("invoice status = %s, want paid", got.Status)
			}
			if got.PaymentDate == nil || !got.PaymentDate.Equal(today) {
				t.Errorf("paymentDate = %v, want %v", got.PaymentDate, today)
			}
			assertInvariant(t, got)

			stored, err := svc.GetPurchase(ctx, testUser, big.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.Status != purchase.StatusSettled {
				t.Errorf("purchase status = %s, want settled", stored.Status)
			}
		})
	}
}

func TestCreatePurchase_ConcurrentSamePeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 10), "1000")
	svc := NewPurchaseService(f.store, f.clock)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreatePurchase(ctx, purchaseParams("10.01", day(2025, time.November, 18))); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("CreatePurchase() error = %v", err)
	}

	invoices, err := f.store.Invoices().ListByCard(ctx, testUser, "card-1")
	if err != nil {
		t.Fatalf("ListByCard() error = %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	inv := f.invoice(t, "card-1", period(2025, time.November))
	assertAmount(t, "total", inv.TotalAmount, "500.5")
	assertInvariant(t, inv)

	purchases, err := f.store.Purchases().ListByUserID(ctx, testUser)
	if err != nil {
		t.Fatalf("ListByUserID() error = %v", err)
	}
	if len(purchases) != workers {
		t.Errorf("purchases = %d, want %d", len(purchases), workers)
	}
}
