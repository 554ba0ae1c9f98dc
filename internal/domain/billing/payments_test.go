package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
)

// seedInvoice charges amount to card-1 for November 2025 and returns the invoice
func seedInvoice(t *testing.T, f *fixture, amount string) *invoice.Invoice {
	t.Helper()
	svc := NewPurchaseService(f.store, f.clock)
	if _, err := svc.CreatePurchase(context.Background(), purchaseParams(amount, day(2025, time.November, 10))); err != nil {
		t.Fatalf("CreatePurchase() error = %v", err)
	}
	return f.invoice(t, "card-1", period(2025, time.November))
}

func TestPayInvoice_FullPayment(t *testing.T) {
	ctx := context.Background()
	today := day(2025, time.November, 28)
	f := newFixture(t, today, "1000")
	inv := seedInvoice(t, f, "300")
	notifier := &recordingNotifier{}

	result, err := NewPaymentProcessor(f.store, f.clock, notifier).PayInvoice(ctx, PayInvoiceParams{
		UserID:        testUser,
		InvoiceID:     inv.ID,
		BankAccountID: "acc-1",
		Amount:        dec("300"),
	})
	if err != nil {
		t.Fatalf("PayInvoice() error = %v", err)
	}

	paid := f.invoice(t, "card-1", inv.Period)
	if paid.Status != invoice.StatusPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
	assertAmount(t, "remaining", paid.RemainingAmount, "0")
	assertInvariant(t, paid)
	if paid.PaymentDate == nil || !paid.PaymentDate.Equal(today) {
		t.Errorf("paymentDate = %v, want %v", paid.PaymentDate, today)
	}

	assertAmount(t, "balance", f.balance(t), "700")
	assertAmount(t, "result balance", result.Balance, "700")
	if result.Payment.Method != payment.MethodBankTransfer {
		t.Errorf("method = %s, want bank_transfer", result.Payment.Method)
	}

	purchases, _ := f.store.Purchases().ListByPeriod(ctx, testUser, "card-1", inv.Period)
	for _, p := range purchases {
		if p.Status != purchase.StatusSettled {
			t.Errorf("purchase %s status = %s, want settled", p.ID, p.Status)
		}
	}

	if len(notifier.paid) != 1 || notifier.paid[0] != inv.ID {
		t.Errorf("paid notifications = %v", notifier.paid)
	}

	movements, _ := f.store.Accounts().ListMovements(ctx, testUser, "acc-1")
	if len(movements) != 1 || movements[0].ReferenceKind != account.ReferenceInvoicePayment || movements[0].ReferenceID != result.Payment.ID {
		t.Errorf("unexpected movements %+v", movements)
	}
}

func TestPayInvoice_Partial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 28), "1000")
	inv := seedInvoice(t, f, "300")
	notifier := &recordingNotifier{}
	processor := NewPaymentProcessor(f.store, f.clock, notifier)

	for _, amount := range []string{"100", "150.50"} {
		if _, err := processor.PayInvoice(ctx, PayInvoiceParams{
			UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec(amount), Method: payment.MethodPix,
		}); err != nil {
			t.Fatalf("PayInvoice(%s) error = %v", amount, err)
		}
	}

	got := f.invoice(t, "card-1", inv.Period)
	if got.Status != invoice.StatusOpen {
		t.Errorf("status = %s, want open", got.Status)
	}
	assertAmount(t, "paid", got.PaidAmount, "250.50")
	assertAmount(t, "remaining", got.RemainingAmount, "49.50")
	assertInvariant(t, got)
	assertAmount(t, "balance", f.balance(t), "749.50")
	if len(notifier.paid) != 0 {
		t.Errorf("partial payments must not notify, got %v", notifier.paid)
	}

	history, err := NewInvoiceQuery(f.store, f.clock).ListPayments(ctx, testUser, inv.ID)
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("payments = %d, want 2", len(history))
	}
}

func TestPayInvoice_Errors(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		modify  func(p *PayInvoiceParams)
		wantErr error
	}{
		{
			name:    "over payment",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.Amount = dec("300.01") },
			wantErr: invoice.ErrOverPayment,
		},
		{
			name:    "zero amount",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.Amount = decimal.Zero },
			wantErr: invoice.ErrInvalidPayment,
		},
		{
			name:    "negative amount",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.Amount = dec("-5") },
			wantErr: invoice.ErrInvalidPayment,
		},
		{
			name:    "insufficient funds",
			balance: "299.99",
			modify:  func(p *PayInvoiceParams) {},
			wantErr: account.ErrInsufficientFunds,
		},
		{
			name:    "paying with the card itself",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.Method = payment.MethodCreditCard },
			wantErr: payment.ErrInvalidMethod,
		},
		{
			name:    "unknown invoice",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.InvoiceID = "inv-x" },
			wantErr: invoice.ErrInvoiceNotFound,
		},
		{
			name:    "foreign invoice",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.UserID = 2 },
			wantErr: invoice.ErrInvoiceNotFound,
		},
		{
			name:    "unknown account",
			balance: "1000",
			modify:  func(p *PayInvoiceParams) { p.BankAccountID = "acc-x" },
			wantErr: account.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, day(2025, time.November, 28), tt.balance)
			inv := seedInvoice(t, f, "300")

			params := PayInvoiceParams{UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec("300")}
			tt.modify(&params)

			_, err := NewPaymentProcessor(f.store, f.clock, nil).PayInvoice(ctx, params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			// nothing moved
			got := f.invoice(t, "card-1", inv.Period)
			assertAmount(t, "paid", got.PaidAmount, "0")
			assertAmount(t, "remaining", got.RemainingAmount, "300")
			assertAmount(t, "balance", f.balance(t), tt.balance)
			payments, _ := f.store.Payments().ListByInvoice(ctx, testUser, inv.ID)
			if len(payments) != 0 {
				t.Errorf("payments = %d, want 0", len(payments))
			}
		})
	}
}

func TestPayInvoice_Overdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, day(2025, time.November, 18), "1000")
	inv := seedInvoice(t, f, "120")

	late := f.clock
	late.Date = day(2025, time.December, 20)
	if _, err := NewStatusService(f.store, late, nil).MarkOverdue(ctx); err != nil {
		t.Fatalf("MarkOverdue() error = %v", err)
	}
	if got := f.invoice(t, "card-1", inv.Period); got.Status != invoice.StatusOverdue {
		t.Fatalf("status = %s, want overdue", got.Status)
	}

	if _, err := NewPaymentProcessor(f.store, late, nil).PayInvoice(ctx, PayInvoiceParams{
		UserID: testUser, InvoiceID: inv.ID, BankAccountID: "acc-1", Amount: dec("120"),
	}); err != nil {
		t.Fatalf("PayInvoice() error = %v", err)
	}
	got := f.invoice(t, "card-1", inv.Period)
	if got.Status != invoice.StatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}
	if !got.PaymentDate.Equal(late.Date) {
		t.Errorf("paymentDate = %v, want %v", got.PaymentDate, late.Date)
	}
}
