package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/card"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/store"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// PayInvoiceParams describes a payment of an invoice from a bank account
type PayInvoiceParams struct {
	UserID        int64
	InvoiceID     string
	BankAccountID string
	Amount        decimal.Decimal
	Method        payment.Method // defaults to bank_transfer
	Note          string
}

// PaymentResult is the state after a successful payment
type PaymentResult struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Payment *payment.Payment `json:"payment"`
	Balance decimal.Decimal  `json:"balance"`
}

// PaymentProcessor pays invoices from bank accounts
type PaymentProcessor struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
	log      zerolog.Logger
}

// NewPaymentProcessor creates a payment processor. notifier may be nil.
func NewPaymentProcessor(st store.Store, clk clock.Clock, notifier Notifier) *PaymentProcessor {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &PaymentProcessor{store: st, clock: clk, notifier: notifier, log: logger.WithComponent("billing.payments")}
}

// PayInvoice debits the bank account, records the payment and applies it to
// the invoice in one unit of work. Paying off the invoice settles its
// purchases and notifies the user.
func (p *PaymentProcessor) PayInvoice(ctx context.Context, params PayInvoiceParams) (*PaymentResult, error) {
	ctx, span := billingTracer.Start(ctx, "billing.pay_invoice", trace.WithAttributes(
		attribute.String("invoice.id", params.InvoiceID),
	))
	defer span.End()

	result, c, err := p.pay(ctx, params)
	invoicePayments.Add(ctx, 1, metric.WithAttributes(attribute.String("result", outcome(err))))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.log.Info().
		Int64("user_id", params.UserID).
		Str("invoice_id", result.Invoice.ID).
		Str("amount", params.Amount.StringFixed(2)).
		Str("status", string(result.Invoice.Status)).
		Msg("invoice payment applied")

	if result.Invoice.Status == invoice.StatusPaid {
		p.notifier.InvoicePaid(ctx, result.Invoice, c)
	}
	return result, nil
}

func (p *PaymentProcessor) pay(ctx context.Context, params PayInvoiceParams) (*PaymentResult, *card.Card, error) {
	if !params.Amount.IsPositive() {
		return nil, nil, invoice.ErrInvalidPayment
	}
	if params.Method == "" {
		params.Method = payment.MethodBankTransfer
	}
	if !params.Method.UsesBankAccount() {
		return nil, nil, payment.ErrInvalidMethod
	}

	var (
		result *PaymentResult
		c      *card.Card
	)
	err := p.store.WithinTx(ctx, func(tx store.Tx) error {
		u := newUnit(tx, p.clock, p.log)

		inv, err := tx.Invoices().GetByID(ctx, params.UserID, params.InvoiceID)
		if err != nil {
			return err
		}
		if params.Amount.GreaterThan(inv.RemainingAmount) {
			return invoice.ErrOverPayment
		}

		c, err = tx.Cards().GetByID(ctx, params.UserID, inv.CardID)
		if err != nil {
			return err
		}

		today := p.clock.Today()
		pay := &payment.Payment{
			ID:            uuid.New().String(),
			InvoiceID:     inv.ID,
			UserID:        params.UserID,
			BankAccountID: params.BankAccountID,
			Amount:        params.Amount,
			Date:          today,
			Method:        params.Method,
			Note:          strings.TrimSpace(params.Note),
		}

		acc, err := u.accounts.Debit(ctx, account.Entry{
			UserID:        params.UserID,
			AccountID:     params.BankAccountID,
			Amount:        params.Amount,
			Description:   fmt.Sprintf("Pagamento fatura %s - %s", inv.Period, c.Name),
			Date:          today,
			ReferenceKind: account.ReferenceInvoicePayment,
			ReferenceID:   pay.ID,
		})
		if err != nil {
			return err
		}

		if err := tx.Payments().Create(ctx, pay); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		if err := u.ledger.ApplyPayment(ctx, inv, params.Amount); err != nil {
			return err
		}
		if inv.Status == invoice.StatusPaid {
			if err := tx.Purchases().SetStatusByPeriod(ctx, inv.UserID, inv.CardID, inv.Period, purchase.StatusSettled); err != nil {
				return fmt.Errorf("failed to settle purchases: %w", err)
			}
		}

		result = &PaymentResult{Invoice: inv, Payment: pay, Balance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, c, nil
}
