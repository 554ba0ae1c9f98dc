// Package billing coordinates purchases, invoices, bank accounts and
// payments. Every mutation runs as one store unit of work.
package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/store"
	"financeiro/internal/shared/apperror"
	"financeiro/internal/shared/clock"
)

// ErrConsistencyFault reports a purchase whose invoice (or mirrored
// transaction) is missing. The unit of work is rolled back; the
// Reconciler repairs the data.
var ErrConsistencyFault = apperror.Consistency("billing records are out of sync; run the reconciler")

var (
	billingTracer        = otel.Tracer("financeiro/billing")
	billingMeter         = otel.Meter("financeiro/billing")
	purchaseOps, _       = billingMeter.Int64Counter("billing.purchase.operations", metric.WithDescription("Purchase create/edit/delete operations by result"))
	invoicePayments, _   = billingMeter.Int64Counter("billing.invoice.payments", metric.WithDescription("Invoice payments by result"))
	consistencyFaults, _ = billingMeter.Int64Counter("billing.consistency_faults", metric.WithDescription("Purchases found without their invoice or transaction"))
	overdueMarked, _     = billingMeter.Int64Counter("billing.invoice.overdue", metric.WithDescription("Invoices moved to overdue by the sweep"))
)

// unit bundles the collaborators bound to one unit of work
type unit struct {
	tx       store.Tx
	ledger   *invoice.Ledger
	accounts *account.Mutator
	clock    clock.Clock
	log      zerolog.Logger
}

func newUnit(tx store.Tx, clk clock.Clock, log zerolog.Logger) *unit {
	return &unit{
		tx:       tx,
		ledger:   invoice.NewLedger(tx.Invoices(), tx.Cards(), clk),
		accounts: account.NewMutator(tx.Accounts()),
		clock:    clk,
		log:      log,
	}
}

// invoiceFor locates the invoice a recorded purchase lives in. A missing
// invoice is a consistency fault, never skipped.
func (u *unit) invoiceFor(ctx context.Context, userID int64, purchaseID, cardID string, period cycle.Period) (*invoice.Invoice, error) {
	inv, err := u.tx.Invoices().FindByPeriod(ctx, userID, cardID, period)
	if err == nil {
		return inv, nil
	}
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, u.fault(ctx, userID, purchaseID, fmt.Sprintf("no invoice for card %s period %s", cardID, period))
	}
	return nil, err
}

func (u *unit) fault(ctx context.Context, userID int64, purchaseID, detail string) error {
	consistencyFaults.Add(ctx, 1)
	u.log.Error().
		Int64("user_id", userID).
		Str("purchase_id", purchaseID).
		Str("detail", detail).
		Msg("billing consistency fault")
	return fmt.Errorf("%w: purchase %s: %s", ErrConsistencyFault, purchaseID, detail)
}

func recordPurchaseOp(ctx context.Context, op string, err error) {
	purchaseOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", outcome(err)),
	))
}

func outcome(err error) string {
	if err != nil {
		return apperror.KindOf(err).String()
	}
	return "ok"
}
