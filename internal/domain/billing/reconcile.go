package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/store"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/apperror"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// ReconcileReport counts the repairs made for one user
type ReconcileReport struct {
	UserID             int64 `json:"userId"`
	InvoicesAdjusted   int   `json:"invoicesAdjusted"`
	InvoicesDeleted    int   `json:"invoicesDeleted"`
	InvoicesCreated    int   `json:"invoicesCreated"`
	TransactionsLinked int   `json:"transactionsLinked"`
}

// Changed reports whether anything was repaired
func (r *ReconcileReport) Changed() bool {
	return r.InvoicesAdjusted+r.InvoicesDeleted+r.InvoicesCreated+r.TransactionsLinked > 0
}

// Reconciler rebuilds invoice totals from the purchases they bill. After it
// runs, every invoice total equals the sum of its purchases, no invoice
// exists without purchases, and every purchase has its mirrored transaction.
type Reconciler struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(st store.Store, clk clock.Clock) *Reconciler {
	return &Reconciler{store: st, clock: clk, log: logger.WithComponent("billing.reconcile")}
}

type invoiceKey struct {
	cardID string
	period cycle.Period
}

// Reconcile repairs one user's billing records in a single unit of work
func (r *Reconciler) Reconcile(ctx context.Context, userID int64) (*ReconcileReport, error) {
	ctx, span := billingTracer.Start(ctx, "billing.reconcile")
	defer span.End()

	report := &ReconcileReport{UserID: userID}
	err := r.store.WithinTx(ctx, func(tx store.Tx) error {
		*report = ReconcileReport{UserID: userID}
		u := newUnit(tx, r.clock, r.log)

		purchases, err := tx.Purchases().ListByUserID(ctx, userID)
		if err != nil {
			return err
		}

		sums := make(map[invoiceKey]decimal.Decimal)
		var order []invoiceKey
		for _, p := range purchases {
			key := invoiceKey{cardID: p.CardID, period: p.Period}
			if _, ok := sums[key]; !ok {
				order = append(order, key)
				sums[key] = decimal.Zero
			}
			sums[key] = sums[key].Add(p.TotalAmount)

			if p.TransactionID != "" {
				_, err := tx.Transactions().GetByID(ctx, userID, p.TransactionID)
				if err == nil {
					continue
				}
				if !apperror.Is(err, apperror.KindNotFound) {
					return err
				}
			}
			mirror := &transaction.Transaction{ID: uuid.New().String()}
			mirrorPurchase(mirror, p)
			if err := tx.Transactions().Create(ctx, mirror); err != nil {
				return fmt.Errorf("failed to recreate purchase transaction: %w", err)
			}
			p.TransactionID = mirror.ID
			if err := tx.Purchases().Update(ctx, p); err != nil {
				return fmt.Errorf("failed to relink purchase: %w", err)
			}
			report.TransactionsLinked++
		}

		invoices, err := tx.Invoices().ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			key := invoiceKey{cardID: inv.CardID, period: inv.Period}
			sum, ok := sums[key]
			delete(sums, key)

			if !ok {
				if err := tx.Invoices().Delete(ctx, userID, inv.ID); err != nil {
					return fmt.Errorf("failed to delete orphan invoice: %w", err)
				}
				report.InvoicesDeleted++
				continue
			}
			if sum.Equal(inv.TotalAmount) {
				continue
			}
			survived, err := u.ledger.SetTotal(ctx, inv, sum)
			if err != nil {
				return err
			}
			if survived {
				if err := u.syncPeriodStatus(ctx, inv); err != nil {
					return err
				}
			}
			report.InvoicesAdjusted++
		}

		for _, key := range order {
			// keys still present have no invoice
			sum, ok := sums[key]
			if !ok {
				continue
			}
			if _, err := u.ledger.CreateOrAccumulate(ctx, userID, key.cardID, key.period, sum); err != nil {
				return err
			}
			report.InvoicesCreated++
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if report.Changed() {
		r.log.Warn().
			Int64("user_id", userID).
			Int("adjusted", report.InvoicesAdjusted).
			Int("deleted", report.InvoicesDeleted).
			Int("created", report.InvoicesCreated).
			Int("linked", report.TransactionsLinked).
			Msg("billing records repaired")
	}
	return report, nil
}

// ReconcileAll runs Reconcile for every user owning a card. Failures are
// logged and skipped.
func (r *Reconciler) ReconcileAll(ctx context.Context) ([]*ReconcileReport, error) {
	userIDs, err := r.store.Cards().ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	var reports []*ReconcileReport
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := r.Reconcile(ctx, userID)
		if err != nil {
			r.log.Error().Err(err).Int64("user_id", userID).Msg("reconcile failed")
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}
