package billing

import (
	"context"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/card"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/store"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// StatusService runs the date-driven invoice transitions for every user
type StatusService struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
	log      zerolog.Logger
}

// NewStatusService creates a new status service. notifier may be nil.
func NewStatusService(st store.Store, clk clock.Clock, notifier Notifier) *StatusService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &StatusService{store: st, clock: clk, notifier: notifier, log: logger.WithComponent("billing.status")}
}

// MarkOverdue moves every open invoice past its due date to overdue and
// notifies its owner. Each invoice is its own unit of work so one failure
// does not hold back the rest. Returns how many invoices changed.
func (s *StatusService) MarkOverdue(ctx context.Context) (int, error) {
	ctx, span := billingTracer.Start(ctx, "billing.mark_overdue")
	defer span.End()

	today := s.clock.Today()
	candidates, err := s.store.Invoices().ListOpenDueBefore(ctx, today)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return marked, err
		}

		var (
			inv     *invoice.Invoice
			c       *card.Card
			changed bool
		)
		err := s.store.WithinTx(ctx, func(tx store.Tx) error {
			var err error
			inv, err = tx.Invoices().GetByID(ctx, candidate.UserID, candidate.ID)
			if err != nil {
				return err
			}
			changed, err = newUnit(tx, s.clock, s.log).ledger.Refresh(ctx, inv)
			if err != nil || !changed {
				return err
			}
			c, err = tx.Cards().GetByID(ctx, inv.UserID, inv.CardID)
			return err
		})
		if err != nil {
			s.log.Error().Err(err).Str("invoice_id", candidate.ID).Msg("failed to mark invoice overdue")
			continue
		}
		if !changed || inv.Status != invoice.StatusOverdue {
			continue
		}

		marked++
		s.notifier.InvoiceOverdue(ctx, inv, c)
	}

	overdueMarked.Add(ctx, int64(marked))
	s.log.Info().Int("candidates", len(candidates)).Int("marked", marked).Msg("overdue sweep finished")
	return marked, nil
}
