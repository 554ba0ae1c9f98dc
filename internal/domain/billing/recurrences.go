package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/recurrence"
	"financeiro/internal/domain/store"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// MaterializeReport summarizes one materializer run
type MaterializeReport struct {
	Recurrences int `json:"recurrences"`
	Posted      int `json:"posted"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// Materializer posts the due occurrences of recurrences as transactions.
// Running it twice for the same day posts nothing new.
type Materializer struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewMaterializer creates a new recurrence materializer
func NewMaterializer(st store.Store, clk clock.Clock) *Materializer {
	return &Materializer{store: st, clock: clk, log: logger.WithComponent("billing.recurrences")}
}

// MaterializeDue posts every occurrence up to today
func (m *Materializer) MaterializeDue(ctx context.Context) (*MaterializeReport, error) {
	return m.Materialize(ctx, m.clock.Today())
}

// Materialize posts every active recurrence's occurrences up to until.
// Each occurrence is its own unit of work; card occurrences feed invoices
// through the purchase path.
func (m *Materializer) Materialize(ctx context.Context, until time.Time) (*MaterializeReport, error) {
	ctx, span := billingTracer.Start(ctx, "billing.materialize_recurrences")
	defer span.End()

	recs, err := m.store.Recurrences().ListActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &MaterializeReport{Recurrences: len(recs)}
	for _, rec := range recs {
		for _, date := range rec.DueOccurrences(clock.DateOf(until)) {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			posted, err := m.postOccurrence(ctx, rec, date)
			switch {
			case err != nil:
				report.Failed++
				m.log.Error().Err(err).
					Str("recurrence_id", rec.ID).
					Str("date", date.Format(time.DateOnly)).
					Msg("failed to post occurrence")
			case posted:
				report.Posted++
			default:
				report.Skipped++
			}
			if err != nil {
				// later occurrences wait for this one
				break
			}
		}
	}

	m.log.Info().
		Int("recurrences", report.Recurrences).
		Int("posted", report.Posted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("recurrences materialized")
	return report, nil
}

func (m *Materializer) postOccurrence(ctx context.Context, rec *recurrence.Recurrence, date time.Time) (bool, error) {
	posted := false
	err := m.store.WithinTx(ctx, func(tx store.Tx) error {
		exists, err := tx.Transactions().ExistsForOccurrence(ctx, rec.UserID, rec.ID, date)
		if err != nil {
			return err
		}
		if !exists {
			occurrence := date
			_, err = newUnit(tx, m.clock, m.log).createTransaction(ctx, transaction.CreateParams{
				UserID:         rec.UserID,
				Description:    rec.Description,
				Amount:         rec.Amount,
				Category:       rec.Category,
				Type:           rec.Type,
				Method:         rec.Method,
				Date:           date,
				BankAccountID:  rec.BankAccountID,
				CardID:         rec.CardID,
				RecurrenceID:   rec.ID,
				OccurrenceDate: &occurrence,
			})
			if err != nil {
				return err
			}
			posted = true
		}
		if err := tx.Recurrences().MarkMaterialized(ctx, rec.UserID, rec.ID, date); err != nil {
			return fmt.Errorf("failed to advance recurrence: %w", err)
		}
		return nil
	})
	return posted, err
}
