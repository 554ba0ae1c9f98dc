package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/shared/clock"
)

// Ledger owns invoice amounts and status transitions. It is built per unit
// of work over repositories bound to that unit.
type Ledger struct {
	invoices Repository
	cards    CardLookup
	clock    clock.Clock
}

// NewLedger creates a ledger over the given repositories
func NewLedger(invoices Repository, cards CardLookup, clk clock.Clock) *Ledger {
	return &Ledger{invoices: invoices, cards: cards, clock: clk}
}

// CreateOrAccumulate adds amount to the user's invoice for (card, period),
// creating the invoice on first use. The card is checked before anything is
// written so an unknown card never leaves an invoice behind.
func (l *Ledger) CreateOrAccumulate(ctx context.Context, userID int64, cardID string, period cycle.Period, amount decimal.Decimal) (*Invoice, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	c, err := l.cards.GetByID(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	inv, err := l.invoices.FindByPeriod(ctx, userID, cardID, period)
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		cy := cycle.ForPeriod(c.Schedule(), period)
		inv = &Invoice{
			ID:          uuid.New().String(),
			UserID:      userID,
			CardID:      cardID,
			Period:      period,
			TotalAmount: amount,
			PaidAmount:  decimal.Zero,
			ClosingDate: cy.ClosingDate,
			DueDate:     cy.DueDate,
			Status:      StatusOpen,
		}
		inv.recompute(l.clock.Today())

		err = l.invoices.Create(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, ErrInvoiceExists) {
			return nil, fmt.Errorf("failed to create invoice: %w", err)
		}
		// Lost the insert race: accumulate into the row that won.
		inv, err = l.invoices.FindByPeriod(ctx, userID, cardID, period)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	inv.TotalAmount = inv.TotalAmount.Add(amount)
	inv.recompute(l.clock.Today())
	if err := l.invoices.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return inv, nil
}

// AdjustAmount applies delta to the invoice total. An invoice whose total
// drops to zero or below is deleted; survived reports whether it still
// exists. A zero delta is a no-op.
func (l *Ledger) AdjustAmount(ctx context.Context, inv *Invoice, delta decimal.Decimal) (survived bool, err error) {
	if delta.IsZero() {
		return true, nil
	}

	inv.TotalAmount = inv.TotalAmount.Add(delta)
	if !inv.TotalAmount.IsPositive() {
		if err := l.invoices.Delete(ctx, inv.UserID, inv.ID); err != nil {
			return false, fmt.Errorf("failed to delete emptied invoice: %w", err)
		}
		return false, nil
	}

	inv.recompute(l.clock.Today())
	if err := l.invoices.Update(ctx, inv); err != nil {
		return false, fmt.Errorf("failed to update invoice: %w", err)
	}
	return true, nil
}

// ApplyPayment records amount as paid. Paying off the remaining balance
// marks the invoice paid and stamps today's date.
func (l *Ledger) ApplyPayment(ctx context.Context, inv *Invoice, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidPayment
	}
	if amount.GreaterThan(inv.RemainingAmount) {
		return ErrOverPayment
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.recompute(l.clock.Today())
	if err := l.invoices.Update(ctx, inv); err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// Refresh applies the date-driven overdue transition and persists it when
// the status changed.
func (l *Ledger) Refresh(ctx context.Context, inv *Invoice) (changed bool, err error) {
	before := inv.Status
	inv.recompute(l.clock.Today())
	if inv.Status == before {
		return false, nil
	}
	if err := l.invoices.Update(ctx, inv); err != nil {
		return false, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return true, nil
}

// SetTotal moves the invoice total to an exact value, deleting the invoice
// when the value is not positive. Used when repairing drift.
func (l *Ledger) SetTotal(ctx context.Context, inv *Invoice, total decimal.Decimal) (survived bool, err error) {
	return l.AdjustAmount(ctx, inv, total.Sub(inv.TotalAmount))
}
