package billing

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"financeiro/internal/domain/card"
	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/store"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// InvoiceDetail is an invoice with the purchases billed to it and the
// payments applied to it
type InvoiceDetail struct {
	Invoice   *invoice.Invoice     `json:"invoice"`
	Card      *card.Card           `json:"card"`
	Purchases []*purchase.Purchase `json:"purchases"`
	Payments  []*payment.Payment   `json:"payments"`
}

// PeriodGroup gathers every card's invoice for one billing period
type PeriodGroup struct {
	Period    cycle.Period       `json:"period"`
	Invoices  []*invoice.Invoice `json:"invoices"`
	Total     decimal.Decimal    `json:"total"`
	Remaining decimal.Decimal    `json:"remaining"`
}

// CardSummary aggregates a card's invoices
type CardSummary struct {
	Card           *card.Card       `json:"card"`
	OpenCount      int              `json:"openCount"`
	OverdueCount   int              `json:"overdueCount"`
	PaidCount      int              `json:"paidCount"`
	TotalBilled    decimal.Decimal  `json:"totalBilled"`
	TotalPaid      decimal.Decimal  `json:"totalPaid"`
	TotalRemaining decimal.Decimal  `json:"totalRemaining"`
	NextDue        *invoice.Invoice `json:"nextDue,omitempty"`
}

// InvoiceQuery answers invoice reads. Listings apply the overdue transition
// lazily so callers always see the status as of today.
type InvoiceQuery struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewInvoiceQuery creates a new invoice query service
func NewInvoiceQuery(st store.Store, clk clock.Clock) *InvoiceQuery {
	return &InvoiceQuery{store: st, clock: clk, log: logger.WithComponent("billing.invoices")}
}

// GetInvoice returns one invoice with its purchases and payments
func (q *InvoiceQuery) GetInvoice(ctx context.Context, userID int64, id string) (*InvoiceDetail, error) {
	var detail *InvoiceDetail
	err := q.store.WithinTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invoices().GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if _, err := newUnit(tx, q.clock, q.log).ledger.Refresh(ctx, inv); err != nil {
			return err
		}

		c, err := tx.Cards().GetByID(ctx, userID, inv.CardID)
		if err != nil {
			return err
		}
		purchases, err := tx.Purchases().ListByPeriod(ctx, userID, inv.CardID, inv.Period)
		if err != nil {
			return err
		}
		payments, err := tx.Payments().ListByInvoice(ctx, userID, inv.ID)
		if err != nil {
			return err
		}

		detail = &InvoiceDetail{Invoice: inv, Card: c, Purchases: purchases, Payments: payments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListPayments returns the payment history of an invoice. History outlives
// the invoice, so a deleted invoice still lists its payments.
func (q *InvoiceQuery) ListPayments(ctx context.Context, userID int64, invoiceID string) ([]*payment.Payment, error) {
	return q.store.Payments().ListByInvoice(ctx, userID, invoiceID)
}

// ListByCard lists a card's invoices, latest period first
func (q *InvoiceQuery) ListByCard(ctx context.Context, userID int64, cardID string) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	err := q.store.WithinTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Cards().GetByID(ctx, userID, cardID); err != nil {
			return err
		}
		invoices, err := tx.Invoices().ListByCard(ctx, userID, cardID)
		if err != nil {
			return err
		}
		out, err = q.refreshAll(ctx, tx, invoices)
		return err
	})
	return out, err
}

// ListByPeriod groups all of a user's invoices by billing period, latest first
func (q *InvoiceQuery) ListByPeriod(ctx context.Context, userID int64) ([]*PeriodGroup, error) {
	invoices, err := q.listAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[cycle.Period]*PeriodGroup)
	var groups []*PeriodGroup
	for _, inv := range invoices {
		g, ok := index[inv.Period]
		if !ok {
			g = &PeriodGroup{Period: inv.Period, Total: decimal.Zero, Remaining: decimal.Zero}
			index[inv.Period] = g
			groups = append(groups, g)
		}
		g.Invoices = append(g.Invoices, inv)
		g.Total = g.Total.Add(inv.TotalAmount)
		g.Remaining = g.Remaining.Add(inv.RemainingAmount)
	}

	slices.SortFunc(groups, func(a, b *PeriodGroup) int {
		switch {
		case a.Period == b.Period:
			return 0
		case b.Period.Before(a.Period):
			return -1
		default:
			return 1
		}
	})
	return groups, nil
}

// CardSummary aggregates one card's invoices
func (q *InvoiceQuery) CardSummary(ctx context.Context, userID int64, cardID string) (*CardSummary, error) {
	c, err := q.store.Cards().GetByID(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	invoices, err := q.ListByCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	return summarize(c, invoices), nil
}

// Summaries aggregates every card of the user
func (q *InvoiceQuery) Summaries(ctx context.Context, userID int64) ([]*CardSummary, error) {
	cards, err := q.store.Cards().ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	invoices, err := q.listAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCard := make(map[string][]*invoice.Invoice)
	for _, inv := range invoices {
		byCard[inv.CardID] = append(byCard[inv.CardID], inv)
	}

	out := make([]*CardSummary, 0, len(cards))
	for _, c := range cards {
		out = append(out, summarize(c, byCard[c.ID]))
	}
	return out, nil
}

func (q *InvoiceQuery) listAll(ctx context.Context, userID int64) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	err := q.store.WithinTx(ctx, func(tx store.Tx) error {
		invoices, err := tx.Invoices().ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out, err = q.refreshAll(ctx, tx, invoices)
		return err
	})
	return out, err
}

func (q *InvoiceQuery) refreshAll(ctx context.Context, tx store.Tx, invoices []*invoice.Invoice) ([]*invoice.Invoice, error) {
	ledger := newUnit(tx, q.clock, q.log).ledger
	for _, inv := range invoices {
		if _, err := ledger.Refresh(ctx, inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func summarize(c *card.Card, invoices []*invoice.Invoice) *CardSummary {
	s := &CardSummary{
		Card:           c,
		TotalBilled:    decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
	}
	for _, inv := range invoices {
		s.TotalBilled = s.TotalBilled.Add(inv.TotalAmount)
		s.TotalPaid = s.TotalPaid.Add(inv.PaidAmount)

		switch inv.Status {
		case invoice.StatusPaid:
			s.PaidCount++
			continue
		case invoice.StatusOverdue:
			s.OverdueCount++
		default:
			s.OpenCount++
		}
		s.TotalRemaining = s.TotalRemaining.Add(inv.RemainingAmount)
		if s.NextDue == nil || inv.DueDate.Before(s.NextDue.DueDate) {
			s.NextDue = inv
		}
	}
	return s
}
