package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/store"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/apperror"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// PurchaseService records credit card purchases and keeps their invoices
// and mirrored transactions in step.
type PurchaseService struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(st store.Store, clk clock.Clock) *PurchaseService {
	return &PurchaseService{store: st, clock: clk, log: logger.WithComponent("billing.purchases")}
}

// CreatePurchase records a purchase, accumulates it into the invoice its
// date resolves to and posts the mirrored credit card transaction.
func (s *PurchaseService) CreatePurchase(ctx context.Context, params purchase.CreateParams) (*purchase.Purchase, error) {
	ctx, span := billingTracer.Start(ctx, "billing.create_purchase")
	defer span.End()

	var created *purchase.Purchase
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		p, _, err := newUnit(tx, s.clock, s.log).createPurchase(ctx, params, nil)
		created = p
		return err
	})
	recordPurchaseOp(ctx, "create", err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return created, nil
}

// EditPurchase changes a purchase and moves its amount between invoices
// when the card or the resolved period changed.
func (s *PurchaseService) EditPurchase(ctx context.Context, userID int64, id string, params purchase.UpdateParams) (*purchase.Purchase, error) {
	ctx, span := billingTracer.Start(ctx, "billing.edit_purchase")
	defer span.End()

	var updated *purchase.Purchase
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		p, err := newUnit(tx, s.clock, s.log).editPurchase(ctx, userID, id, params)
		updated = p
		return err
	})
	recordPurchaseOp(ctx, "edit", err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}

// DeletePurchase reverses the purchase's contribution to its invoice and
// removes it together with its mirrored transaction.
func (s *PurchaseService) DeletePurchase(ctx context.Context, userID int64, id string) error {
	ctx, span := billingTracer.Start(ctx, "billing.delete_purchase")
	defer span.End()

	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		return newUnit(tx, s.clock, s.log).deletePurchase(ctx, userID, id, false)
	})
	recordPurchaseOp(ctx, "delete", err)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// GetPurchase retrieves a purchase owned by the user
func (s *PurchaseService) GetPurchase(ctx context.Context, userID int64, id string) (*purchase.Purchase, error) {
	return s.store.Purchases().GetByID(ctx, userID, id)
}

// ListPurchases lists a user's purchases, optionally restricted to one card
func (s *PurchaseService) ListPurchases(ctx context.Context, userID int64, cardID string) ([]*purchase.Purchase, error) {
	if cardID != "" {
		if _, err := s.store.Cards().GetByID(ctx, userID, cardID); err != nil {
			return nil, err
		}
		return s.store.Purchases().ListByCard(ctx, userID, cardID)
	}
	return s.store.Purchases().ListByUserID(ctx, userID)
}

// createPurchase persists a purchase and charges it to its invoice. With
// link nil a new mirrored transaction is created; otherwise link (an
// existing transaction switching to credit card) is attached instead.
func (u *unit) createPurchase(ctx context.Context, params purchase.CreateParams, link *transaction.Transaction) (*purchase.Purchase, *transaction.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	c, err := u.tx.Cards().GetByID(ctx, params.UserID, params.CardID)
	if err != nil {
		return nil, nil, err
	}

	date := clock.DateOf(params.PurchaseDate)
	p := &purchase.Purchase{
		ID:               uuid.New().String(),
		UserID:           params.UserID,
		CardID:           c.ID,
		Description:      strings.TrimSpace(params.Description),
		Category:         transaction.NormalizeCategory(params.Category),
		TotalAmount:      params.TotalAmount,
		InstallmentCount: params.InstallmentCount,
		PurchaseDate:     date,
		Period:           cycle.Resolve(c.Schedule(), date).Period,
		Status:           purchase.StatusOpen,
	}

	mirror := link
	if mirror == nil {
		mirror = &transaction.Transaction{ID: uuid.New().String(), UserID: p.UserID}
	}
	p.TransactionID = mirror.ID

	inv, err := u.ledger.CreateOrAccumulate(ctx, p.UserID, p.CardID, p.Period, p.TotalAmount)
	if err != nil {
		return nil, nil, err
	}
	if err := u.syncPeriodStatus(ctx, inv); err != nil {
		return nil, nil, err
	}
	p.Status = purchaseStatusFor(inv)

	if err := u.tx.Purchases().Create(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	mirrorPurchase(mirror, p)
	if link == nil {
		err = u.tx.Transactions().Create(ctx, mirror)
	} else {
		err = u.tx.Transactions().Update(ctx, mirror)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save purchase transaction: %w", err)
	}

	u.log.Debug().
		Str("purchase_id", p.ID).
		Str("invoice_id", inv.ID).
		Str("period", p.Period.String()).
		Msg("purchase charged to invoice")
	return p, mirror, nil
}

func (u *unit) editPurchase(ctx context.Context, userID int64, id string, params purchase.UpdateParams) (*purchase.Purchase, error) {
	existing, err := u.tx.Purchases().GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	oldInv, err := u.invoiceFor(ctx, userID, existing.ID, existing.CardID, existing.Period)
	if err != nil {
		return nil, err
	}

	updated, err := params.Apply(existing)
	if err != nil {
		return nil, err
	}
	updated.PurchaseDate = clock.DateOf(updated.PurchaseDate)
	updated.Category = transaction.NormalizeCategory(updated.Category)

	c, err := u.tx.Cards().GetByID(ctx, userID, updated.CardID)
	if err != nil {
		return nil, err
	}
	updated.Period = cycle.Resolve(c.Schedule(), updated.PurchaseDate).Period

	target := oldInv
	if updated.CardID == existing.CardID && updated.Period == existing.Period {
		if err := u.adjust(ctx, oldInv, updated.TotalAmount.Sub(existing.TotalAmount)); err != nil {
			return nil, err
		}
	} else {
		if err := u.adjust(ctx, oldInv, existing.TotalAmount.Neg()); err != nil {
			return nil, err
		}
		target, err = u.ledger.CreateOrAccumulate(ctx, userID, updated.CardID, updated.Period, updated.TotalAmount)
		if err != nil {
			return nil, err
		}
		if err := u.syncPeriodStatus(ctx, target); err != nil {
			return nil, err
		}
	}
	updated.Status = purchaseStatusFor(target)

	if err := u.tx.Purchases().Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	if updated.TransactionID == "" {
		return nil, u.fault(ctx, userID, updated.ID, "purchase has no transaction")
	}
	mirror, err := u.tx.Transactions().GetByID(ctx, userID, updated.TransactionID)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, u.fault(ctx, userID, updated.ID, "mirrored transaction is missing")
	}
	if err != nil {
		return nil, err
	}
	mirrorPurchase(mirror, updated)
	if err := u.tx.Transactions().Update(ctx, mirror); err != nil {
		return nil, fmt.Errorf("failed to update purchase transaction: %w", err)
	}

	return updated, nil
}

// deletePurchase reverses a purchase. keepTransaction leaves the mirrored
// transaction in place (its method is switching away from credit card).
func (u *unit) deletePurchase(ctx context.Context, userID int64, id string, keepTransaction bool) error {
	existing, err := u.tx.Purchases().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	inv, err := u.invoiceFor(ctx, userID, existing.ID, existing.CardID, existing.Period)
	if err != nil {
		return err
	}
	if err := u.adjust(ctx, inv, existing.TotalAmount.Neg()); err != nil {
		return err
	}

	if !keepTransaction && existing.TransactionID != "" {
		err := u.tx.Transactions().Delete(ctx, userID, existing.TransactionID)
		if apperror.Is(err, apperror.KindNotFound) {
			return u.fault(ctx, userID, existing.ID, "mirrored transaction is missing")
		}
		if err != nil {
			return fmt.Errorf("failed to delete purchase transaction: %w", err)
		}
	}

	if err := u.tx.Purchases().Delete(ctx, userID, existing.ID); err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return nil
}

// adjust applies delta to the invoice and carries any status change it
// causes (reopened or paid off) onto the purchases it bills.
func (u *unit) adjust(ctx context.Context, inv *invoice.Invoice, delta decimal.Decimal) error {
	survived, err := u.ledger.AdjustAmount(ctx, inv, delta)
	if err != nil || !survived {
		return err
	}
	return u.syncPeriodStatus(ctx, inv)
}

// syncPeriodStatus marks the purchases of an invoice settled while it is
// paid and open otherwise. An invoice that never received a payment has
// only open purchases, so it is skipped.
func (u *unit) syncPeriodStatus(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Status != invoice.StatusPaid && !inv.PaidAmount.IsPositive() {
		return nil
	}
	return u.tx.Purchases().SetStatusByPeriod(ctx, inv.UserID, inv.CardID, inv.Period, purchaseStatusFor(inv))
}

func purchaseStatusFor(inv *invoice.Invoice) purchase.Status {
	if inv.Status == invoice.StatusPaid {
		return purchase.StatusSettled
	}
	return purchase.StatusOpen
}

// mirrorPurchase copies the purchase onto its credit card transaction
func mirrorPurchase(t *transaction.Transaction, p *purchase.Purchase) {
	t.UserID = p.UserID
	t.Description = p.Description
	t.Amount = p.TotalAmount
	t.Category = p.Category
	t.Type = transaction.TypeExpense
	t.Method = payment.MethodCreditCard
	t.Date = p.PurchaseDate
	t.BankAccountID = ""
	t.CardID = p.CardID
	t.PurchaseID = p.ID
}
