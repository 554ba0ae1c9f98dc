package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/shared/apperror"
)

// Status is the payment state of an invoice
type Status string

const (
	StatusOpen    Status = "open"
	StatusOverdue Status = "overdue"
	StatusPaid    Status = "paid"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusOverdue, StatusPaid:
		return true
	default:
		return false
	}
}

// Domain errors
var (
	ErrInvoiceNotFound = apperror.NotFound("invoice not found")
	ErrInvoiceExists   = apperror.Conflict("invoice already exists for this card and period")
	ErrInvalidPayment  = apperror.Validation("payment amount must be positive")
	ErrOverPayment     = apperror.BusinessRule("payment exceeds the remaining invoice amount")
	ErrInvalidAmount   = apperror.Validation("invoice amount must be positive")
)

// Invoice (fatura) aggregates a card's purchases for one billing period.
// RemainingAmount always equals TotalAmount - PaidAmount.
type Invoice struct {
	ID              string          `json:"id"`
	UserID          int64           `json:"-"`
	CardID          string          `json:"cardId"`
	Period          cycle.Period    `json:"period"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	ClosingDate     time.Time       `json:"closingDate"`
	DueDate         time.Time       `json:"dueDate"`
	Status          Status          `json:"status"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// recompute restores the remaining-amount invariant and derives the status
// from the amounts and today's date:
//   - fully covered (remaining <= 0 with something paid) becomes paid;
//   - a paid invoice that grew again reopens;
//   - an open invoice past its due date becomes overdue.
func (inv *Invoice) recompute(today time.Time) {
	inv.RemainingAmount = inv.TotalAmount.Sub(inv.PaidAmount)

	switch {
	case inv.Status != StatusPaid && inv.PaidAmount.IsPositive() && !inv.RemainingAmount.IsPositive():
		inv.Status = StatusPaid
		paidOn := today
		inv.PaymentDate = &paidOn
	case inv.Status == StatusPaid && inv.RemainingAmount.IsPositive():
		inv.Status = StatusOpen
		inv.PaymentDate = nil
	}

	if inv.Status == StatusOpen && inv.DueDate.Before(today) {
		inv.Status = StatusOverdue
	}
}

// IsOverdueOn reports whether the invoice would be overdue on the given day
func (inv *Invoice) IsOverdueOn(today time.Time) bool {
	return inv.Status != StatusPaid && inv.DueDate.Before(today)
}
