package purchase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/money"
	"financeiro/internal/shared/apperror"
)

// Status of a purchase relative to its invoice
type Status string

const (
	StatusOpen    Status = "open"
	StatusSettled Status = "settled"
)

// MaxInstallments bounds the installment count accepted on input
const MaxInstallments = 48

// Domain errors
var (
	ErrPurchaseNotFound     = apperror.NotFound("purchase not found")
	ErrInvalidAmount        = apperror.Validation("purchase amount must be positive")
	ErrInvalidInstallments  = apperror.Validation("installment count must be between 1 and 48")
	ErrDescriptionRequired  = apperror.Validation("purchase description is required")
	ErrCardRequired         = apperror.Validation("card is required")
	ErrPurchaseDateRequired = apperror.Validation("purchase date is required")
	ErrInvalidUserID        = apperror.Validation("valid user ID is required")
)

// Purchase (compra no cartão) is a credit-card purchase billed in full to
// the invoice its date resolves to.
type Purchase struct {
	ID               string          `json:"id"`
	UserID           int64           `json:"-"`
	CardID           string          `json:"cardId"`
	Description      string          `json:"description"`
	Category         string          `json:"category,omitempty"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	InstallmentCount int             `json:"installmentCount"`
	PurchaseDate     time.Time       `json:"purchaseDate"`
	Period           cycle.Period    `json:"period"`
	Status           Status          `json:"status"`
	TransactionID    string          `json:"transactionId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// InstallmentAmounts splits the total into InstallmentCount cent-rounded
// parts; the last one absorbs the rounding remainder.
func (p *Purchase) InstallmentAmounts() []decimal.Decimal {
	n := p.InstallmentCount
	if n < 1 {
		n = 1
	}
	share := p.TotalAmount.DivRound(decimal.NewFromInt(int64(n)), 2)
	parts := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		parts[i] = share
	}
	parts[n-1] = p.TotalAmount.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return parts
}

// InstallmentAmount is the regular per-installment value
func (p *Purchase) InstallmentAmount() decimal.Decimal {
	return p.InstallmentAmounts()[0]
}

// CreateParams contains parameters for recording a purchase
type CreateParams struct {
	UserID           int64
	CardID           string
	Description      string
	Category         string
	TotalAmount      decimal.Decimal
	InstallmentCount int
	PurchaseDate     time.Time
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	if p.CardID == "" {
		return ErrCardRequired
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrDescriptionRequired
	}
	if !p.TotalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if !money.IsCents(p.TotalAmount) {
		return money.ErrSubCent
	}
	if p.InstallmentCount < 1 || p.InstallmentCount > MaxInstallments {
		return ErrInvalidInstallments
	}
	if p.PurchaseDate.IsZero() {
		return ErrPurchaseDateRequired
	}
	return nil
}

// UpdateParams contains the editable fields of a purchase
type UpdateParams struct {
	CardID       *string
	Description  *string
	Category     *string
	TotalAmount  *decimal.Decimal
	PurchaseDate *time.Time
}

// Apply returns a validated copy of p with the update applied. The period
// is left for the caller to re-resolve.
func (u UpdateParams) Apply(p *Purchase) (*Purchase, error) {
	updated := *p
	if u.CardID != nil {
		if *u.CardID == "" {
			return nil, ErrCardRequired
		}
		updated.CardID = *u.CardID
	}
	if u.Description != nil {
		if strings.TrimSpace(*u.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		updated.Description = strings.TrimSpace(*u.Description)
	}
	if u.Category != nil {
		updated.Category = *u.Category
	}
	if u.TotalAmount != nil {
		if !u.TotalAmount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		if !money.IsCents(*u.TotalAmount) {
			return nil, money.ErrSubCent
		}
		updated.TotalAmount = *u.TotalAmount
	}
	if u.PurchaseDate != nil {
		if u.PurchaseDate.IsZero() {
			return nil, ErrPurchaseDateRequired
		}
		updated.PurchaseDate = *u.PurchaseDate
	}
	return &updated, nil
}
