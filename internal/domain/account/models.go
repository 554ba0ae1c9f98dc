package account

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/shared/apperror"
)

var (
	// Allowed account kinds
	accountKinds = map[string]struct{}{
		KindChecking: {},
		KindSavings:  {},
		KindWallet:   {},
	}
	// Common ISO 4217 currency codes
	validCurrencies = map[string]struct{}{
		"BRL": {}, "USD": {}, "EUR": {}, "GBP": {}, "JPY": {},
		"CHF": {}, "CAD": {}, "AUD": {}, "ARS": {}, "CLP": {},
		"COP": {}, "MXN": {}, "UYU": {}, "PYG": {}, "PEN": {},
	}
)

const (
	KindChecking = "checking"
	KindSavings  = "savings"
	KindWallet   = "wallet"
)

// Domain errors
var (
	ErrAccountNotFound   = apperror.NotFound("bank account not found")
	ErrInvalidKind       = apperror.Validation("invalid account kind")
	ErrInvalidCurrency   = apperror.Validation("valid ISO 4217 currency is required")
	ErrNameRequired      = apperror.Validation("account name is required")
	ErrInvalidAmount     = apperror.Validation("movement amount must be positive")
	ErrInsufficientFunds = apperror.BusinessRule("insufficient funds in bank account")
	ErrInvalidUserID     = apperror.Validation("valid user ID is required")
)

// Account is a user's bank account (banco). Its balance only changes
// through the Mutator so every change leaves a Movement behind.
type Account struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"-"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Direction of a balance movement
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ReferenceKind names what caused a movement
type ReferenceKind string

const (
	ReferenceTransaction    ReferenceKind = "transaction"
	ReferenceInvoicePayment ReferenceKind = "invoice_payment"
	ReferenceOpeningBalance ReferenceKind = "opening_balance"
)

// Movement (movimentação) is an append-only balance change record
type Movement struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"accountId"`
	UserID        int64           `json:"-"`
	Direction     Direction       `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	ReferenceKind ReferenceKind   `json:"referenceKind"`
	ReferenceID   string          `json:"referenceId,omitempty"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	UserID         int64
	Name           string
	Kind           string
	Currency       string
	InitialBalance decimal.Decimal
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !IsValidKind(p.Kind) {
		return ErrInvalidKind
	}
	if !IsValidCurrency(p.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// IsValidKind checks if the provided account kind is valid.
func IsValidKind(k string) bool {
	_, ok := accountKinds[k]
	return ok
}

// IsValidCurrency checks if the provided currency is a valid ISO 4217 code.
func IsValidCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	_, ok := validCurrencies[c]
	return ok
}
