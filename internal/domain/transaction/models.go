package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/money"
	"financeiro/internal/domain/payment"
	"financeiro/internal/shared/apperror"
)

// Type tells whether money came in or went out
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// ParseType accepts the canonical values and the Portuguese labels
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "receita":
		return TypeIncome, nil
	case "expense", "despesa":
		return TypeExpense, nil
	default:
		return "", ErrInvalidType
	}
}

// Domain errors
var (
	ErrTransactionNotFound = apperror.NotFound("transaction not found")
	ErrInvalidType         = apperror.Validation("transaction type must be income or expense")
	ErrInvalidAmount       = apperror.Validation("transaction amount must be positive")
	ErrDescriptionRequired = apperror.Validation("description is required")
	ErrDateRequired        = apperror.Validation("transaction date is required")
	ErrBankAccountRequired = apperror.Validation("bank account is required for this payment method")
	ErrCardRequired        = apperror.Validation("card is required for credit card transactions")
	ErrCreditCardIncome    = apperror.Validation("credit card transactions must be expenses")
	ErrInvalidUserID       = apperror.Validation("valid user ID is required")
)

// Transaction is the generic income/expense record. Credit card expenses
// carry PurchaseID, the stored link to the purchase that feeds the invoice.
type Transaction struct {
	ID             string          `json:"id"`
	UserID         int64           `json:"-"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Category       string          `json:"category"`
	Type           Type            `json:"type"`
	Method         payment.Method  `json:"method"`
	Date           time.Time       `json:"date"`
	BankAccountID  string          `json:"bankAccountId,omitempty"`
	CardID         string          `json:"cardId,omitempty"`
	PurchaseID     string          `json:"purchaseId,omitempty"`
	RecurrenceID   string          `json:"recurrenceId,omitempty"`
	OccurrenceDate *time.Time      `json:"occurrenceDate,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// IsCreditCard reports whether the transaction is billed through a card invoice
func (t *Transaction) IsCreditCard() bool {
	return t.Method == payment.MethodCreditCard
}

// CreateParams contains parameters for creating a transaction
type CreateParams struct {
	UserID         int64
	Description    string
	Amount         decimal.Decimal
	Category       string
	Type           Type
	Method         payment.Method
	Date           time.Time
	BankAccountID  string
	CardID         string
	RecurrenceID   string
	OccurrenceDate *time.Time
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	return validateShape(p.Description, p.Amount, p.Type, p.Method, p.Date, p.BankAccountID, p.CardID)
}

// UpdateParams contains parameters for updating a transaction. Nil fields are left unchanged.
type UpdateParams struct {
	Description   *string
	Amount        *decimal.Decimal
	Category      *string
	Type          *Type
	Method        *payment.Method
	Date          *time.Time
	BankAccountID *string
	CardID        *string
}

// Apply returns a copy of t with the update applied and validated
func (p UpdateParams) Apply(t *Transaction) (*Transaction, error) {
	next := *t
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.Category != nil {
		next.Category = NormalizeCategory(*p.Category)
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Method != nil {
		next.Method = *p.Method
	}
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.BankAccountID != nil {
		next.BankAccountID = *p.BankAccountID
	}
	if p.CardID != nil {
		next.CardID = *p.CardID
	}

	// A method switch drops references the new method does not use
	if !next.Method.UsesBankAccount() {
		next.BankAccountID = ""
	}
	if next.Method != payment.MethodCreditCard {
		next.CardID = ""
	}

	if err := validateShape(next.Description, next.Amount, next.Type, next.Method, next.Date, next.BankAccountID, next.CardID); err != nil {
		return nil, err
	}
	return &next, nil
}

func validateShape(description string, amount decimal.Decimal, typ Type, method payment.Method, date time.Time, bankAccountID, cardID string) error {
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !money.IsCents(amount) {
		return money.ErrSubCent
	}
	if typ != TypeIncome && typ != TypeExpense {
		return ErrInvalidType
	}
	if !method.IsValid() {
		return payment.ErrInvalidMethod
	}
	if date.IsZero() {
		return ErrDateRequired
	}
	if method.UsesBankAccount() && bankAccountID == "" {
		return ErrBankAccountRequired
	}
	if method == payment.MethodCreditCard {
		if typ != TypeExpense {
			return ErrCreditCardIncome
		}
		if cardID == "" {
			return ErrCardRequired
		}
	}
	return nil
}

// Filter narrows transaction listings. Zero values mean no restriction.
type Filter struct {
	UserID int64
	From   time.Time
	To     time.Time
	Type   Type
	Limit  int
	Offset int
}

// Totals aggregates amounts by type
type Totals struct {
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	CashIncome  decimal.Decimal `json:"cashIncome"`
	CashExpense decimal.Decimal `json:"cashExpense"`
	Count       int             `json:"count"`
}
