package budget

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/money"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/apperror"
)

// Domain errors
var (
	ErrBudgetNotFound       = apperror.NotFound("budget not found")
	ErrBudgetExists         = apperror.Conflict("a budget for this category and month already exists")
	ErrInvalidLimit         = apperror.Validation("budget limit must be a positive value")
	ErrCategoryRequired     = apperror.Validation("category is required")
	ErrUnknownCategory      = apperror.Validation("category is not one of the built-in or user categories")
	ErrIncomeCategory       = apperror.Validation("budgets apply to expense categories only")
	ErrCategoryNotFound     = apperror.NotFound("category not found")
	ErrCategoryExists       = apperror.Conflict("a category with this name already exists")
	ErrCategoryInUse        = apperror.Conflict("category has budgets; delete them first")
	ErrCategoryNameRequired = apperror.Validation("category name is required")
	ErrCategoryNameTooLong  = apperror.Validation("category name must be at most 50 characters")
	ErrInvalidKind          = apperror.Validation("category kind must be income or expense")
	ErrInvalidUserID        = apperror.Validation("valid user ID is required")
)

const maxCategoryName = 50

// Category is a user-defined category offered next to the built-in ones
type Category struct {
	ID        string           `json:"id"`
	UserID    int64            `json:"-"`
	Name      string           `json:"name"`
	Kind      transaction.Type `json:"kind"`
	CreatedAt time.Time        `json:"createdAt"`
}

// CategoryView is one entry of the category list shown to a user
type CategoryView struct {
	ID      string           `json:"id,omitempty"`
	Name    string           `json:"name"`
	Kind    transaction.Type `json:"kind"`
	BuiltIn bool             `json:"builtIn"`
}

// Budget (orçamento) caps the spending of one expense category in one
// calendar month.
type Budget struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"-"`
	Category  string          `json:"category"`
	Period    cycle.Period    `json:"period"`
	Limit     decimal.Decimal `json:"limit"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Status is a budget together with what was spent against it
type Status struct {
	*Budget
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	// Percent of the limit spent, two decimal places; may exceed 100
	Percent  decimal.Decimal `json:"percent"`
	Exceeded bool            `json:"exceeded"`
}

var hundred = decimal.NewFromInt(100)

// NewStatus derives the spent figures of b
func NewStatus(b *Budget, spent decimal.Decimal) *Status {
	st := &Status{
		Budget:    b,
		Spent:     spent,
		Remaining: b.Limit.Sub(spent),
		Percent:   decimal.Zero,
	}
	if b.Limit.IsPositive() {
		st.Percent = spent.Mul(hundred).Div(b.Limit).Round(2)
	}
	st.Exceeded = spent.GreaterThan(b.Limit)
	return st
}

// CreateCategoryParams contains parameters for creating a category
type CreateCategoryParams struct {
	UserID int64
	Name   string
	Kind   transaction.Type
}

func (p CreateCategoryParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrCategoryNameRequired
	}
	if len([]rune(name)) > maxCategoryName {
		return ErrCategoryNameTooLong
	}
	if p.Kind != transaction.TypeIncome && p.Kind != transaction.TypeExpense {
		return ErrInvalidKind
	}
	return nil
}

// CreateParams contains parameters for creating a budget
type CreateParams struct {
	UserID   int64
	Category string
	Period   cycle.Period
	Limit    decimal.Decimal
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrCategoryRequired
	}
	if p.Period.Year == 0 || p.Period.Month < time.January || p.Period.Month > time.December {
		return cycle.ErrInvalidPeriod
	}
	return validateLimit(p.Limit)
}

func validateLimit(limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return ErrInvalidLimit
	}
	if !money.IsCents(limit) {
		return money.ErrSubCent
	}
	return nil
}

// sameCategory compares category names the way users type them
func sameCategory(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
