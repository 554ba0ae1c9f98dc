package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
)

// Repository stores budgets. Create returns ErrBudgetExists when the user
// already has a budget for the category and period.
type Repository interface {
	Create(ctx context.Context, b *Budget) error
	GetByID(ctx context.Context, userID int64, id string) (*Budget, error)
	ListByPeriod(ctx context.Context, userID int64, period cycle.Period) ([]*Budget, error)
	CountByCategory(ctx context.Context, userID int64, category string) (int, error)
	UpdateLimit(ctx context.Context, userID int64, id string, limit decimal.Decimal) error
	Delete(ctx context.Context, userID int64, id string) error
}

// CategoryRepository stores user categories. Create returns
// ErrCategoryExists when the name is taken, ignoring case.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, userID int64, id string) (*Category, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Category, error)
	Delete(ctx context.Context, userID int64, id string) error
}
