package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/cycle"
)

type BudgetRepository struct {
	q querier
}

const budgetColumns = `id, user_id, category, period_year, period_month, amount_limit, created_at, updated_at`

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget
	var month int
	if err := s.Scan(&b.ID, &b.UserID, &b.Category, &b.Period.Year, &month, &b.Limit, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Period.Month = time.Month(month)
	return &b, nil
}

func (r *BudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, category, period_year, period_month, amount_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		b.ID, b.UserID, b.Category, b.Period.Year, int(b.Period.Month), b.Limit,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if pqCode(err) == codeUniqueViolation {
		return budget.ErrBudgetExists
	}
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, userID int64, id string) (*budget.Budget, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrBudgetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) ListByPeriod(ctx context.Context, userID int64, period cycle.Period) ([]*budget.Budget, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND period_year = $2 AND period_month = $3
		ORDER BY LOWER(category)
	`, userID, period.Year, int(period.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return collect(rows, scanBudget)
}

func (r *BudgetRepository) CountByCategory(ctx context.Context, userID int64, category string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budgets WHERE user_id = $1 AND LOWER(category) = LOWER($2)`,
		userID, category,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count budgets: %w", err)
	}
	return n, nil
}

func (r *BudgetRepository) UpdateLimit(ctx context.Context, userID int64, id string, limit decimal.Decimal) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE budgets SET amount_limit = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, limit,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return affected(result, budget.ErrBudgetNotFound)
}

func (r *BudgetRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return affected(result, budget.ErrBudgetNotFound)
}

type CategoryRepository struct {
	q querier
}

func scanCategory(s scanner) (*budget.Category, error) {
	var c budget.Category
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *budget.Category) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO categories (id, user_id, name, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.UserID, c.Name, c.Kind).Scan(&c.CreatedAt)
	if pqCode(err) == codeUniqueViolation {
		return budget.ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID int64, id string) (*budget.Category, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind, created_at FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*budget.Category, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, name, kind, created_at FROM categories WHERE user_id = $1 ORDER BY LOWER(name)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return collect(rows, scanCategory)
}

func (r *CategoryRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return affected(result, budget.ErrCategoryNotFound)
}
