package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/shared/clock"
)

type PurchaseRepository struct {
	q querier
}

const purchaseColumns = `id, user_id, card_id, description, category, total_amount, installment_count,
	purchase_date, period_year, period_month, status, transaction_id, created_at, updated_at`

func scanPurchase(s scanner) (*purchase.Purchase, error) {
	var p purchase.Purchase
	var category, transactionID sql.NullString
	var year, month int
	err := s.Scan(
		&p.ID, &p.UserID, &p.CardID, &p.Description, &category, &p.TotalAmount, &p.InstallmentCount,
		&p.PurchaseDate, &year, &month, &p.Status, &transactionID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = category.String
	p.TransactionID = transactionID.String
	p.PurchaseDate = clock.DateOf(p.PurchaseDate)
	p.Period = cycle.NewPeriod(year, time.Month(month))
	return &p, nil
}

func (r *PurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	query := `
		INSERT INTO purchases (id, user_id, card_id, description, category, total_amount, installment_count,
			purchase_date, period_year, period_month, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.CardID, p.Description, nullString(p.Category), p.TotalAmount, p.InstallmentCount,
		clock.DateOf(p.PurchaseDate), p.Period.Year, int(p.Period.Month), p.Status, nullString(p.TransactionID),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, userID int64, id string) (*purchase.Purchase, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	p, err := scanPurchase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, purchase.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepository) Update(ctx context.Context, p *purchase.Purchase) error {
	query := `
		UPDATE purchases
		SET card_id = $3, description = $4, category = $5, total_amount = $6, installment_count = $7,
			purchase_date = $8, period_year = $9, period_month = $10, status = $11, transaction_id = $12,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.CardID, p.Description, nullString(p.Category), p.TotalAmount, p.InstallmentCount,
		clock.DateOf(p.PurchaseDate), p.Period.Year, int(p.Period.Month), p.Status, nullString(p.TransactionID),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return purchase.ErrPurchaseNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM purchases WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return affected(result, purchase.ErrPurchaseNotFound)
}

func (r *PurchaseRepository) ListByUserID(ctx context.Context, userID int64) ([]*purchase.Purchase, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *PurchaseRepository) ListByCard(ctx context.Context, userID int64, cardID string) ([]*purchase.Purchase, error) {
	return r.list(ctx, `WHERE user_id = $1 AND card_id = $2`, userID, cardID)
}

func (r *PurchaseRepository) ListByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period) ([]*purchase.Purchase, error) {
	return r.list(ctx,
		`WHERE user_id = $1 AND card_id = $2 AND period_year = $3 AND period_month = $4`,
		userID, cardID, period.Year, int(period.Month),
	)
}

func (r *PurchaseRepository) SetStatusByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period, status purchase.Status) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE purchases SET status = $5, updated_at = NOW()
		WHERE user_id = $1 AND card_id = $2 AND period_year = $3 AND period_month = $4
	`, userID, cardID, period.Year, int(period.Month), status)
	if err != nil {
		return fmt.Errorf("failed to update purchase status: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) CountByCard(ctx context.Context, userID int64, cardID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchases WHERE user_id = $1 AND card_id = $2`,
		userID, cardID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count purchases: %w", err)
	}
	return n, nil
}

// list returns matching purchases, newest purchase date first
func (r *PurchaseRepository) list(ctx context.Context, where string, args ...any) ([]*purchase.Purchase, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases `+where+` ORDER BY purchase_date DESC, created_at DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return collect(rows, scanPurchase)
}
