package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financeiro/internal/domain/card"
)

type CardRepository struct {
	q querier
}

const cardColumns = `id, user_id, name, brand, last_four_digits, closing_day, due_day, created_at, updated_at`

func scanCard(s scanner) (*card.Card, error) {
	var c card.Card
	var brand, digits sql.NullString
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &brand, &digits, &c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Brand = brand.String
	c.LastFourDigits = digits.String
	return &c, nil
}

func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	query := `
		INSERT INTO cards (id, user_id, name, brand, last_four_digits, closing_day, due_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		c.ID, c.UserID, c.Name, nullString(c.Brand), nullString(c.LastFourDigits), c.ClosingDay, c.DueDay,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *CardRepository) GetByID(ctx context.Context, userID int64, id string) (*card.Card, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, card.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return c, nil
}

func (r *CardRepository) ListByUserID(ctx context.Context, userID int64) ([]*card.Card, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE user_id = $1 ORDER BY LOWER(name)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return collect(rows, scanCard)
}

func (r *CardRepository) Update(ctx context.Context, c *card.Card) error {
	query := `
		UPDATE cards
		SET name = $3, brand = $4, last_four_digits = $5, closing_day = $6, due_day = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		c.ID, c.UserID, c.Name, nullString(c.Brand), nullString(c.LastFourDigits), c.ClosingDay, c.DueDay,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return card.ErrCardNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

// Delete removes the card and, through the cascade, its invoices. Purchases
// hold a plain foreign key so a card still in use cannot go.
func (r *CardRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM cards WHERE id = $1 AND user_id = $2`, id, userID)
	if pqCode(err) == codeForeignKeyViolation {
		return card.ErrCardHasPurchases
	}
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return affected(result, card.ErrCardNotFound)
}

func (r *CardRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT user_id FROM cards ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card owners: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
