package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"financeiro/internal/domain/recurrence"
	"financeiro/internal/shared/clock"
)

type RecurrenceRepository struct {
	q querier
}

const recurrenceColumns = `id, user_id, description, amount, type, method, category, frequency, day_of_month,
	start_date, end_date, active, bank_account_id, card_id, last_occurrence, created_at, updated_at`

func scanRecurrence(s scanner) (*recurrence.Recurrence, error) {
	var rec recurrence.Recurrence
	var category, accountID, cardID sql.NullString
	var endDate, last sql.NullTime
	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.Description, &rec.Amount, &rec.Type, &rec.Method, &category, &rec.Frequency,
		&rec.DayOfMonth, &rec.StartDate, &endDate, &rec.Active, &accountID, &cardID, &last, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Category = category.String
	rec.BankAccountID = accountID.String
	rec.CardID = cardID.String
	rec.StartDate = clock.DateOf(rec.StartDate)
	rec.EndDate = datePtr(endDate)
	rec.LastOccurrence = datePtr(last)
	return &rec, nil
}

func (r *RecurrenceRepository) Create(ctx context.Context, rec *recurrence.Recurrence) error {
	query := `
		INSERT INTO recurrences (id, user_id, description, amount, type, method, category, frequency, day_of_month,
			start_date, end_date, active, bank_account_id, card_id, last_occurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.Description, rec.Amount, rec.Type, rec.Method, nullString(rec.Category),
		rec.Frequency, rec.DayOfMonth, clock.DateOf(rec.StartDate), dateArg(rec.EndDate), rec.Active,
		nullString(rec.BankAccountID), nullString(rec.CardID), dateArg(rec.LastOccurrence),
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recurrence: %w", err)
	}
	return nil
}

func (r *RecurrenceRepository) GetByID(ctx context.Context, userID int64, id string) (*recurrence.Recurrence, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+recurrenceColumns+` FROM recurrences WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	rec, err := scanRecurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recurrence.ErrRecurrenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurrence: %w", err)
	}
	return rec, nil
}

func (r *RecurrenceRepository) ListByUserID(ctx context.Context, userID int64) ([]*recurrence.Recurrence, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *RecurrenceRepository) ListActive(ctx context.Context) ([]*recurrence.Recurrence, error) {
	return r.list(ctx, `WHERE active`)
}

func (r *RecurrenceRepository) SetActive(ctx context.Context, userID int64, id string, active bool) error {
	return r.exec(ctx, `UPDATE recurrences SET active = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, active)
}

func (r *RecurrenceRepository) MarkMaterialized(ctx context.Context, userID int64, id string, last time.Time) error {
	return r.exec(ctx, `UPDATE recurrences SET last_occurrence = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, clock.DateOf(last))
}

func (r *RecurrenceRepository) Delete(ctx context.Context, userID int64, id string) error {
	return r.exec(ctx, `DELETE FROM recurrences WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *RecurrenceRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write recurrence: %w", err)
	}
	return affected(result, recurrence.ErrRecurrenceNotFound)
}

func (r *RecurrenceRepository) list(ctx context.Context, where string, args ...any) ([]*recurrence.Recurrence, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+recurrenceColumns+` FROM recurrences `+where+` ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrences: %w", err)
	}
	return collect(rows, scanRecurrence)
}
