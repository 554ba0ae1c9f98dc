package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/clock"
)

type TransactionRepository struct {
	q querier
}

const transactionColumns = `id, user_id, description, amount, category, type, method, transaction_date,
	bank_account_id, card_id, purchase_id, recurrence_id, occurrence_date, created_at, updated_at`

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	var accountID, cardID, purchaseID, recurrenceID sql.NullString
	var occurrence sql.NullTime
	err := s.Scan(
		&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Category, &t.Type, &t.Method, &t.Date,
		&accountID, &cardID, &purchaseID, &recurrenceID, &occurrence, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Date = clock.DateOf(t.Date)
	t.BankAccountID = accountID.String
	t.CardID = cardID.String
	t.PurchaseID = purchaseID.String
	t.RecurrenceID = recurrenceID.String
	t.OccurrenceDate = datePtr(occurrence)
	return &t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, description, amount, category, type, method, transaction_date,
			bank_account_id, card_id, purchase_id, recurrence_id, occurrence_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Description, t.Amount, t.Category, t.Type, t.Method, clock.DateOf(t.Date),
		nullString(t.BankAccountID), nullString(t.CardID), nullString(t.PurchaseID),
		nullString(t.RecurrenceID), dateArg(t.OccurrenceDate),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID int64, id string) (*transaction.Transaction, error) {
	return r.one(ctx, `WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *TransactionRepository) GetByPurchaseID(ctx context.Context, userID int64, purchaseID string) (*transaction.Transaction, error) {
	return r.one(ctx, `WHERE purchase_id = $1 AND user_id = $2`, purchaseID, userID)
}

func (r *TransactionRepository) one(ctx context.Context, where string, args ...any) (*transaction.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions `+where, args...)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET description = $3, amount = $4, category = $5, type = $6, method = $7, transaction_date = $8,
			bank_account_id = $9, card_id = $10, purchase_id = $11, recurrence_id = $12, occurrence_date = $13,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.Description, t.Amount, t.Category, t.Type, t.Method, clock.DateOf(t.Date),
		nullString(t.BankAccountID), nullString(t.CardID), nullString(t.PurchaseID),
		nullString(t.RecurrenceID), dateArg(t.OccurrenceDate),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return transaction.ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return affected(result, transaction.ErrTransactionNotFound)
}

// List returns transactions newest first
func (r *TransactionRepository) List(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error) {
	where, args := filterClause(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions ` + where +
		` ORDER BY transaction_date DESC, created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return collect(rows, scanTransaction)
}

func (r *TransactionRepository) ExistsForOccurrence(ctx context.Context, userID int64, recurrenceID string, date time.Time) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND recurrence_id = $2 AND occurrence_date = $3
		)
	`, userID, recurrenceID, clock.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recurrence occurrence: %w", err)
	}
	return exists, nil
}

// Totals sums within the filter; Limit and Offset are ignored
func (r *TransactionRepository) Totals(ctx context.Context, filter transaction.Filter) (transaction.Totals, error) {
	where, args := filterClause(filter)
	args = append(args, payment.MethodCash)
	cash := fmt.Sprintf("$%d", len(args))

	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'income' AND method = ` + cash + `), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense' AND method = ` + cash + `), 0),
			COUNT(*)
		FROM transactions ` + where

	totals := transaction.Totals{}
	var income, expense, cashIncome, cashExpense decimal.Decimal
	err := r.q.QueryRowContext(ctx, query, args...).Scan(&income, &expense, &cashIncome, &cashExpense, &totals.Count)
	if err != nil {
		return totals, fmt.Errorf("failed to sum transactions: %w", err)
	}
	totals.Income, totals.Expense = income, expense
	totals.CashIncome, totals.CashExpense = cashIncome, cashExpense
	return totals, nil
}

// filterClause builds the WHERE clause shared by List and Totals
func filterClause(f transaction.Filter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}

	if !f.From.IsZero() {
		args = append(args, clock.DateOf(f.From))
		conds = append(conds, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, clock.DateOf(f.To))
		conds = append(conds, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
