package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/account"
	"financeiro/internal/shared/clock"
)

// AccountRepository locks the account row on GetByID inside a unit of
// work so balance read-modify-write cycles serialize.
type AccountRepository struct {
	q    querier
	lock string
}

const accountColumns = `id, user_id, name, kind, currency, balance, created_at, updated_at`

func scanAccount(s scanner) (*account.Account, error) {
	var acc account.Account
	if err := s.Scan(&acc.ID, &acc.UserID, &acc.Name, &acc.Kind, &acc.Currency, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO bank_accounts (id, user_id, name, kind, currency, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		acc.ID, acc.UserID, acc.Name, acc.Kind, acc.Currency, acc.Balance,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, userID int64, id string) (*account.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1 AND user_id = $2`+r.lock,
		id, userID,
	)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE user_id = $1 ORDER BY LOWER(name)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collect(rows, scanAccount)
}

// Delete removes the account; movements cascade and transactions keep
// their history with the reference cleared.
func (r *AccountRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return affected(result, account.ErrAccountNotFound)
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, userID int64, id string, balance decimal.Decimal) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE bank_accounts SET balance = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, balance,
	)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	return affected(result, account.ErrAccountNotFound)
}

func (r *AccountRepository) AddMovement(ctx context.Context, m *account.Movement) error {
	query := `
		INSERT INTO account_movements (id, account_id, user_id, direction, amount, description, movement_date,
			reference_kind, reference_id, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := r.q.QueryRowContext(ctx, query,
		m.ID, m.AccountID, m.UserID, m.Direction, m.Amount, m.Description, clock.DateOf(m.Date),
		m.ReferenceKind, nullString(m.ReferenceID), m.BalanceAfter,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record account movement: %w", err)
	}
	return nil
}

// ListMovements returns an account's movements, newest first
func (r *AccountRepository) ListMovements(ctx context.Context, userID int64, accountID string) ([]*account.Movement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, account_id, user_id, direction, amount, description, movement_date,
			reference_kind, reference_id, balance_after, created_at
		FROM account_movements
		WHERE user_id = $1 AND account_id = $2
		ORDER BY movement_date DESC, created_at DESC
	`, userID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account movements: %w", err)
	}
	return collect(rows, func(s scanner) (*account.Movement, error) {
		var m account.Movement
		var referenceID sql.NullString
		err := s.Scan(&m.ID, &m.AccountID, &m.UserID, &m.Direction, &m.Amount, &m.Description, &m.Date,
			&m.ReferenceKind, &referenceID, &m.BalanceAfter, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account movement: %w", err)
		}
		m.ReferenceID = referenceID.String
		m.Date = clock.DateOf(m.Date)
		return &m, nil
	})
}
