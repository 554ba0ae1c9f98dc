package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry describes one balance change
type Entry struct {
	UserID        int64
	AccountID     string
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	ReferenceKind ReferenceKind
	ReferenceID   string
	// AllowOverdraft lets a debit take the balance below zero. Plain
	// expense postings allow it; invoice payments do not.
	AllowOverdraft bool
}

// Mutator is the only writer of account balances. Every change is paired
// with a Movement in the same unit of work.
type Mutator struct {
	repo Repository
}

// NewMutator creates a mutator over a repository bound to the current unit of work
func NewMutator(repo Repository) *Mutator {
	return &Mutator{repo: repo}
}

// Debit takes money out of the account
func (m *Mutator) Debit(ctx context.Context, e Entry) (*Account, error) {
	return m.apply(ctx, DirectionOut, e)
}

// Credit puts money into the account
func (m *Mutator) Credit(ctx context.Context, e Entry) (*Account, error) {
	return m.apply(ctx, DirectionIn, e)
}

func (m *Mutator) apply(ctx context.Context, dir Direction, e Entry) (*Account, error) {
	if !e.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	acc, err := m.repo.GetByID(ctx, e.UserID, e.AccountID)
	if err != nil {
		return nil, err
	}

	balance := acc.Balance
	if dir == DirectionOut {
		if !e.AllowOverdraft && balance.LessThan(e.Amount) {
			return nil, ErrInsufficientFunds
		}
		balance = balance.Sub(e.Amount)
	} else {
		balance = balance.Add(e.Amount)
	}

	if err := m.repo.UpdateBalance(ctx, e.UserID, acc.ID, balance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	err = m.repo.AddMovement(ctx, &Movement{
		ID:            uuid.New().String(),
		AccountID:     acc.ID,
		UserID:        e.UserID,
		Direction:     dir,
		Amount:        e.Amount,
		Description:   e.Description,
		Date:          e.Date,
		ReferenceKind: e.ReferenceKind,
		ReferenceID:   e.ReferenceID,
		BalanceAfter:  balance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	acc.Balance = balance
	return acc, nil
}
