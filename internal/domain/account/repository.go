package account

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for bank account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, acc *Account) error

	// GetByID retrieves a user's account; inside a transaction the row stays locked until commit
	GetByID(ctx context.Context, userID int64, id string) (*Account, error)

	// ListByUserID retrieves all accounts for a specific user
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// Delete removes an account and its movements
	Delete(ctx context.Context, userID int64, id string) error

	// UpdateBalance stores a new balance
	UpdateBalance(ctx context.Context, userID int64, id string, balance decimal.Decimal) error

	// AddMovement appends to the movement log
	AddMovement(ctx context.Context, m *Movement) error

	// ListMovements returns an account's movements, newest first
	ListMovements(ctx context.Context, userID int64, accountID string) ([]*Movement, error)
}
