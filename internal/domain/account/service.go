package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account with business validation
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	// Apply defaults if not provided
	if params.Currency == "" {
		params.Currency = "BRL"
	}
	if params.Kind == "" {
		params.Kind = KindChecking
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	acc := &Account{
		ID:       uuid.New().String(),
		UserID:   params.UserID,
		Name:     strings.TrimSpace(params.Name),
		Kind:     params.Kind,
		Currency: params.Currency,
		Balance:  params.InitialBalance,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccount retrieves an account owned by the user
func (s *Service) GetAccount(ctx context.Context, userID int64, accountID string) (*Account, error) {
	return s.repo.GetByID(ctx, userID, accountID)
}

// ListAccounts retrieves all accounts for a specific user
func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]*Account, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUserID(ctx, userID)
}

// DeleteAccount deletes an account after verifying ownership
func (s *Service) DeleteAccount(ctx context.Context, userID int64, accountID string) error {
	if _, err := s.repo.GetByID(ctx, userID, accountID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, accountID)
}

// ListMovements returns the movement log of an account
func (s *Service) ListMovements(ctx context.Context, userID int64, accountID string) ([]*Movement, error) {
	if _, err := s.repo.GetByID(ctx, userID, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, userID, accountID)
}

// TotalBalance sums the balances of all of a user's accounts
func (s *Service) TotalBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(acc.Balance)
	}
	return total, nil
}
