package account

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	CreateFunc        func(ctx context.Context, acc *Account) error
	GetByIDFunc       func(ctx context.Context, userID int64, id string) (*Account, error)
	ListByUserIDFunc  func(ctx context.Context, userID int64) ([]*Account, error)
	DeleteFunc        func(ctx context.Context, userID int64, id string) error
	UpdateBalanceFunc func(ctx context.Context, userID int64, id string, balance decimal.Decimal) error
	AddMovementFunc   func(ctx context.Context, m *Movement) error
	ListMovementsFunc func(ctx context.Context, userID int64, accountID string) ([]*Movement, error)
}

func (m *MockRepository) Create(ctx context.Context, acc *Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, acc)
	}
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, userID int64, id string) (*Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	return nil, ErrAccountNotFound
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID int64) ([]*Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Delete(ctx context.Context, userID int64, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockRepository) UpdateBalance(ctx context.Context, userID int64, id string, balance decimal.Decimal) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, userID, id, balance)
	}
	return nil
}

func (m *MockRepository) AddMovement(ctx context.Context, mv *Movement) error {
	if m.AddMovementFunc != nil {
		return m.AddMovementFunc(ctx, mv)
	}
	return nil
}

func (m *MockRepository) ListMovements(ctx context.Context, userID int64, accountID string) ([]*Movement, error) {
	if m.ListMovementsFunc != nil {
		return m.ListMovementsFunc(ctx, userID, accountID)
	}
	return nil, nil
}

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateParams
		mock    func() *MockRepository
		wantErr bool
		errType error
	}{
		{
			name: "valid account with defaults",
			params: CreateParams{
				UserID: 1,
				Name:   "Nubank",
			},
			mock: func() *MockRepository {
				return &MockRepository{
					CreateFunc: func(ctx context.Context, acc *Account) error {
						if acc.Currency != "BRL" || acc.Kind != KindChecking {
							t.Errorf("defaults not applied: %+v", acc)
						}
						return nil
					},
				}
			},
			wantErr: false,
		},
		{
			name: "invalid user ID",
			params: CreateParams{
				UserID: 0,
				Name:   "Nubank",
			},
			mock:    func() *MockRepository { return &MockRepository{} },
			wantErr: true,
			errType: ErrInvalidUserID,
		},
		{
			name: "blank name",
			params: CreateParams{
				UserID: 1,
				Name:   "   ",
			},
			mock:    func() *MockRepository { return &MockRepository{} },
			wantErr: true,
			errType: ErrNameRequired,
		},
		{
			name: "invalid currency",
			params: CreateParams{
				UserID:   1,
				Name:     "Nubank",
				Currency: "XXX",
			},
			mock:    func() *MockRepository { return &MockRepository{} },
			wantErr: true,
			errType: ErrInvalidCurrency,
		},
		{
			name: "invalid kind",
			params: CreateParams{
				UserID: 1,
				Name:   "Nubank",
				Kind:   "brokerage",
			},
			mock:    func() *MockRepository { return &MockRepository{} },
			wantErr: true,
			errType: ErrInvalidKind,
		},
		{
			name: "repository error",
			params: CreateParams{
				UserID: 1,
				Name:   "Nubank",
			},
			mock: func() *MockRepository {
				return &MockRepository{
					CreateFunc: func(ctx context.Context, acc *Account) error {
						return errors.New("database error")
					},
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(tt.mock())
			acc, err := service.CreateAccount(context.Background(), tt.params)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
					return
				}
				if tt.errType != nil && !errors.Is(err, tt.errType) {
					t.Errorf("expected error %v, got %v", tt.errType, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if acc == nil || acc.ID == "" {
				t.Errorf("expected account with generated ID, got %+v", acc)
			}
		})
	}
}

func TestDeleteAccount_NotOwned(t *testing.T) {
	deleted := false
	repo := &MockRepository{
		DeleteFunc: func(ctx context.Context, userID int64, id string) error {
			deleted = true
			return nil
		},
	}

	err := NewService(repo).DeleteAccount(context.Background(), 2, "acc-1")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if deleted {
		t.Error("delete should not be called for a foreign account")
	}
}

func TestTotalBalance(t *testing.T) {
	repo := &MockRepository{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*Account, error) {
			return []*Account{
				{ID: "a", Balance: decimal.RequireFromString("100.50")},
				{ID: "b", Balance: decimal.RequireFromString("-20.25")},
			}, nil
		},
	}

	total, err := NewService(repo).TotalBalance(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("80.25")) {
		t.Errorf("TotalBalance = %s, want 80.25", total)
	}
}
