package card

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service contains the business logic for card operations
type Service struct {
	repo      Repository
	invoices  UsageCounter
	purchases UsageCounter
}

// NewService creates a new card service
func NewService(repo Repository, invoices, purchases UsageCounter) *Service {
	return &Service{repo: repo, invoices: invoices, purchases: purchases}
}

// CreateCard registers a new card for the user
func (s *Service) CreateCard(ctx context.Context, params CreateParams) (*Card, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := &Card{
		ID:             uuid.New().String(),
		UserID:         params.UserID,
		Name:           strings.TrimSpace(params.Name),
		Brand:          params.Brand,
		LastFourDigits: params.LastFourDigits,
		ClosingDay:     params.ClosingDay,
		DueDay:         params.DueDay,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCard retrieves a card owned by the user
func (s *Service) GetCard(ctx context.Context, userID int64, id string) (*Card, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// ListCards lists the user's cards
func (s *Service) ListCards(ctx context.Context, userID int64) ([]*Card, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUserID(ctx, userID)
}

// UpdateCard changes a card. Once any invoice references the card only the
// cosmetic fields may change; the closing and due days are frozen because
// existing invoices were dated with them.
func (s *Service) UpdateCard(ctx context.Context, userID int64, id string, params UpdateParams) (*Card, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.ChangesSchedule(existing) {
		n, err := s.invoices.CountByCard(ctx, userID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count card invoices: %w", err)
		}
		if n > 0 {
			return nil, ErrScheduleLocked
		}
	}

	updated, err := params.Apply(existing)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCard removes a card that has no purchases
func (s *Service) DeleteCard(ctx context.Context, userID int64, id string) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}

	n, err := s.purchases.CountByCard(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to count card purchases: %w", err)
	}
	if n > 0 {
		return ErrCardHasPurchases
	}

	return s.repo.Delete(ctx, userID, id)
}
