package recurrence

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/clock"
)

// Service contains the business logic for recurrence templates
type Service struct {
	repo Repository
}

// NewService creates a new recurrence service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRecurrence validates and stores a new active recurrence
func (s *Service) CreateRecurrence(ctx context.Context, params CreateParams) (*Recurrence, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Frequency == FrequencyWeekly {
		params.DayOfMonth = 0
	}

	r := &Recurrence{
		ID:            uuid.New().String(),
		UserID:        params.UserID,
		Description:   strings.TrimSpace(params.Description),
		Amount:        params.Amount,
		Type:          params.Type,
		Method:        params.Method,
		Category:      transaction.NormalizeCategory(params.Category),
		Frequency:     params.Frequency,
		DayOfMonth:    params.DayOfMonth,
		StartDate:     clock.DateOf(params.StartDate),
		EndDate:       params.EndDate,
		Active:        true,
		BankAccountID: params.BankAccountID,
		CardID:        params.CardID,
	}
	if r.EndDate != nil {
		end := clock.DateOf(*r.EndDate)
		r.EndDate = &end
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecurrence retrieves a recurrence owned by the user
func (s *Service) GetRecurrence(ctx context.Context, userID int64, id string) (*Recurrence, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// ListRecurrences lists all recurrences of a user
func (s *Service) ListRecurrences(ctx context.Context, userID int64) ([]*Recurrence, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUserID(ctx, userID)
}

// SetActive pauses or resumes a recurrence
func (s *Service) SetActive(ctx context.Context, userID int64, id string, active bool) (*Recurrence, error) {
	r, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, userID, id, active); err != nil {
		return nil, err
	}
	r.Active = active
	return r, nil
}

// DeleteRecurrence removes the template. Already posted transactions stay.
func (s *Service) DeleteRecurrence(ctx context.Context, userID int64, id string) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}
