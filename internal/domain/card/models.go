package card

import (
	"strings"
	"time"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/shared/apperror"
)

// Domain errors
var (
	ErrCardNotFound      = apperror.NotFound("card not found")
	ErrCardHasPurchases  = apperror.Conflict("card has purchases and cannot be deleted")
	ErrScheduleLocked    = apperror.BusinessRule("closing and due days cannot change once the card has invoices")
	ErrNameRequired      = apperror.Validation("card name is required")
	ErrInvalidLastDigits = apperror.Validation("last digits must be exactly 4 numbers")
	ErrInvalidUserID     = apperror.Validation("valid user ID is required")
)

// Card is a user's credit card and its statement calendar.
type Card struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"-"`
	Name           string    `json:"name"`
	Brand          string    `json:"brand,omitempty"`
	LastFourDigits string    `json:"lastFourDigits,omitempty"`
	ClosingDay     int       `json:"closingDay"`
	DueDay         int       `json:"dueDay"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (c *Card) Schedule() cycle.Schedule {
	return cycle.Schedule{ClosingDay: c.ClosingDay, DueDay: c.DueDay}
}

// CreateParams contains parameters for creating a card
type CreateParams struct {
	UserID         int64
	Name           string
	Brand          string
	LastFourDigits string
	ClosingDay     int
	DueDay         int
}

func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.LastFourDigits != "" && !isFourDigits(p.LastFourDigits) {
		return ErrInvalidLastDigits
	}
	return cycle.Schedule{ClosingDay: p.ClosingDay, DueDay: p.DueDay}.Validate()
}

// UpdateParams contains the fields a card update may change
type UpdateParams struct {
	Name           *string
	Brand          *string
	LastFourDigits *string
	ClosingDay     *int
	DueDay         *int
}

// ChangesSchedule reports whether the update touches the billing calendar.
func (p UpdateParams) ChangesSchedule(c *Card) bool {
	return (p.ClosingDay != nil && *p.ClosingDay != c.ClosingDay) ||
		(p.DueDay != nil && *p.DueDay != c.DueDay)
}

// Apply returns a copy of c with the update applied and validated.
func (p UpdateParams) Apply(c *Card) (*Card, error) {
	updated := *c
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, ErrNameRequired
		}
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.Brand != nil {
		updated.Brand = *p.Brand
	}
	if p.LastFourDigits != nil {
		if *p.LastFourDigits != "" && !isFourDigits(*p.LastFourDigits) {
			return nil, ErrInvalidLastDigits
		}
		updated.LastFourDigits = *p.LastFourDigits
	}
	if p.ClosingDay != nil {
		updated.ClosingDay = *p.ClosingDay
	}
	if p.DueDay != nil {
		updated.DueDay = *p.DueDay
	}
	if err := updated.Schedule().Validate(); err != nil {
		return nil, err
	}
	return &updated, nil
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
