package recurrence

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/apperror"
)

// Frequency is how often a recurrence fires. The set is closed.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ParseFrequency accepts canonical values and the Portuguese labels
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "semanal":
		return FrequencyWeekly, nil
	case "monthly", "mensal":
		return FrequencyMonthly, nil
	case "yearly", "anual":
		return FrequencyYearly, nil
	default:
		return "", ErrInvalidFrequency
	}
}

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// Domain errors
var (
	ErrRecurrenceNotFound = apperror.NotFound("recurrence not found")
	ErrInvalidFrequency   = apperror.Validation("frequency must be weekly, monthly or yearly")
	ErrInvalidDayOfMonth  = apperror.Validation("day of month must be between 1 and 31")
	ErrStartDateRequired  = apperror.Validation("start date is required")
	ErrEndBeforeStart     = apperror.Validation("end date must not be before start date")
	ErrInvalidUserID      = apperror.Validation("valid user ID is required")
)

// maxOccurrences bounds a single materialization run per recurrence
const maxOccurrences = 520

// Recurrence is a template that posts a transaction on every occurrence
type Recurrence struct {
	ID             string           `json:"id"`
	UserID         int64            `json:"-"`
	Description    string           `json:"description"`
	Amount         decimal.Decimal  `json:"amount"`
	Type           transaction.Type `json:"type"`
	Method         payment.Method   `json:"method"`
	Category       string           `json:"category"`
	Frequency      Frequency        `json:"frequency"`
	DayOfMonth     int              `json:"dayOfMonth"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        *time.Time       `json:"endDate,omitempty"`
	Active         bool             `json:"active"`
	BankAccountID  string           `json:"bankAccountId,omitempty"`
	CardID         string           `json:"cardId,omitempty"`
	LastOccurrence *time.Time       `json:"lastOccurrence,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// DueOccurrences returns the occurrence dates after LastOccurrence (or from
// StartDate, inclusive) up to until, bounded by EndDate.
// Monthly and yearly occurrences land on DayOfMonth, clamped to short months.
func (r *Recurrence) DueOccurrences(until time.Time) []time.Time {
	if !r.Active || !r.Frequency.IsValid() {
		return nil
	}
	limit := until
	if r.EndDate != nil && r.EndDate.Before(limit) {
		limit = *r.EndDate
	}

	var out []time.Time
	for i := 0; len(out) < maxOccurrences; i++ {
		d := r.nth(i)
		if d.After(limit) {
			break
		}
		if d.Before(r.StartDate) {
			continue
		}
		if r.LastOccurrence != nil && !d.After(*r.LastOccurrence) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (r *Recurrence) nth(i int) time.Time {
	start := r.StartDate
	switch r.Frequency {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*i)
	case FrequencyMonthly:
		p := cycle.NewPeriod(start.Year(), start.Month())
		for range i {
			p = p.Next()
		}
		return p.Day(r.DayOfMonth)
	case FrequencyYearly:
		return cycle.NewPeriod(start.Year()+i, start.Month()).Day(r.DayOfMonth)
	default:
		return start
	}
}

// CreateParams contains parameters for creating a recurrence
type CreateParams struct {
	UserID        int64
	Description   string
	Amount        decimal.Decimal
	Type          transaction.Type
	Method        payment.Method
	Category      string
	Frequency     Frequency
	DayOfMonth    int
	StartDate     time.Time
	EndDate       *time.Time
	BankAccountID string
	CardID        string
}

// Validate validates the create parameters. The posting rules are the
// same ones a plain transaction obeys.
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	if !p.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if p.StartDate.IsZero() {
		return ErrStartDateRequired
	}
	if p.Frequency != FrequencyWeekly && (p.DayOfMonth < 1 || p.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return ErrEndBeforeStart
	}
	return transaction.CreateParams{
		UserID:        p.UserID,
		Description:   p.Description,
		Amount:        p.Amount,
		Type:          p.Type,
		Method:        p.Method,
		Date:          p.StartDate,
		BankAccountID: p.BankAccountID,
		CardID:        p.CardID,
	}.Validate()
}
