package cycle

import (
	"fmt"
	"time"

	"financeiro/internal/shared/apperror"
)

var (
	ErrInvalidClosingDay = apperror.Validation("closing day must be between 1 and 31")
	ErrInvalidDueDay     = apperror.Validation("due day must be between 1 and 31")
	ErrInvalidPeriod     = apperror.Validation("period must be formatted as YYYY-MM")
)

// Period identifies a monthly invoice.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Month: month, Year: year}
}

// ParsePeriod reads the "2025-11" form produced by String.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Month: t.Month(), Year: t.Year()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Month: time.January, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Month: time.December, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Day returns the given day of the period's month, clamped to the month's
// last day.
func (p Period) Day(day int) time.Time {
	last := LastDayOfMonth(p.Year, p.Month)
	if day > last {
		day = last
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// Schedule is the statement calendar of a card.
type Schedule struct {
	ClosingDay int
	DueDay     int
}

func (s Schedule) Validate() error {
	if s.ClosingDay < 1 || s.ClosingDay > 31 {
		return ErrInvalidClosingDay
	}
	if s.DueDay < 1 || s.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

// Cycle is a resolved invoice period with its closing and due dates.
type Cycle struct {
	Period      Period
	ClosingDate time.Time
	DueDate     time.Time
}

// Resolve maps a purchase date onto the invoice it is billed in. The closing
// day is inclusive: a purchase made on the closing day still belongs to that
// month's invoice, one made after it rolls into the next month's.
func Resolve(s Schedule, purchaseDate time.Time) Cycle {
	y, m, d := purchaseDate.Date()
	p := Period{Month: m, Year: y}
	if d > s.ClosingDay {
		p = p.Next()
	}
	return ForPeriod(s, p)
}

// ForPeriod computes the closing and due dates of a known period. The due
// date falls in the month after the period.
func ForPeriod(s Schedule, p Period) Cycle {
	return Cycle{
		Period:      p,
		ClosingDate: p.Day(s.ClosingDay),
		DueDate:     p.Next().Day(s.DueDay),
	}
}

// LastDayOfMonth returns 28..31 for the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
