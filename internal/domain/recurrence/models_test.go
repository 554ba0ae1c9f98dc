package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/transaction"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    Frequency
		wantErr bool
	}{
		{"weekly", FrequencyWeekly, false},
		{"Semanal", FrequencyWeekly, false},
		{"mensal", FrequencyMonthly, false},
		{"monthly", FrequencyMonthly, false},
		{" anual ", FrequencyYearly, false},
		{"daily", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrequency(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFrequency(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFrequency(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDueOccurrences(t *testing.T) {
	last := date(2025, 3, 10)
	end := date(2025, 4, 30)

	tests := []struct {
		name  string
		rec   Recurrence
		until time.Time
		want  []time.Time
	}{
		{
			name:  "monthly from start",
			rec:   Recurrence{Active: true, Frequency: FrequencyMonthly, DayOfMonth: 10, StartDate: date(2025, 1, 5)},
			until: date(2025, 3, 15),
			want:  []time.Time{date(2025, 1, 10), date(2025, 2, 10), date(2025, 3, 10)},
		},
		{
			name:  "monthly day before start is skipped",
			rec:   Recurrence{Active: true, Frequency: FrequencyMonthly, DayOfMonth: 1, StartDate: date(2025, 1, 5)},
			until: date(2025, 2, 28),
			want:  []time.Time{date(2025, 2, 1)},
		},
		{
			name:  "monthly day clamps to short months",
			rec:   Recurrence{Active: true, Frequency: FrequencyMonthly, DayOfMonth: 31, StartDate: date(2025, 1, 1)},
			until: date(2025, 3, 1),
			want:  []time.Time{date(2025, 1, 31), date(2025, 2, 28)},
		},
		{
			name:  "after last occurrence",
			rec:   Recurrence{Active: true, Frequency: FrequencyMonthly, DayOfMonth: 10, StartDate: date(2025, 1, 1), LastOccurrence: &last},
			until: date(2025, 5, 9),
			want:  []time.Time{date(2025, 4, 10)},
		},
		{
			name:  "bounded by end date",
			rec:   Recurrence{Active: true, Frequency: FrequencyMonthly, DayOfMonth: 10, StartDate: date(2025, 4, 1), EndDate: &end},
			until: date(2025, 12, 31),
			want:  []time.Time{date(2025, 4, 10)},
		},
		{
			name:  "weekly",
			rec:   Recurrence{Active: true, Frequency: FrequencyWeekly, StartDate: date(2025, 12, 20)},
			until: date(2026, 1, 5),
			want:  []time.Time{date(2025, 12, 20), date(2025, 12, 27), date(2026, 1, 3)},
		},
		{
			name:  "yearly on leap day",
			rec:   Recurrence{Active: true, Frequency: FrequencyYearly, DayOfMonth: 29, StartDate: date(2024, 2, 1)},
			until: date(2026, 3, 1),
			want:  []time.Time{date(2024, 2, 29), date(2025, 2, 28), date(2026, 2, 28)},
		},
		{
			name:  "inactive",
			rec:   Recurrence{Active: false, Frequency: FrequencyMonthly, DayOfMonth: 10, StartDate: date(2025, 1, 1)},
			until: date(2025, 12, 31),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rec.DueOccurrences(tt.until)
			if len(got) != len(tt.want) {
				t.Fatalf("DueOccurrences() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("occurrence %d = %s, want %s", i, got[i].Format(time.DateOnly), tt.want[i].Format(time.DateOnly))
				}
			}
		})
	}
}

func TestCreateParams_Validate(t *testing.T) {
	base := CreateParams{
		UserID:        1,
		Description:   "Internet mensal",
		Amount:        decimal.RequireFromString("100"),
		Type:          transaction.TypeExpense,
		Method:        payment.MethodBankTransfer,
		Frequency:     FrequencyMonthly,
		DayOfMonth:    10,
		StartDate:     date(2025, 1, 1),
		BankAccountID: "acc-1",
	}
	before := date(2024, 12, 1)

	tests := []struct {
		name    string
		modify  func(p *CreateParams)
		wantErr error
	}{
		{"valid", func(p *CreateParams) {}, nil},
		{"unknown frequency", func(p *CreateParams) { p.Frequency = "daily" }, ErrInvalidFrequency},
		{"day out of range", func(p *CreateParams) { p.DayOfMonth = 32 }, ErrInvalidDayOfMonth},
		{"weekly ignores day", func(p *CreateParams) {
			p.Frequency = FrequencyWeekly
			p.DayOfMonth = 0
		}, nil},
		{"end before start", func(p *CreateParams) { p.EndDate = &before }, ErrEndBeforeStart},
		{"missing start", func(p *CreateParams) { p.StartDate = time.Time{} }, ErrStartDateRequired},
		{"bank method without account", func(p *CreateParams) { p.BankAccountID = "" }, transaction.ErrBankAccountRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.modify(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
