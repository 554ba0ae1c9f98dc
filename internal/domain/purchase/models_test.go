package purchase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/money"
)

func TestInstallmentAmounts(t *testing.T) {
	tests := []struct {
		name  string
		total string
		count int
		want  []string
	}{
		{name: "single", total: "100", count: 1, want: []string{"100"}},
		{name: "even split", total: "300", count: 3, want: []string{"100", "100", "100"}},
		{name: "remainder on last", total: "100", count: 3, want: []string{"33.33", "33.33", "33.34"}},
		{name: "zero count treated as one", total: "59.9", count: 0, want: []string{"59.9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Purchase{TotalAmount: decimal.RequireFromString(tt.total), InstallmentCount: tt.count}
			got := p.InstallmentAmounts()
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			sum := decimal.Zero
			for i, w := range tt.want {
				if !got[i].Equal(decimal.RequireFromString(w)) {
					t.Errorf("part %d = %s, want %s", i, got[i], w)
				}
				sum = sum.Add(got[i])
			}
			if !sum.Equal(p.TotalAmount) {
				t.Errorf("parts sum to %s, want %s", sum, p.TotalAmount)
			}
		})
	}
}

func TestCreateParamsValidate(t *testing.T) {
	valid := CreateParams{
		UserID:           1,
		CardID:           "card-1",
		Description:      "Mercado",
		TotalAmount:      decimal.NewFromInt(100),
		InstallmentCount: 1,
		PurchaseDate:     time.Date(2025, time.November, 18, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		mutate  func(p *CreateParams)
		errType error
	}{
		{name: "Valid", mutate: func(p *CreateParams) {}},
		{name: "Missing card", mutate: func(p *CreateParams) { p.CardID = "" }, errType: ErrCardRequired},
		{name: "Blank description", mutate: func(p *CreateParams) { p.Description = "  " }, errType: ErrDescriptionRequired},
		{name: "Zero amount", mutate: func(p *CreateParams) { p.TotalAmount = decimal.Zero }, errType: ErrInvalidAmount},
		{name: "Fraction of a cent", mutate: func(p *CreateParams) { p.TotalAmount = decimal.RequireFromString("0.004") }, errType: money.ErrSubCent},
		{name: "No installments", mutate: func(p *CreateParams) { p.InstallmentCount = 0 }, errType: ErrInvalidInstallments},
		{name: "Too many installments", mutate: func(p *CreateParams) { p.InstallmentCount = 49 }, errType: ErrInvalidInstallments},
		{name: "Missing date", mutate: func(p *CreateParams) { p.PurchaseDate = time.Time{} }, errType: ErrPurchaseDateRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, tt.errType) {
				t.Errorf("Validate() error = %v, want %v", err, tt.errType)
			}
		})
	}
}

func TestUpdateParamsApply(t *testing.T) {
	original := &Purchase{ID: "p-1", CardID: "card-1", Description: "Mercado", TotalAmount: decimal.NewFromInt(100)}

	amount := decimal.NewFromInt(40)
	updated, err := UpdateParams{TotalAmount: &amount}.Apply(original)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !updated.TotalAmount.Equal(amount) {
		t.Errorf("TotalAmount = %s, want 40", updated.TotalAmount)
	}
	if !original.TotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Error("Apply() mutated the original purchase")
	}

	negative := decimal.NewFromInt(-1)
	if _, err := (UpdateParams{TotalAmount: &negative}).Apply(original); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Apply() error = %v, want ErrInvalidAmount", err)
	}

	subCent := decimal.RequireFromString("10.005")
	if _, err := (UpdateParams{TotalAmount: &subCent}).Apply(original); !errors.Is(err, money.ErrSubCent) {
		t.Errorf("Apply() error = %v, want ErrSubCent", err)
	}
}
