package http

import (
	"net/http"
	"testing"

	"financeiro/internal/domain/recurrence"
)

func TestRecurrenceLifecycle(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "0")

	end := "2026-11-05"
	rr := api.do(t, testUser, http.MethodPost, "/api/recurrences", CreateRecurrenceRequest{
		Description:   "Aluguel",
		Amount:        "1.800,00",
		Type:          "expense",
		Method:        "bank_transfer",
		Frequency:     "monthly",
		DayOfMonth:    5,
		StartDate:     "2025-11-05",
		EndDate:       &end,
		BankAccountID: acc.ID,
	})
	expectStatus(t, rr, http.StatusCreated)
	rec := decode[*recurrence.Recurrence](t, rr)
	if !rec.Active || rec.Frequency != recurrence.FrequencyMonthly {
		t.Errorf("unexpected recurrence %+v", rec)
	}
	assertDecimal(t, "amount", rec.Amount, "1800")

	off := false
	rr = api.do(t, testUser, http.MethodPatch, "/api/recurrences/"+rec.ID, SetActiveRequest{Active: &off})
	expectStatus(t, rr, http.StatusOK)
	if decode[*recurrence.Recurrence](t, rr).Active {
		t.Error("recurrence still active after pause")
	}

	rr = api.do(t, testUser, http.MethodPatch, "/api/recurrences/"+rec.ID, SetActiveRequest{})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = api.do(t, testUser, http.MethodGet, "/api/recurrences", nil)
	expectStatus(t, rr, http.StatusOK)
	if list := decode[[]*recurrence.Recurrence](t, rr); len(list) != 1 {
		t.Errorf("recurrences = %d, want 1", len(list))
	}

	rr = api.do(t, testUser, http.MethodDelete, "/api/recurrences/"+rec.ID, nil)
	expectStatus(t, rr, http.StatusNoContent)

	rr = api.do(t, testUser, http.MethodGet, "/api/recurrences/"+rec.ID, nil)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestCreateRecurrence_Validation(t *testing.T) {
	api := newTestAPI(t)
	base := CreateRecurrenceRequest{
		Description: "Academia", Amount: "99,90", Type: "expense", Method: "cash",
		Frequency: "monthly", DayOfMonth: 10, StartDate: "2025-11-10",
	}
	before := "2025-01-01"
	tests := []struct {
		name   string
		mutate func(r *CreateRecurrenceRequest)
	}{
		{name: "Daily frequency", mutate: func(r *CreateRecurrenceRequest) { r.Frequency = "daily" }},
		{name: "Day out of range", mutate: func(r *CreateRecurrenceRequest) { r.DayOfMonth = 32 }},
		{name: "End before start", mutate: func(r *CreateRecurrenceRequest) { r.EndDate = &before }},
		{name: "Missing start", mutate: func(r *CreateRecurrenceRequest) { r.StartDate = "" }},
		{name: "Bank method without account", mutate: func(r *CreateRecurrenceRequest) { r.Method = "pix" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			rr := api.do(t, testUser, http.MethodPost, "/api/recurrences", req)
			expectStatus(t, rr, http.StatusBadRequest)
		})
	}
}
