package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/money"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/recurrence"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/apperror"
	"financeiro/internal/shared/logger"
)

type RecurrenceHandler struct {
	recurrences *recurrence.Service
	log         zerolog.Logger
}

func NewRecurrenceHandler(recurrences *recurrence.Service) *RecurrenceHandler {
	return &RecurrenceHandler{recurrences: recurrences, log: logger.WithComponent("http.recurrences")}
}

type CreateRecurrenceRequest struct {
	Description   string  `json:"description"`
	Amount        string  `json:"amount"`
	Type          string  `json:"type"`
	Method        string  `json:"method"`
	Category      string  `json:"category"`
	Frequency     string  `json:"frequency"`
	DayOfMonth    int     `json:"dayOfMonth"`
	StartDate     string  `json:"startDate"`
	EndDate       *string `json:"endDate"`
	BankAccountID string  `json:"bankAccountId"`
	CardID        string  `json:"cardId"`
}

type SetActiveRequest struct {
	Active *bool `json:"active"`
}

func (req CreateRecurrenceRequest) params(userID int64) (recurrence.CreateParams, error) {
	params := recurrence.CreateParams{
		UserID:        userID,
		Description:   req.Description,
		Category:      req.Category,
		DayOfMonth:    req.DayOfMonth,
		BankAccountID: req.BankAccountID,
		CardID:        req.CardID,
	}

	var err error
	if params.Amount, err = money.ParsePositiveAmount(req.Amount); err != nil {
		return params, err
	}
	if params.Type, err = transaction.ParseType(req.Type); err != nil {
		return params, err
	}
	if params.Method, err = payment.ParseMethod(req.Method); err != nil {
		return params, err
	}
	if params.Frequency, err = recurrence.ParseFrequency(req.Frequency); err != nil {
		return params, err
	}
	if params.StartDate, err = parseDate("startDate", req.StartDate); err != nil {
		return params, err
	}
	if params.EndDate, err = parseDatePtr("endDate", req.EndDate); err != nil {
		return params, err
	}
	return params, nil
}

// HandleListRecurrences handles GET /api/recurrences
func (h *RecurrenceHandler) HandleListRecurrences(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	recurrences, err := h.recurrences.ListRecurrences(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(recurrences))
}

// HandleCreateRecurrence handles POST /api/recurrences
func (h *RecurrenceHandler) HandleCreateRecurrence(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreateRecurrenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	params, err := req.params(userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rec, err := h.recurrences.CreateRecurrence(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleGetRecurrence handles GET /api/recurrences/{id}
func (h *RecurrenceHandler) HandleGetRecurrence(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	rec, err := h.recurrences.GetRecurrence(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleSetActive handles PATCH /api/recurrences/{id} to pause or resume
func (h *RecurrenceHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req SetActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.Active == nil {
		writeError(w, r, h.log, apperror.Validation("active is required"))
		return
	}

	rec, err := h.recurrences.SetActive(r.Context(), userID, pathID(r), *req.Active)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleDeleteRecurrence handles DELETE /api/recurrences/{id}
func (h *RecurrenceHandler) HandleDeleteRecurrence(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.recurrences.DeleteRecurrence(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
