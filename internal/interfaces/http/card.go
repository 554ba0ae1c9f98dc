package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/card"
	"financeiro/internal/shared/logger"
)

type CardHandler struct {
	cards    *card.Service
	invoices *billing.InvoiceQuery
	log      zerolog.Logger
}

func NewCardHandler(cards *card.Service, invoices *billing.InvoiceQuery) *CardHandler {
	return &CardHandler{cards: cards, invoices: invoices, log: logger.WithComponent("http.cards")}
}

type CreateCardRequest struct {
	Name           string `json:"name"`
	Brand          string `json:"brand"`
	LastFourDigits string `json:"lastFourDigits"`
	ClosingDay     int    `json:"closingDay"`
	DueDay         int    `json:"dueDay"`
}

type UpdateCardRequest struct {
	Name           *string `json:"name"`
	Brand          *string `json:"brand"`
	LastFourDigits *string `json:"lastFourDigits"`
	ClosingDay     *int    `json:"closingDay"`
	DueDay         *int    `json:"dueDay"`
}

// HandleListCards handles GET /api/cards
func (h *CardHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	cards, err := h.cards.ListCards(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(cards))
}

// HandleCreateCard handles POST /api/cards
func (h *CardHandler) HandleCreateCard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreateCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	c, err := h.cards.CreateCard(r.Context(), card.CreateParams{
		UserID:         userID,
		Name:           req.Name,
		Brand:          req.Brand,
		LastFourDigits: req.LastFourDigits,
		ClosingDay:     req.ClosingDay,
		DueDay:         req.DueDay,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleGetCard handles GET /api/cards/{id}
func (h *CardHandler) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	c, err := h.cards.GetCard(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleUpdateCard handles PATCH /api/cards/{id}
func (h *CardHandler) HandleUpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	c, err := h.cards.UpdateCard(r.Context(), userID, pathID(r), card.UpdateParams{
		Name:           req.Name,
		Brand:          req.Brand,
		LastFourDigits: req.LastFourDigits,
		ClosingDay:     req.ClosingDay,
		DueDay:         req.DueDay,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDeleteCard handles DELETE /api/cards/{id}
func (h *CardHandler) HandleDeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.cards.DeleteCard(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCardInvoices handles GET /api/cards/{id}/invoices
func (h *CardHandler) HandleCardInvoices(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	invoices, err := h.invoices.ListByCard(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(invoices))
}

// HandleCardSummary handles GET /api/cards/{id}/summary
func (h *CardHandler) HandleCardSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	summary, err := h.invoices.CardSummary(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
