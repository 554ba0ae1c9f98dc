package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/money"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/shared/logger"
)

type PurchaseHandler struct {
	purchases *billing.PurchaseService
	log       zerolog.Logger
}

func NewPurchaseHandler(purchases *billing.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, log: logger.WithComponent("http.purchases")}
}

// Amounts travel as strings so both "1.250,99" and "1250.99" are accepted
type CreatePurchaseRequest struct {
	CardID           string `json:"cardId"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Amount           string `json:"amount"`
	InstallmentCount int    `json:"installmentCount"`
	PurchaseDate     string `json:"purchaseDate"`
}

type UpdatePurchaseRequest struct {
	CardID       *string `json:"cardId"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	Amount       *string `json:"amount"`
	PurchaseDate *string `json:"purchaseDate"`
}

func (req UpdatePurchaseRequest) params() (purchase.UpdateParams, error) {
	params := purchase.UpdateParams{
		CardID:      req.CardID,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Amount != nil {
		amount, err := money.ParsePositiveAmount(*req.Amount)
		if err != nil {
			return params, err
		}
		params.TotalAmount = &amount
	}
	date, err := parseDatePtr("purchaseDate", req.PurchaseDate)
	if err != nil {
		return params, err
	}
	params.PurchaseDate = date
	return params, nil
}

// HandleListPurchases handles GET /api/purchases?cardId=
func (h *PurchaseHandler) HandleListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	purchases, err := h.purchases.ListPurchases(r.Context(), userID, r.URL.Query().Get("cardId"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(purchases))
}

// HandleCreatePurchase handles POST /api/purchases
func (h *PurchaseHandler) HandleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreatePurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	amount, err := money.ParsePositiveAmount(req.Amount)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	date, err := parseDate("purchaseDate", req.PurchaseDate)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.InstallmentCount == 0 {
		req.InstallmentCount = 1
	}

	p, err := h.purchases.CreatePurchase(r.Context(), purchase.CreateParams{
		UserID:           userID,
		CardID:           req.CardID,
		Description:      req.Description,
		Category:         req.Category,
		TotalAmount:      amount,
		InstallmentCount: req.InstallmentCount,
		PurchaseDate:     date,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGetPurchase handles GET /api/purchases/{id}
func (h *PurchaseHandler) HandleGetPurchase(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	p, err := h.purchases.GetPurchase(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdatePurchase handles PATCH /api/purchases/{id}
func (h *PurchaseHandler) HandleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdatePurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	p, err := h.purchases.EditPurchase(r.Context(), userID, pathID(r), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDeletePurchase handles DELETE /api/purchases/{id}
func (h *PurchaseHandler) HandleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.purchases.DeletePurchase(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
