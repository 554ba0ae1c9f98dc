package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/money"
	"financeiro/internal/shared/logger"
)

// AccountHandler serves bank accounts and their movement log
type AccountHandler struct {
	accountService *account.Service
	log            zerolog.Logger
}

func NewAccountHandler(accountService *account.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService, log: logger.WithComponent("http.accounts")}
}

type CreateAccountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance"`
}

// HandleListAccounts handles GET /api/accounts
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	accounts, err := h.accountService.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(accounts))
}

// HandleCreateAccount handles POST /api/accounts
func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	acc, err := h.accountService.CreateAccount(r.Context(), account.CreateParams{
		UserID:         userID,
		Name:           req.Name,
		Kind:           req.Kind,
		Currency:       req.Currency,
		InitialBalance: money.ParseAmount(req.InitialBalance).Round(2),
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// HandleGetAccount handles GET /api/accounts/{id}
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	acc, err := h.accountService.GetAccount(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// HandleDeleteAccount handles DELETE /api/accounts/{id}
func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.accountService.DeleteAccount(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMovements handles GET /api/accounts/{id}/movements
func (h *AccountHandler) HandleListMovements(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	movements, err := h.accountService.ListMovements(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(movements))
}
