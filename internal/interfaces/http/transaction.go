package http

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/money"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/logger"
)

type TransactionHandler struct {
	transactions *billing.TransactionService
	log          zerolog.Logger
}

func NewTransactionHandler(transactions *billing.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, log: logger.WithComponent("http.transactions")}
}

// Type and Method accept the canonical values and the Portuguese labels
type CreateTransactionRequest struct {
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	Method        string `json:"method"`
	Date          string `json:"date"`
	BankAccountID string `json:"bankAccountId"`
	CardID        string `json:"cardId"`
}

type UpdateTransactionRequest struct {
	Description   *string `json:"description"`
	Amount        *string `json:"amount"`
	Category      *string `json:"category"`
	Type          *string `json:"type"`
	Method        *string `json:"method"`
	Date          *string `json:"date"`
	BankAccountID *string `json:"bankAccountId"`
	CardID        *string `json:"cardId"`
}

func (req CreateTransactionRequest) params(userID int64) (transaction.CreateParams, error) {
	params := transaction.CreateParams{
		UserID:        userID,
		Description:   req.Description,
		Category:      req.Category,
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
	if params.Date, err = parseDate("date", req.Date); err != nil {
		return params, err
	}
	return params, nil
}

func (req UpdateTransactionRequest) params() (transaction.UpdateParams, error) {
	params := transaction.UpdateParams{
		Description:   req.Description,
		Category:      req.Category,
		BankAccountID: req.BankAccountID,
		CardID:        req.CardID,
	}

	if req.Amount != nil {
		amount, err := money.ParsePositiveAmount(*req.Amount)
		if err != nil {
			return params, err
		}
		params.Amount = &amount
	}
	if req.Type != nil {
		typ, err := transaction.ParseType(*req.Type)
		if err != nil {
			return params, err
		}
		params.Type = &typ
	}
	if req.Method != nil {
		method, err := payment.ParseMethod(*req.Method)
		if err != nil {
			return params, err
		}
		params.Method = &method
	}
	date, err := parseDatePtr("date", req.Date)
	if err != nil {
		return params, err
	}
	params.Date = date
	return params, nil
}

// HandleListTransactions handles GET /api/transactions?from=&to=&type=&limit=&offset=
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	filter, err := parseFilter(r, userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	transactions, err := h.transactions.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(transactions))
}

// HandleCreateTransaction handles POST /api/transactions
func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	params, err := req.params(userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	t, err := h.transactions.CreateTransaction(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleGetTransaction handles GET /api/transactions/{id}
func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	t, err := h.transactions.GetTransaction(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleUpdateTransaction handles PATCH /api/transactions/{id}
func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	t, err := h.transactions.UpdateTransaction(r.Context(), userID, pathID(r), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleDeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.transactions.DeleteTransaction(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(r *http.Request, userID int64) (transaction.Filter, error) {
	q := r.URL.Query()
	filter := transaction.Filter{UserID: userID}

	var err error
	if filter.From, err = parseDate("from", q.Get("from")); err != nil {
		return filter, err
	}
	if filter.To, err = parseDate("to", q.Get("to")); err != nil {
		return filter, err
	}
	if typ := q.Get("type"); typ != "" {
		if filter.Type, err = transaction.ParseType(typ); err != nil {
			return filter, err
		}
	}

	// Parse pagination parameters
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter, nil
}
