package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/money"
	"financeiro/internal/domain/payment"
	"financeiro/internal/shared/logger"
)

type InvoiceHandler struct {
	query    *billing.InvoiceQuery
	payments *billing.PaymentProcessor
	log      zerolog.Logger
}

func NewInvoiceHandler(query *billing.InvoiceQuery, payments *billing.PaymentProcessor) *InvoiceHandler {
	return &InvoiceHandler{query: query, payments: payments, log: logger.WithComponent("http.invoices")}
}

type PayInvoiceRequest struct {
	BankAccountID string `json:"bankAccountId"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	Note          string `json:"note"`
}

// HandleListInvoices handles GET /api/invoices, grouped by billing period
func (h *InvoiceHandler) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	groups, err := h.query.ListByPeriod(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(groups))
}

// HandleSummaries handles GET /api/invoices/summary, one entry per card
func (h *InvoiceHandler) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	summaries, err := h.query.Summaries(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleGetInvoice handles GET /api/invoices/{id}
func (h *InvoiceHandler) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	detail, err := h.query.GetInvoice(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleListPayments handles GET /api/invoices/{id}/payments
func (h *InvoiceHandler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	payments, err := h.query.ListPayments(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(payments))
}

// HandlePayInvoice handles POST /api/invoices/{id}/payments
func (h *InvoiceHandler) HandlePayInvoice(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req PayInvoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	amount, err := money.ParsePositiveAmount(req.Amount)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var method payment.Method
	if req.Method != "" {
		if method, err = payment.ParseMethod(req.Method); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}

	result, err := h.payments.PayInvoice(r.Context(), billing.PayInvoiceParams{
		UserID:        userID,
		InvoiceID:     pathID(r),
		BankAccountID: req.BankAccountID,
		Amount:        amount,
		Method:        method,
		Note:          req.Note,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
