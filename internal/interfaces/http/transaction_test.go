package http

import (
	"net/http"
	"testing"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/transaction"
)

func TestTransactionPostingAndMethodSwitch(t *testing.T) {
	api := newTestAPI(t)
	c := api.createCard(t)
	acc := api.createAccount(t, "500")

	rr := api.do(t, testUser, http.MethodPost, "/api/transactions", CreateTransactionRequest{
		Description:   "Farmácia",
		Amount:        "80",
		Type:          "despesa",
		Method:        "Débito",
		Date:          "2025-11-05",
		BankAccountID: acc.ID,
	})
	expectStatus(t, rr, http.StatusCreated)
	tx := decode[*transaction.Transaction](t, rr)
	if tx.Type != transaction.TypeExpense {
		t.Errorf("type = %s, want expense", tx.Type)
	}

	rr = api.do(t, testUser, http.MethodGet, "/api/accounts/"+acc.ID, nil)
	expectStatus(t, rr, http.StatusOK)
	assertDecimal(t, "balance after debit", decode[*account.Account](t, rr).Balance, "420")

	// Moving the expense to the card refunds the bank and bills the invoice
	method, cardID := "credit_card", c.ID
	rr = api.do(t, testUser, http.MethodPatch, "/api/transactions/"+tx.ID, UpdateTransactionRequest{Method: &method, CardID: &cardID})
	expectStatus(t, rr, http.StatusOK)
	if updated := decode[*transaction.Transaction](t, rr); updated.PurchaseID == "" {
		t.Error("card transaction has no purchase link")
	}

	rr = api.do(t, testUser, http.MethodGet, "/api/accounts/"+acc.ID, nil)
	expectStatus(t, rr, http.StatusOK)
	assertDecimal(t, "balance after switch", decode[*account.Account](t, rr).Balance, "500")

	rr = api.do(t, testUser, http.MethodGet, "/api/cards/"+c.ID+"/invoices", nil)
	expectStatus(t, rr, http.StatusOK)
	invoices := decode[[]*invoice.Invoice](t, rr)
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	assertDecimal(t, "invoice total", invoices[0].TotalAmount, "80")

	rr = api.do(t, testUser, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	expectStatus(t, rr, http.StatusNoContent)

	rr = api.do(t, testUser, http.MethodGet, "/api/cards/"+c.ID+"/invoices", nil)
	expectStatus(t, rr, http.StatusOK)
	if left := decode[[]*invoice.Invoice](t, rr); len(left) != 0 {
		t.Errorf("emptied invoice survived: %+v", left)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "0")

	valid := CreateTransactionRequest{
		Description: "Salário", Amount: "5.000,00", Type: "receita", Method: "pix", Date: "2025-11-05", BankAccountID: acc.ID,
	}
	tests := []struct {
		name   string
		mutate func(r *CreateTransactionRequest)
		status int
	}{
		{name: "Valid", mutate: func(r *CreateTransactionRequest) {}, status: http.StatusCreated},
		{name: "Unknown method", mutate: func(r *CreateTransactionRequest) { r.Method = "cheque" }, status: http.StatusBadRequest},
		{name: "Unknown type", mutate: func(r *CreateTransactionRequest) { r.Type = "transfer" }, status: http.StatusBadRequest},
		{name: "Blank amount", mutate: func(r *CreateTransactionRequest) { r.Amount = "  " }, status: http.StatusBadRequest},
		{name: "Bad date", mutate: func(r *CreateTransactionRequest) { r.Date = "05/11/2025" }, status: http.StatusBadRequest},
		{name: "Bank method without account", mutate: func(r *CreateTransactionRequest) { r.BankAccountID = "" }, status: http.StatusBadRequest},
		{name: "Card income", mutate: func(r *CreateTransactionRequest) { r.Method = "credit_card"; r.CardID = "card-x" }, status: http.StatusBadRequest},
		{name: "Unknown account", mutate: func(r *CreateTransactionRequest) { r.BankAccountID = "missing" }, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			rr := api.do(t, testUser, http.MethodPost, "/api/transactions", req)
			expectStatus(t, rr, tt.status)
		})
	}
}

func TestListTransactions_Filter(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "1000")
	for _, req := range []CreateTransactionRequest{
		{Description: "Aluguel", Amount: "900", Type: "expense", Method: "bank_transfer", Date: "2025-10-05", BankAccountID: acc.ID},
		{Description: "Salário", Amount: "5000", Type: "income", Method: "pix", Date: "2025-11-05", BankAccountID: acc.ID},
		{Description: "Feira", Amount: "60", Type: "expense", Method: "cash", Date: "2025-11-08"},
	} {
		rr := api.do(t, testUser, http.MethodPost, "/api/transactions", req)
		expectStatus(t, rr, http.StatusCreated)
	}

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 3},
		{query: "?from=2025-11-01&to=2025-11-30", want: 2},
		{query: "?type=expense", want: 2},
		{query: "?from=2025-11-01&type=receita", want: 1},
		{query: "?limit=1", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := api.do(t, testUser, http.MethodGet, "/api/transactions"+tt.query, nil)
			expectStatus(t, rr, http.StatusOK)
			if got := decode[[]*transaction.Transaction](t, rr); len(got) != tt.want {
				t.Errorf("transactions = %d, want %d", len(got), tt.want)
			}
		})
	}

	rr := api.do(t, testUser, http.MethodGet, "/api/transactions?from=yesterday", nil)
	expectStatus(t, rr, http.StatusBadRequest)

	rr = api.do(t, testUser, http.MethodGet, "/api/overview?period=2025-11", nil)
	expectStatus(t, rr, http.StatusOK)
	overview := decode[*billing.Overview](t, rr)
	assertDecimal(t, "income", overview.Income, "5000")
	assertDecimal(t, "expense", overview.Expense, "60")
	assertDecimal(t, "bank balance", overview.BankBalance, "5100")
	assertDecimal(t, "wallet", overview.WalletBalance, "-60")

	rr = api.do(t, testUser, http.MethodGet, "/api/overview?period=nov", nil)
	expectStatus(t, rr, http.StatusBadRequest)
}
