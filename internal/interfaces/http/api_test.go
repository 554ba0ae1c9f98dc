package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/card"
	"financeiro/internal/domain/notification"
	"financeiro/internal/domain/recurrence"
	"financeiro/internal/infrastructure/memory"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/middleware"
)

const testUser int64 = 1

type testAPI struct {
	router *mux.Router
	store  *memory.Store
}

// newTestAPI wires every handler over an empty memory store with today
// fixed at 2025-11-10
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := memory.New()
	clk := clock.Fixed{Date: time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)}
	query := billing.NewInvoiceQuery(st, clk)

	router := mux.NewRouter()
	RegisterRoutes(router.PathPrefix("/api").Subrouter(), Handlers{
		Cards:         NewCardHandler(card.NewService(st.Cards(), st.Invoices(), st.Purchases()), query),
		Purchases:     NewPurchaseHandler(billing.NewPurchaseService(st, clk)),
		Invoices:      NewInvoiceHandler(query, billing.NewPaymentProcessor(st, clk, nil)),
		Transactions:  NewTransactionHandler(billing.NewTransactionService(st, clk)),
		Accounts:      NewAccountHandler(account.NewService(st.Accounts())),
		Recurrences:   NewRecurrenceHandler(recurrence.NewService(st.Recurrences())),
		Notifications: NewNotificationHandler(notification.NewService(memory.NewNotificationRepository(), nil)),
		Overview:      NewOverviewHandler(billing.NewOverviewService(st), billing.NewReconciler(st, clk), clk),
		Budgets:       NewBudgetHandler(budget.NewService(st.Budgets(), st.Categories(), st.Transactions()), clk),
	})
	return &testAPI{router: router, store: st}
}

// do sends a request as userID; userID 0 sends it unauthenticated
func (a *testAPI) do(t *testing.T, userID int64, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func (a *testAPI) createCard(t *testing.T) *card.Card {
	t.Helper()
	rr := a.do(t, testUser, http.MethodPost, "/api/cards", CreateCardRequest{Name: "Nubank", ClosingDay: 24, DueDay: 5})
	expectStatus(t, rr, http.StatusCreated)
	return decode[*card.Card](t, rr)
}

func (a *testAPI) createAccount(t *testing.T, balance string) *account.Account {
	t.Helper()
	rr := a.do(t, testUser, http.MethodPost, "/api/accounts", CreateAccountRequest{Name: "Itaú", InitialBalance: balance})
	expectStatus(t, rr, http.StatusCreated)
	return decode[*account.Account](t, rr)
}

func newRecorder() *httptest.ResponseRecorder { return httptest.NewRecorder() }

func newRequest(method, path string) *http.Request { return httptest.NewRequest(method, path, nil) }
