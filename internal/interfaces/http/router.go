package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups the authenticated API handlers
type Handlers struct {
	Cards         *CardHandler
	Purchases     *PurchaseHandler
	Invoices      *InvoiceHandler
	Transactions  *TransactionHandler
	Accounts      *AccountHandler
	Recurrences   *RecurrenceHandler
	Notifications *NotificationHandler
	Overview      *OverviewHandler
	Budgets       *BudgetHandler
}

// RegisterRoutes mounts every API route on api. Authentication is the
// caller's middleware; handlers only read the user from the context.
func RegisterRoutes(api *mux.Router, h Handlers) {
	api.HandleFunc("/cards", h.Cards.HandleListCards).Methods(http.MethodGet)
	api.HandleFunc("/cards", h.Cards.HandleCreateCard).Methods(http.MethodPost)
	api.HandleFunc("/cards/{id}", h.Cards.HandleGetCard).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id}", h.Cards.HandleUpdateCard).Methods(http.MethodPatch)
	api.HandleFunc("/cards/{id}", h.Cards.HandleDeleteCard).Methods(http.MethodDelete)
	api.HandleFunc("/cards/{id}/invoices", h.Cards.HandleCardInvoices).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id}/summary", h.Cards.HandleCardSummary).Methods(http.MethodGet)

	api.HandleFunc("/purchases", h.Purchases.HandleListPurchases).Methods(http.MethodGet)
	api.HandleFunc("/purchases", h.Purchases.HandleCreatePurchase).Methods(http.MethodPost)
	api.HandleFunc("/purchases/{id}", h.Purchases.HandleGetPurchase).Methods(http.MethodGet)
	api.HandleFunc("/purchases/{id}", h.Purchases.HandleUpdatePurchase).Methods(http.MethodPatch)
	api.HandleFunc("/purchases/{id}", h.Purchases.HandleDeletePurchase).Methods(http.MethodDelete)

	api.HandleFunc("/invoices", h.Invoices.HandleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices/summary", h.Invoices.HandleSummaries).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", h.Invoices.HandleGetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/payments", h.Invoices.HandleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/payments", h.Invoices.HandlePayInvoice).Methods(http.MethodPost)

	api.HandleFunc("/transactions", h.Transactions.HandleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", h.Transactions.HandleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", h.Transactions.HandleGetTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", h.Transactions.HandleUpdateTransaction).Methods(http.MethodPatch)
	api.HandleFunc("/transactions/{id}", h.Transactions.HandleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/accounts", h.Accounts.HandleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts", h.Accounts.HandleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}", h.Accounts.HandleGetAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", h.Accounts.HandleDeleteAccount).Methods(http.MethodDelete)
	api.HandleFunc("/accounts/{id}/movements", h.Accounts.HandleListMovements).Methods(http.MethodGet)

	api.HandleFunc("/recurrences", h.Recurrences.HandleListRecurrences).Methods(http.MethodGet)
	api.HandleFunc("/recurrences", h.Recurrences.HandleCreateRecurrence).Methods(http.MethodPost)
	api.HandleFunc("/recurrences/{id}", h.Recurrences.HandleGetRecurrence).Methods(http.MethodGet)
	api.HandleFunc("/recurrences/{id}", h.Recurrences.HandleSetActive).Methods(http.MethodPatch)
	api.HandleFunc("/recurrences/{id}", h.Recurrences.HandleDeleteRecurrence).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", h.Notifications.HandleNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/preferences", h.Notifications.HandleGetPreferences).Methods(http.MethodGet)
	api.HandleFunc("/notifications/preferences", h.Notifications.HandleUpdatePreferences).Methods(http.MethodPost)
	api.HandleFunc("/notifications/devices", h.Notifications.HandleRegisterDevice).Methods(http.MethodPost)
	api.HandleFunc("/notifications/devices", h.Notifications.HandleUnregisterDevice).Methods(http.MethodDelete)
	api.HandleFunc("/notifications/{id}", h.Notifications.HandleMarkOpened).Methods(http.MethodPut)

	api.HandleFunc("/categories", h.Budgets.HandleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.Budgets.HandleCreateCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", h.Budgets.HandleDeleteCategory).Methods(http.MethodDelete)

	api.HandleFunc("/budgets", h.Budgets.HandleListBudgets).Methods(http.MethodGet)
	api.HandleFunc("/budgets", h.Budgets.HandleCreateBudget).Methods(http.MethodPost)
	api.HandleFunc("/budgets/{id}", h.Budgets.HandleGetBudget).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{id}", h.Budgets.HandleUpdateBudget).Methods(http.MethodPatch)
	api.HandleFunc("/budgets/{id}", h.Budgets.HandleDeleteBudget).Methods(http.MethodDelete)

	api.HandleFunc("/overview", h.Overview.HandleOverview).Methods(http.MethodGet)
	api.HandleFunc("/reconcile", h.Overview.HandleReconcile).Methods(http.MethodPost)
}
