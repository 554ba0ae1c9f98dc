package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/money"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// BudgetHandler serves user categories and monthly budgets
type BudgetHandler struct {
	budgets *budget.Service
	clock   clock.Clock
	log     zerolog.Logger
}

func NewBudgetHandler(budgets *budget.Service, clk clock.Clock) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, clock: clk, log: logger.WithComponent("http.budgets")}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type CreateBudgetRequest struct {
	Category string `json:"category"`
	// Period is YYYY-MM; the current month when empty
	Period string `json:"period"`
	Limit  string `json:"limit"`
}

type UpdateBudgetRequest struct {
	Limit string `json:"limit"`
}

// HandleListCategories handles GET /api/categories
func (h *BudgetHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	categories, err := h.budgets.ListCategories(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleCreateCategory handles POST /api/categories
func (h *BudgetHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	kind, err := transaction.ParseType(req.Kind)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	c, err := h.budgets.CreateCategory(r.Context(), budget.CreateCategoryParams{UserID: userID, Name: req.Name, Kind: kind})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleDeleteCategory handles DELETE /api/categories/{id}
func (h *BudgetHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.budgets.DeleteCategory(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListBudgets handles GET /api/budgets?period=YYYY-MM
func (h *BudgetHandler) HandleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	period, err := h.period(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	budgets, err := h.budgets.ListBudgets(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

// HandleCreateBudget handles POST /api/budgets
func (h *BudgetHandler) HandleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req CreateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	period, err := h.period(req.Period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	limit, err := money.ParsePositiveAmount(req.Limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	status, err := h.budgets.CreateBudget(r.Context(), budget.CreateParams{
		UserID:   userID,
		Category: req.Category,
		Period:   period,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

// HandleGetBudget handles GET /api/budgets/{id}
func (h *BudgetHandler) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	status, err := h.budgets.GetBudget(r.Context(), userID, pathID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleUpdateBudget handles PATCH /api/budgets/{id}
func (h *BudgetHandler) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req UpdateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	limit, err := money.ParsePositiveAmount(req.Limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	status, err := h.budgets.UpdateLimit(r.Context(), userID, pathID(r), limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleDeleteBudget handles DELETE /api/budgets/{id}
func (h *BudgetHandler) HandleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.budgets.DeleteBudget(r.Context(), userID, pathID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BudgetHandler) period(raw string) (cycle.Period, error) {
	if raw == "" {
		today := h.clock.Today()
		return cycle.NewPeriod(today.Year(), today.Month()), nil
	}
	return cycle.ParsePeriod(raw)
}
