package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/cycle"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// OverviewHandler serves the home summary and the on-demand reconciler
type OverviewHandler struct {
	overview   *billing.OverviewService
	reconciler *billing.Reconciler
	clock      clock.Clock
	log        zerolog.Logger
}

func NewOverviewHandler(overview *billing.OverviewService, reconciler *billing.Reconciler, clk clock.Clock) *OverviewHandler {
	return &OverviewHandler{overview: overview, reconciler: reconciler, clock: clk, log: logger.WithComponent("http.overview")}
}

// HandleOverview handles GET /api/overview?period=YYYY-MM. The current
// month is used when period is omitted.
func (h *OverviewHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	today := h.clock.Today()
	period := cycle.NewPeriod(today.Year(), today.Month())
	if raw := r.URL.Query().Get("period"); raw != "" {
		if period, err = cycle.ParsePeriod(raw); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}

	summary, err := h.overview.Summary(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleReconcile handles POST /api/reconcile, repairing the caller's
// invoices from their purchases
func (h *OverviewHandler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	report, err := h.reconciler.Reconcile(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if report.Changed() {
		h.log.Warn().Int64("user_id", userID).Interface("report", report).Msg("reconciler repaired billing records")
	}
	writeJSON(w, http.StatusOK, report)
}
