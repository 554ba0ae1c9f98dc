package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/shared/logger"
)

// Job is a unit of background work run by the worker pool
type Job interface {
	Execute(ctx context.Context) error
	// Name identifies the job in logs, spans and metrics
	Name() string
}

// JobFunc adapts a function to the Job interface
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Execute(ctx context.Context) error { return j.Fn(ctx) }
func (j JobFunc) Name() string                      { return j.JobName }

// OverdueMarker is satisfied by billing.StatusService
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int, error)
}

// RecurrenceMaterializer is satisfied by billing.Materializer
type RecurrenceMaterializer interface {
	MaterializeDue(ctx context.Context) (*billing.MaterializeReport, error)
}

// InvoiceReconciler is satisfied by billing.Reconciler
type InvoiceReconciler interface {
	ReconcileAll(ctx context.Context) ([]*billing.ReconcileReport, error)
}

// OverdueJob flips unpaid invoices past their due date to overdue
type OverdueJob struct {
	status OverdueMarker
	log    zerolog.Logger
}

func NewOverdueJob(status OverdueMarker) *OverdueJob {
	return &OverdueJob{status: status, log: logger.WithComponent("scheduler")}
}

func (j *OverdueJob) Name() string { return "mark-overdue" }

func (j *OverdueJob) Execute(ctx context.Context) error {
	n, err := j.status.MarkOverdue(ctx)
	if err != nil {
		return fmt.Errorf("mark overdue: %w", err)
	}
	j.log.Info().Int("invoices", n).Msg("overdue invoices marked")
	return nil
}

// RecurrenceJob posts the recurrence occurrences due up to today
type RecurrenceJob struct {
	materializer RecurrenceMaterializer
	log          zerolog.Logger
}

func NewRecurrenceJob(m RecurrenceMaterializer) *RecurrenceJob {
	return &RecurrenceJob{materializer: m, log: logger.WithComponent("scheduler")}
}

func (j *RecurrenceJob) Name() string { return "materialize-recurrences" }

// Execute fails when any occurrence could not be posted, so the run shows
// up as an error in metrics even though the others were committed.
func (j *RecurrenceJob) Execute(ctx context.Context) error {
	report, err := j.materializer.MaterializeDue(ctx)
	if err != nil {
		return fmt.Errorf("materialize recurrences: %w", err)
	}
	j.log.Info().
		Int("recurrences", report.Recurrences).
		Int("posted", report.Posted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("recurrences materialized")
	if report.Failed > 0 {
		return fmt.Errorf("materialize recurrences: %d occurrences failed", report.Failed)
	}
	return nil
}

// ReconcileJob repairs invoice totals for every user
type ReconcileJob struct {
	reconciler InvoiceReconciler
	log        zerolog.Logger
}

func NewReconcileJob(r InvoiceReconciler) *ReconcileJob {
	return &ReconcileJob{reconciler: r, log: logger.WithComponent("scheduler")}
}

func (j *ReconcileJob) Name() string { return "reconcile" }

func (j *ReconcileJob) Execute(ctx context.Context) error {
	reports, err := j.reconciler.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	changed := 0
	for _, r := range reports {
		if !r.Changed() {
			continue
		}
		changed++
		j.log.Warn().
			Int64("user_id", r.UserID).
			Int("invoices_adjusted", r.InvoicesAdjusted).
			Int("invoices_deleted", r.InvoicesDeleted).
			Int("invoices_created", r.InvoicesCreated).
			Int("transactions_linked", r.TransactionsLinked).
			Msg("reconcile repaired user data")
	}
	j.log.Info().Int("users", len(reports)).Int("changed", changed).Msg("reconcile finished")
	return nil
}
