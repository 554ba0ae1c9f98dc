package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/shared/clock"
)

// InvoiceRepository reads single invoices with lock appended, which is
// " FOR UPDATE" inside a unit of work.
type InvoiceRepository struct {
	q    querier
	lock string
}

const invoiceColumns = `id, user_id, card_id, period_year, period_month, total_amount, paid_amount,
	remaining_amount, closing_date, due_date, status, payment_date, created_at, updated_at`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	var year, month int
	var paymentDate sql.NullTime
	err := s.Scan(
		&inv.ID, &inv.UserID, &inv.CardID, &year, &month, &inv.TotalAmount, &inv.PaidAmount,
		&inv.RemainingAmount, &inv.ClosingDate, &inv.DueDate, &inv.Status, &paymentDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Period = cycle.NewPeriod(year, time.Month(month))
	inv.ClosingDate = clock.DateOf(inv.ClosingDate)
	inv.DueDate = clock.DateOf(inv.DueDate)
	inv.PaymentDate = datePtr(paymentDate)
	return &inv, nil
}

// Create relies on the (user, card, period) unique key. A concurrent
// writer that got there first leaves no row inserted and the caller
// re-reads the existing invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (id, user_id, card_id, period_year, period_month, total_amount, paid_amount,
			remaining_amount, closing_date, due_date, status, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, card_id, period_year, period_month) DO NOTHING
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		inv.ID, inv.UserID, inv.CardID, inv.Period.Year, int(inv.Period.Month), inv.TotalAmount, inv.PaidAmount,
		inv.RemainingAmount, clock.DateOf(inv.ClosingDate), clock.DateOf(inv.DueDate), inv.Status, dateArg(inv.PaymentDate),
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return invoice.ErrInvoiceExists
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, userID int64, id string) (*invoice.Invoice, error) {
	return r.one(ctx, `WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *InvoiceRepository) FindByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period) (*invoice.Invoice, error) {
	return r.one(ctx,
		`WHERE user_id = $1 AND card_id = $2 AND period_year = $3 AND period_month = $4`,
		userID, cardID, period.Year, int(period.Month),
	)
}

func (r *InvoiceRepository) one(ctx context.Context, where string, args ...any) (*invoice.Invoice, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices `+where+r.lock, args...)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, invoice.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET total_amount = $3, paid_amount = $4, remaining_amount = $5, closing_date = $6, due_date = $7,
			status = $8, payment_date = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		inv.ID, inv.UserID, inv.TotalAmount, inv.PaidAmount, inv.RemainingAmount,
		clock.DateOf(inv.ClosingDate), clock.DateOf(inv.DueDate), inv.Status, dateArg(inv.PaymentDate),
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return invoice.ErrInvoiceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, userID int64, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return affected(result, invoice.ErrInvoiceNotFound)
}

func (r *InvoiceRepository) ListByCard(ctx context.Context, userID int64, cardID string) ([]*invoice.Invoice, error) {
	return r.list(ctx, `WHERE user_id = $1 AND card_id = $2`, userID, cardID)
}

func (r *InvoiceRepository) ListByUserID(ctx context.Context, userID int64) ([]*invoice.Invoice, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *InvoiceRepository) ListOpenDueBefore(ctx context.Context, day time.Time) ([]*invoice.Invoice, error) {
	return r.list(ctx, `WHERE status = 'open' AND due_date < $1`, clock.DateOf(day))
}

func (r *InvoiceRepository) CountByCard(ctx context.Context, userID int64, cardID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE user_id = $1 AND card_id = $2`,
		userID, cardID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return n, nil
}

// list returns matching invoices, latest period first
func (r *InvoiceRepository) list(ctx context.Context, where string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices `+where+` ORDER BY period_year DESC, period_month DESC, card_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return collect(rows, scanInvoice)
}
