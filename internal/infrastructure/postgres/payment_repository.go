package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"financeiro/internal/domain/payment"
	"financeiro/internal/shared/clock"
)

type PaymentRepository struct {
	q querier
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO invoice_payments (id, invoice_id, user_id, bank_account_id, amount, payment_date, method, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.q.QueryRowContext(ctx, query,
		p.ID, p.InvoiceID, p.UserID, nullString(p.BankAccountID), p.Amount, clock.DateOf(p.Date), p.Method, nullString(p.Note),
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record invoice payment: %w", err)
	}
	return nil
}

// ListByInvoice returns the payment history, oldest first
func (r *PaymentRepository) ListByInvoice(ctx context.Context, userID int64, invoiceID string) ([]*payment.Payment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, invoice_id, user_id, bank_account_id, amount, payment_date, method, note, created_at
		FROM invoice_payments
		WHERE user_id = $1 AND invoice_id = $2
		ORDER BY payment_date, created_at
	`, userID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice payments: %w", err)
	}
	return collect(rows, func(s scanner) (*payment.Payment, error) {
		var p payment.Payment
		var accountID, note sql.NullString
		if err := s.Scan(&p.ID, &p.InvoiceID, &p.UserID, &accountID, &p.Amount, &p.Date, &p.Method, &note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice payment: %w", err)
		}
		p.BankAccountID = accountID.String
		p.Note = note.String
		p.Date = clock.DateOf(p.Date)
		return &p, nil
	})
}
