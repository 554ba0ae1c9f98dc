package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable record of money applied to an invoice
type Payment struct {
	ID            string          `json:"id"`
	InvoiceID     string          `json:"invoiceId"`
	UserID        int64           `json:"-"`
	BankAccountID string          `json:"bankAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        Method          `json:"method"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Repository defines the interface for payment data access.
// Payments are an audit trail: there is no update or delete.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	ListByInvoice(ctx context.Context, userID int64, invoiceID string) ([]*Payment, error)
}
