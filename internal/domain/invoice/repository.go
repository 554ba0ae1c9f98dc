package invoice

import (
	"context"
	"time"

	"financeiro/internal/domain/card"
	"financeiro/internal/domain/cycle"
)

// Repository defines the interface for invoice data access.
// Inside a transaction, FindByPeriod and GetByID lock the returned row
// until commit so concurrent accumulations on one invoice serialize.
type Repository interface {
	// Create inserts a new invoice; returns ErrInvoiceExists when the
	// (user, card, period) key is already taken
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, userID int64, id string) (*Invoice, error)
	FindByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, userID int64, id string) error
	ListByCard(ctx context.Context, userID int64, cardID string) ([]*Invoice, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Invoice, error)
	// ListOpenDueBefore returns open invoices of every user whose due date is before day
	ListOpenDueBefore(ctx context.Context, day time.Time) ([]*Invoice, error)
	CountByCard(ctx context.Context, userID int64, cardID string) (int, error)
}

// CardLookup resolves the card an invoice is billed to
type CardLookup interface {
	GetByID(ctx context.Context, userID int64, id string) (*card.Card, error)
}
