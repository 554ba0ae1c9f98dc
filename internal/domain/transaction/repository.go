package transaction

import (
	"context"
	"time"
)

// Repository defines the interface for transaction data access
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, userID int64, id string) (*Transaction, error)
	// GetByPurchaseID returns the transaction mirroring a card purchase
	GetByPurchaseID(ctx context.Context, userID int64, purchaseID string) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, userID int64, id string) error
	List(ctx context.Context, filter Filter) ([]*Transaction, error)
	// ExistsForOccurrence reports whether a recurrence occurrence was already posted
	ExistsForOccurrence(ctx context.Context, userID int64, recurrenceID string, date time.Time) (bool, error)
	// Totals sums income and expense within the filter's date range
	Totals(ctx context.Context, filter Filter) (Totals, error)
}
