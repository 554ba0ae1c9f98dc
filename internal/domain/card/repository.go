package card

import "context"

// Repository defines the interface for card data access.
// Every lookup is scoped to the owning user; a card owned by someone else
// is reported as ErrCardNotFound.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, userID int64, id string) (*Card, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Card, error)
	Update(ctx context.Context, c *Card) error
	// Delete fails with ErrCardHasPurchases when purchases still reference the card
	Delete(ctx context.Context, userID int64, id string) error
	// ListUserIDs returns every user that owns at least one card
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// UsageCounter counts records that pin a card's configuration.
// Implemented by the invoice and purchase repositories.
type UsageCounter interface {
	CountByCard(ctx context.Context, userID int64, cardID string) (int, error)
}
