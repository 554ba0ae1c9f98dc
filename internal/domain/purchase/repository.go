package purchase

import (
	"context"

	"financeiro/internal/domain/cycle"
)

// Repository defines the interface for purchase data access
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, userID int64, id string) (*Purchase, error)
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, userID int64, id string) error
	ListByUserID(ctx context.Context, userID int64) ([]*Purchase, error)
	ListByCard(ctx context.Context, userID int64, cardID string) ([]*Purchase, error)
	ListByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period) ([]*Purchase, error)
	// SetStatusByPeriod updates the status of every purchase billed to (card, period)
	SetStatusByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period, status Status) error
	CountByCard(ctx context.Context, userID int64, cardID string) (int, error)
}
