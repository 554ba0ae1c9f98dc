package recurrence

import (
	"context"
	"time"
)

// Repository defines the interface for recurrence data access
type Repository interface {
	Create(ctx context.Context, r *Recurrence) error
	GetByID(ctx context.Context, userID int64, id string) (*Recurrence, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Recurrence, error)
	// ListActive returns active recurrences of every user
	ListActive(ctx context.Context) ([]*Recurrence, error)
	SetActive(ctx context.Context, userID int64, id string, active bool) error
	// MarkMaterialized advances the last posted occurrence
	MarkMaterialized(ctx context.Context, userID int64, id string, last time.Time) error
	Delete(ctx context.Context, userID int64, id string) error
}
