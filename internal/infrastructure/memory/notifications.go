package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"financeiro/internal/domain/notification"
)

// NotificationRepository implements notification.Repository in memory
type NotificationRepository struct {
	mu            sync.Mutex
	tokens        map[string]notification.DeviceToken // keyed by token
	preferences   map[int64]notification.Preference
	notifications []notification.Notification
}

var _ notification.Repository = (*NotificationRepository)(nil)

// NewNotificationRepository creates an empty notification repository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{
		tokens:      make(map[string]notification.DeviceToken),
		preferences: make(map[int64]notification.Preference),
	}
}

func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, params notification.CreateDeviceTokenParams) (*notification.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	dt, ok := r.tokens[params.Token]
	if !ok {
		dt = notification.DeviceToken{ID: uuid.New().String(), Token: params.Token, CreatedAt: now}
	}
	dt.UserID = params.UserID
	dt.DeviceType = params.DeviceType
	dt.IsActive = true
	dt.LastUsed = now
	r.tokens[params.Token] = dt
	return &dt, nil
}

func (r *NotificationRepository) GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*notification.DeviceToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*notification.DeviceToken
	for _, key := range slices.Sorted(maps.Keys(r.tokens)) {
		dt := r.tokens[key]
		if dt.UserID == userID && dt.IsActive {
			out = append(out, &dt)
		}
	}
	return out, nil
}

func (r *NotificationRepository) DeactivateToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dt, ok := r.tokens[token]
	if !ok {
		return notification.ErrDeviceTokenNotFound
	}
	dt.IsActive = false
	r.tokens[token] = dt
	return nil
}

func (r *NotificationRepository) GetPreferences(ctx context.Context, userID int64) (*notification.Preference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.preferences[userID]
	if !ok {
		return nil, notification.ErrPreferencesNotFound
	}
	return &p, nil
}

func (r *NotificationRepository) SavePreferences(ctx context.Context, p *notification.Preference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	r.preferences[p.UserID] = *p
	return nil
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.CreatedAt = time.Now().UTC()
	r.notifications = append(r.notifications, *n)
	return nil
}

// ListByUserID returns a page of notifications, newest first, and the total count
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*notification.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*notification.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.UserID == userID {
			all = append(all, &n)
		}
	}

	total := len(all)
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := min(start+perPage, total)
	return all[start:end], total, nil
}

func (r *NotificationRepository) MarkOpened(ctx context.Context, notificationID string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notifications {
		n := &r.notifications[i]
		if n.ID == notificationID && n.UserID == userID {
			now := time.Now().UTC()
			n.OpenedAt = &now
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}
