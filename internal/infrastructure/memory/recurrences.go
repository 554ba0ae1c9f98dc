package memory

import (
	"context"
	"slices"
	"time"

	"financeiro/internal/domain/recurrence"
)

type recurrenceRepo struct{ v *view }

func (r *recurrenceRepo) Create(ctx context.Context, rec *recurrence.Recurrence) error {
	st, release := r.v.acquire()
	defer release()

	now := r.v.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	st.recurrences[rec.ID] = *rec
	return nil
}

func (r *recurrenceRepo) GetByID(ctx context.Context, userID int64, id string) (*recurrence.Recurrence, error) {
	st, release := r.v.acquire()
	defer release()

	rec, ok := st.recurrences[id]
	if !ok || rec.UserID != userID {
		return nil, recurrence.ErrRecurrenceNotFound
	}
	return &rec, nil
}

func (r *recurrenceRepo) ListByUserID(ctx context.Context, userID int64) ([]*recurrence.Recurrence, error) {
	return r.list(func(rec *recurrence.Recurrence) bool { return rec.UserID == userID }), nil
}

func (r *recurrenceRepo) ListActive(ctx context.Context) ([]*recurrence.Recurrence, error) {
	return r.list(func(rec *recurrence.Recurrence) bool { return rec.Active }), nil
}

func (r *recurrenceRepo) SetActive(ctx context.Context, userID int64, id string, active bool) error {
	return r.modify(userID, id, func(rec *recurrence.Recurrence) { rec.Active = active })
}

func (r *recurrenceRepo) MarkMaterialized(ctx context.Context, userID int64, id string, last time.Time) error {
	return r.modify(userID, id, func(rec *recurrence.Recurrence) { rec.LastOccurrence = &last })
}

func (r *recurrenceRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	rec, ok := st.recurrences[id]
	if !ok || rec.UserID != userID {
		return recurrence.ErrRecurrenceNotFound
	}
	delete(st.recurrences, id)
	return nil
}

func (r *recurrenceRepo) modify(userID int64, id string, fn func(*recurrence.Recurrence)) error {
	st, release := r.v.acquire()
	defer release()

	rec, ok := st.recurrences[id]
	if !ok || rec.UserID != userID {
		return recurrence.ErrRecurrenceNotFound
	}
	fn(&rec)
	rec.UpdatedAt = r.v.now()
	st.recurrences[id] = rec
	return nil
}

func (r *recurrenceRepo) list(match func(*recurrence.Recurrence) bool) []*recurrence.Recurrence {
	st, release := r.v.acquire()
	defer release()

	var out []*recurrence.Recurrence
	for _, rec := range st.recurrences {
		if match(&rec) {
			out = append(out, &rec)
		}
	}
	slices.SortFunc(out, func(a, b *recurrence.Recurrence) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}
