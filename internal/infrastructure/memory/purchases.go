package memory

import (
	"context"
	"slices"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/purchase"
)

type purchaseRepo struct{ v *view }

func (r *purchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	st, release := r.v.acquire()
	defer release()

	now := r.v.now()
	p.CreatedAt, p.UpdatedAt = now, now
	st.purchases[p.ID] = *p
	return nil
}

func (r *purchaseRepo) GetByID(ctx context.Context, userID int64, id string) (*purchase.Purchase, error) {
	st, release := r.v.acquire()
	defer release()

	p, ok := st.purchases[id]
	if !ok || p.UserID != userID {
		return nil, purchase.ErrPurchaseNotFound
	}
	return &p, nil
}

func (r *purchaseRepo) Update(ctx context.Context, p *purchase.Purchase) error {
	st, release := r.v.acquire()
	defer release()

	existing, ok := st.purchases[p.ID]
	if !ok || existing.UserID != p.UserID {
		return purchase.ErrPurchaseNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.v.now()
	st.purchases[p.ID] = *p
	return nil
}

func (r *purchaseRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	p, ok := st.purchases[id]
	if !ok || p.UserID != userID {
		return purchase.ErrPurchaseNotFound
	}
	delete(st.purchases, id)
	return nil
}

func (r *purchaseRepo) ListByUserID(ctx context.Context, userID int64) ([]*purchase.Purchase, error) {
	return r.list(func(p *purchase.Purchase) bool { return p.UserID == userID }), nil
}

func (r *purchaseRepo) ListByCard(ctx context.Context, userID int64, cardID string) ([]*purchase.Purchase, error) {
	return r.list(func(p *purchase.Purchase) bool {
		return p.UserID == userID && p.CardID == cardID
	}), nil
}

func (r *purchaseRepo) ListByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period) ([]*purchase.Purchase, error) {
	return r.list(func(p *purchase.Purchase) bool {
		return p.UserID == userID && p.CardID == cardID && p.Period == period
	}), nil
}

func (r *purchaseRepo) SetStatusByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period, status purchase.Status) error {
	st, release := r.v.acquire()
	defer release()

	now := r.v.now()
	for id, p := range st.purchases {
		if p.UserID == userID && p.CardID == cardID && p.Period == period {
			p.Status = status
			p.UpdatedAt = now
			st.purchases[id] = p
		}
	}
	return nil
}

func (r *purchaseRepo) CountByCard(ctx context.Context, userID int64, cardID string) (int, error) {
	return len(r.list(func(p *purchase.Purchase) bool {
		return p.UserID == userID && p.CardID == cardID
	})), nil
}

// list returns matching purchases, newest purchase date first
func (r *purchaseRepo) list(match func(*purchase.Purchase) bool) []*purchase.Purchase {
	st, release := r.v.acquire()
	defer release()

	var out []*purchase.Purchase
	for _, p := range st.purchases {
		if match(&p) {
			out = append(out, &p)
		}
	}
	slices.SortFunc(out, func(a, b *purchase.Purchase) int {
		if c := b.PurchaseDate.Compare(a.PurchaseDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
