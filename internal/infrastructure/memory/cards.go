package memory

import (
	"context"
	"slices"
	"strings"

	"financeiro/internal/domain/card"
)

type cardRepo struct{ v *view }

func (r *cardRepo) Create(ctx context.Context, c *card.Card) error {
	st, release := r.v.acquire()
	defer release()

	now := r.v.now()
	c.CreatedAt, c.UpdatedAt = now, now
	st.cards[c.ID] = *c
	return nil
}

func (r *cardRepo) GetByID(ctx context.Context, userID int64, id string) (*card.Card, error) {
	st, release := r.v.acquire()
	defer release()

	c, ok := st.cards[id]
	if !ok || c.UserID != userID {
		return nil, card.ErrCardNotFound
	}
	return &c, nil
}

func (r *cardRepo) ListByUserID(ctx context.Context, userID int64) ([]*card.Card, error) {
	st, release := r.v.acquire()
	defer release()

	var out []*card.Card
	for _, c := range st.cards {
		if c.UserID == userID {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *card.Card) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (r *cardRepo) Update(ctx context.Context, c *card.Card) error {
	st, release := r.v.acquire()
	defer release()

	existing, ok := st.cards[c.ID]
	if !ok || existing.UserID != c.UserID {
		return card.ErrCardNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = r.v.now()
	st.cards[c.ID] = *c
	return nil
}

func (r *cardRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	c, ok := st.cards[id]
	if !ok || c.UserID != userID {
		return card.ErrCardNotFound
	}
	for _, p := range st.purchases {
		if p.CardID == id {
			return card.ErrCardHasPurchases
		}
	}
	for invID, inv := range st.invoices {
		if inv.CardID == id {
			delete(st.invoices, invID)
		}
	}
	delete(st.cards, id)
	return nil
}

func (r *cardRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	st, release := r.v.acquire()
	defer release()

	seen := make(map[int64]struct{})
	var out []int64
	for _, c := range st.cards {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		out = append(out, c.UserID)
	}
	slices.Sort(out)
	return out, nil
}
