package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/cycle"
)

type budgetRepo struct{ v *view }

func (r *budgetRepo) Create(ctx context.Context, b *budget.Budget) error {
	st, release := r.v.acquire()
	defer release()

	for _, other := range st.budgets {
		if other.UserID == b.UserID && other.Period == b.Period && strings.EqualFold(other.Category, b.Category) {
			return budget.ErrBudgetExists
		}
	}
	now := r.v.now()
	b.CreatedAt, b.UpdatedAt = now, now
	st.budgets[b.ID] = *b
	return nil
}

func (r *budgetRepo) GetByID(ctx context.Context, userID int64, id string) (*budget.Budget, error) {
	st, release := r.v.acquire()
	defer release()

	b, ok := st.budgets[id]
	if !ok || b.UserID != userID {
		return nil, budget.ErrBudgetNotFound
	}
	return &b, nil
}

func (r *budgetRepo) ListByPeriod(ctx context.Context, userID int64, period cycle.Period) ([]*budget.Budget, error) {
	st, release := r.v.acquire()
	defer release()

	var out []*budget.Budget
	for _, b := range st.budgets {
		if b.UserID == userID && b.Period == period {
			out = append(out, &b)
		}
	}
	slices.SortFunc(out, func(a, b *budget.Budget) int {
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	})
	return out, nil
}

func (r *budgetRepo) CountByCategory(ctx context.Context, userID int64, category string) (int, error) {
	st, release := r.v.acquire()
	defer release()

	n := 0
	for _, b := range st.budgets {
		if b.UserID == userID && strings.EqualFold(b.Category, category) {
			n++
		}
	}
	return n, nil
}

func (r *budgetRepo) UpdateLimit(ctx context.Context, userID int64, id string, limit decimal.Decimal) error {
	st, release := r.v.acquire()
	defer release()

	b, ok := st.budgets[id]
	if !ok || b.UserID != userID {
		return budget.ErrBudgetNotFound
	}
	b.Limit = limit
	b.UpdatedAt = r.v.now()
	st.budgets[id] = b
	return nil
}

func (r *budgetRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	b, ok := st.budgets[id]
	if !ok || b.UserID != userID {
		return budget.ErrBudgetNotFound
	}
	delete(st.budgets, id)
	return nil
}

type categoryRepo struct{ v *view }

func (r *categoryRepo) Create(ctx context.Context, c *budget.Category) error {
	st, release := r.v.acquire()
	defer release()

	for _, other := range st.categories {
		if other.UserID == c.UserID && strings.EqualFold(other.Name, c.Name) {
			return budget.ErrCategoryExists
		}
	}
	c.CreatedAt = r.v.now()
	st.categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, userID int64, id string) (*budget.Category, error) {
	st, release := r.v.acquire()
	defer release()

	c, ok := st.categories[id]
	if !ok || c.UserID != userID {
		return nil, budget.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepo) ListByUserID(ctx context.Context, userID int64) ([]*budget.Category, error) {
	st, release := r.v.acquire()
	defer release()

	var out []*budget.Category
	for _, c := range st.categories {
		if c.UserID == userID {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *budget.Category) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (r *categoryRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	c, ok := st.categories[id]
	if !ok || c.UserID != userID {
		return budget.ErrCategoryNotFound
	}
	delete(st.categories, id)
	return nil
}
