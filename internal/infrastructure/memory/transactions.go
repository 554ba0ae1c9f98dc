package memory

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/transaction"
)

type transactionRepo struct{ v *view }

func (r *transactionRepo) Create(ctx context.Context, t *transaction.Transaction) error {
	st, release := r.v.acquire()
	defer release()

	now := r.v.now()
	t.CreatedAt, t.UpdatedAt = now, now
	st.transactions[t.ID] = *t
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, userID int64, id string) (*transaction.Transaction, error) {
	st, release := r.v.acquire()
	defer release()

	t, ok := st.transactions[id]
	if !ok || t.UserID != userID {
		return nil, transaction.ErrTransactionNotFound
	}
	return &t, nil
}

func (r *transactionRepo) GetByPurchaseID(ctx context.Context, userID int64, purchaseID string) (*transaction.Transaction, error) {
	st, release := r.v.acquire()
	defer release()

	for _, t := range st.transactions {
		if t.UserID == userID && t.PurchaseID == purchaseID {
			return &t, nil
		}
	}
	return nil, transaction.ErrTransactionNotFound
}

func (r *transactionRepo) Update(ctx context.Context, t *transaction.Transaction) error {
	st, release := r.v.acquire()
	defer release()

	existing, ok := st.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return transaction.ErrTransactionNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.v.now()
	st.transactions[t.ID] = *t
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	t, ok := st.transactions[id]
	if !ok || t.UserID != userID {
		return transaction.ErrTransactionNotFound
	}
	delete(st.transactions, id)
	return nil
}

func (r *transactionRepo) List(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error) {
	out := r.filter(filter)
	slices.SortFunc(out, func(a, b *transaction.Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *transactionRepo) ExistsForOccurrence(ctx context.Context, userID int64, recurrenceID string, date time.Time) (bool, error) {
	st, release := r.v.acquire()
	defer release()

	for _, t := range st.transactions {
		if t.UserID == userID && t.RecurrenceID == recurrenceID && t.OccurrenceDate != nil && t.OccurrenceDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *transactionRepo) Totals(ctx context.Context, filter transaction.Filter) (transaction.Totals, error) {
	totals := transaction.Totals{
		Income:      decimal.Zero,
		Expense:     decimal.Zero,
		CashIncome:  decimal.Zero,
		CashExpense: decimal.Zero,
	}
	for _, t := range r.filter(filter) {
		cash := t.Method == payment.MethodCash
		switch t.Type {
		case transaction.TypeIncome:
			totals.Income = totals.Income.Add(t.Amount)
			if cash {
				totals.CashIncome = totals.CashIncome.Add(t.Amount)
			}
		case transaction.TypeExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
			if cash {
				totals.CashExpense = totals.CashExpense.Add(t.Amount)
			}
		}
		totals.Count++
	}
	return totals, nil
}

func (r *transactionRepo) filter(f transaction.Filter) []*transaction.Transaction {
	st, release := r.v.acquire()
	defer release()

	var out []*transaction.Transaction
	for _, t := range st.transactions {
		if t.UserID != f.UserID {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && t.Date.After(f.To) {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		out = append(out, &t)
	}
	return out
}
