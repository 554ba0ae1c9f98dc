package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/account"
)

type accountRepo struct{ v *view }

func (r *accountRepo) Create(ctx context.Context, acc *account.Account) error {
	st, release := r.v.acquire()
	defer release()

	now := r.v.now()
	acc.CreatedAt, acc.UpdatedAt = now, now
	st.accounts[acc.ID] = *acc
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, userID int64, id string) (*account.Account, error) {
	st, release := r.v.acquire()
	defer release()

	acc, ok := st.accounts[id]
	if !ok || acc.UserID != userID {
		return nil, account.ErrAccountNotFound
	}
	return &acc, nil
}

func (r *accountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	st, release := r.v.acquire()
	defer release()

	var out []*account.Account
	for _, acc := range st.accounts {
		if acc.UserID == userID {
			out = append(out, &acc)
		}
	}
	slices.SortFunc(out, func(a, b *account.Account) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (r *accountRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	acc, ok := st.accounts[id]
	if !ok || acc.UserID != userID {
		return account.ErrAccountNotFound
	}
	delete(st.accounts, id)
	st.movements = slices.DeleteFunc(st.movements, func(m account.Movement) bool {
		return m.AccountID == id
	})
	for txID, t := range st.transactions {
		if t.BankAccountID == id {
			t.BankAccountID = ""
			st.transactions[txID] = t
		}
	}
	return nil
}

func (r *accountRepo) UpdateBalance(ctx context.Context, userID int64, id string, balance decimal.Decimal) error {
	st, release := r.v.acquire()
	defer release()

	acc, ok := st.accounts[id]
	if !ok || acc.UserID != userID {
		return account.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.UpdatedAt = r.v.now()
	st.accounts[id] = acc
	return nil
}

func (r *accountRepo) AddMovement(ctx context.Context, m *account.Movement) error {
	st, release := r.v.acquire()
	defer release()

	m.CreatedAt = r.v.now()
	st.movements = append(st.movements, *m)
	return nil
}

func (r *accountRepo) ListMovements(ctx context.Context, userID int64, accountID string) ([]*account.Movement, error) {
	st, release := r.v.acquire()
	defer release()

	var out []*account.Movement
	for i := len(st.movements) - 1; i >= 0; i-- {
		m := st.movements[i]
		if m.UserID == userID && m.AccountID == accountID {
			out = append(out, &m)
		}
	}
	slices.SortStableFunc(out, func(a, b *account.Movement) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}
