// Package memory is an in-process store.Store. Units of work run under a
// single mutex against a copy of the data that replaces the live state
// on commit.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/card"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/recurrence"
	"financeiro/internal/domain/store"
	"financeiro/internal/domain/transaction"
)

type state struct {
	cards        map[string]card.Card
	purchases    map[string]purchase.Purchase
	invoices     map[string]invoice.Invoice
	payments     []payment.Payment
	accounts     map[string]account.Account
	movements    []account.Movement
	transactions map[string]transaction.Transaction
	recurrences  map[string]recurrence.Recurrence
	budgets      map[string]budget.Budget
	categories   map[string]budget.Category
}

func newState() *state {
	return &state{
		cards:        make(map[string]card.Card),
		purchases:    make(map[string]purchase.Purchase),
		invoices:     make(map[string]invoice.Invoice),
		accounts:     make(map[string]account.Account),
		transactions: make(map[string]transaction.Transaction),
		recurrences:  make(map[string]recurrence.Recurrence),
		budgets:      make(map[string]budget.Budget),
		categories:   make(map[string]budget.Category),
	}
}

// clone copies every table. Records are stored by value so a shallow copy
// of each map is enough.
func (s *state) clone() *state {
	return &state{
		cards:        maps.Clone(s.cards),
		purchases:    maps.Clone(s.purchases),
		invoices:     maps.Clone(s.invoices),
		payments:     append([]payment.Payment(nil), s.payments...),
		accounts:     maps.Clone(s.accounts),
		movements:    append([]account.Movement(nil), s.movements...),
		transactions: maps.Clone(s.transactions),
		recurrences:  maps.Clone(s.recurrences),
		budgets:      maps.Clone(s.budgets),
		categories:   maps.Clone(s.categories),
	}
}

// Store implements store.Store in memory
type Store struct {
	mu   sync.Mutex
	st   *state
	now  func() time.Time
	root *view
}

var _ store.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	s := &Store{st: newState(), now: time.Now}
	s.root = &view{store: s}
	return s
}

// WithinTx runs fn against a private copy of the data. The copy becomes
// the live state only when fn returns nil. Calls to the Store's own
// repositories from inside fn would deadlock; use tx.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.st.clone()
	if err := fn(&view{store: s, tx: working}); err != nil {
		return err
	}
	s.st = working
	return nil
}

func (s *Store) Cards() card.Repository               { return s.root.Cards() }
func (s *Store) Purchases() purchase.Repository       { return s.root.Purchases() }
func (s *Store) Invoices() invoice.Repository         { return s.root.Invoices() }
func (s *Store) Payments() payment.Repository         { return s.root.Payments() }
func (s *Store) Accounts() account.Repository         { return s.root.Accounts() }
func (s *Store) Transactions() transaction.Repository { return s.root.Transactions() }
func (s *Store) Recurrences() recurrence.Repository   { return s.root.Recurrences() }
func (s *Store) Budgets() budget.Repository           { return s.root.Budgets() }
func (s *Store) Categories() budget.CategoryRepository {
	return s.root.Categories()
}

// view is either the live store (tx == nil) or one unit of work
type view struct {
	store *Store
	tx    *state
}

// acquire returns the state to operate on and the function that releases it
func (v *view) acquire() (*state, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.mu.Lock()
	return v.store.st, v.store.mu.Unlock
}

func (v *view) now() time.Time { return v.store.now().UTC() }

func (v *view) Cards() card.Repository               { return &cardRepo{v} }
func (v *view) Purchases() purchase.Repository       { return &purchaseRepo{v} }
func (v *view) Invoices() invoice.Repository         { return &invoiceRepo{v} }
func (v *view) Payments() payment.Repository         { return &paymentRepo{v} }
func (v *view) Accounts() account.Repository         { return &accountRepo{v} }
func (v *view) Transactions() transaction.Repository { return &transactionRepo{v} }
func (v *view) Recurrences() recurrence.Repository   { return &recurrenceRepo{v} }
func (v *view) Budgets() budget.Repository           { return &budgetRepo{v} }
func (v *view) Categories() budget.CategoryRepository {
	return &categoryRepo{v}
}
