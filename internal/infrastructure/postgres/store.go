package postgres

import (
	"context"
	"database/sql"
	"fmt"
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
	"financeiro/internal/shared/clock"
)

// Store implements store.Store on PostgreSQL
type Store struct {
	db   *DB
	root *view
}

var _ store.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{db: db, root: &view{q: db}}
}

// WithinTx runs fn inside BEGIN ... COMMIT. Invoice and account rows read
// through tx are locked until the transaction ends.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&view{q: tx, locking: true}); err != nil {
		return err
	}
	return tx.Commit()
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

// view binds the repositories to the pool or to one transaction
type view struct {
	q       querier
	locking bool
}

// forUpdate is appended to single-row reads that must serialize writers
func (v *view) forUpdate() string {
	if v.locking {
		return " FOR UPDATE"
	}
	return ""
}

func (v *view) Cards() card.Repository               { return &CardRepository{q: v.q} }
func (v *view) Purchases() purchase.Repository       { return &PurchaseRepository{q: v.q} }
func (v *view) Invoices() invoice.Repository         { return &InvoiceRepository{q: v.q, lock: v.forUpdate()} }
func (v *view) Payments() payment.Repository         { return &PaymentRepository{q: v.q} }
func (v *view) Accounts() account.Repository         { return &AccountRepository{q: v.q, lock: v.forUpdate()} }
func (v *view) Transactions() transaction.Repository { return &TransactionRepository{q: v.q} }
func (v *view) Recurrences() recurrence.Repository   { return &RecurrenceRepository{q: v.q} }
func (v *view) Budgets() budget.Repository           { return &BudgetRepository{q: v.q} }
func (v *view) Categories() budget.CategoryRepository {
	return &CategoryRepository{q: v.q}
}

// scanner is implemented by *sql.Rows and *tracedRow
type scanner interface {
	Scan(dest ...any) error
}

// datePtr converts a nullable DATE column to a calendar date
func datePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	d := clock.DateOf(nt.Time)
	return &d
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return clock.DateOf(*t)
}

// collect drains rows through scan
func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()

	var out []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
