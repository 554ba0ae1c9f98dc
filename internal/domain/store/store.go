// Package store declares the unit of work shared by the billing services.
// Implementations live in infrastructure/postgres and infrastructure/memory.
package store

import (
	"context"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/card"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/recurrence"
	"financeiro/internal/domain/transaction"
)

// Tx exposes the repositories bound to one unit of work
type Tx interface {
	Cards() card.Repository
	Purchases() purchase.Repository
	Invoices() invoice.Repository
	Payments() payment.Repository
	Accounts() account.Repository
	Transactions() transaction.Repository
	Recurrences() recurrence.Repository
	Budgets() budget.Repository
	Categories() budget.CategoryRepository
}

// Store gives non-transactional access through its own repositories and
// runs multi-entity mutations atomically through WithinTx.
type Store interface {
	Tx

	// WithinTx runs fn in a single unit of work. Any error returned by fn
	// rolls back every write fn made.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
