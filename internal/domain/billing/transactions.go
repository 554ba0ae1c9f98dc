package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/payment"
	"financeiro/internal/domain/purchase"
	"financeiro/internal/domain/store"
	"financeiro/internal/domain/transaction"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/logger"
)

// TransactionService manages generic income and expense records. Bank
// methods post to the account balance; credit card expenses are recorded
// as purchases and billed through invoices.
type TransactionService struct {
	store store.Store
	clock clock.Clock
	log   zerolog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(st store.Store, clk clock.Clock) *TransactionService {
	return &TransactionService{store: st, clock: clk, log: logger.WithComponent("billing.transactions")}
}

// CreateTransaction records a transaction and applies its money effect
func (s *TransactionService) CreateTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	var created *transaction.Transaction
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		t, err := newUnit(tx, s.clock, s.log).createTransaction(ctx, params)
		created = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTransaction edits a transaction. Changing the payment method into
// or out of credit card moves the amount between the bank account and the
// card invoice.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID int64, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	var updated *transaction.Transaction
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		t, err := newUnit(tx, s.clock, s.log).updateTransaction(ctx, userID, id, params)
		updated = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its money effect
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID int64, id string) error {
	return s.store.WithinTx(ctx, func(tx store.Tx) error {
		return newUnit(tx, s.clock, s.log).deleteTransaction(ctx, userID, id)
	})
}

// GetTransaction retrieves a transaction owned by the user
func (s *TransactionService) GetTransaction(ctx context.Context, userID int64, id string) (*transaction.Transaction, error) {
	return s.store.Transactions().GetByID(ctx, userID, id)
}

// ListTransactions lists transactions matching the filter, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error) {
	if filter.UserID <= 0 {
		return nil, transaction.ErrInvalidUserID
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.store.Transactions().List(ctx, filter)
}

func (u *unit) createTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	params.Description = strings.TrimSpace(params.Description)
	params.Category = transaction.NormalizeCategory(params.Category)
	params.Date = clock.DateOf(params.Date)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.Method == payment.MethodCreditCard {
		_, t, err := u.createPurchase(ctx, purchase.CreateParams{
			UserID:           params.UserID,
			CardID:           params.CardID,
			Description:      params.Description,
			Category:         params.Category,
			TotalAmount:      params.Amount,
			InstallmentCount: 1,
			PurchaseDate:     params.Date,
		}, nil)
		if err != nil {
			return nil, err
		}
		if params.RecurrenceID != "" {
			t.RecurrenceID = params.RecurrenceID
			t.OccurrenceDate = params.OccurrenceDate
			if err := u.tx.Transactions().Update(ctx, t); err != nil {
				return nil, fmt.Errorf("failed to link occurrence: %w", err)
			}
		}
		return t, nil
	}

	t := &transaction.Transaction{
		ID:             uuid.New().String(),
		UserID:         params.UserID,
		Description:    params.Description,
		Amount:         params.Amount,
		Category:       params.Category,
		Type:           params.Type,
		Method:         params.Method,
		Date:           params.Date,
		BankAccountID:  params.BankAccountID,
		RecurrenceID:   params.RecurrenceID,
		OccurrenceDate: params.OccurrenceDate,
	}
	if err := u.tx.Transactions().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := u.post(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *unit) updateTransaction(ctx context.Context, userID int64, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	existing, err := u.tx.Transactions().GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next, err := params.Apply(existing)
	if err != nil {
		return nil, err
	}
	next.Date = clock.DateOf(next.Date)

	wasCard, isCard := existing.IsCreditCard(), next.IsCreditCard()
	switch {
	case wasCard && isCard:
		if existing.PurchaseID == "" {
			return nil, u.fault(ctx, userID, "", "credit card transaction "+existing.ID+" has no purchase")
		}
		_, err := u.editPurchase(ctx, userID, existing.PurchaseID, purchase.UpdateParams{
			CardID:       &next.CardID,
			Description:  &next.Description,
			Category:     &next.Category,
			TotalAmount:  &next.Amount,
			PurchaseDate: &next.Date,
		})
		if err != nil {
			return nil, err
		}
		return u.tx.Transactions().GetByID(ctx, userID, id)

	case wasCard && !isCard:
		if existing.PurchaseID == "" {
			return nil, u.fault(ctx, userID, "", "credit card transaction "+existing.ID+" has no purchase")
		}
		if err := u.deletePurchase(ctx, userID, existing.PurchaseID, true); err != nil {
			return nil, err
		}
		next.PurchaseID = ""
		if err := u.tx.Transactions().Update(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		if err := u.post(ctx, next); err != nil {
			return nil, err
		}
		return next, nil

	case !wasCard && isCard:
		if err := u.unpost(ctx, existing); err != nil {
			return nil, err
		}
		_, linked, err := u.createPurchase(ctx, purchase.CreateParams{
			UserID:           userID,
			CardID:           next.CardID,
			Description:      next.Description,
			Category:         next.Category,
			TotalAmount:      next.Amount,
			InstallmentCount: 1,
			PurchaseDate:     next.Date,
		}, next)
		if err != nil {
			return nil, err
		}
		return linked, nil

	default:
		if bankEffectChanged(existing, next) {
			if err := u.unpost(ctx, existing); err != nil {
				return nil, err
			}
			if err := u.post(ctx, next); err != nil {
				return nil, err
			}
		}
		if err := u.tx.Transactions().Update(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		return next, nil
	}
}

func (u *unit) deleteTransaction(ctx context.Context, userID int64, id string) error {
	existing, err := u.tx.Transactions().GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if existing.IsCreditCard() {
		if existing.PurchaseID == "" {
			return u.fault(ctx, userID, "", "credit card transaction "+existing.ID+" has no purchase")
		}
		return u.deletePurchase(ctx, userID, existing.PurchaseID, false)
	}

	if err := u.unpost(ctx, existing); err != nil {
		return err
	}
	if err := u.tx.Transactions().Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// post applies a transaction to its bank account. Plain postings may
// overdraw the account.
func (u *unit) post(ctx context.Context, t *transaction.Transaction) error {
	if !t.Method.UsesBankAccount() || t.BankAccountID == "" {
		return nil
	}
	entry := bankEntry(t, t.Description)
	var err error
	if t.Type == transaction.TypeIncome {
		_, err = u.accounts.Credit(ctx, entry)
	} else {
		_, err = u.accounts.Debit(ctx, entry)
	}
	return err
}

// unpost reverses post with an opposite movement
func (u *unit) unpost(ctx context.Context, t *transaction.Transaction) error {
	if !t.Method.UsesBankAccount() || t.BankAccountID == "" {
		return nil
	}
	entry := bankEntry(t, "Estorno: "+t.Description)
	var err error
	if t.Type == transaction.TypeIncome {
		_, err = u.accounts.Debit(ctx, entry)
	} else {
		_, err = u.accounts.Credit(ctx, entry)
	}
	return err
}

func bankEntry(t *transaction.Transaction, description string) account.Entry {
	return account.Entry{
		UserID:         t.UserID,
		AccountID:      t.BankAccountID,
		Amount:         t.Amount,
		Description:    description,
		Date:           t.Date,
		ReferenceKind:  account.ReferenceTransaction,
		ReferenceID:    t.ID,
		AllowOverdraft: true,
	}
}

// bankEffectChanged reports whether the posted movement no longer matches
// the transaction. Date and description are copied onto the movement, so
// editing either re-posts it as well.
func bankEffectChanged(a, b *transaction.Transaction) bool {
	return a.Method.UsesBankAccount() != b.Method.UsesBankAccount() ||
		a.BankAccountID != b.BankAccountID ||
		a.Type != b.Type ||
		!a.Amount.Equal(b.Amount) ||
		!a.Date.Equal(b.Date) ||
		a.Description != b.Description
}
