package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/store"
	"financeiro/internal/domain/transaction"
)

// Overview is the home page summary of a user's finances
type Overview struct {
	Period           cycle.Period    `json:"period"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int             `json:"transactionCount"`
	BankBalance      decimal.Decimal `json:"bankBalance"`
	WalletBalance    decimal.Decimal `json:"walletBalance"`
	Balance          decimal.Decimal `json:"balance"`
	UnpaidInvoices   int             `json:"unpaidInvoices"`
	InvoiceDebt      decimal.Decimal `json:"invoiceDebt"`
}

// OverviewService builds the home summary
type OverviewService struct {
	store store.Store
}

// NewOverviewService creates a new overview service
func NewOverviewService(st store.Store) *OverviewService {
	return &OverviewService{store: st}
}

// Summary reports the month's income and expenses, the bank and cash
// balances, and what is still owed on card invoices. Cash (wallet) balance
// is the all-time difference between cash income and cash expenses.
func (s *OverviewService) Summary(ctx context.Context, userID int64, period cycle.Period) (*Overview, error) {
	if userID <= 0 {
		return nil, transaction.ErrInvalidUserID
	}

	from := period.Day(1)
	to := period.Day(31)
	month, err := s.store.Transactions().Totals(ctx, transaction.Filter{UserID: userID, From: from, To: to})
	if err != nil {
		return nil, err
	}
	allTime, err := s.store.Transactions().Totals(ctx, transaction.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.Accounts().ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	bank := decimal.Zero
	for _, acc := range accounts {
		bank = bank.Add(acc.Balance)
	}

	invoices, err := s.store.Invoices().ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	debt := decimal.Zero
	unpaid := 0
	for _, inv := range invoices {
		if inv.Status == invoice.StatusPaid {
			continue
		}
		unpaid++
		debt = debt.Add(inv.RemainingAmount)
	}

	wallet := allTime.CashIncome.Sub(allTime.CashExpense)
	return &Overview{
		Period:           period,
		Income:           month.Income,
		Expense:          month.Expense,
		Net:              month.Income.Sub(month.Expense),
		TransactionCount: month.Count,
		BankBalance:      bank,
		WalletBalance:    wallet,
		Balance:          bank.Add(wallet),
		UnpaidInvoices:   unpaid,
		InvoiceDebt:      debt,
	}, nil
}
