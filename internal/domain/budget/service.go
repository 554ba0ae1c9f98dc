package budget

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/transaction"
)

// ExpenseLister reads the transactions spending is measured from.
// Satisfied by transaction.Repository.
type ExpenseLister interface {
	List(ctx context.Context, filter transaction.Filter) ([]*transaction.Transaction, error)
}

// Service manages user categories and monthly budgets
type Service struct {
	budgets    Repository
	categories CategoryRepository
	expenses   ExpenseLister
}

// NewService creates a new budget service
func NewService(budgets Repository, categories CategoryRepository, expenses ExpenseLister) *Service {
	return &Service{budgets: budgets, categories: categories, expenses: expenses}
}

// CreateCategory adds a user category. Names of built-in categories (and
// their aliases) are taken.
func (s *Service) CreateCategory(ctx context.Context, params CreateCategoryParams) (*Category, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if _, ok := transaction.CategoryKey(name); ok {
		return nil, ErrCategoryExists
	}

	c := &Category{
		ID:     uuid.New().String(),
		UserID: params.UserID,
		Name:   name,
		Kind:   params.Kind,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns the built-in categories followed by the user's own,
// each group sorted by name.
func (s *Service) ListCategories(ctx context.Context, userID int64) ([]CategoryView, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	custom, err := s.categories.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	builtIn := make([]CategoryView, 0, len(transaction.Categories))
	for _, c := range transaction.Categories {
		builtIn = append(builtIn, CategoryView{Name: c.Name, Kind: c.Kind, BuiltIn: true})
	}
	slices.SortFunc(builtIn, func(a, b CategoryView) int { return strings.Compare(a.Name, b.Name) })

	out := builtIn
	for _, c := range custom {
		out = append(out, CategoryView{ID: c.ID, Name: c.Name, Kind: c.Kind})
	}
	return out, nil
}

// DeleteCategory removes a user category that no budget refers to
func (s *Service) DeleteCategory(ctx context.Context, userID int64, id string) error {
	c, err := s.categories.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	n, err := s.budgets.CountByCategory(ctx, userID, c.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	return s.categories.Delete(ctx, userID, id)
}

// CreateBudget stores a budget for an expense category and month and
// returns it with the spending already recorded.
func (s *Service) CreateBudget(ctx context.Context, params CreateParams) (*Status, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	name, kind, err := s.resolveCategory(ctx, params.UserID, params.Category)
	if err != nil {
		return nil, err
	}
	if kind != transaction.TypeExpense {
		return nil, ErrIncomeCategory
	}

	b := &Budget{
		ID:       uuid.New().String(),
		UserID:   params.UserID,
		Category: name,
		Period:   params.Period,
		Limit:    params.Limit,
	}
	if err := s.budgets.Create(ctx, b); err != nil {
		return nil, err
	}
	return s.status(ctx, b)
}

// GetBudget returns one budget with its spending
func (s *Service) GetBudget(ctx context.Context, userID int64, id string) (*Status, error) {
	b, err := s.budgets.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.status(ctx, b)
}

// UpdateLimit changes the limit of a budget
func (s *Service) UpdateLimit(ctx context.Context, userID int64, id string, limit decimal.Decimal) (*Status, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := s.budgets.UpdateLimit(ctx, userID, id, limit); err != nil {
		return nil, err
	}
	return s.GetBudget(ctx, userID, id)
}

// DeleteBudget removes a budget
func (s *Service) DeleteBudget(ctx context.Context, userID int64, id string) error {
	return s.budgets.Delete(ctx, userID, id)
}

// ListBudgets returns the user's budgets for a month, with spending
func (s *Service) ListBudgets(ctx context.Context, userID int64, period cycle.Period) ([]*Status, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	budgets, err := s.budgets.ListByPeriod(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []*Status{}, nil
	}

	spent, err := s.spending(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	out := make([]*Status, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, NewStatus(b, spent[categoryKey(b.Category)]))
	}
	return out, nil
}

func (s *Service) status(ctx context.Context, b *Budget) (*Status, error) {
	spent, err := s.spending(ctx, b.UserID, b.Period)
	if err != nil {
		return nil, err
	}
	return NewStatus(b, spent[categoryKey(b.Category)]), nil
}

// spending sums the month's expenses per category, whatever the payment
// method. Credit card purchases count on their purchase date.
func (s *Service) spending(ctx context.Context, userID int64, period cycle.Period) (map[string]decimal.Decimal, error) {
	expenses, err := s.expenses.List(ctx, transaction.Filter{
		UserID: userID,
		From:   period.Day(1),
		To:     period.Day(31),
		Type:   transaction.TypeExpense,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal)
	for _, t := range expenses {
		key := categoryKey(t.Category)
		out[key] = out[key].Add(t.Amount)
	}
	return out, nil
}

// resolveCategory maps a typed category to its stored name and kind
func (s *Service) resolveCategory(ctx context.Context, userID int64, category string) (string, transaction.Type, error) {
	if key, ok := transaction.CategoryKey(category); ok {
		c := transaction.Categories[key]
		return c.Name, c.Kind, nil
	}

	custom, err := s.categories.ListByUserID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	for _, c := range custom {
		if sameCategory(c.Name, category) {
			return c.Name, c.Kind, nil
		}
	}
	return "", "", ErrUnknownCategory
}

func categoryKey(name string) string {
	return strings.ToLower(transaction.NormalizeCategory(name))
}
