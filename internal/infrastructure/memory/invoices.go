package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"financeiro/internal/domain/cycle"
	"financeiro/internal/domain/invoice"
)

type invoiceRepo struct{ v *view }

func (r *invoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	st, release := r.v.acquire()
	defer release()

	for _, existing := range st.invoices {
		if existing.UserID == inv.UserID && existing.CardID == inv.CardID && existing.Period == inv.Period {
			return invoice.ErrInvoiceExists
		}
	}
	now := r.v.now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	st.invoices[inv.ID] = *inv
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, userID int64, id string) (*invoice.Invoice, error) {
	st, release := r.v.acquire()
	defer release()

	inv, ok := st.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, invoice.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (r *invoiceRepo) FindByPeriod(ctx context.Context, userID int64, cardID string, period cycle.Period) (*invoice.Invoice, error) {
	st, release := r.v.acquire()
	defer release()

	for _, inv := range st.invoices {
		if inv.UserID == userID && inv.CardID == cardID && inv.Period == period {
			return &inv, nil
		}
	}
	return nil, invoice.ErrInvoiceNotFound
}

func (r *invoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	st, release := r.v.acquire()
	defer release()

	existing, ok := st.invoices[inv.ID]
	if !ok || existing.UserID != inv.UserID {
		return invoice.ErrInvoiceNotFound
	}
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = r.v.now()
	st.invoices[inv.ID] = *inv
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, userID int64, id string) error {
	st, release := r.v.acquire()
	defer release()

	inv, ok := st.invoices[id]
	if !ok || inv.UserID != userID {
		return invoice.ErrInvoiceNotFound
	}
	delete(st.invoices, id)
	return nil
}

func (r *invoiceRepo) ListByCard(ctx context.Context, userID int64, cardID string) ([]*invoice.Invoice, error) {
	return r.list(func(inv *invoice.Invoice) bool {
		return inv.UserID == userID && inv.CardID == cardID
	}), nil
}

func (r *invoiceRepo) ListByUserID(ctx context.Context, userID int64) ([]*invoice.Invoice, error) {
	return r.list(func(inv *invoice.Invoice) bool { return inv.UserID == userID }), nil
}

func (r *invoiceRepo) ListOpenDueBefore(ctx context.Context, day time.Time) ([]*invoice.Invoice, error) {
	return r.list(func(inv *invoice.Invoice) bool {
		return inv.Status == invoice.StatusOpen && inv.DueDate.Before(day)
	}), nil
}

func (r *invoiceRepo) CountByCard(ctx context.Context, userID int64, cardID string) (int, error) {
	invoices, _ := r.ListByCard(ctx, userID, cardID)
	return len(invoices), nil
}

// list returns matching invoices, latest period first
func (r *invoiceRepo) list(match func(*invoice.Invoice) bool) []*invoice.Invoice {
	st, release := r.v.acquire()
	defer release()

	var out []*invoice.Invoice
	for _, inv := range st.invoices {
		if match(&inv) {
			out = append(out, &inv)
		}
	}
	slices.SortFunc(out, func(a, b *invoice.Invoice) int {
		switch {
		case a.Period == b.Period:
			return strings.Compare(a.CardID, b.CardID)
		case b.Period.Before(a.Period):
			return -1
		default:
			return 1
		}
	})
	return out
}
