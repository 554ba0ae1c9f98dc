package memory

import (
	"context"
	"slices"

	"financeiro/internal/domain/payment"
)

type paymentRepo struct{ v *view }

func (r *paymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	st, release := r.v.acquire()
	defer release()

	p.CreatedAt = r.v.now()
	st.payments = append(st.payments, *p)
	return nil
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, userID int64, invoiceID string) ([]*payment.Payment, error) {
	st, release := r.v.acquire()
	defer release()

	var out []*payment.Payment
	for _, p := range st.payments {
		if p.UserID == userID && p.InvoiceID == invoiceID {
			out = append(out, &p)
		}
	}
	slices.SortStableFunc(out, func(a, b *payment.Payment) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}
