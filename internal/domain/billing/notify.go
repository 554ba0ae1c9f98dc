package billing

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"financeiro/internal/domain/card"
	"financeiro/internal/domain/invoice"
	"financeiro/internal/domain/money"
	"financeiro/internal/domain/notification"
	"financeiro/internal/shared/logger"
	"financeiro/internal/shared/messages"
)

// Notifier tells the user about invoice events. Delivery is best effort and
// happens after the unit of work committed.
type Notifier interface {
	InvoicePaid(ctx context.Context, inv *invoice.Invoice, c *card.Card)
	InvoiceOverdue(ctx context.Context, inv *invoice.Invoice, c *card.Card)
}

// Sender is implemented by notification.Service
type Sender interface {
	SendToUser(ctx context.Context, userID int64, title, body, category string, data map[string]string) error
}

// PushNotifier renders invoice messages and hands them to a Sender
type PushNotifier struct {
	sender Sender
	texts  *messages.Messages
	log    zerolog.Logger
}

// NewPushNotifier creates a notifier. texts falls back to the built-in messages when nil.
func NewPushNotifier(sender Sender, texts *messages.Messages) *PushNotifier {
	if texts == nil {
		texts = messages.Default()
	}
	return &PushNotifier{sender: sender, texts: texts, log: logger.WithComponent("billing.notify")}
}

func (n *PushNotifier) InvoicePaid(ctx context.Context, inv *invoice.Invoice, c *card.Card) {
	n.send(ctx, inv, n.texts.InvoicePaid.Render(invoiceVars(inv, c, inv.PaidAmount)))
}

func (n *PushNotifier) InvoiceOverdue(ctx context.Context, inv *invoice.Invoice, c *card.Card) {
	n.send(ctx, inv, n.texts.InvoiceOverdue.Render(invoiceVars(inv, c, inv.RemainingAmount)))
}

func (n *PushNotifier) send(ctx context.Context, inv *invoice.Invoice, text messages.MessageText) {
	data := map[string]string{
		"invoice_id": inv.ID,
		"card_id":    inv.CardID,
		"period":     inv.Period.String(),
		"status":     string(inv.Status),
	}
	if err := n.sender.SendToUser(ctx, inv.UserID, text.Title, text.Body, notification.CategoryInvoices, data); err != nil {
		n.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("failed to notify invoice event")
	}
}

func invoiceVars(inv *invoice.Invoice, c *card.Card, amount decimal.Decimal) map[string]string {
	name := ""
	if c != nil {
		name = c.Name
	}
	return map[string]string{
		"card":     name,
		"period":   inv.Period.String(),
		"due_date": inv.DueDate.Format("02/01/2006"),
		"amount":   money.Format(amount),
	}
}

type noopNotifier struct{}

func (noopNotifier) InvoicePaid(context.Context, *invoice.Invoice, *card.Card)    {}
func (noopNotifier) InvoiceOverdue(context.Context, *invoice.Invoice, *card.Card) {}
