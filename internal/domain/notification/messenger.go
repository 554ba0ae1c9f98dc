package notification

import "context"

// Messenger delivers push messages to device tokens. The FCM client is the
// production implementation; a nil Messenger disables delivery.
type Messenger interface {
	Send(ctx context.Context, token string, title, body string, data map[string]string) error
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
