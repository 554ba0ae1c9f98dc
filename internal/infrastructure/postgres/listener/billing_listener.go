package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"financeiro/internal/domain/billing"
	"financeiro/internal/shared/logger"
)

const (
	channelName       = "billing_changed"
	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
)

// ChangeNotification is the payload of a billing_changed NOTIFY
type ChangeNotification struct {
	UserID int64  `json:"user_id"`
	Table  string `json:"table"`
}

func parseNotification(extra string) (ChangeNotification, error) {
	var payload ChangeNotification
	if err := json.Unmarshal([]byte(extra), &payload); err != nil {
		return payload, fmt.Errorf("invalid notification payload: %w", err)
	}
	if payload.UserID <= 0 {
		return payload, fmt.Errorf("notification without user_id: %q", extra)
	}
	return payload, nil
}

// UserReconciler is satisfied by billing.Reconciler
type UserReconciler interface {
	Reconcile(ctx context.Context, userID int64) (*billing.ReconcileReport, error)
}

// BillingListener reconciles users whose purchases, payments or
// transactions were changed by another database client. Bursts of changes
// for the same user are coalesced and flushed once per debounce window.
type BillingListener struct {
	connStr    string
	reconciler UserReconciler
	debounce   time.Duration
	pending    *pendingUsers
	log        zerolog.Logger

	shutdownCh chan struct{}
	done       chan struct{}
}

func NewBillingListener(connStr string, reconciler UserReconciler, debounce time.Duration) *BillingListener {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &BillingListener{
		connStr:    connStr,
		reconciler: reconciler,
		debounce:   debounce,
		pending:    newPendingUsers(),
		log:        logger.WithComponent("postgres.listener"),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening for notifications in a background goroutine
func (l *BillingListener) Start(ctx context.Context) {
	go l.listen(ctx)
	l.log.Info().Str("channel", channelName).Msg("billing change listener started")
}

// Stop shuts the listener down and reconciles anything still pending
func (l *BillingListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	l.log.Info().Msg("billing change listener stopped")
}

func (l *BillingListener) listen(ctx context.Context) {
	defer close(l.done)

	var flushers sync.WaitGroup
	flushers.Add(1)
	go func() {
		defer flushers.Done()
		l.flushLoop(ctx)
	}()
	defer flushers.Wait()

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			l.log.Info().Msg("reconnecting to PostgreSQL for notifications")
		}
	}
}

func (l *BillingListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.log.Info().Msg("connected to notification channel")
		case pq.ListenerEventDisconnected:
			l.log.Warn().Err(err).Msg("disconnected from notification channel")
		case pq.ListenerEventReconnected:
			l.log.Info().Msg("reconnected to notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Error().Err(err).Msg("notification connection attempt failed")
		}
	})
	defer listener.Close()

	if err := listener.Listen(channelName); err != nil {
		l.log.Error().Err(err).Str("channel", channelName).Msg("failed to listen")
		return
	}

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// Connection lost; pq re-establishes it, but events in
				// between are gone. Reconnect from scratch.
				return
			}
			payload, err := parseNotification(n.Extra)
			if err != nil {
				l.log.Warn().Err(err).Msg("ignoring notification")
				continue
			}
			l.pending.add(payload.UserID)
		case <-time.After(pingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("listener ping failed")
				}
			}()
		}
	}
}

func (l *BillingListener) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(l.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.flush(ctx)
		case <-l.shutdownCh:
			l.flush(context.WithoutCancel(ctx))
			return
		case <-ctx.Done():
			return
		}
	}
}

// flush reconciles every user queued since the previous flush
func (l *BillingListener) flush(ctx context.Context) {
	for _, userID := range l.pending.drain() {
		report, err := l.reconciler.Reconcile(ctx, userID)
		if err != nil {
			l.log.Error().Err(err).Int64("user_id", userID).Msg("reconcile after external change failed")
			continue
		}
		if report.Changed() {
			l.log.Info().
				Int64("user_id", userID).
				Int("invoices_adjusted", report.InvoicesAdjusted).
				Int("invoices_deleted", report.InvoicesDeleted).
				Int("invoices_created", report.InvoicesCreated).
				Int("transactions_linked", report.TransactionsLinked).
				Msg("reconciled after external change")
		}
	}
}

// pendingUsers is a set of user IDs, drained in insertion order
type pendingUsers struct {
	mu    sync.Mutex
	order []int64
	seen  map[int64]struct{}
}

func newPendingUsers() *pendingUsers {
	return &pendingUsers{seen: make(map[int64]struct{})}
}

func (p *pendingUsers) add(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[userID]; ok {
		return
	}
	p.seen[userID] = struct{}{}
	p.order = append(p.order, userID)
}

func (p *pendingUsers) drain() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.order
	p.order = nil
	clear(p.seen)
	return out
}
