package main

import (
	"context"
	"fmt"

	"financeiro/internal/domain/account"
	"financeiro/internal/domain/billing"
	"financeiro/internal/domain/budget"
	"financeiro/internal/domain/card"
	"financeiro/internal/domain/notification"
	"financeiro/internal/domain/recurrence"
	"financeiro/internal/domain/store"
	"financeiro/internal/infrastructure/firebase"
	"financeiro/internal/infrastructure/memory"
	"financeiro/internal/infrastructure/postgres"
	httphandlers "financeiro/internal/interfaces/http"
	"financeiro/internal/shared/auth"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/config"
	"financeiro/internal/shared/logger"
	"financeiro/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	// DB is nil when running on the memory store
	DB *postgres.DB

	Store    store.Store
	JWT      *auth.JWT
	Handlers httphandlers.Handlers

	// Billing jobs (for the scheduler)
	Status       *billing.StatusService
	Materializer *billing.Materializer
	Reconciler   *billing.Reconciler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log := logger.WithComponent("deps")
	deps := &Dependencies{JWT: auth.NewJWT(cfg.JWT.Secret)}

	var notificationRepo notification.Repository
	switch cfg.Storage {
	case config.StorageMemory:
		deps.Store = memory.New()
		notificationRepo = memory.NewNotificationRepository()
		log.Warn().Msg("using in-memory storage, data is lost on restart")
	default:
		db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("connected to database")

		if cfg.Database.AutoMigrate {
			applied, err := postgres.Migrate(ctx, db)
			if err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
			log.Info().Int("applied", applied).Msg("database migrations up to date")
		}

		deps.DB = db
		deps.Store = postgres.NewStore(db)
		notificationRepo = postgres.NewNotificationRepository(db)
	}

	// Push delivery is optional; without credentials notifications are
	// only stored.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		client, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID, notificationRepo.DeactivateToken)
		if err != nil {
			deps.Close()
			return nil, err
		}
		messenger = client
		log.Info().Msg("firebase messaging enabled")
	}
	notificationService := notification.NewService(notificationRepo, messenger)

	texts := messages.Default()
	if cfg.Billing.MessagesFile != "" {
		loaded, err := messages.Load(cfg.Billing.MessagesFile)
		if err != nil {
			deps.Close()
			return nil, err
		}
		texts = loaded
	}
	notifier := billing.NewPushNotifier(notificationService, texts)

	clk := clock.System{Location: cfg.Billing.Location}
	st := deps.Store
	query := billing.NewInvoiceQuery(st, clk)

	deps.Status = billing.NewStatusService(st, clk, notifier)
	deps.Materializer = billing.NewMaterializer(st, clk)
	deps.Reconciler = billing.NewReconciler(st, clk)

	deps.Handlers = httphandlers.Handlers{
		Cards:         httphandlers.NewCardHandler(card.NewService(st.Cards(), st.Invoices(), st.Purchases()), query),
		Purchases:     httphandlers.NewPurchaseHandler(billing.NewPurchaseService(st, clk)),
		Invoices:      httphandlers.NewInvoiceHandler(query, billing.NewPaymentProcessor(st, clk, notifier)),
		Transactions:  httphandlers.NewTransactionHandler(billing.NewTransactionService(st, clk)),
		Accounts:      httphandlers.NewAccountHandler(account.NewService(st.Accounts())),
		Recurrences:   httphandlers.NewRecurrenceHandler(recurrence.NewService(st.Recurrences())),
		Notifications: httphandlers.NewNotificationHandler(notificationService),
		Overview:      httphandlers.NewOverviewHandler(billing.NewOverviewService(st), deps.Reconciler, clk),
		Budgets:       httphandlers.NewBudgetHandler(budget.NewService(st.Budgets(), st.Categories(), st.Transactions()), clk),
	}

	return deps, nil
}

// Pinger returns the readiness probe target, nil for the memory store.
func (d *Dependencies) Pinger() httphandlers.Pinger {
	if d.DB == nil {
		return nil
	}
	return d.DB
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
