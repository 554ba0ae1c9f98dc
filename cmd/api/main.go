package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"financeiro/internal/infrastructure/postgres/listener"
	"financeiro/internal/interfaces/scheduler"
	"financeiro/internal/shared/config"
	"financeiro/internal/shared/logger"
	"financeiro/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return err
	}
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  os.Getenv("ENVIRONMENT"),
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		})
		defer func() {
			tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(tctx); err != nil {
				log.Error().Err(err).Msg("telemetry shutdown failed")
			}
		}()
		if err != nil {
			return err
		}
	}

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	if deps.DB != nil && cfg.Database.ListenChanges {
		changes := listener.NewBillingListener(cfg.Database.ConnectionString(), deps.Reconciler, 0)
		changes.Start(ctx)
		defer changes.Stop()
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(scheduler.Config{
			Entries: []scheduler.Entry{
				{Spec: cfg.Scheduler.OverdueSpec, Job: scheduler.NewOverdueJob(deps.Status)},
				{Spec: cfg.Scheduler.RecurrenceSpec, Job: scheduler.NewRecurrenceJob(deps.Materializer)},
				{Spec: cfg.Scheduler.ReconcileSpec, Job: scheduler.NewReconcileJob(deps.Reconciler)},
			},
			Location:     cfg.Billing.Location,
			WorkerCount:  cfg.Scheduler.WorkerCount,
			QueueSize:    cfg.Scheduler.QueueSize,
			JobTimeout:   cfg.Scheduler.JobTimeout,
			RunOnStartup: cfg.Scheduler.RunOnStartup,
		})
		if err != nil {
			return err
		}
		sched.Start()
	} else {
		log.Info().Msg("scheduler is disabled")
	}

	handler := SetupRoutes(deps, cfg)
	errc := make(chan error, 1)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg), errc)

	select {
	case <-ctx.Done():
	case err = <-errc:
		log.Error().Err(err).Msg("server failed")
	}

	GracefulShutdown(srv, redirectSrv, sched, shutdownTimeout)
	return err
}
