package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quotedesk_backend/internal/adapters"
	"quotedesk_backend/internal/catalog"
	"quotedesk_backend/internal/clients"
	"quotedesk_backend/internal/events"
	"quotedesk_backend/internal/notification"
	"quotedesk_backend/internal/notification/outbox"
	"quotedesk_backend/internal/projects"
	"quotedesk_backend/internal/quotes"
	"quotedesk_backend/internal/scheduler"
	"quotedesk_backend/platform/config"
	"quotedesk_backend/platform/db"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	outboxRepo := outbox.New(pool)

	notificationModule := notification.New(pool, log)
	notificationModule.RegisterHandlers(eventBus)

	val := validator.New()

	// Worker-side quote wiring for the expiry sweep (no HTTP handlers required).
	catalogModule := catalog.NewModule(pool, val, log)
	clientsModule := clients.NewModule(pool, val, log)
	projectsModule := projects.NewModule(pool, val, log)
	quotesModule, err := quotes.NewModule(pool, eventBus, val, cfg, log, quotes.Collaborators{
		Catalog:  adapters.NewQuotesCatalogReader(catalogModule.Service()),
		Clients:  adapters.NewQuotesClientReader(clientsModule.Service()),
		Projects: adapters.NewQuotesProjectCreator(projectsModule.Service()),
	})
	if err != nil {
		log.Error("failed to initialize quotes module", "error", err)
		panic("failed to initialize quotes module: " + err.Error())
	}

	dispatcher, err := scheduler.NewNotificationOutboxDispatcher(cfg, outboxRepo, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()

	worker, err := scheduler.NewWorker(cfg, quotesModule.Service(), eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	cron, err := scheduler.NewCron(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler cron", "error", err)
		panic("failed to initialize scheduler cron: " + err.Error())
	}

	// Sweep once on boot so a restart does not wait a full cron interval.
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()
	if err := client.EnqueueQuoteExpiry(ctx); err != nil {
		log.Warn("initial quote expiry sweep not enqueued", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { dispatcher.Run(gctx); return nil })
	g.Go(func() error { cron.Run(gctx); return nil })
	g.Go(func() error { worker.Run(gctx); return nil })
	_ = g.Wait()
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
