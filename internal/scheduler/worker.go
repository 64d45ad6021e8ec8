package scheduler

import (
	"context"
	"time"

	"quotedesk_backend/internal/events"
	"quotedesk_backend/platform/config"
	"quotedesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// QuoteExpirer expires approved quotes whose validity has lapsed.
type QuoteExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	quotes  QuoteExpirer
	bus     events.Bus
	log     *logger.Logger
	nowFunc func() time.Time
}

func NewWorker(cfg config.SchedulerConfig, quotes QuoteExpirer, bus events.Bus, log *logger.Logger) (*Worker, error) {
	opt, queue, err := connectionFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(quotes, bus, log)
	w.server = server
	return w, nil
}

func newWorker(quotes QuoteExpirer, bus events.Bus, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:     mux,
		quotes:  quotes,
		bus:     bus,
		log:     log,
		nowFunc: time.Now,
	}

	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)
	mux.HandleFunc(TaskQuoteExpiry, w.handleQuoteExpiry)
	return w
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
		TenantID:  tenantID,
	})
}

func (w *Worker) handleQuoteExpiry(ctx context.Context, _ *asynq.Task) error {
	if w.quotes == nil {
		return nil
	}

	expired, err := w.quotes.ExpireDue(ctx, w.nowFunc().UTC())
	if err != nil {
		w.log.Error("quote expiry sweep failed", "expired", expired, "error", err)
		return err
	}
	if expired > 0 {
		w.log.Info("quote expiry sweep completed", "expired", expired)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
