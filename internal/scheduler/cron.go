package scheduler

import (
	"context"

	"quotedesk_backend/platform/config"
	"quotedesk_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Cron registers periodic tasks with asynq's scheduler.
type Cron struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewCron(cfg config.SchedulerConfig, log *logger.Logger) (*Cron, error) {
	opt, queue, err := connectionFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		LogLevel: asynq.WarnLevel,
	})

	task, err := NewQuoteExpiryTask()
	if err != nil {
		return nil, err
	}
	spec := cfg.GetQuoteExpiryCron()
	entryID, err := s.Register(spec, task, asynq.Queue(queue), asynq.Unique(quoteExpiryUniqueTTL))
	if err != nil {
		return nil, err
	}
	log.Info("quote expiry sweep registered", "cron", spec, "entryId", entryID)

	return &Cron{scheduler: s, log: log}, nil
}

func (c *Cron) Run(ctx context.Context) {
	if c == nil || c.scheduler == nil {
		return
	}

	if err := c.scheduler.Start(); err != nil {
		c.log.Error("scheduler cron failed to start", "error", err)
		return
	}
	<-ctx.Done()
	c.scheduler.Shutdown()
}
