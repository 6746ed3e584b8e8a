package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
)

// Scheduler enqueues periodic tasks on a seconds-resolution cron.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// ExpiryEnqueuer queues one expiry sweep.
type ExpiryEnqueuer interface {
	EnqueueExpiry(ctx context.Context) error
}

// NewScheduler registers the expiry sweep on spec (six fields, seconds first).
func NewScheduler(spec string, enqueuer ExpiryEnqueuer, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(cron.WithSeconds()), log: logger.Named(log, "scheduler")}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := enqueuer.EnqueueExpiry(ctx); err != nil {
			s.log.Error("expiry sweep not enqueued", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Info("starting scheduler", zap.Int("entries", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop halts the cron and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
