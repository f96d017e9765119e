package worker

import (
	"context"
	"time"

	"ticket-marketplace/internal/service"
	"ticket-marketplace/pkg/logger"

	"go.uber.org/zap"
)

type ExpirationSweeper struct {
	service  service.ExpirationService
	interval time.Duration
	now      func() time.Time
}

func NewExpirationSweeper(service service.ExpirationService, interval time.Duration) *ExpirationSweeper {
	return &ExpirationSweeper{
		service:  service,
		interval: interval,
		now:      time.Now,
	}
}

// Run 啟動時先掃一次，之後對齊 interval 的整點執行；ctx 結束時回傳
func (s *ExpirationSweeper) Run(ctx context.Context) error {
	log := logger.WithComponent("sweeper")
	log.Info("Expiration sweeper started", zap.Duration("interval", s.interval))

	s.sweep(ctx)

	for {
		timer := time.NewTimer(s.untilNextTick())
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("Expiration sweeper stopped")
			return nil
		case <-timer.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirationSweeper) untilNextTick() time.Duration {
	now := s.now()
	next := now.Truncate(s.interval).Add(s.interval)
	return next.Sub(now)
}

// sweep 失敗只記錄，下一輪再試
func (s *ExpirationSweeper) sweep(ctx context.Context) {
	if _, err := s.service.ExpireTickets(ctx); err != nil && ctx.Err() == nil {
		logger.WithComponent("sweeper").Error("Expiration sweep failed", zap.Error(err))
	}
}
