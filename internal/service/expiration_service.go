package service

import (
	"context"
	"time"

	"ticket-marketplace/internal/cache"
	"ticket-marketplace/internal/metrics"
	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/queue"
	"ticket-marketplace/internal/repository"
	"ticket-marketplace/pkg/logger"

	"go.uber.org/zap"
)

type ExpirationService interface {
	// 把活動日期已過的 AVAILABLE 票券改成 EXPIRED，回傳異動筆數
	ExpireTickets(ctx context.Context) (int, error)
}

type ExpirationServiceImpl struct {
	repository repository.TicketRepository
	cache      cache.RedisTicketCache
	lock       cache.SweepLock
	lockTTL    time.Duration
	publisher  queue.Publisher[model.TicketEvent]
	now        func() time.Time
}

// NewExpirationService lock 為 nil 時不做跨 replica 的互斥
func NewExpirationService(
	ticketRepository repository.TicketRepository,
	ticketCache cache.RedisTicketCache,
	lock cache.SweepLock,
	lockTTL time.Duration,
	publisher queue.Publisher[model.TicketEvent],
) ExpirationService {
	return &ExpirationServiceImpl{
		repository: ticketRepository,
		cache:      ticketCache,
		lock:       lock,
		lockTTL:    lockTTL,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (s *ExpirationServiceImpl) ExpireTickets(ctx context.Context) (int, error) {
	log := logger.WithComponent("sweeper")

	if s.lock != nil {
		token, ok, err := s.lock.Acquire(ctx, s.lockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			log.Debug("Sweep lock held by another instance, skipping")
			return 0, nil
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), token); err != nil {
				log.Warn("Failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	now := s.now().UTC()

	// 狀態表中 AVAILABLE -> EXPIRED 的邊，由單一 UPDATE 完成
	ids, err := s.repository.ExpireAvailable(ctx, now)
	if err != nil {
		return 0, err
	}
	metrics.TrackSweep(len(ids), time.Since(start))

	if len(ids) == 0 {
		log.Debug("No tickets to expire")
		return 0, nil
	}

	log.Info("Expired tickets", zap.Int("count", len(ids)))

	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		log.Warn("Failed to invalidate expired tickets", zap.Error(err))
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err = s.publisher.Publish(pubCtx, &model.TicketEvent{
		Type:       model.TicketEventsExpired,
		TicketIDs:  ids,
		Status:     model.TicketStatusExpired,
		OccurredAt: now,
	})
	if err != nil {
		log.Warn("Failed to publish expiration event", zap.Error(err))
	}

	return len(ids), nil
}
