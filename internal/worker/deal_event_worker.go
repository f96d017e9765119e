package worker

import (
	"context"
	"errors"

	"ticket-marketplace/internal/metrics"
	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/queue"
	"ticket-marketplace/internal/service"
	apperrors "ticket-marketplace/pkg/app_errors"
	"ticket-marketplace/pkg/logger"

	"go.uber.org/zap"
)

type DealEventWorker interface {
	// 訂閱交易事件隊列並逐筆處理；ctx 結束且處理中的事件完成後才返回
	Run(ctx context.Context) error
}

type DealEventWorkerImpl struct {
	service service.TicketService
	queue   queue.Queue[model.DealEvent]
}

func NewDealEventWorker(service service.TicketService, queue queue.Queue[model.DealEvent]) DealEventWorker {
	return &DealEventWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *DealEventWorkerImpl) Run(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	logger.WithComponent("worker").Info("Deal event worker started")
	for msg := range msgs {
		w.handle(ctx, msg)
	}
	logger.WithComponent("worker").Info("Deal event worker stopped")
	return nil
}

func (w *DealEventWorkerImpl) handle(ctx context.Context, msg queue.Delivery[model.DealEvent]) {
	log := logger.WithComponent("worker")
	event := msg.Data

	_, err := w.service.ApplyDealEvent(ctx, event)
	metrics.TrackDealEvent(event.EventType, err)

	switch {
	case err == nil:
		msg.Ack()
	case isPermanent(err):
		// 重送也不會成功：丟棄
		log.Warn("Dropping deal event",
			zap.String("event_type", event.EventType),
			zap.Int64("deal_id", event.DealID),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
		msg.Nack(false)
	default:
		// 資料庫暫時有問題，留在 pending list 等重試
		log.Error("Failed to apply deal event",
			zap.String("event_type", event.EventType),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
		msg.Nack(true)
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict)
}
