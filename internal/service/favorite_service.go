package service

import (
	"context"

	"ticket-marketplace/internal/metrics"
	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/repository"
	apperrors "ticket-marketplace/pkg/app_errors"
	"ticket-marketplace/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// maxToggleAttempts DELETE 與 INSERT 都沒有影響任何資料列時的重試次數
const maxToggleAttempts = 3

type FavoriteService interface {
	// 回傳切換後是否為收藏狀態
	Toggle(ctx context.Context, userID, ticketID int64) (bool, error)
	IsFavorite(ctx context.Context, userID, ticketID int64) (bool, error)
	ListFavorites(ctx context.Context, userID int64) ([]*model.Ticket, error)
	// 移除收藏；本來就沒有收藏時回傳 false
	RemoveFavorite(ctx context.Context, userID, ticketID int64) (bool, error)
}

type FavoriteServiceImpl struct {
	txManager  repository.TxManager
	repository repository.FavoriteRepository
}

func NewFavoriteService(txManager repository.TxManager, favoriteRepository repository.FavoriteRepository) FavoriteService {
	return &FavoriteServiceImpl{
		txManager:  txManager,
		repository: favoriteRepository,
	}
}

func (s *FavoriteServiceImpl) Toggle(ctx context.Context, userID, ticketID int64) (bool, error) {
	var favorited bool
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
			// 1. 已收藏 -> 刪除
			deleted, err := s.repository.Delete(ctx, tx, userID, ticketID)
			if err != nil {
				return err
			}
			if deleted {
				favorited = false
				return nil
			}

			// 2. 未收藏 -> 新增；unique constraint 擋下重複
			inserted, err := s.repository.InsertIfAbsent(ctx, tx, userID, ticketID)
			if err != nil {
				return err
			}
			if inserted {
				favorited = true
				return nil
			}

			// 兩個語句之間有其他請求新增了同一筆收藏
			logger.WithComponent("service").Debug("Favorite toggle raced, retrying",
				zap.Int64("user_id", userID),
				zap.Int64("ticket_id", ticketID),
				zap.Int("attempt", attempt))
		}
		return apperrors.ErrFavoriteContention
	})
	if err != nil {
		return false, err
	}

	metrics.TrackFavoriteToggle(favorited)
	return favorited, nil
}

func (s *FavoriteServiceImpl) IsFavorite(ctx context.Context, userID, ticketID int64) (bool, error) {
	return s.repository.Exists(ctx, userID, ticketID)
}

func (s *FavoriteServiceImpl) ListFavorites(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	return s.repository.ListTicketsByUser(ctx, userID)
}

func (s *FavoriteServiceImpl) RemoveFavorite(ctx context.Context, userID, ticketID int64) (bool, error) {
	return s.repository.Remove(ctx, userID, ticketID)
}
