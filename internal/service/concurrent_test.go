package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ticket-marketplace/internal/cache"
	cacheMocks "ticket-marketplace/internal/cache/mocks"
	"ticket-marketplace/internal/model"
	queueMocks "ticket-marketplace/internal/queue/mocks"
	"ticket-marketplace/internal/repository"
	repoMocks "ticket-marketplace/internal/repository/mocks"
	storageMocks "ticket-marketplace/internal/storage/mocks"
	apperrors "ticket-marketplace/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func insertTicket(t *testing.T, repo repository.TicketRepository, ownerID int64, eventDate time.Time) *model.Ticket {
	t.Helper()

	created, err := repo.Create(context.Background(), &model.Ticket{
		EventName:     "Popular Concert",
		EventDate:     eventDate,
		EventLocation: "Taipei Arena",
		OwnerID:       ownerID,
		Status:        model.TicketStatusAvailable,
		OriginalPrice: decimal.NewFromInt(2800),
		CategoryID:    1,
		TradeType:     model.TradeTypeDelivery,
	})
	if err != nil {
		t.Fatalf("Failed to create test ticket: %v", err)
	}

	return created
}

// 50 個請求同時把同一張票從 AVAILABLE 改成 RESERVED 或 EXPIRED，只能有一個成功
func TestConcurrentChangeStatus_SingleWinner(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	ticketRepo := repository.NewTicketRepository(db)
	ticketCache := cacheMocks.NewMockRedisTicketCache(t)
	ticketCache.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
	svc := NewTicketService(
		repository.NewTxManager(db),
		ticketRepo,
		ticketCache,
		storageMocks.NewMockBlobStore(t),
		&queueMocks.RecordingPublisher[model.TicketEvent]{},
	)

	ticket := insertTicket(t, ticketRepo, 7, time.Now().Add(48*time.Hour))

	concurrentRequests := 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	var winner model.TicketStatus

	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			target := "RESERVED"
			if index%2 == 1 {
				target = "EXPIRED"
			}

			updated, err := svc.ChangeStatus(ctx, ticket.ID, 7, target)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successCount++
				winner = updated.Status
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
		}(i)
	}

	wg.Wait()

	t.Logf("%d concurrent status changes - winner: %s", concurrentRequests, winner)

	assert.Equal(t, 1, successCount, "exactly one transition out of AVAILABLE may commit")
	stored, err := ticketRepo.FindByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, stored.Status)
}

// 同一使用者同時切換收藏，最後最多只會有一筆，且與成功切換的結果一致
func TestConcurrentToggleFavorite_AtMostOneRow(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	ticketRepo := repository.NewTicketRepository(db)
	svc := NewFavoriteService(repository.NewTxManager(db), repository.NewFavoriteRepository(db))

	ticket := insertTicket(t, ticketRepo, 7, time.Now().Add(48*time.Hour))
	userID := int64(42)

	concurrentRequests := 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	added, removed := 0, 0

	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			favorited, err := svc.Toggle(ctx, userID, ticket.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, apperrors.ErrFavoriteContention)
				return
			}
			if favorited {
				added++
			} else {
				removed++
			}
		}()
	}

	wg.Wait()

	var rows int
	err := db.QueryRow(ctx, "SELECT COUNT(*) FROM favorites WHERE user_id = $1 AND ticket_id = $2", userID, ticket.ID).Scan(&rows)
	require.NoError(t, err)

	t.Logf("Toggles - added: %d, removed: %d, rows: %d", added, removed, rows)

	assert.LessOrEqual(t, rows, 1)
	assert.Equal(t, added-removed, rows)
}

// 讀資料庫期間票券被改成 RESERVED，舊的 AVAILABLE 不可留在快取裡
func TestGetTicket_ConcurrentChangeIsNotCachedStale(t *testing.T) {
	rdb := getTestRedis(t)
	ctx := context.Background()

	repo := repoMocks.NewMockTicketRepository(t)
	svc := NewTicketService(
		&repoMocks.FakeTxManager{},
		repo,
		cache.NewRedisTicketCache(rdb, time.Minute),
		storageMocks.NewMockBlobStore(t),
		&queueMocks.RecordingPublisher[model.TicketEvent]{},
	)

	available := existingTicket(1, 7, model.TicketStatusAvailable)
	reserved := existingTicket(1, 7, model.TicketStatusReserved)

	// 第一次讀到舊資料之後，另一個請求 commit 並失效快取
	repo.On("FindByID", ctx, int64(1)).Return(available, nil).Once().Run(func(mock.Arguments) {
		_, err := svc.ChangeStatus(ctx, 1, 7, "RESERVED")
		require.NoError(t, err)
	})
	repo.On("FindByIDForUpdate", ctx, mock.Anything, int64(1)).Return(available, nil).Once()
	repo.On("UpdateStatus", ctx, mock.Anything, int64(1), model.TicketStatusReserved).Return(reserved, nil).Once()
	repo.On("FindByID", ctx, int64(1)).Return(reserved, nil).Once()

	first, err := svc.GetTicket(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusAvailable, first.Status)

	second, err := svc.GetTicket(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusReserved, second.Status)

	// 第二次讀取的結果已經寫入快取
	cached, err := cache.NewRedisTicketCache(rdb, time.Minute).Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusReserved, cached.Status)
}

// 刪除之後不可從快取讀到已刪除的票券
func TestGetTicket_ConcurrentDeleteIsNotCached(t *testing.T) {
	rdb := getTestRedis(t)
	ctx := context.Background()

	repo := repoMocks.NewMockTicketRepository(t)
	svc := NewTicketService(
		&repoMocks.FakeTxManager{},
		repo,
		cache.NewRedisTicketCache(rdb, time.Minute),
		storageMocks.NewMockBlobStore(t),
		&queueMocks.RecordingPublisher[model.TicketEvent]{},
	)

	expired := existingTicket(1, 7, model.TicketStatusExpired)

	repo.On("FindByID", ctx, int64(1)).Return(expired, nil).Once().Run(func(mock.Arguments) {
		require.NoError(t, svc.DeleteTicket(ctx, 1, 7))
	})
	repo.On("FindByIDForUpdate", ctx, mock.Anything, int64(1)).Return(expired, nil).Once()
	repo.On("Delete", ctx, mock.Anything, int64(1)).Return(nil).Once()
	repo.On("FindByID", ctx, int64(1)).Return(nil, apperrors.ErrTicketNotFound).Once()

	_, err := svc.GetTicket(ctx, 1)
	require.NoError(t, err)

	_, err = svc.GetTicket(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
