package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ticket-marketplace/internal/cache"
	"ticket-marketplace/internal/metrics"
	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/queue"
	"ticket-marketplace/internal/repository"
	"ticket-marketplace/internal/storage"
	apperrors "ticket-marketplace/pkg/app_errors"
	"ticket-marketplace/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

type TicketService interface {
	CreateTicket(ctx context.Context, ownerID int64, params model.CreateTicketParams) (*model.Ticket, error)
	// 公開查詢，先讀 Redis 快取
	GetTicket(ctx context.Context, id int64) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, id, callerID int64, params model.UpdateTicketParams) (*model.Ticket, error)
	DeleteTicket(ctx context.Context, id, callerID int64) error
	// 只有票券擁有者可以變更狀態
	ChangeStatus(ctx context.Context, id, callerID int64, statusName string) (*model.Ticket, error)
	// 交易服務事件：系統身分執行，不檢查擁有者
	ApplyDealEvent(ctx context.Context, event *model.DealEvent) (*model.Ticket, error)
	// 可販售的未來票券少於 SeedTarget 時補上示範資料
	SeedTickets(ctx context.Context, ownerID int64) (int64, error)
}

type TicketServiceImpl struct {
	txManager  repository.TxManager
	repository repository.TicketRepository
	cache      cache.RedisTicketCache
	blobStore  storage.BlobStore
	publisher  queue.Publisher[model.TicketEvent]
	now        func() time.Time
}

func NewTicketService(
	txManager repository.TxManager,
	ticketRepository repository.TicketRepository,
	ticketCache cache.RedisTicketCache,
	blobStore storage.BlobStore,
	publisher queue.Publisher[model.TicketEvent],
) TicketService {
	return &TicketServiceImpl{
		txManager:  txManager,
		repository: ticketRepository,
		cache:      ticketCache,
		blobStore:  blobStore,
		publisher:  publisher,
		now:        time.Now,
	}
}

func (s *TicketServiceImpl) CreateTicket(ctx context.Context, ownerID int64, params model.CreateTicketParams) (*model.Ticket, error) {
	if err := s.validateCreate(params); err != nil {
		return nil, err
	}

	sellingPrice := decimal.NullDecimal{}
	if params.SellingPrice != nil {
		sellingPrice = decimal.NewNullDecimal(*params.SellingPrice)
	}

	ticket := &model.Ticket{
		EventName:     strings.TrimSpace(params.EventName),
		EventDate:     params.EventDate.UTC(),
		EventLocation: strings.TrimSpace(params.EventLocation),
		OwnerID:       ownerID,
		Status:        model.TicketStatusAvailable,
		OriginalPrice: *params.OriginalPrice,
		SellingPrice:  sellingPrice,
		SeatInfo:      params.SeatInfo,
		TicketType:    params.TicketType,
		CategoryID:    *params.CategoryID,
		Description:   params.Description,
		TradeType:     params.TradeType,
		Image1:        s.uploadMedia(ctx, params.Image1),
		Image2:        s.uploadMedia(ctx, params.Image2),
	}

	created, err := s.repository.Create(ctx, ticket)
	metrics.TrackTicketMutation("create", err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &model.TicketEvent{
		Type:     model.TicketEventCreated,
		TicketID: created.ID,
		OwnerID:  created.OwnerID,
		Status:   created.Status,
	})

	return created, nil
}

func (s *TicketServiceImpl) validateCreate(params model.CreateTicketParams) error {
	if strings.TrimSpace(params.EventName) == "" {
		return apperrors.Validation("event_name is required")
	}
	if params.EventDate == nil {
		return apperrors.Validation("event_date is required")
	}
	if strings.TrimSpace(params.EventLocation) == "" {
		return apperrors.Validation("event_location is required")
	}
	if params.OriginalPrice == nil {
		return apperrors.Validation("original_price is required")
	}
	if params.CategoryID == nil {
		return apperrors.Validation("category_id is required")
	}
	if params.TradeType == "" {
		return apperrors.Validation("trade_type is required")
	}

	if !params.TradeType.IsValid() {
		return apperrors.Validation("trade_type must be DELIVERY or ONSITE")
	}
	if *params.CategoryID <= 0 {
		return apperrors.Validation("category_id must be positive")
	}
	if !params.EventDate.After(s.now()) {
		return apperrors.Validation("event_date must be in the future")
	}

	return validatePrices(*params.OriginalPrice, params.SellingPrice)
}

// validatePrices 原價 > 0；售價存在時 0 < 售價 <= 原價
func validatePrices(original decimal.Decimal, selling *decimal.Decimal) error {
	if !original.IsPositive() {
		return apperrors.Validation("original_price must be positive")
	}
	if selling == nil {
		return nil
	}
	if !selling.IsPositive() {
		return apperrors.Validation("selling_price must be positive")
	}
	if selling.GreaterThan(original) {
		return apperrors.ErrSellingPriceExceedsOriginal
	}
	return nil
}

func (s *TicketServiceImpl) GetTicket(ctx context.Context, id int64) (*model.Ticket, error) {
	log := logger.WithComponent("cache")

	ticket, err := s.cache.Get(ctx, id)
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn("Failed to read ticket cache", zap.Int64("ticket_id", id), zap.Error(err))
	}

	// 版本號要在讀資料庫之前取得，讀取期間有異動時不寫回舊資料
	version, versionErr := s.cache.Version(ctx, id)
	if versionErr != nil {
		log.Warn("Failed to read ticket cache version", zap.Int64("ticket_id", id), zap.Error(versionErr))
	}

	ticket, err = s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if versionErr == nil {
		stored, err := s.cache.Set(ctx, ticket, version)
		if err != nil {
			log.Warn("Failed to cache ticket", zap.Int64("ticket_id", id), zap.Error(err))
		} else if !stored {
			log.Debug("Ticket changed while loading, not cached", zap.Int64("ticket_id", id))
		}
	}

	return ticket, nil
}

func (s *TicketServiceImpl) UpdateTicket(ctx context.Context, id, callerID int64, params model.UpdateTicketParams) (*model.Ticket, error) {
	if params.IsEmpty() {
		return nil, apperrors.Validation("no fields to update")
	}

	// 圖片在鎖定票券之前上傳，transaction 內不做外部 I/O
	image1 := s.uploadMedia(ctx, params.Image1)
	image2 := s.uploadMedia(ctx, params.Image2)

	var (
		previous *model.Ticket
		updated  *model.Ticket
		changed  bool
	)
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		// 1. 鎖定票券
		ticket, err := s.repository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		// 2. 權限與狀態檢查
		if !ticket.IsOwnedBy(callerID) {
			return apperrors.ErrNotTicketOwner
		}
		if !model.IsUpdatable(ticket.Status) {
			return apperrors.ErrTicketNotUpdatable
		}

		// 3. 未提供的欄位以目前的值做交叉檢查
		if err := s.validateUpdate(ticket, params); err != nil {
			return err
		}

		fields := repository.UpdateTicketFields{
			EventDate:     params.EventDate,
			OriginalPrice: params.OriginalPrice,
			SellingPrice:  params.SellingPrice,
			SeatInfo:      params.SeatInfo,
			TicketType:    params.TicketType,
			CategoryID:    params.CategoryID,
			Description:   params.Description,
			TradeType:     params.TradeType,
			Image1:        image1,
			Image2:        image2,
		}
		if params.EventName != nil {
			name := strings.TrimSpace(*params.EventName)
			fields.EventName = &name
		}
		if params.EventLocation != nil {
			location := strings.TrimSpace(*params.EventLocation)
			fields.EventLocation = &location
		}

		// 只更新圖片且全部上傳失敗：沒有東西要寫，回傳目前的票券
		if fields.IsEmpty() {
			updated = ticket
			return nil
		}

		// 4. 部分更新
		updated, err = s.repository.Update(ctx, tx, id, fields)
		if err != nil {
			return err
		}
		previous = ticket
		changed = true
		return nil
	})
	metrics.TrackTicketMutation("update", err)
	if err != nil {
		s.removeMedia(ctx, image1, image2)
		return nil, err
	}
	if !changed {
		return updated, nil
	}

	s.invalidate(ctx, id)
	s.removeMedia(ctx, replacedMedia(previous.Image1, image1), replacedMedia(previous.Image2, image2))
	s.publish(ctx, &model.TicketEvent{
		Type:     model.TicketEventUpdated,
		TicketID: updated.ID,
		OwnerID:  updated.OwnerID,
		Status:   updated.Status,
	})

	return updated, nil
}

// replacedMedia 新圖片寫入後，回傳要刪除的舊圖片
func replacedMedia(old, uploaded *string) *string {
	if old == nil || uploaded == nil || *old == *uploaded {
		return nil
	}
	return old
}

func (s *TicketServiceImpl) validateUpdate(current *model.Ticket, params model.UpdateTicketParams) error {
	if params.EventName != nil && strings.TrimSpace(*params.EventName) == "" {
		return apperrors.Validation("event_name cannot be blank")
	}
	if params.EventLocation != nil && strings.TrimSpace(*params.EventLocation) == "" {
		return apperrors.Validation("event_location cannot be blank")
	}
	if params.CategoryID != nil && *params.CategoryID <= 0 {
		return apperrors.Validation("category_id must be positive")
	}
	if params.TradeType != nil && !params.TradeType.IsValid() {
		return apperrors.Validation("trade_type must be DELIVERY or ONSITE")
	}
	if params.EventDate != nil && !params.EventDate.After(s.now()) {
		return apperrors.Validation("event_date must be in the future")
	}

	original := current.OriginalPrice
	if params.OriginalPrice != nil {
		original = *params.OriginalPrice
	}
	selling := params.SellingPrice
	if selling == nil && current.SellingPrice.Valid {
		selling = &current.SellingPrice.Decimal
	}

	return validatePrices(original, selling)
}

func (s *TicketServiceImpl) DeleteTicket(ctx context.Context, id, callerID int64) error {
	var deleted *model.Ticket
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if !ticket.IsOwnedBy(callerID) {
			return apperrors.ErrNotTicketOwner
		}
		if !model.IsDeletable(ticket.Status) {
			return apperrors.ErrTicketNotDeletable
		}

		if err := s.repository.Delete(ctx, tx, id); err != nil {
			return err
		}
		deleted = ticket
		return nil
	})
	metrics.TrackTicketMutation("delete", err)
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.removeMedia(ctx, deleted.Image1, deleted.Image2)
	s.publish(ctx, &model.TicketEvent{
		Type:     model.TicketEventDeleted,
		TicketID: id,
		OwnerID:  deleted.OwnerID,
	})

	return nil
}

func (s *TicketServiceImpl) ChangeStatus(ctx context.Context, id, callerID int64, statusName string) (*model.Ticket, error) {
	var updated *model.Ticket
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repository.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if !ticket.IsOwnedBy(callerID) {
			return apperrors.ErrNotTicketOwner
		}

		target, err := model.ParseTicketStatus(statusName)
		if err != nil {
			return err
		}

		updated, err = s.transition(ctx, tx, ticket, target)
		return err
	})
	metrics.TrackTicketMutation("change_status", err)
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, updated)
	return updated, nil
}

func (s *TicketServiceImpl) ApplyDealEvent(ctx context.Context, event *model.DealEvent) (*model.Ticket, error) {
	target, ok := event.TargetStatus()
	if !ok {
		return nil, apperrors.Validation("unknown deal event type " + event.EventType)
	}

	var updated *model.Ticket
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		ticket, err := s.repository.FindByIDForUpdate(ctx, tx, event.TicketID)
		if err != nil {
			return err
		}

		updated, err = s.transition(ctx, tx, ticket, target)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(ctx, updated)
	return updated, nil
}

// transition 依狀態表檢查後寫入；呼叫端需已持有 row lock
func (s *TicketServiceImpl) transition(ctx context.Context, tx pgx.Tx, ticket *model.Ticket, target model.TicketStatus) (*model.Ticket, error) {
	if !model.CanTransition(ticket.Status, target) {
		return nil, apperrors.ErrInvalidStatusTransition
	}
	return s.repository.UpdateStatus(ctx, tx, ticket.ID, target)
}

func (s *TicketServiceImpl) afterStatusChange(ctx context.Context, ticket *model.Ticket) {
	s.invalidate(ctx, ticket.ID)
	s.publish(ctx, &model.TicketEvent{
		Type:     model.TicketEventStatusChanged,
		TicketID: ticket.ID,
		OwnerID:  ticket.OwnerID,
		Status:   ticket.Status,
	})
}

// uploadMedia 上傳失敗只記錄 log，該欄位存 NULL
func (s *TicketServiceImpl) uploadMedia(ctx context.Context, upload *model.MediaUpload) *string {
	if upload == nil {
		return nil
	}

	ref, err := s.blobStore.Put(ctx, upload.Filename, upload.Body)
	if err != nil {
		logger.WithComponent("storage").Warn("Failed to upload ticket image",
			zap.String("filename", upload.Filename),
			zap.Error(err))
		return nil
	}

	return &ref
}

func (s *TicketServiceImpl) removeMedia(ctx context.Context, refs ...*string) {
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if err := s.blobStore.Delete(ctx, *ref); err != nil {
			logger.WithComponent("storage").Warn("Failed to remove ticket image", zap.String("ref", *ref), zap.Error(err))
		}
	}
}

func (s *TicketServiceImpl) invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		logger.WithComponent("cache").Warn("Failed to invalidate ticket cache", zap.Int64s("ticket_ids", ids), zap.Error(err))
	}
}

// publish 事件發送失敗不影響已 commit 的結果
func (s *TicketServiceImpl) publish(ctx context.Context, event *model.TicketEvent) {
	event.OccurredAt = s.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WithComponent("service").Warn("Failed to publish ticket event",
			zap.String("type", event.Type),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
