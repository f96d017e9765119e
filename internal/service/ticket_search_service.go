package service

import (
	"context"
	"math"
	"strings"

	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/repository"
	apperrors "ticket-marketplace/pkg/app_errors"
)

type TicketSearchService interface {
	// 分頁搜尋；沒有結果時回傳空的 page
	Search(ctx context.Context, cond model.TicketSearchCondition, page, size int, sortBy, sortDirection string) (*model.Page[*model.Ticket], error)
	SearchAll(ctx context.Context, cond model.TicketSearchCondition) ([]*model.Ticket, error)
	// 賣家自己的票券；沒有任何票券時回傳 ErrNoSellerTickets
	SellerTickets(ctx context.Context, ownerID int64) ([]*model.Ticket, error)
}

type TicketSearchServiceImpl struct {
	repository  repository.TicketRepository
	maxPageSize int
}

func NewTicketSearchService(ticketRepository repository.TicketRepository, maxPageSize int) TicketSearchService {
	return &TicketSearchServiceImpl{
		repository:  ticketRepository,
		maxPageSize: maxPageSize,
	}
}

// sortAliases 不分大小寫，camelCase 與 snake_case 都接受
var sortAliases = map[string]model.SortField{
	"eventdate":      model.SortByEventDate,
	"event_date":     model.SortByEventDate,
	"createdat":      model.SortByCreatedAt,
	"created_at":     model.SortByCreatedAt,
	"date":           model.SortByCreatedAt,
	"sellingprice":   model.SortBySellingPrice,
	"selling_price":  model.SortBySellingPrice,
	"price":          model.SortBySellingPrice,
	"originalprice":  model.SortByOriginalPrice,
	"original_price": model.SortByOriginalPrice,
}

var defaultSort = []model.SortOrder{
	{Field: model.SortByEventDate},
	{Field: model.SortByCreatedAt, Desc: true},
}

// ResolveSort 把 query string 的排序參數轉成排序條件
func ResolveSort(sortBy, sortDirection string) []model.SortOrder {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	if key == "" {
		return defaultSort
	}

	field, ok := sortAliases[key]
	if !ok {
		field = model.SortByEventDate
	}

	orders := []model.SortOrder{{
		Field: field,
		Desc:  strings.EqualFold(strings.TrimSpace(sortDirection), "DESC"),
	}}
	if field != model.SortByEventDate && field != model.SortByCreatedAt {
		orders = append(orders, model.SortOrder{Field: model.SortByEventDate})
	}

	return orders
}

func (s *TicketSearchServiceImpl) Search(
	ctx context.Context,
	cond model.TicketSearchCondition,
	page, size int,
	sortBy, sortDirection string,
) (*model.Page[*model.Ticket], error) {
	if page < 0 {
		return nil, apperrors.Validation("page must not be negative")
	}
	if size < 1 {
		return nil, apperrors.Validation("size must be at least 1")
	}
	if s.maxPageSize > 0 && size > s.maxPageSize {
		size = s.maxPageSize
	}
	if page > math.MaxInt/size {
		return nil, apperrors.Validation("page is too large")
	}

	tickets, total, err := s.repository.Search(ctx, cond, ResolveSort(sortBy, sortDirection), size, page*size)
	if err != nil {
		return nil, err
	}

	return model.NewPage(tickets, page, size, total), nil
}

func (s *TicketSearchServiceImpl) SearchAll(ctx context.Context, cond model.TicketSearchCondition) ([]*model.Ticket, error) {
	return s.repository.FindAll(ctx, cond, defaultSort)
}

func (s *TicketSearchServiceImpl) SellerTickets(ctx context.Context, ownerID int64) ([]*model.Ticket, error) {
	tickets, err := s.SearchAll(ctx, model.TicketSearchCondition{OwnerID: &ownerID})
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrNoSellerTickets
	}
	return tickets, nil
}
