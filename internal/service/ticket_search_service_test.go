package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"ticket-marketplace/internal/model"
	repoMocks "ticket-marketplace/internal/repository/mocks"
	apperrors "ticket-marketplace/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		direction string
		want      []model.SortOrder
	}{
		{
			name: "default",
			want: []model.SortOrder{{Field: model.SortByEventDate}, {Field: model.SortByCreatedAt, Desc: true}},
		},
		{
			name:      "date means created_at",
			sortBy:    "date",
			direction: "desc",
			want:      []model.SortOrder{{Field: model.SortByCreatedAt, Desc: true}},
		},
		{
			name:      "price appends event date",
			sortBy:    "price",
			direction: "ASC",
			want:      []model.SortOrder{{Field: model.SortBySellingPrice}, {Field: model.SortByEventDate}},
		},
		{
			name:      "original price descending",
			sortBy:    "originalPrice",
			direction: "DESC",
			want:      []model.SortOrder{{Field: model.SortByOriginalPrice, Desc: true}, {Field: model.SortByEventDate}},
		},
		{
			name:      "snake case alias",
			sortBy:    "event_date",
			direction: "desc",
			want:      []model.SortOrder{{Field: model.SortByEventDate, Desc: true}},
		},
		{
			name:      "unknown key falls back to event date",
			sortBy:    "popularity",
			direction: "sideways",
			want:      []model.SortOrder{{Field: model.SortByEventDate}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSort(tt.sortBy, tt.direction))
		})
	}
}

func TestTicketSearchService_Search(t *testing.T) {
	ctx := context.Background()
	cond := model.TicketSearchCondition{EventName: "concert"}

	t.Run("Success - offset from page and size", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 100)
		tickets := []*model.Ticket{{ID: 11}, {ID: 12}}
		repo.On("Search", ctx, cond, ResolveSort("price", "desc"), 10, 20).Return(tickets, int64(22), nil).Once()

		page, err := svc.Search(ctx, cond, 2, 10, "price", "desc")

		require.NoError(t, err)
		assert.Len(t, page.Content, 2)
		assert.Equal(t, int64(22), page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		assert.True(t, page.Last)
		assert.False(t, page.First)
	})

	t.Run("Success - size is capped", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 50)
		repo.On("Search", ctx, cond, mock.Anything, 50, 0).Return(nil, int64(0), nil).Once()

		page, err := svc.Search(ctx, cond, 0, 500, "", "")

		require.NoError(t, err)
		assert.Equal(t, 50, page.Size)
		assert.NotNil(t, page.Content)
		assert.Empty(t, page.Content)
	})

	t.Run("Failed - invalid paging", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 100)

		_, err := svc.Search(ctx, cond, -1, 10, "", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = svc.Search(ctx, cond, 0, 0, "", "")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Failed - offset overflow", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 100)

		_, err := svc.Search(ctx, cond, math.MaxInt/10+1, 10, "", "")

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - repository error", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 100)
		repo.On("Search", ctx, cond, mock.Anything, 10, 0).Return(nil, int64(0), errors.New("db down")).Once()

		_, err := svc.Search(ctx, cond, 0, 10, "", "")

		assert.EqualError(t, err, "db down")
	})
}

func TestTicketSearchService_SellerTickets(t *testing.T) {
	ctx := context.Background()
	ownerID := int64(7)
	cond := model.TicketSearchCondition{OwnerID: &ownerID}

	t.Run("Success", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 100)
		repo.On("FindAll", ctx, cond, defaultSort).Return([]*model.Ticket{{ID: 1, OwnerID: 7}}, nil).Once()

		tickets, err := svc.SellerTickets(ctx, ownerID)

		require.NoError(t, err)
		assert.Len(t, tickets, 1)
	})

	t.Run("Failed - seller has no tickets", func(t *testing.T) {
		repo := repoMocks.NewMockTicketRepository(t)
		svc := NewTicketSearchService(repo, 100)
		repo.On("FindAll", ctx, cond, defaultSort).Return([]*model.Ticket{}, nil).Once()

		_, err := svc.SellerTickets(ctx, ownerID)

		assert.ErrorIs(t, err, apperrors.ErrNoSellerTickets)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
