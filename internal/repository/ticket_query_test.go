package repository

import (
	"testing"
	"time"

	"ticket-marketplace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWhere_EmptyCondition(t *testing.T) {
	args := &queryArgs{}

	where := buildWhere(model.TicketSearchCondition{}, args)

	assert.Equal(t, "", where)
	assert.Empty(t, args.values)
}

func TestBuildWhere_BlankNameIsAbsent(t *testing.T) {
	args := &queryArgs{}

	where := buildWhere(model.TicketSearchCondition{EventName: "   "}, args)

	assert.Equal(t, "", where)
	assert.Empty(t, args.values)
}

func TestBuildWhere_AllFilters(t *testing.T) {
	status := model.TicketStatusAvailable
	owner := int64(7)
	category := int64(3)
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	args := &queryArgs{}

	where := buildWhere(model.TicketSearchCondition{
		EventName:  "Concert",
		Status:     &status,
		OwnerID:    &owner,
		CategoryID: &category,
		StartDate:  &start,
		EndDate:    &end,
	}, args)

	assert.Equal(t,
		`WHERE event_name ILIKE $1 ESCAPE '\' AND ticket_status = $2 AND owner_id = $3 AND category_id = $4 AND event_date >= $5 AND event_date <= $6`,
		where)
	assert.Equal(t, []interface{}{"%Concert%", "AVAILABLE", int64(7), int64(3), start, end}, args.values)
}

func TestBuildWhere_OnlySomeFilters(t *testing.T) {
	owner := int64(42)
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	args := &queryArgs{}

	where := buildWhere(model.TicketSearchCondition{OwnerID: &owner, EndDate: &end}, args)

	assert.Equal(t, "WHERE owner_id = $1 AND event_date <= $2", where)
	assert.Len(t, args.values, 2)
}

func TestBuildWhere_EscapesLikeWildcards(t *testing.T) {
	args := &queryArgs{}

	buildWhere(model.TicketSearchCondition{EventName: `100%_off\`}, args)

	require.Len(t, args.values, 1)
	assert.Equal(t, `%100\%\_off\\%`, args.values[0])
}

func TestBuildOrderBy(t *testing.T) {
	t.Run("default order", func(t *testing.T) {
		orderBy, err := buildOrderBy([]model.SortOrder{
			{Field: model.SortByEventDate},
			{Field: model.SortByCreatedAt, Desc: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY event_date ASC NULLS LAST, created_at DESC NULLS LAST, ticket_id ASC", orderBy)
	})

	t.Run("price with tie-break", func(t *testing.T) {
		orderBy, err := buildOrderBy([]model.SortOrder{
			{Field: model.SortBySellingPrice, Desc: true},
			{Field: model.SortByEventDate},
		})
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY selling_price DESC NULLS LAST, event_date ASC NULLS LAST, ticket_id ASC", orderBy)
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		_, err := buildOrderBy([]model.SortOrder{{Field: "owner_id; DROP TABLE tickets"}})
		require.Error(t, err)
	})
}
