package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ticket-marketplace/internal/model"
	apperrors "ticket-marketplace/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// UpdateTicketFields 要寫入的欄位；nil 代表不更新
type UpdateTicketFields struct {
	EventName     *string
	EventDate     *time.Time
	EventLocation *string
	OriginalPrice *decimal.Decimal
	SellingPrice  *decimal.Decimal
	SeatInfo      *string
	TicketType    *string
	CategoryID    *int64
	Description   *string
	TradeType     *model.TradeType
	Image1        *string
	Image2        *string
}

func (f UpdateTicketFields) IsEmpty() bool {
	return f.EventName == nil && f.EventDate == nil && f.EventLocation == nil &&
		f.OriginalPrice == nil && f.SellingPrice == nil && f.SeatInfo == nil &&
		f.TicketType == nil && f.CategoryID == nil && f.Description == nil &&
		f.TradeType == nil && f.Image1 == nil && f.Image2 == nil
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	CreateMany(ctx context.Context, tickets []*model.Ticket) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Ticket, error)
	Search(ctx context.Context, cond model.TicketSearchCondition, orders []model.SortOrder, limit, offset int) ([]*model.Ticket, int64, error)
	FindAll(ctx context.Context, cond model.TicketSearchCondition, orders []model.SortOrder) ([]*model.Ticket, error)
	CountAvailableAfter(ctx context.Context, at time.Time) (int64, error)
	// 批次過期：單一 UPDATE，回傳被更新的票券 ID
	ExpireAvailable(ctx context.Context, now time.Time) ([]int64, error)

	// Transaction methods
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Ticket, error)
	Update(ctx context.Context, tx pgx.Tx, id int64, fields UpdateTicketFields) (*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.TicketStatus) (*model.Ticket, error)
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `ticket_id, event_name, event_date, event_location, owner_id, ticket_status,
		original_price, selling_price, seat_info, ticket_type, category_id,
		image1, image2, description, trade_type, created_at, updated_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.EventName,
		&ticket.EventDate,
		&ticket.EventLocation,
		&ticket.OwnerID,
		&ticket.Status,
		&ticket.OriginalPrice,
		&ticket.SellingPrice,
		&ticket.SeatInfo,
		&ticket.TicketType,
		&ticket.CategoryID,
		&ticket.Image1,
		&ticket.Image2,
		&ticket.Description,
		&ticket.TradeType,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func collectTickets(rows pgx.Rows) ([]*model.Ticket, error) {
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			event_name, event_date, event_location, owner_id, ticket_status,
			original_price, selling_price, seat_info, ticket_type, category_id,
			image1, image2, description, trade_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + ticketColumns

	return scanTicket(r.pool.QueryRow(ctx, query,
		ticket.EventName, ticket.EventDate.UTC(), ticket.EventLocation, ticket.OwnerID, string(ticket.Status),
		ticket.OriginalPrice, ticket.SellingPrice, ticket.SeatInfo, ticket.TicketType, ticket.CategoryID,
		ticket.Image1, ticket.Image2, ticket.Description, string(ticket.TradeType),
	))
}

// CreateMany 使用 COPY 大量寫入（seed 用）
func (r *TicketRepositoryImpl) CreateMany(ctx context.Context, tickets []*model.Ticket) (int64, error) {
	columns := []string{
		"event_name", "event_date", "event_location", "owner_id", "ticket_status",
		"original_price", "selling_price", "seat_info", "ticket_type", "category_id",
		"description", "trade_type",
	}

	return r.pool.CopyFrom(ctx, pgx.Identifier{"tickets"}, columns,
		pgx.CopyFromSlice(len(tickets), func(i int) ([]any, error) {
			t := tickets[i]
			return []any{
				t.EventName, t.EventDate.UTC(), t.EventLocation, t.OwnerID, string(t.Status),
				t.OriginalPrice, t.SellingPrice, t.SeatInfo, t.TicketType, t.CategoryID,
				t.Description, string(t.TradeType),
			}, nil
		}),
	)
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int64) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1`

	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *TicketRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1 FOR UPDATE`

	return scanTicket(tx.QueryRow(ctx, query, id))
}

func (r *TicketRepositoryImpl) Search(
	ctx context.Context,
	cond model.TicketSearchCondition,
	orders []model.SortOrder,
	limit, offset int,
) ([]*model.Ticket, int64, error) {
	orderBy, err := buildOrderBy(orders)
	if err != nil {
		return nil, 0, err
	}

	args := &queryArgs{}
	where := buildWhere(cond, args)

	var total int64
	countQuery := `SELECT COUNT(*) FROM tickets ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args.values...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if total == 0 {
		return []*model.Ticket{}, 0, nil
	}

	limitArg := args.add(limit)
	offsetArg := args.add(offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets %s %s LIMIT %s OFFSET %s`,
		ticketColumns, where, orderBy, limitArg, offsetArg)

	rows, err := r.pool.Query(ctx, query, args.values...)
	if err != nil {
		return nil, 0, err
	}

	tickets, err := collectTickets(rows)
	if err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

func (r *TicketRepositoryImpl) FindAll(ctx context.Context, cond model.TicketSearchCondition, orders []model.SortOrder) ([]*model.Ticket, error) {
	orderBy, err := buildOrderBy(orders)
	if err != nil {
		return nil, err
	}

	args := &queryArgs{}
	where := buildWhere(cond, args)
	query := fmt.Sprintf(`SELECT %s FROM tickets %s %s`, ticketColumns, where, orderBy)

	rows, err := r.pool.Query(ctx, query, args.values...)
	if err != nil {
		return nil, err
	}

	return collectTickets(rows)
}

func (r *TicketRepositoryImpl) CountAvailableAfter(ctx context.Context, at time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tickets
		WHERE ticket_status = $1 AND event_date > $2
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, string(model.TicketStatusAvailable), at.UTC()).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TicketRepositoryImpl) ExpireAvailable(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		UPDATE tickets
		SET ticket_status = $1, updated_at = $3
		WHERE ticket_status = $2 AND event_date < $3
		RETURNING ticket_id
	`

	rows, err := r.pool.Query(ctx, query,
		string(model.TicketStatusExpired), string(model.TicketStatusAvailable), now.UTC())
	if err != nil {
		return nil, err
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, tx pgx.Tx, id int64, fields UpdateTicketFields) (*model.Ticket, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if fields.EventName != nil {
		set("event_name", *fields.EventName)
	}
	if fields.EventDate != nil {
		set("event_date", fields.EventDate.UTC())
	}
	if fields.EventLocation != nil {
		set("event_location", *fields.EventLocation)
	}
	if fields.OriginalPrice != nil {
		set("original_price", *fields.OriginalPrice)
	}
	if fields.SellingPrice != nil {
		set("selling_price", *fields.SellingPrice)
	}
	if fields.SeatInfo != nil {
		set("seat_info", *fields.SeatInfo)
	}
	if fields.TicketType != nil {
		set("ticket_type", *fields.TicketType)
	}
	if fields.CategoryID != nil {
		set("category_id", *fields.CategoryID)
	}
	if fields.Description != nil {
		set("description", *fields.Description)
	}
	if fields.TradeType != nil {
		set("trade_type", string(*fields.TradeType))
	}
	if fields.Image1 != nil {
		set("image1", *fields.Image1)
	}
	if fields.Image2 != nil {
		set("image2", *fields.Image2)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	set("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE tickets
		SET %s
		WHERE ticket_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, ticketColumns)

	return scanTicket(tx.QueryRow(ctx, query, args...))
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.TicketStatus) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET ticket_status = $1, updated_at = $2
		WHERE ticket_id = $3
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(tx.QueryRow(ctx, query, string(status), time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `DELETE FROM tickets WHERE ticket_id = $1`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}
