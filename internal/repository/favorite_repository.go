package repository

import (
	"context"
	"errors"

	"ticket-marketplace/internal/model"
	apperrors "ticket-marketplace/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

type FavoriteRepository interface {
	Exists(ctx context.Context, userID, ticketID int64) (bool, error)
	// 使用者收藏的票券，依收藏時間新到舊
	ListTicketsByUser(ctx context.Context, userID int64) ([]*model.Ticket, error)
	Remove(ctx context.Context, userID, ticketID int64) (bool, error)

	// Transaction methods
	Delete(ctx context.Context, tx pgx.Tx, userID, ticketID int64) (bool, error)
	InsertIfAbsent(ctx context.Context, tx pgx.Tx, userID, ticketID int64) (bool, error)
}

type FavoriteRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(pool *pgxpool.Pool) FavoriteRepository {
	return &FavoriteRepositoryImpl{
		pool: pool,
	}
}

func (r *FavoriteRepositoryImpl) Exists(ctx context.Context, userID, ticketID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND ticket_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, ticketID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *FavoriteRepositoryImpl) ListTicketsByUser(ctx context.Context, userID int64) ([]*model.Ticket, error) {
	query := `
		SELECT t.ticket_id, t.event_name, t.event_date, t.event_location, t.owner_id, t.ticket_status,
			t.original_price, t.selling_price, t.seat_info, t.ticket_type, t.category_id,
			t.image1, t.image2, t.description, t.trade_type, t.created_at, t.updated_at
		FROM favorites f
		JOIN tickets t ON t.ticket_id = f.ticket_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, f.favorite_id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	return collectTickets(rows)
}

func (r *FavoriteRepositoryImpl) Remove(ctx context.Context, userID, ticketID int64) (bool, error) {
	return deleteFavorite(ctx, r.pool, userID, ticketID)
}

func (r *FavoriteRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, userID, ticketID int64) (bool, error) {
	return deleteFavorite(ctx, tx, userID, ticketID)
}

// InsertIfAbsent 已存在時不做任何事並回傳 false
func (r *FavoriteRepositoryImpl) InsertIfAbsent(ctx context.Context, tx pgx.Tx, userID, ticketID int64) (bool, error) {
	query := `
		INSERT INTO favorites (user_id, ticket_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, ticket_id) DO NOTHING
	`

	result, err := tx.Exec(ctx, query, userID, ticketID)
	if err != nil {
		// 票券不存在時違反 foreign key
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return false, apperrors.ErrTicketNotFound
		}
		return false, err
	}

	return result.RowsAffected() == 1, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func deleteFavorite(ctx context.Context, db execer, userID, ticketID int64) (bool, error) {
	query := `DELETE FROM favorites WHERE user_id = $1 AND ticket_id = $2`

	result, err := db.Exec(ctx, query, userID, ticketID)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}
