package model

import "time"

// Favorite 使用者收藏的票券；(user_id, ticket_id) 唯一
type Favorite struct {
	ID        int64     `json:"favorite_id" db:"favorite_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	TicketID  int64     `json:"ticket_id" db:"ticket_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
