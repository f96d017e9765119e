package model

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// TradeType 交易方式
type TradeType string

const (
	TradeTypeDelivery TradeType = "DELIVERY" // 寄送
	TradeTypeOnsite   TradeType = "ONSITE"   // 現場交易
)

func (t TradeType) IsValid() bool {
	switch t {
	case TradeTypeDelivery, TradeTypeOnsite:
		return true
	}
	return false
}

// Ticket 轉售票券模型
type Ticket struct {
	ID            int64               `json:"ticket_id" db:"ticket_id"`
	EventName     string              `json:"event_name" db:"event_name"`
	EventDate     time.Time           `json:"event_date" db:"event_date"`
	EventLocation string              `json:"event_location" db:"event_location"`
	OwnerID       int64               `json:"owner_id" db:"owner_id"`
	Status        TicketStatus        `json:"ticket_status" db:"ticket_status"`
	OriginalPrice decimal.Decimal     `json:"original_price" db:"original_price"`
	SellingPrice  decimal.NullDecimal `json:"selling_price" db:"selling_price"`
	SeatInfo      *string             `json:"seat_info,omitempty" db:"seat_info"`
	TicketType    *string             `json:"ticket_type,omitempty" db:"ticket_type"`
	CategoryID    int64               `json:"category_id" db:"category_id"`
	Image1        *string             `json:"image1" db:"image1"`
	Image2        *string             `json:"image2" db:"image2"`
	Description   *string             `json:"description,omitempty" db:"description"`
	TradeType     TradeType           `json:"trade_type" db:"trade_type"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy 檢查票券是否屬於該使用者
func (t *Ticket) IsOwnedBy(userID int64) bool {
	return t.OwnerID == userID
}

// MediaUpload 上傳中的圖片，交給 blob store 後只保留回傳的 reference
type MediaUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateTicketParams 建立票券參數；指標欄位為 nil 代表未提供
type CreateTicketParams struct {
	EventName     string
	EventDate     *time.Time
	EventLocation string
	OriginalPrice *decimal.Decimal
	SellingPrice  *decimal.Decimal
	SeatInfo      *string
	TicketType    *string
	CategoryID    *int64
	Description   *string
	TradeType     TradeType
	Image1        *MediaUpload
	Image2        *MediaUpload
}

// UpdateTicketParams 部分更新參數；nil 欄位保持原值
type UpdateTicketParams struct {
	EventName     *string
	EventDate     *time.Time
	EventLocation *string
	OriginalPrice *decimal.Decimal
	SellingPrice  *decimal.Decimal
	SeatInfo      *string
	TicketType    *string
	CategoryID    *int64
	Description   *string
	TradeType     *TradeType
	Image1        *MediaUpload
	Image2        *MediaUpload
}

// IsEmpty 沒有任何欄位要更新
func (p UpdateTicketParams) IsEmpty() bool {
	return p.EventName == nil && p.EventDate == nil && p.EventLocation == nil &&
		p.OriginalPrice == nil && p.SellingPrice == nil && p.SeatInfo == nil &&
		p.TicketType == nil && p.CategoryID == nil && p.Description == nil &&
		p.TradeType == nil && p.Image1 == nil && p.Image2 == nil
}
