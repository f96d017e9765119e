package model

import "time"

// TicketSearchCondition 票券搜尋條件；nil / 空白代表不套用該條件
type TicketSearchCondition struct {
	EventName  string        // 活動名稱部分比對（不分大小寫）
	Status     *TicketStatus // 狀態
	OwnerID    *int64        // 賣家
	CategoryID *int64        // 分類
	StartDate  *time.Time    // event_date >= StartDate
	EndDate    *time.Time    // event_date <= EndDate
}

// SortField 可排序的欄位
type SortField string

const (
	SortByEventDate     SortField = "eventDate"
	SortByCreatedAt     SortField = "createdAt"
	SortBySellingPrice  SortField = "sellingPrice"
	SortByOriginalPrice SortField = "originalPrice"
)

type SortOrder struct {
	Field SortField
	Desc  bool
}

// Page 分頁結果
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage 依總筆數計算分頁資訊；size 必須 > 0
func NewPage[T any](content []T, page, size int, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
