package model

import "time"

// 對外發布的票券事件類型
const (
	TicketEventCreated       = "ticket.created"
	TicketEventUpdated       = "ticket.updated"
	TicketEventStatusChanged = "ticket.status_changed"
	TicketEventDeleted       = "ticket.deleted"
	TicketEventsExpired      = "tickets.expired"
)

// TicketEvent 發送到 message bus 的票券事件（fire-and-forget）
type TicketEvent struct {
	Type       string       `json:"type"`
	TicketID   int64        `json:"ticket_id,omitempty"`
	TicketIDs  []int64      `json:"ticket_ids,omitempty"`
	OwnerID    int64        `json:"owner_id,omitempty"`
	Status     TicketStatus `json:"status,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// 交易服務送來的事件類型
const (
	DealEventReserved  = "deal.reserved"
	DealEventConfirmed = "deal.confirmed"
	DealEventCompleted = "deal.completed"
)

// DealEvent 交易服務透過 Redis Stream 送來的事件
type DealEvent struct {
	EventType string `json:"eventType"`
	DealID    int64  `json:"dealId"`
	TicketID  int64  `json:"ticketId"`
}

// TargetStatus 交易事件對應的票券狀態；未知事件回傳 false
func (e *DealEvent) TargetStatus() (TicketStatus, bool) {
	switch e.EventType {
	case DealEventReserved:
		return TicketStatusReserved, true
	case DealEventConfirmed:
		return TicketStatusSold, true
	case DealEventCompleted:
		return TicketStatusUsed, true
	}
	return "", false
}
