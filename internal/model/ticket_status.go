package model

import (
	"fmt"
	"strings"

	apperrors "ticket-marketplace/pkg/app_errors"
)

// TicketStatus 票券狀態
type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "AVAILABLE" // 販售中
	TicketStatusReserved  TicketStatus = "RESERVED"  // 交易中
	TicketStatusSold      TicketStatus = "SOLD"      // 已售出（尚未使用）
	TicketStatusUsed      TicketStatus = "USED"      // 已使用
	TicketStatusExpired   TicketStatus = "EXPIRED"   // 活動已過期
)

type statusRule struct {
	deletable bool
	updatable bool
	next      []TicketStatus
}

// statusRules 是票券狀態規則的唯一來源
var statusRules = map[TicketStatus]statusRule{
	TicketStatusAvailable: {deletable: true, updatable: true, next: []TicketStatus{TicketStatusReserved, TicketStatusExpired}},
	TicketStatusReserved:  {next: []TicketStatus{TicketStatusSold}},
	TicketStatusSold:      {next: []TicketStatus{TicketStatusUsed}},
	TicketStatusUsed:      {},
	TicketStatusExpired:   {deletable: true},
}

// AllTicketStatuses 依生命週期順序列出所有狀態
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusAvailable,
		TicketStatusReserved,
		TicketStatusSold,
		TicketStatusUsed,
		TicketStatusExpired,
	}
}

func (s TicketStatus) IsValid() bool {
	_, ok := statusRules[s]
	return ok
}

// ParseTicketStatus 不分大小寫解析狀態名稱
func ParseTicketStatus(name string) (TicketStatus, error) {
	status := TicketStatus(strings.ToUpper(strings.TrimSpace(name)))
	if !status.IsValid() {
		return "", fmt.Errorf("%q: %w", name, apperrors.ErrUnknownStatus)
	}
	return status, nil
}

// CanTransition 檢查 current -> target 是否合法；相同狀態視為 no-op，永遠合法
func CanTransition(current, target TicketStatus) bool {
	rule, ok := statusRules[current]
	if !ok || !target.IsValid() {
		return false
	}
	if current == target {
		return true
	}
	for _, next := range rule.next {
		if next == target {
			return true
		}
	}
	return false
}

func IsDeletable(status TicketStatus) bool {
	return statusRules[status].deletable
}

func IsUpdatable(status TicketStatus) bool {
	return statusRules[status].updatable
}
