package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// FakeTxManager 直接以 nil tx 執行 fn，記錄呼叫次數
type FakeTxManager struct {
	Calls int
	// BeginErr 不為 nil 時模擬 BeginTx 失敗
	BeginErr error
}

func (m *FakeTxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.Calls++
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(nil)
}
