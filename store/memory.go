package store

import (
	"context"
	"sync"

	"github.com/rushteam/basketrec/core"
)

// MemorySource 是内存实现的 TransactionSource，用于测试/开发/原型。
// Set 替换整批数据，下一次 Build 生效；已构建的模型不受影响。
type MemorySource struct {
	mu      sync.RWMutex
	baskets [][]string
}

func NewMemorySource(baskets [][]string) *MemorySource {
	return &MemorySource{baskets: cloneBaskets(baskets)}
}

func (m *MemorySource) Name() string { return "memory" }

func (m *MemorySource) Transactions(_ context.Context) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneBaskets(m.baskets), nil
}

// Set 替换全部篮子
func (m *MemorySource) Set(baskets [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets = cloneBaskets(baskets)
}

// Append 追加篮子
func (m *MemorySource) Append(baskets ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets = append(m.baskets, cloneBaskets(baskets)...)
}

func cloneBaskets(baskets [][]string) [][]string {
	out := make([][]string, len(baskets))
	for i, b := range baskets {
		out[i] = append([]string(nil), b...)
	}
	return out
}

// SampleBaskets 返回 11 个订单的示例数据集（汉堡店）。
func SampleBaskets() [][]string {
	return [][]string{
		{"Bacon Cheese", "Fries", "Coke"},
		{"Chef Burger", "Fries"},
		{"Freestyle Soda", "Chocolate Shake"},
		{"Bacon Cheese", "Chocolate Shake"},
		{"Chef Burger", "Coke"},
		{"Bacon Cheese", "Fries", "Chocolate Shake"},
		{"Freestyle Soda", "Fries"},
		{"Chef Burger", "Chocolate Shake"},
		{"Bacon Cheese", "Fries", "Coke"},
		{"Chef Burger", "Fries", "Chocolate Shake"},
		{"Freestyle Soda", "Fries", "Chocolate Shake"},
	}
}

var _ core.TransactionSource = (*MemorySource)(nil)
