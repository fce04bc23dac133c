package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Transaction 是一个购物篮：互不重复的规范化物品集合，创建后不可变。
type Transaction struct {
	items []string
	set   map[string]struct{}
}

// NewTransaction 规范化并去重 items，保留首次出现顺序。
// 任一物品名为空时返回 INVALID_INPUT。
func NewTransaction(items ...string) (Transaction, error) {
	t := Transaction{
		items: make([]string, 0, len(items)),
		set:   make(map[string]struct{}, len(items)),
	}
	for _, raw := range items {
		key, err := NormalizeItem(raw)
		if err != nil {
			return Transaction{}, err
		}
		if _, ok := t.set[key]; ok {
			continue
		}
		t.set[key] = struct{}{}
		t.items = append(t.items, key)
	}
	return t, nil
}

// Len 返回物品数量
func (t Transaction) Len() int { return len(t.items) }

// Contains 判断事务是否包含物品（参数需为规范化名称）
func (t Transaction) Contains(item string) bool {
	_, ok := t.set[item]
	return ok
}

// Items 返回物品副本（首次出现顺序）
func (t Transaction) Items() []string {
	out := make([]string, len(t.items))
	copy(out, t.items)
	return out
}

// TransactionStore 是有序的事务序列，构建后只读，可被多个查询并发读取。
//
// 顺序对挖掘无影响，但决定共现回退时的 tie-break，保证结果可复现。
type TransactionStore struct {
	txs     []Transaction
	display map[string]string // 规范化名称 -> 首次出现的原始写法（已 trim）
}

// NewTransactionStore 由原始篮子构建 TransactionStore。
// 允许空篮子（不含物品）；物品名为空时返回 INVALID_INPUT。
func NewTransactionStore(baskets [][]string) (*TransactionStore, error) {
	s := &TransactionStore{
		txs:     make([]Transaction, 0, len(baskets)),
		display: make(map[string]string),
	}
	for i, basket := range baskets {
		tx, err := NewTransaction(basket...)
		if err != nil {
			return nil, WrapDomainError(ModuleCore, ErrorCodeInvalidInput, "core: invalid transaction", fmt.Errorf("transaction #%d: %w", i, err))
		}
		for _, raw := range basket {
			key, _ := NormalizeItem(raw)
			if _, ok := s.display[key]; !ok {
				s.display[key] = strings.TrimSpace(raw)
			}
		}
		s.txs = append(s.txs, tx)
	}
	return s, nil
}

// Len 返回事务数量
func (s *TransactionStore) Len() int { return len(s.txs) }

// At 返回第 i 个事务
func (s *TransactionStore) At(i int) Transaction { return s.txs[i] }

// Contains 判断是否有任一事务包含该物品（参数可为原始写法）
func (s *TransactionStore) Contains(name string) bool {
	key, err := NormalizeItem(name)
	if err != nil {
		return false
	}
	_, ok := s.display[key]
	return ok
}

// DisplayName 返回规范化名称对应的原始写法；未知物品原样返回。
func (s *TransactionStore) DisplayName(key string) string {
	if name, ok := s.display[key]; ok {
		return name
	}
	return key
}

// Items 返回全部不重复物品（规范化名称，字典序）
func (s *TransactionStore) Items() []string {
	out := make([]string, 0, len(s.display))
	for k := range s.display {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TransactionSource 是事务数据源的领域接口，由基础设施层（store）实现。
//
// 实现：
//   - store.MemorySource（内存/示例数据）
//   - store.FileSource（YAML/JSON 文件）
//   - store.RedisSource（Redis list）
type TransactionSource interface {
	// Name 返回数据源名称（用于日志/监控）
	Name() string

	// Transactions 读取全部篮子
	Transactions(ctx context.Context) ([][]string, error)
}
