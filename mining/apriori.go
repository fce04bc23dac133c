// Package mining 实现频繁项集挖掘（Apriori）与关联规则生成。
//
// 流程：
//
//	TransactionStore → Mine（频繁项集） → GenerateRules（关联规则）
//
// 所有结果都是按确定性顺序排列的值，重复运行得到相同输出。
package mining

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/rushteam/basketrec/core"
)

// DefaultMinSupportFloor 是最小支持度的默认下限。
const DefaultMinSupportFloor = 0.1

// Itemset 是频繁项集：物品按字典序排列。
type Itemset struct {
	Items   []string `json:"items"`
	Count   int      `json:"count"`   // 包含全部物品的事务数
	Support float64  `json:"support"` // Count / 事务总数
}

// Key 返回项集的规范 key，可用作 map key
func (s Itemset) Key() string { return itemsKey(s.Items) }

// String 返回可读形式，例如 "{bacon cheese, fries}"
func (s Itemset) String() string { return "{" + strings.Join(s.Items, ", ") + "}" }

// Len 返回项集大小
func (s Itemset) Len() int { return len(s.Items) }

// MinSupport 根据事务数计算最小支持度：max(1/n, floor)。
// 阈值与数据集大小耦合，事务集变化后需要重新计算。
func MinSupport(n int, floor float64) (float64, error) {
	if n <= 0 {
		return 0, core.ErrEmptyTransactions
	}
	return math.Max(1/float64(n), floor), nil
}

// Miner 是逐层（level-wise）的 Apriori 挖掘器。
type Miner struct {
	// MinSupport 最小支持度，取值 (0, 1]
	MinSupport float64

	// MaxLen 项集最大长度，0 表示不限制
	MaxLen int
}

// Mine 是 Miner{MinSupport: minSupport}.Mine 的快捷方式。
func Mine(ctx context.Context, store *core.TransactionStore, minSupport float64) ([]Itemset, error) {
	m := &Miner{MinSupport: minSupport}
	return m.Mine(ctx, store)
}

// level 是一层频繁项集及其事务位图，两者按下标一一对应
type level struct {
	sets []Itemset
	tids []*bitset.BitSet
}

// Mine 返回 support >= MinSupport 的全部项集。
//
// 算法：
//  1. 单物品候选：每个物品一个事务位图（bit i 表示第 i 个事务包含该物品）
//  2. 保留 support >= MinSupport 的项集
//  3. 由两个共享前 k-1 个物品的 k 项集连接出 k+1 候选，且其所有 k 子集都必须频繁
//  4. 直到某一层为空
//
// 每层之间检查 ctx，可被取消。
func (m *Miner) Mine(ctx context.Context, store *core.TransactionStore) ([]Itemset, error) {
	if store == nil || store.Len() == 0 {
		return nil, core.ErrEmptyTransactions
	}
	if m.MinSupport <= 0 || m.MinSupport > 1 || math.IsNaN(m.MinSupport) {
		return nil, core.Errorf(core.ModuleMining, core.ErrorCodeConfiguration, "mining: min_support must be in (0, 1], got %v", m.MinSupport)
	}

	n := store.Len()
	cur := m.singletons(store)

	var out []Itemset
	for k := 1; len(cur.sets) > 0; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, cur.sets...)
		if m.MaxLen > 0 && k >= m.MaxLen {
			break
		}
		cur = m.nextLevel(cur, n)
	}
	return out, nil
}

func (m *Miner) singletons(store *core.TransactionStore) level {
	n := store.Len()
	tids := make(map[string]*bitset.BitSet)
	for i := 0; i < n; i++ {
		for _, item := range store.At(i).Items() {
			bs, ok := tids[item]
			if !ok {
				bs = bitset.New(uint(n))
				tids[item] = bs
			}
			bs.Set(uint(i))
		}
	}

	items := make([]string, 0, len(tids))
	for item := range tids {
		items = append(items, item)
	}
	sort.Strings(items)

	var lv level
	for _, item := range items {
		bs := tids[item]
		count := int(bs.Count())
		support := float64(count) / float64(n)
		if support < m.MinSupport {
			continue
		}
		lv.sets = append(lv.sets, Itemset{Items: []string{item}, Count: count, Support: support})
		lv.tids = append(lv.tids, bs)
	}
	return lv
}

// nextLevel 由当前层（已按字典序排列）生成下一层频繁项集。
func (m *Miner) nextLevel(cur level, n int) level {
	frequent := make(map[string]struct{}, len(cur.sets))
	for _, s := range cur.sets {
		frequent[s.Key()] = struct{}{}
	}

	var next level
	for i := 0; i < len(cur.sets); i++ {
		a := cur.sets[i].Items
		for j := i + 1; j < len(cur.sets); j++ {
			b := cur.sets[j].Items
			// 同层项集有序，前缀不同后不会再出现可连接的项集
			if !samePrefix(a, b) {
				break
			}
			cand := make([]string, len(a)+1)
			copy(cand, a)
			cand[len(a)] = b[len(b)-1]

			if !allSubsetsFrequent(cand, frequent) {
				continue
			}

			tid := cur.tids[i].Intersection(cur.tids[j])
			count := int(tid.Count())
			support := float64(count) / float64(n)
			if support < m.MinSupport {
				continue
			}
			next.sets = append(next.sets, Itemset{Items: cand, Count: count, Support: support})
			next.tids = append(next.tids, tid)
		}
	}
	return next
}

// samePrefix 判断两个等长有序项集是否只在最后一个物品上不同
func samePrefix(a, b []string) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsFrequent 检查候选的每个 k 子集是否都在上一层频繁集中（反单调剪枝）
func allSubsetsFrequent(cand []string, frequent map[string]struct{}) bool {
	if len(cand) <= 2 {
		// 两项候选的子集就是连接它的两个单项集
		return true
	}
	sub := make([]string, 0, len(cand)-1)
	for skip := range cand {
		sub = sub[:0]
		for i, item := range cand {
			if i != skip {
				sub = append(sub, item)
			}
		}
		if _, ok := frequent[itemsKey(sub)]; !ok {
			return false
		}
	}
	return true
}

// itemsKey 以 \x00 连接物品，物品名本身可能含有逗号
func itemsKey(items []string) string {
	return strings.Join(items, "\x00")
}
