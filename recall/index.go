package recall

import (
	"sort"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/mining"
)

// Entry 是推荐索引中的一条记录：某条规则对其前件中单个物品的贡献。
type Entry struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
}

// Score 按排序指标返回分数，未知指标返回 Confidence。
func (e Entry) Score(sortBy string) float64 {
	if sortBy == core.SortByLift {
		return e.Lift
	}
	return e.Confidence
}

// Index 是按单个前件物品分桶的规则索引：item -> []Entry。
//
// 构建一次后只读：Lookup 返回副本，多个 goroutine 可并发查询。
// 多物品前件的规则会出现在每个前件物品的桶中，查询其中任一物品都能命中。
type Index struct {
	buckets map[string][]Entry
	rules   int
}

// BuildIndex 对规则序列做一次折叠生成索引；桶内顺序与规则顺序一致。
// 规则中的物品名已是规范化名称。
func BuildIndex(rules []mining.Rule) *Index {
	buckets := make(map[string][]Entry)
	for _, r := range rules {
		entry := Entry{
			Antecedents: cloneStrings(r.Antecedents),
			Consequents: cloneStrings(r.Consequents),
			Confidence:  r.Confidence,
			Lift:        r.Lift,
		}
		for _, item := range r.Antecedents {
			buckets[item] = append(buckets[item], entry)
		}
	}
	return &Index{buckets: buckets, rules: len(rules)}
}

// Lookup 返回物品桶的副本；item 需为规范化名称。
func (idx *Index) Lookup(item string) []Entry {
	if idx == nil {
		return nil
	}
	bucket := idx.buckets[item]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]Entry, len(bucket))
	for i, e := range bucket {
		e.Antecedents = cloneStrings(e.Antecedents)
		e.Consequents = cloneStrings(e.Consequents)
		out[i] = e
	}
	return out
}

// Len 返回有条目的物品数
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.buckets)
}

// RuleCount 返回构建索引的规则数
func (idx *Index) RuleCount() int {
	if idx == nil {
		return 0
	}
	return idx.rules
}

// Items 返回有条目的物品（字典序）
func (idx *Index) Items() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, 0, len(idx.buckets))
	for k := range idx.buckets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
