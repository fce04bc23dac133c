package mining

import (
	"math"
	"sort"
	"strings"

	"github.com/rushteam/basketrec/core"
)

// DefaultMinConfidence 是规则的默认最小置信度。
const DefaultMinConfidence = 0.3

// Rule 是一条有向关联规则：Antecedents → Consequents。
// 前件与后件不相交，且都来自同一个频繁项集。
type Rule struct {
	Antecedents []string
	Consequents []string

	Support           float64 // support(A ∪ C)
	AntecedentSupport float64 // support(A)
	ConsequentSupport float64 // support(C)

	Confidence float64 // support(A ∪ C) / support(A)
	Lift       float64 // Confidence / support(C)
	Leverage   float64 // support(A ∪ C) - support(A) * support(C)
	Conviction float64 // (1 - support(C)) / (1 - Confidence)，Confidence == 1 时为 +Inf
}

// String 返回可读形式，例如 "bacon cheese -> fries"
func (r Rule) String() string {
	return strings.Join(r.Antecedents, ", ") + " -> " + strings.Join(r.Consequents, ", ")
}

// Score 按排序指标返回分数；指标非法时返回 false。
func (r Rule) Score(sortBy string) (float64, bool) {
	switch sortBy {
	case core.SortByConfidence:
		return r.Confidence, true
	case core.SortByLift:
		return r.Lift, true
	default:
		return 0, false
	}
}

// GenerateRules 从频繁项集生成置信度 >= minConfidence 的规则。
//
// 对每个大小 k >= 2 的项集，枚举全部 2^k - 2 种（前件, 后件）划分。
// 前件/后件的 support 取自同一批频繁项集（反单调性保证子集一定存在）；
// 缺失或为 0 的 support 不产生规则。
//
// 返回顺序：confidence 降序，lift 降序，前件字典序，后件字典序。
func GenerateRules(itemsets []Itemset, minConfidence float64) ([]Rule, error) {
	if minConfidence < 0 || minConfidence > 1 || math.IsNaN(minConfidence) {
		return nil, core.Errorf(core.ModuleMining, core.ErrorCodeConfiguration, "mining: min_confidence must be in [0, 1], got %v", minConfidence)
	}

	byKey := make(map[string]Itemset, len(itemsets))
	for _, s := range itemsets {
		byKey[s.Key()] = s
	}

	var rules []Rule
	for _, s := range itemsets {
		k := len(s.Items)
		if k < 2 {
			continue
		}
		// mask 的第 i 位为 1 表示 Items[i] 属于前件；跳过全 0 与全 1
		full := 1<<k - 1
		for mask := 1; mask < full; mask++ {
			ante, cons := split(s.Items, mask)
			a, ok := byKey[itemsKey(ante)]
			if !ok || a.Count <= 0 {
				continue
			}
			c, ok := byKey[itemsKey(cons)]
			if !ok || c.Count <= 0 {
				continue
			}

			// 用计数相除，避免 support 浮点误差累积
			confidence := float64(s.Count) / float64(a.Count)
			if confidence < minConfidence {
				continue
			}
			rules = append(rules, newRule(ante, cons, s.Support, a.Support, c.Support, confidence))
		}
	}

	SortRules(rules)
	return rules, nil
}

func newRule(ante, cons []string, support, anteSupport, consSupport, confidence float64) Rule {
	conviction := math.Inf(1)
	if confidence < 1 {
		conviction = (1 - consSupport) / (1 - confidence)
	}
	return Rule{
		Antecedents:       ante,
		Consequents:       cons,
		Support:           support,
		AntecedentSupport: anteSupport,
		ConsequentSupport: consSupport,
		Confidence:        confidence,
		Lift:              confidence / consSupport,
		Leverage:          support - anteSupport*consSupport,
		Conviction:        conviction,
	}
}

// split 按位掩码把有序项集划分为前件与后件（两者保持字典序）
func split(items []string, mask int) (ante, cons []string) {
	for i, item := range items {
		if mask&(1<<i) != 0 {
			ante = append(ante, item)
		} else {
			cons = append(cons, item)
		}
	}
	return ante, cons
}

// SortRules 原地排序：confidence 降序，lift 降序，前件字典序，后件字典序。
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Lift != b.Lift {
			return a.Lift > b.Lift
		}
		if ka, kb := itemsKey(a.Antecedents), itemsKey(b.Antecedents); ka != kb {
			return ka < kb
		}
		return itemsKey(a.Consequents) < itemsKey(b.Consequents)
	})
}
