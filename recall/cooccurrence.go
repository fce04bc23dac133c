package recall

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/utils"
)

// CoOccurrence 是共现计数召回源（回退路径）。
//
// 扫描包含查询物品的全部事务，统计其余物品的出现次数，按次数降序输出；
// 次数相同按首次出现顺序（事务顺序 + 事务内顺序）。
// 输出的物品 ID 使用数据集中的原始写法，Score 为共现次数。
//
// 作为 Node 时只在上游没有产出时生效：上游（规则索引）有结果则原样透传。
type CoOccurrence struct {
	Store *core.TransactionStore
}

func (r *CoOccurrence) Name() string        { return "recall.cooccurrence" }
func (r *CoOccurrence) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *CoOccurrence) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) > 0 {
		return items, nil
	}
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口；没有任何事务包含该物品时返回空结果。
func (r *CoOccurrence) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil {
		return nil, nil
	}

	counts := make(map[string]int)
	var order []string
	for i := 0; i < r.Store.Len(); i++ {
		tx := r.Store.At(i)
		if !tx.Contains(rctx.Item) {
			continue
		}
		for _, other := range tx.Items() {
			if other == rctx.Item {
				continue
			}
			if _, seen := counts[other]; !seen {
				order = append(order, other)
			}
			counts[other]++
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	out := make([]*core.Item, 0, len(order))
	for _, key := range order {
		it := core.NewItem(r.Store.DisplayName(key))
		it.Score = float64(counts[key])
		it.Meta["key"] = key
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "cooccurrence", Source: "recall"})
		it.PutLabel(utils.LabelCount, utils.Label{Value: strconv.Itoa(counts[key]), Source: "recall"})
		out = append(out, it)
	}
	rctx.PutLabel(utils.LabelPath, utils.Label{Value: "cooccurrence", Source: r.Name()})
	return out, nil
}
