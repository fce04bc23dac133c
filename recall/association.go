package recall

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/utils"
)

// Association 是基于关联规则索引的召回源（索引路径）。
//
// 流程：
//  1. 以规范化物品名查找索引桶
//  2. 按 rctx.SortBy（confidence / lift）对桶内条目稳定降序排序
//  3. 展开每个条目的后件，同一后件只保留最高分（按后件做 max 归约）
//  4. 按分数降序输出，分数相同保持首次出现顺序
//
// 截断 TopN 由 rerank.TopNNode 负责。
// Association 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Association struct {
	Index *Index
}

func (r *Association) Name() string        { return "recall.association" }
func (r *Association) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Association) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口；物品没有规则时返回空结果。
func (r *Association) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil {
		return nil, nil
	}
	entries := r.Index.Lookup(rctx.Item)
	if len(entries) == 0 {
		return nil, nil
	}

	sortBy := rctx.SortBy
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score(sortBy) > entries[j].Score(sortBy)
	})

	best := make(map[string]*core.Item, len(entries))
	out := make([]*core.Item, 0, len(entries))
	for _, e := range entries {
		score := e.Score(sortBy)
		for _, c := range e.Consequents {
			if it, ok := best[c]; ok {
				if score > it.Score {
					setRule(it, e, score)
				}
				continue
			}
			it := core.NewItem(c)
			it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "association", Source: "recall"})
			setRule(it, e, score)
			best[c] = it
			out = append(out, it)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	rctx.PutLabel(utils.LabelPath, utils.Label{Value: "association", Source: r.Name()})
	return out, nil
}

// setRule 记录产生该推荐的规则（覆盖旧值，而不是 Merge）
func setRule(it *core.Item, e Entry, score float64) {
	it.Score = score
	it.Meta["confidence"] = e.Confidence
	it.Meta["lift"] = e.Lift
	it.Labels[utils.LabelRule] = utils.Label{
		Value:  strings.Join(e.Antecedents, ", ") + " -> " + strings.Join(e.Consequents, ", "),
		Source: "recall",
	}
}
