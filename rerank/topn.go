package rerank

import (
	"context"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，放在召回/过滤之后，限制返回结果数量。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Association{Index: idx},
//	        &recall.CoOccurrence{Store: store},
//	        &rerank.TopNNode{},            // 使用请求中的 TopN
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量上限（Top N）
	// 与 rctx.TopN 同时设置时取较小值；N <= 0 时只使用 rctx.TopN
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if rctx != nil && rctx.TopN > 0 && (limit <= 0 || rctx.TopN < limit) {
		limit = rctx.TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
