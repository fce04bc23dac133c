package pipeline

import (
	"context"

	"github.com/rushteam/basketrec/core"
)

// Kind 标记 Node 所在阶段，模型构建日志按阶段输出整条链路（Pipeline.NodeKinds）。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：规则索引命中或共现回退生成候选
	KindFilter Kind = "filter" // 过滤阶段：剔除黑名单或不满足表达式的候选
	KindReRank Kind = "rerank" // 重排阶段：截断 TopN
)

// Node 是一次购物篮查询链路上的一个步骤。
// 输入为上游候选（第一个召回节点收到 nil），输出交给下一个 Node；
// 候选的 ID 是推荐物品名，Score 是规则的 confidence/lift 或共现次数。
// Node 只读模型数据（规则索引、事务集），同一个 Pipeline 可被多个查询并发执行。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
