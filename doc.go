// Package basketrec 是一个基于关联规则的购物篮推荐工具包。
//
// 设计要点：
// - Batch-first: 事务集 → Apriori 频繁项集 → 关联规则（confidence / lift）→ 按前件物品分桶的索引
// - Pipeline-first: 查询通过 Node 串联（规则索引 → 共现回退 → 过滤 → TopN）
// - Immutable model: 模型构建后只读，重建时原子替换，查询无需加锁
// - Labels-first: 每个推荐都带有召回来源与规则 label，便于 explain / 观测
package basketrec

import (
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/service"
)

// 轻量 facade：便于用户直接 import "basketrec" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Engine   = service.Engine
	Result   = service.Result
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

// NewEngine 创建推荐引擎，见 service.NewEngine。
var NewEngine = service.NewEngine
