package filter

import (
	"context"

	"github.com/rushteam/basketrec/core"
)

// Filter 判断一个推荐候选是否应该被移除，返回 true 表示移除。
//
// 候选的 ID 来自召回路径：规则索引路径为规范化名称（"fries"），
// 共现回退路径为数据集中的原始写法（"Fries"），按名称比较的过滤器
// 应先用 core.NormalizeItem 统一。rctx.Item 是规范化后的查询物品。
type Filter interface {
	// Name 写入被移除候选的 filtered label（Source）
	Name() string

	// ShouldFilter 出错时 FilterNode 保留该候选
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
