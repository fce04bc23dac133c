package core

import "github.com/rushteam/basketrec/pkg/utils"

// 排序指标
const (
	SortByConfidence = "confidence"
	SortByLift       = "lift"
)

// RecommendContext 承载一次查询的请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// Query 是调用方传入的原始物品名
	Query string

	// Item 是规范化后的物品名，用于索引查找与事务匹配
	Item string

	// TopN 是最多返回的推荐数量
	TopN int

	// SortBy 是索引路径的排序指标：confidence / lift
	SortBy string

	// Labels 是请求级标签：召回节点在这里记录命中的路径（utils.LabelPath）
	Labels map[string]utils.Label
}

// NewRecommendContext 校验参数并构建 RecommendContext。
//   - topN <= 0 或 sortBy 非法：CONFIGURATION_ERROR
//   - 物品名为空：INVALID_INPUT
func NewRecommendContext(query string, topN int, sortBy string) (*RecommendContext, error) {
	if topN <= 0 {
		return nil, Errorf(ModuleRecall, ErrorCodeConfiguration, "recall: top_n must be positive, got %d", topN)
	}
	if !ValidSortBy(sortBy) {
		return nil, Errorf(ModuleRecall, ErrorCodeConfiguration, "recall: unsupported sort_by %q (supported: %s, %s)", sortBy, SortByConfidence, SortByLift)
	}
	item, err := NormalizeItem(query)
	if err != nil {
		return nil, err
	}
	return &RecommendContext{
		Query:  query,
		Item:   item,
		TopN:   topN,
		SortBy: sortBy,
	}, nil
}

// ValidSortBy 判断排序指标是否受支持
func ValidSortBy(sortBy string) bool {
	return sortBy == SortByConfidence || sortBy == SortByLift
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
