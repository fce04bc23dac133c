package service

import (
	"strings"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pkg/metrics"
	"github.com/rushteam/basketrec/pkg/utils"
)

// Path 表示一次查询的命中路径
type Path string

const (
	PathRules        Path = metrics.PathRules        // 规则索引命中
	PathCoOccurrence Path = metrics.PathCoOccurrence // 共现回退
	PathNone         Path = metrics.PathNone         // 没有任何推荐
)

// Result 是一次查询的结果：最多 TopN 个互不重复的物品，按分数降序。
// 找不到推荐时 Path 为 PathNone、Items 为空，这是正常结果而不是错误。
type Result struct {
	Query  string       `json:"query"`
	Item   string       `json:"item"`
	SortBy string       `json:"sort_by"`
	Path   Path         `json:"path"`
	Items  []*core.Item `json:"items"`
}

// Found 判断是否有推荐
func (r *Result) Found() bool { return len(r.Items) > 0 }

// IDs 返回推荐物品名
func (r *Result) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

// String 返回可读文本：
//
//	If someone orders 'Bacon Cheese', recommend:
//	fries
//	coke
func (r *Result) String() string {
	if !r.Found() {
		return "No recommendation found for '" + r.Query + "'."
	}
	return "If someone orders '" + r.Query + "', recommend:\n" + strings.Join(r.IDs(), "\n")
}

// pathOf 根据召回节点写入的请求级 path label 判断命中路径；
// 候选被过滤光时视为没有推荐。
func pathOf(rctx *core.RecommendContext, items []*core.Item) Path {
	if len(items) == 0 {
		return PathNone
	}
	if lbl, ok := rctx.GetLabel(utils.LabelPath); ok && lbl.Value == "cooccurrence" {
		return PathCoOccurrence
	}
	return PathRules
}
