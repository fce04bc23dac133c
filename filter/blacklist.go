package filter

import (
	"context"

	"github.com/rushteam/basketrec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉不应被推荐的物品（例如下架商品）。
// 名称按规范化形式比较，"Coke" 与 " coke " 视为同一物品。
type BlacklistFilter struct {
	items map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器，空名称被忽略。
func NewBlacklistFilter(items []string) *BlacklistFilter {
	f := &BlacklistFilter{items: make(map[string]struct{}, len(items))}
	for _, name := range items {
		if key, err := core.NormalizeItem(name); err == nil {
			f.items[key] = struct{}{}
		}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	key, err := core.NormalizeItem(item.ID)
	if err != nil {
		return true, nil
	}
	_, ok := f.items[key]
	return ok, nil
}
