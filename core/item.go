package core

import (
	"strings"

	"github.com/rushteam/basketrec/pkg/utils"
)

// NormalizeItem 把物品名规范化为统一标识：去掉首尾空白并转小写。
// 大小写不同的同名物品折叠为同一个标识；空名称返回 ErrEmptyItem。
func NormalizeItem(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", ErrEmptyItem
	}
	return key, nil
}

// Item 是推荐链路中的统一承载结构：推荐物品、分数、元信息、标签。
// ID 是展示用物品名（索引路径为规范化名称，共现回退路径为数据集原始写法）。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Meta   map[string]any         `json:"meta,omitempty"`
	Labels map[string]utils.Label `json:"labels,omitempty"`
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
