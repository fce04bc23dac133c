package recall

import (
	"context"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
)

// Source 表示一个可复用的召回源（规则索引 / 共现统计 / ...）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

var (
	_ Source        = (*Association)(nil)
	_ Source        = (*CoOccurrence)(nil)
	_ pipeline.Node = (*Association)(nil)
	_ pipeline.Node = (*CoOccurrence)(nil)
)
