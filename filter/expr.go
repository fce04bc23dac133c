package filter

import (
	"context"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述“保留”条件，不满足表达式的物品被过滤。
//
// 示例：`item.score >= 0.5`、`label.recall_source == "association"`
type ExprFilter struct {
	Program *dsl.Program
}

// NewExprFilter 编译表达式并创建过滤器
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.Program.MatchItem(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
