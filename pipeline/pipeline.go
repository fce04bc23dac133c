package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/basketrec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：
//
//	recall.association → recall.cooccurrence → [filter] → rerank.topn
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// NodeNames 返回各 Node 名称，用于日志
func (p *Pipeline) NodeNames() []string {
	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	return names
}

// NodeKinds 返回各 Node 所属阶段（与 NodeNames 一一对应），用于构建日志
func (p *Pipeline) NodeKinds() []string {
	kinds := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		kinds = append(kinds, string(n.Kind()))
	}
	return kinds
}
