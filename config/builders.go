package config

import (
	"fmt"

	"github.com/rushteam/basketrec/filter"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/conv"
	"github.com/rushteam/basketrec/recall"
	"github.com/rushteam/basketrec/rerank"
)

func init() {
	Register("recall.association", BuildAssociationNode)
	Register("recall.cooccurrence", BuildCoOccurrenceNode)
	Register("filter", BuildFilterNode)
	Register("rerank.topn", BuildTopNNode)
}

func BuildAssociationNode(_ map[string]any, res *Resources) (pipeline.Node, error) {
	if res == nil || res.Index == nil {
		return nil, fmt.Errorf("recall.association requires a rule index")
	}
	return &recall.Association{Index: res.Index}, nil
}

func BuildCoOccurrenceNode(_ map[string]any, res *Resources) (pipeline.Node, error) {
	if res == nil || res.Store == nil {
		return nil, fmt.Errorf("recall.cooccurrence requires a transaction store")
	}
	return &recall.CoOccurrence{Store: res.Store}, nil
}

// BuildFilterNode 支持两种过滤器：
//
//	config:
//	  blacklist: ["coke"]
//	  expr: 'item.score >= 0.5'
func BuildFilterNode(cfg map[string]any, _ *Resources) (pipeline.Node, error) {
	var filters []filter.Filter
	if items := conv.SliceAnyToString(cfg["blacklist"]); len(items) > 0 {
		filters = append(filters, filter.NewBlacklistFilter(items))
	}
	if expr := conv.ConfigGet(cfg, "expr", ""); expr != "" {
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("filter requires blacklist or expr")
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildTopNNode(cfg map[string]any, _ *Resources) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}
