package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/recall"
)

// Resources 是构建 Node 时可用的只读模型数据。
// 每次模型重建都会生成新的 Resources，并据此构建新的 Pipeline。
type Resources struct {
	Index *recall.Index
	Store *core.TransactionStore
}

// NodeBuilder 根据 config 与模型数据构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder func(cfg map[string]any, res *Resources) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 Factory 与配置驱动使用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Factory 返回绑定了 res 的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func Factory(res *Resources) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		b := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return b(cfg, res)
		})
	}
	return f
}

// ValidatePipelineSpec 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineSpec(spec *pipeline.Spec) error {
	if spec == nil {
		return nil
	}
	supported := SupportedTypes()
	for _, nc := range spec.Nodes {
		defaultBuildersMu.RLock()
		_, ok := defaultBuilders[nc.Type]
		defaultBuildersMu.RUnlock()
		if !ok {
			return core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}

// DefaultPipelineSpec 是默认的查询链路：规则索引 → 共现回退 → TopN 截断。
func DefaultPipelineSpec() pipeline.Spec {
	return pipeline.Spec{
		Name: "default",
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.association"},
			{Type: "recall.cooccurrence"},
			{Type: "rerank.topn"},
		},
	}
}

// BuildPipeline 用 res 构建 spec 描述的 Pipeline。
func BuildPipeline(spec pipeline.Spec, res *Resources) (*pipeline.Pipeline, error) {
	if err := ValidatePipelineSpec(&spec); err != nil {
		return nil, err
	}
	p, err := spec.Build(Factory(res))
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", spec.Name, err)
	}
	return p, nil
}
