// Package service 提供推荐引擎：从事务数据源构建模型（挖掘 → 规则 → 索引 → Pipeline），
// 并在不可变的模型快照上回答查询。
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/basketrec/config"
	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/mining"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/dsl"
	"github.com/rushteam/basketrec/pkg/logging"
	"github.com/rushteam/basketrec/pkg/metrics"
	"github.com/rushteam/basketrec/recall"
)

// ErrModelNotReady 表示还没有成功构建过模型
var ErrModelNotReady = core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound, "service: model not built")

// Model 是一次构建的全部产物，构建完成后只读。
type Model struct {
	Source     string
	Store      *core.TransactionStore
	MinSupport float64
	Itemsets   []mining.Itemset
	Rules      []mining.Rule
	Index      *recall.Index
	Pipeline   *pipeline.Pipeline
	BuiltAt    time.Time
}

// Engine 是推荐引擎。
//
// 生命周期：Build 构建新模型并原子替换；Recommend 读取当前快照。
// 构建期间查询继续使用旧模型，看到的始终是完整一致的模型。
type Engine struct {
	minSupportFloor float64
	minConfidence   float64
	maxLen          int
	ruleFilterExpr  string
	ruleFilter      *dsl.Program
	pipelineSpec    pipeline.Spec
	batchLimit      int

	model   atomic.Pointer[Model]
	buildMu sync.Mutex
}

// EngineOption 是 Engine 的可选配置
type EngineOption func(*Engine)

// WithMinSupportFloor 设置最小支持度下限（默认 0.1）
func WithMinSupportFloor(floor float64) EngineOption {
	return func(e *Engine) { e.minSupportFloor = floor }
}

// WithMinConfidence 设置最小置信度（默认 0.3）
func WithMinConfidence(c float64) EngineOption {
	return func(e *Engine) { e.minConfidence = c }
}

// WithMaxLen 限制项集最大长度
func WithMaxLen(n int) EngineOption {
	return func(e *Engine) { e.maxLen = n }
}

// WithRuleFilter 设置 CEL 规则过滤表达式，只有满足的规则进入索引
func WithRuleFilter(expr string) EngineOption {
	return func(e *Engine) { e.ruleFilterExpr = expr }
}

// WithPipeline 使用自定义查询链路
func WithPipeline(spec pipeline.Spec) EngineOption {
	return func(e *Engine) { e.pipelineSpec = spec }
}

// WithBatchConcurrency 限制 RecommendBatch 的并发数（默认 8）
func WithBatchConcurrency(n int) EngineOption {
	return func(e *Engine) { e.batchLimit = n }
}

// NewEngine 创建引擎；规则过滤表达式或 Pipeline 配置非法时返回 CONFIGURATION_ERROR。
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		minSupportFloor: mining.DefaultMinSupportFloor,
		minConfidence:   mining.DefaultMinConfidence,
		pipelineSpec:    config.DefaultPipelineSpec(),
		batchLimit:      8,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.minSupportFloor < 0 || e.minSupportFloor > 1 {
		return nil, core.Errorf(core.ModuleService, core.ErrorCodeConfiguration, "service: min_support_floor must be in [0, 1], got %v", e.minSupportFloor)
	}
	if e.minConfidence < 0 || e.minConfidence > 1 {
		return nil, core.Errorf(core.ModuleService, core.ErrorCodeConfiguration, "service: min_confidence must be in [0, 1], got %v", e.minConfidence)
	}
	if e.ruleFilterExpr != "" {
		prg, err := dsl.Compile(e.ruleFilterExpr)
		if err != nil {
			return nil, err
		}
		e.ruleFilter = prg
	}
	if err := config.ValidatePipelineSpec(&e.pipelineSpec); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineFromConfig 根据应用配置创建引擎
func NewEngineFromConfig(cfg *config.AppConfig) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultAppConfig()
	}
	opts := []EngineOption{
		WithMinSupportFloor(cfg.Mining.MinSupportFloor),
		WithMinConfidence(cfg.Mining.MinConfidence),
		WithMaxLen(cfg.Mining.MaxLen),
		WithRuleFilter(cfg.Mining.RuleFilter),
	}
	if cfg.Pipeline != nil {
		opts = append(opts, WithPipeline(*cfg.Pipeline))
	}
	return NewEngine(opts...)
}

// BuildModel 从篮子构建模型，不影响当前模型。
// 同样的输入总是得到同样的模型（项集、规则、索引顺序一致）。
func (e *Engine) BuildModel(ctx context.Context, baskets [][]string) (*Model, error) {
	store, err := core.NewTransactionStore(baskets)
	if err != nil {
		return nil, err
	}
	minSupport, err := mining.MinSupport(store.Len(), e.minSupportFloor)
	if err != nil {
		return nil, err
	}

	miner := &mining.Miner{MinSupport: minSupport, MaxLen: e.maxLen}
	itemsets, err := miner.Mine(ctx, store)
	if err != nil {
		return nil, err
	}
	rules, err := mining.GenerateRules(itemsets, e.minConfidence)
	if err != nil {
		return nil, err
	}
	if rules, err = dsl.FilterRules(e.ruleFilter, rules); err != nil {
		return nil, err
	}

	index := recall.BuildIndex(rules)
	p, err := config.BuildPipeline(e.pipelineSpec, &config.Resources{Index: index, Store: store})
	if err != nil {
		return nil, err
	}

	return &Model{
		Store:      store,
		MinSupport: minSupport,
		Itemsets:   itemsets,
		Rules:      rules,
		Index:      index,
		Pipeline:   p,
		BuiltAt:    time.Now(),
	}, nil
}

// Build 从数据源读取篮子、构建模型并原子替换当前模型。
// 失败时保留旧模型。
func (e *Engine) Build(ctx context.Context, src core.TransactionSource) (*Model, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	log := logging.Component("engine")
	start := time.Now()

	baskets, err := src.Transactions(ctx)
	if err != nil {
		metrics.BuildErrors.Inc()
		log.Error().Err(err).Str("source", src.Name()).Msg("load transactions failed")
		return nil, err
	}

	m, err := e.BuildModel(ctx, baskets)
	if err != nil {
		metrics.BuildErrors.Inc()
		log.Error().Err(err).Str("source", src.Name()).Int("transactions", len(baskets)).Msg("build model failed")
		return nil, err
	}
	m.Source = src.Name()
	e.model.Store(m)

	elapsed := time.Since(start)
	metrics.BuildDuration.Observe(elapsed.Seconds())
	metrics.Transactions.Set(float64(m.Store.Len()))
	metrics.FrequentItemsets.Set(float64(len(m.Itemsets)))
	metrics.Rules.Set(float64(len(m.Rules)))

	log.Info().
		Str("source", m.Source).
		Int("transactions", m.Store.Len()).
		Float64("min_support", m.MinSupport).
		Int("itemsets", len(m.Itemsets)).
		Int("rules", len(m.Rules)).
		Int("indexed_items", m.Index.Len()).
		Strs("pipeline", m.Pipeline.NodeNames()).
		Strs("stages", m.Pipeline.NodeKinds()).
		Dur("elapsed", elapsed).
		Msg("model built")
	return m, nil
}

// Model 返回当前模型快照；未构建时返回 nil。
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// Recommend 返回 item 的至多 topN 个推荐。
//   - topN <= 0、sortBy 非法：CONFIGURATION_ERROR
//   - item 为空：INVALID_INPUT
//   - 未构建模型：ErrModelNotReady
//   - 没有推荐：Result.Path == PathNone，err 为 nil
func (e *Engine) Recommend(ctx context.Context, item string, topN int, sortBy string) (*Result, error) {
	m := e.model.Load()
	if m == nil {
		return nil, ErrModelNotReady
	}
	return m.Recommend(ctx, item, topN, sortBy)
}

// RecommendBatch 在同一个模型快照上并发查询多个物品，结果与 items 一一对应。
func (e *Engine) RecommendBatch(ctx context.Context, items []string, topN int, sortBy string) ([]*Result, error) {
	m := e.model.Load()
	if m == nil {
		return nil, ErrModelNotReady
	}

	results := make([]*Result, len(items))
	eg, egCtx := errgroup.WithContext(ctx)
	if e.batchLimit > 0 {
		eg.SetLimit(e.batchLimit)
	}
	for i, item := range items {
		eg.Go(func() error {
			res, err := m.Recommend(egCtx, item, topN, sortBy)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Recommend 在模型上执行一次查询
func (m *Model) Recommend(ctx context.Context, item string, topN int, sortBy string) (*Result, error) {
	rctx, err := core.NewRecommendContext(item, topN, sortBy)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(metrics.PathError).Inc()
		return nil, err
	}

	items, err := m.Pipeline.Run(ctx, rctx, nil)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(metrics.PathError).Inc()
		return nil, err
	}
	// 自定义 Pipeline 可能没有 rerank.topn，结果数量在这里兜底
	if len(items) > rctx.TopN {
		items = items[:rctx.TopN]
	}

	res := &Result{
		Query:  item,
		Item:   rctx.Item,
		SortBy: sortBy,
		Path:   pathOf(rctx, items),
		Items:  items,
	}
	if res.Items == nil {
		res.Items = []*core.Item{}
	}
	metrics.RecommendRequests.WithLabelValues(string(res.Path)).Inc()
	logging.Component("engine").Debug().
		Str("query", item).Str("path", string(res.Path)).Strs("items", res.IDs()).Msg("recommend")
	return res, nil
}
