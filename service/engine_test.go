package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/basketrec/config"
	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/metrics"
	"github.com/rushteam/basketrec/store"
)

func newSampleEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	_, err = e.Build(context.Background(), store.NewMemorySource(store.SampleBaskets()))
	require.NoError(t, err)
	return e
}

func TestEngine_RecommendSample(t *testing.T) {
	e := newSampleEngine(t)
	ctx := context.Background()

	tests := []struct {
		item   string
		topN   int
		sortBy string
		want   []string
	}{
		{item: "Bacon Cheese", topN: 2, sortBy: core.SortByConfidence, want: []string{"fries", "coke"}},
		{item: "Bacon Cheese", topN: 3, sortBy: core.SortByConfidence, want: []string{"fries", "coke", "chocolate shake"}},
		{item: "Bacon Cheese", topN: 2, sortBy: core.SortByLift, want: []string{"coke", "fries"}},
		{item: "Chef Burger", topN: 2, sortBy: core.SortByConfidence, want: []string{"chocolate shake", "fries"}},
		{item: "Freestyle Soda", topN: 2, sortBy: core.SortByConfidence, want: []string{"chocolate shake", "fries"}},
		{item: "Chocolate Shake", topN: 2, sortBy: core.SortByConfidence, want: []string{"fries", "freestyle soda"}},
		{item: "  bacon CHEESE ", topN: 1, sortBy: core.SortByConfidence, want: []string{"fries"}},
	}
	for _, tt := range tests {
		t.Run(tt.item+"/"+tt.sortBy, func(t *testing.T) {
			res, err := e.Recommend(ctx, tt.item, tt.topN, tt.sortBy)
			require.NoError(t, err)
			assert.Equal(t, PathRules, res.Path)
			assert.Equal(t, tt.want, res.IDs())
			for i := 1; i < len(res.Items); i++ {
				assert.GreaterOrEqual(t, res.Items[i-1].Score, res.Items[i].Score)
			}
		})
	}

	res, err := e.Recommend(ctx, "Bacon Cheese", 2, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, "If someone orders 'Bacon Cheese', recommend:\nfries\ncoke", res.String())
	assert.Equal(t, 1.0, res.Items[0].Score, "fries is reached by {bacon cheese, coke} -> fries")
}

func TestEngine_ModelSample(t *testing.T) {
	e := newSampleEngine(t)
	m := e.Model()
	require.NotNil(t, m)
	assert.Equal(t, "memory", m.Source)
	assert.Equal(t, 11, m.Store.Len())
	assert.Equal(t, 0.1, m.MinSupport)
	assert.Len(t, m.Itemsets, 16)
	assert.Equal(t, len(m.Rules), m.Index.RuleCount())
	assert.Equal(t, []string{"recall.association", "recall.cooccurrence", "rerank.topn"}, m.Pipeline.NodeNames())
}

func TestEngine_NotFound(t *testing.T) {
	e := newSampleEngine(t)
	res, err := e.Recommend(context.Background(), "Pizza", 3, core.SortByConfidence)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, PathNone, res.Path)
	assert.NotNil(t, res.Items)
	assert.Equal(t, "No recommendation found for 'Pizza'.", res.String())
}

func TestEngine_CoOccurrenceFallback(t *testing.T) {
	e, err := NewEngine(WithMinConfidence(1))
	require.NoError(t, err)
	_, err = e.Build(context.Background(), store.NewMemorySource([][]string{{"A", "B"}, {"A", "C"}, {"A", "B"}}))
	require.NoError(t, err)

	// a -> b (2/3) 与 a -> c (1/3) 都低于 1.0，只剩 b -> a、c -> a
	res, err := e.Recommend(context.Background(), "A", 3, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, PathCoOccurrence, res.Path)
	assert.Equal(t, []string{"B", "C"}, res.IDs())

	res, err = e.Recommend(context.Background(), "b", 3, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, PathRules, res.Path)
	assert.Equal(t, []string{"a"}, res.IDs())
}

func TestEngine_RuleFilter(t *testing.T) {
	e := newSampleEngine(t, WithRuleFilter(`rule.lift > 100.0`))
	assert.Empty(t, e.Model().Rules)

	res, err := e.Recommend(context.Background(), "Bacon Cheese", 2, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, PathCoOccurrence, res.Path)
	assert.Equal(t, []string{"Fries", "Coke"}, res.IDs())
}

func TestEngine_CustomPipeline(t *testing.T) {
	spec := pipeline.Spec{
		Name: "no-coke",
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.association"},
			{Type: "filter", Config: map[string]any{"blacklist": []any{"Coke"}}},
			{Type: "rerank.topn"},
		},
	}
	e := newSampleEngine(t, WithPipeline(spec))

	res, err := e.Recommend(context.Background(), "Bacon Cheese", 2, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, []string{"fries", "chocolate shake"}, res.IDs())
}

func TestEngine_TopNBoundsCustomPipelines(t *testing.T) {
	tests := []struct {
		name  string
		nodes []pipeline.NodeConfig
	}{
		{
			name: "fixed n larger than request",
			nodes: []pipeline.NodeConfig{
				{Type: "recall.association"},
				{Type: "recall.cooccurrence"},
				{Type: "rerank.topn", Config: map[string]any{"n": 5}},
			},
		},
		{
			name: "no topn node",
			nodes: []pipeline.NodeConfig{
				{Type: "recall.association"},
				{Type: "recall.cooccurrence"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSampleEngine(t, WithPipeline(pipeline.Spec{Name: tt.name, Nodes: tt.nodes}))

			res, err := e.Recommend(context.Background(), "Bacon Cheese", 1, core.SortByConfidence)
			require.NoError(t, err)
			assert.Equal(t, []string{"fries"}, res.IDs())

			res, err = e.Recommend(context.Background(), "Bacon Cheese", 2, core.SortByConfidence)
			require.NoError(t, err)
			assert.Equal(t, []string{"fries", "coke"}, res.IDs())
		})
	}
}

func TestEngine_PathFromRecallLabel(t *testing.T) {
	// 只有共现节点时，命中路径来自节点写入的请求级 label
	e := newSampleEngine(t, WithPipeline(pipeline.Spec{
		Name:  "cooccurrence-only",
		Nodes: []pipeline.NodeConfig{{Type: "recall.cooccurrence"}},
	}))

	res, err := e.Recommend(context.Background(), "Bacon Cheese", 2, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, PathCoOccurrence, res.Path)
	assert.Equal(t, []string{"Fries", "Coke"}, res.IDs())

	// 候选全部被过滤时没有推荐
	e = newSampleEngine(t, WithPipeline(pipeline.Spec{
		Name: "filter-all",
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.association"},
			{Type: "filter", Config: map[string]any{"expr": "item.score > 2.0"}},
		},
	}))
	res, err = e.Recommend(context.Background(), "Bacon Cheese", 2, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, PathNone, res.Path)
}

func TestEngine_Errors(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.Recommend(ctx, "Fries", 3, core.SortByConfidence)
	assert.ErrorIs(t, err, ErrModelNotReady)
	_, err = e.RecommendBatch(ctx, []string{"Fries"}, 3, core.SortByConfidence)
	assert.ErrorIs(t, err, ErrModelNotReady)

	_, err = e.Build(ctx, store.NewMemorySource(store.SampleBaskets()))
	require.NoError(t, err)

	tests := []struct {
		name   string
		item   string
		topN   int
		sortBy string
		check  func(error) bool
	}{
		{name: "zero top_n", item: "Fries", topN: 0, sortBy: core.SortByConfidence, check: core.IsConfiguration},
		{name: "bad sort_by", item: "Fries", topN: 3, sortBy: "support", check: core.IsConfiguration},
		{name: "empty item", item: " ", topN: 3, sortBy: core.SortByConfidence, check: core.IsInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Recommend(ctx, tt.item, tt.topN, tt.sortBy)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestNewEngine_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  EngineOption
	}{
		{name: "min_confidence", opt: WithMinConfidence(1.5)},
		{name: "min_support_floor", opt: WithMinSupportFloor(-1)},
		{name: "rule filter", opt: WithRuleFilter(`rule.lift >`)},
		{name: "pipeline", opt: WithPipeline(pipeline.Spec{Nodes: []pipeline.NodeConfig{{Type: "rank.lr"}}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.opt)
			require.Error(t, err)
			assert.True(t, core.IsConfiguration(err), "got %v", err)
		})
	}
}

func TestNewEngineFromConfig(t *testing.T) {
	cfg := config.DefaultAppConfig()
	cfg.Mining.MinConfidence = 0.6
	e, err := NewEngineFromConfig(cfg)
	require.NoError(t, err)
	_, err = e.Build(context.Background(), store.NewMemorySource(store.SampleBaskets()))
	require.NoError(t, err)
	for _, r := range e.Model().Rules {
		assert.GreaterOrEqual(t, r.Confidence, 0.6)
	}

	_, err = NewEngineFromConfig(nil)
	assert.NoError(t, err)
}

func TestEngine_BuildFailureKeepsModel(t *testing.T) {
	e := newSampleEngine(t)
	before := e.Model()
	errsBefore := testutil.ToFloat64(metrics.BuildErrors)

	_, err := e.Build(context.Background(), store.NewMemorySource(nil))
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))

	_, err = e.Build(context.Background(), store.NewMemorySource([][]string{{"A", "  "}}))
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))

	assert.Same(t, before, e.Model())
	assert.Equal(t, errsBefore+2, testutil.ToFloat64(metrics.BuildErrors))
}

type failingSource struct{ err error }

func (f failingSource) Name() string { return "failing" }
func (f failingSource) Transactions(context.Context) ([][]string, error) {
	return nil, f.err
}

func TestEngine_BuildSourceError(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)
	boom := errors.New("boom")

	_, err = e.Build(context.Background(), failingSource{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, e.Model())
}

func TestEngine_Rebuild(t *testing.T) {
	src := store.NewMemorySource(store.SampleBaskets())
	e, err := NewEngine()
	require.NoError(t, err)
	ctx := context.Background()

	first, err := e.Build(ctx, src)
	require.NoError(t, err)
	again, err := e.BuildModel(ctx, store.SampleBaskets())
	require.NoError(t, err)
	assert.Equal(t, first.Itemsets, again.Itemsets)
	assert.Equal(t, first.Rules, again.Rules)

	src.Set([][]string{{"Pizza", "Beer"}, {"Pizza", "Beer"}})
	_, err = e.Build(ctx, src)
	require.NoError(t, err)

	res, err := e.Recommend(ctx, "Pizza", 3, core.SortByConfidence)
	require.NoError(t, err)
	assert.Equal(t, []string{"beer"}, res.IDs())

	res, err = e.Recommend(ctx, "Bacon Cheese", 3, core.SortByConfidence)
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestEngine_RecommendBatch(t *testing.T) {
	e := newSampleEngine(t, WithBatchConcurrency(2))
	items := []string{"Bacon Cheese", "Chef Burger", "Pizza", "Chocolate Shake"}

	results, err := e.RecommendBatch(context.Background(), items, 2, core.SortByConfidence)
	require.NoError(t, err)
	require.Len(t, results, len(items))
	for i, res := range results {
		assert.Equal(t, items[i], res.Query)
	}
	assert.Equal(t, []string{"fries", "coke"}, results[0].IDs())
	assert.Equal(t, PathNone, results[2].Path)

	_, err = e.RecommendBatch(context.Background(), []string{"Fries", ""}, 2, core.SortByConfidence)
	assert.True(t, core.IsInvalidInput(err))
}

func TestEngine_ConcurrentBuildAndRecommend(t *testing.T) {
	e := newSampleEngine(t)
	src := store.NewMemorySource(store.SampleBaskets())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.Build(ctx, src)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			res, err := e.Recommend(ctx, "Bacon Cheese", 2, core.SortByConfidence)
			assert.NoError(t, err)
			assert.Equal(t, []string{"fries", "coke"}, res.IDs())
		}()
	}
	wg.Wait()
}

func TestEngine_RecommendMetrics(t *testing.T) {
	e := newSampleEngine(t)
	ctx := context.Background()

	rules := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.PathRules))
	none := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.PathNone))
	failed := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.PathError))

	_, err := e.Recommend(ctx, "Fries", 2, core.SortByConfidence)
	require.NoError(t, err)
	_, err = e.Recommend(ctx, "Pizza", 2, core.SortByConfidence)
	require.NoError(t, err)
	_, err = e.Recommend(ctx, "Pizza", 0, core.SortByConfidence)
	require.Error(t, err)

	assert.Equal(t, rules+1, testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.PathRules)))
	assert.Equal(t, none+1, testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.PathNone)))
	assert.Equal(t, failed+1, testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues(metrics.PathError)))
	assert.Equal(t, 16.0, testutil.ToFloat64(metrics.FrequentItemsets))
}
