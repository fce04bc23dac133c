package mining

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/basketrec/core"
)

func findRule(rules []Rule, ante, cons []string) (Rule, bool) {
	for _, r := range rules {
		if itemsKey(r.Antecedents) == itemsKey(ante) && itemsKey(r.Consequents) == itemsKey(cons) {
			return r, true
		}
	}
	return Rule{}, false
}

func TestGenerateRules_Sample(t *testing.T) {
	rules, err := GenerateRules(mineSample(t), DefaultMinConfidence)
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	r, ok := findRule(rules, []string{"bacon cheese"}, []string{"fries"})
	require.True(t, ok)
	assert.Equal(t, 0.75, r.Confidence)
	assert.InDelta(t, 0.75/(7.0/11.0), r.Lift, 1e-9)
	assert.Equal(t, "bacon cheese -> fries", r.String())

	full, ok := findRule(rules, []string{"bacon cheese", "coke"}, []string{"fries"})
	require.True(t, ok)
	assert.Equal(t, 1.0, full.Confidence)
	assert.True(t, math.IsInf(full.Conviction, 1))

	// fries -> chef burger: 2/7 < 0.3
	_, ok = findRule(rules, []string{"fries"}, []string{"chef burger"})
	assert.False(t, ok)

	// 最高置信度的规则排在最前，同置信度按 lift 降序
	assert.Equal(t, "coke, fries -> bacon cheese", rules[0].String())
	assert.Equal(t, "bacon cheese, coke -> fries", rules[1].String())
}

func TestGenerateRules_Invariants(t *testing.T) {
	itemsets := mineSample(t)
	supports := byKey(itemsets)
	rules, err := GenerateRules(itemsets, DefaultMinConfidence)
	require.NoError(t, err)

	for i, r := range rules {
		assert.GreaterOrEqual(t, r.Confidence, DefaultMinConfidence, r.String())
		require.NotEmpty(t, r.Antecedents)
		require.NotEmpty(t, r.Consequents)
		for _, a := range r.Antecedents {
			assert.NotContains(t, r.Consequents, a, "antecedents and consequents are disjoint")
		}

		cons := supports[itemsKey(r.Consequents)]
		assert.InDelta(t, r.Confidence/cons.Support, r.Lift, 1e-9, r.String())
		assert.InDelta(t, r.Support-r.AntecedentSupport*r.ConsequentSupport, r.Leverage, 1e-12)

		if i > 0 {
			prev := rules[i-1]
			assert.True(t, prev.Confidence > r.Confidence ||
				(prev.Confidence == r.Confidence && prev.Lift >= r.Lift),
				"%s must not sort before %s", r, prev)
		}
	}
}

func TestGenerateRules_AllSplits(t *testing.T) {
	itemsets := []Itemset{
		{Items: []string{"a"}, Count: 2, Support: 1},
		{Items: []string{"b"}, Count: 2, Support: 1},
		{Items: []string{"c"}, Count: 2, Support: 1},
		{Items: []string{"a", "b"}, Count: 2, Support: 1},
		{Items: []string{"a", "c"}, Count: 2, Support: 1},
		{Items: []string{"b", "c"}, Count: 2, Support: 1},
		{Items: []string{"a", "b", "c"}, Count: 2, Support: 1},
	}
	rules, err := GenerateRules(itemsets, 0)
	require.NoError(t, err)
	// 3 个二元项集各 2 条，三元项集 2^3-2 = 6 条
	assert.Len(t, rules, 12)

	// 全部并列时按前件、后件字典序
	assert.Equal(t, "a -> b", rules[0].String())
	assert.Equal(t, "a -> b, c", rules[1].String())
	assert.Equal(t, "a -> c", rules[2].String())
}

func TestGenerateRules_SingletonsOnly(t *testing.T) {
	rules, err := GenerateRules([]Itemset{{Items: []string{"a"}, Count: 1, Support: 1}}, 0.3)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestGenerateRules_InvalidConfidence(t *testing.T) {
	for _, c := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := GenerateRules(nil, c)
		require.Error(t, err)
		assert.True(t, core.IsConfiguration(err))
	}
}

func TestRule_Score(t *testing.T) {
	r := Rule{Confidence: 0.5, Lift: 2}

	got, ok := r.Score(core.SortByConfidence)
	assert.True(t, ok)
	assert.Equal(t, 0.5, got)

	got, ok = r.Score(core.SortByLift)
	assert.True(t, ok)
	assert.Equal(t, 2.0, got)

	_, ok = r.Score("support")
	assert.False(t, ok)
}
