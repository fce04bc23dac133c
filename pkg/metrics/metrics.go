// Package metrics 定义 Prometheus 指标：模型构建耗时、项集/规则规模、查询路径分布。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 查询命中路径
const (
	PathRules        = "rules"
	PathCoOccurrence = "cooccurrence"
	PathNone         = "none"
	PathError        = "error"
)

var (
	// BuildDuration 记录一次完整构建（加载 → 挖掘 → 规则 → 索引）的耗时
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "basketrec_build_duration_seconds",
			Help:    "Duration of model builds (mining, rule generation and indexing)",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BuildErrors 统计构建失败次数
	BuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "basketrec_build_errors_total",
			Help: "Total number of failed model builds",
		},
	)

	// Transactions 当前模型的事务数
	Transactions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "basketrec_transactions",
			Help: "Number of transactions in the current model",
		},
	)

	// FrequentItemsets 当前模型的频繁项集数
	FrequentItemsets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "basketrec_frequent_itemsets",
			Help: "Number of frequent itemsets in the current model",
		},
	)

	// Rules 当前模型的规则数（过滤后）
	Rules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "basketrec_rules",
			Help: "Number of association rules in the current model",
		},
	)

	// RecommendRequests 按命中路径统计查询次数
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basketrec_recommend_requests_total",
			Help: "Total number of recommend queries by resolution path",
		},
		[]string{"path"},
	)
)
