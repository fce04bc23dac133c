package core

// MiningConfig 是挖掘/查询相关的配置接口，用于提供默认值。
type MiningConfig interface {
	// MinSupportFloor 返回最小支持度下限（实际阈值为 max(1/N, floor)）
	MinSupportFloor() float64

	// MinConfidence 返回规则的最小置信度
	MinConfidence() float64

	// DefaultTopN 返回默认推荐数量
	DefaultTopN() int

	// DefaultSortBy 返回默认排序指标
	DefaultSortBy() string
}

// DefaultMiningConfig 是默认的挖掘配置实现。
type DefaultMiningConfig struct{}

func (c *DefaultMiningConfig) MinSupportFloor() float64 {
	return 0.1
}

func (c *DefaultMiningConfig) MinConfidence() float64 {
	return 0.3
}

func (c *DefaultMiningConfig) DefaultTopN() int {
	return 3
}

func (c *DefaultMiningConfig) DefaultSortBy() string {
	return SortByConfidence
}
