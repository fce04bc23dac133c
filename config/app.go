package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/logging"
)

// AppConfig 是应用配置（YAML/JSON）：
//
//	mining:
//	  min_support_floor: 0.1
//	  min_confidence: 0.3
//	  max_len: 0
//	  rule_filter: 'rule.lift > 1.0'
//	recommend:
//	  top_n: 3
//	  sort_by: confidence
//	log:
//	  level: info
//	  format: console
//	pipeline:
//	  name: default
//	  nodes:
//	    - type: recall.association
//	    - type: recall.cooccurrence
//	    - type: rerank.topn
type AppConfig struct {
	Mining    MiningSection    `yaml:"mining" json:"mining"`
	Recommend RecommendSection `yaml:"recommend" json:"recommend"`
	Log       logging.Config   `yaml:"log" json:"log"`
	Pipeline  *pipeline.Spec   `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
}

// MiningSection 是挖掘参数。
type MiningSection struct {
	// MinSupportFloor 最小支持度下限，实际阈值 max(1/N, floor)
	MinSupportFloor float64 `yaml:"min_support_floor" json:"min_support_floor"`
	MinConfidence   float64 `yaml:"min_confidence" json:"min_confidence"`
	// MaxLen 项集最大长度，0 不限制
	MaxLen int `yaml:"max_len" json:"max_len"`
	// RuleFilter 是可选的 CEL 表达式，只有满足的规则进入索引
	RuleFilter string `yaml:"rule_filter" json:"rule_filter"`
}

// RecommendSection 是查询默认参数。
type RecommendSection struct {
	TopN   int    `yaml:"top_n" json:"top_n"`
	SortBy string `yaml:"sort_by" json:"sort_by"`
}

// DefaultAppConfig 返回默认配置
func DefaultAppConfig() *AppConfig {
	var defaults core.MiningConfig = &core.DefaultMiningConfig{}
	return &AppConfig{
		Mining: MiningSection{
			MinSupportFloor: defaults.MinSupportFloor(),
			MinConfidence:   defaults.MinConfidence(),
		},
		Recommend: RecommendSection{
			TopN:   defaults.DefaultTopN(),
			SortBy: defaults.DefaultSortBy(),
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// LoadAppConfig 在默认配置上叠加文件内容；按扩展名选择 YAML 或 JSON。
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeConfiguration, "config: parse "+path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值，错误为 CONFIGURATION_ERROR。
func (c *AppConfig) Validate() error {
	if c.Mining.MinSupportFloor < 0 || c.Mining.MinSupportFloor > 1 {
		return core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "config: mining.min_support_floor must be in [0, 1], got %v", c.Mining.MinSupportFloor)
	}
	if c.Mining.MinConfidence < 0 || c.Mining.MinConfidence > 1 {
		return core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "config: mining.min_confidence must be in [0, 1], got %v", c.Mining.MinConfidence)
	}
	if c.Mining.MaxLen < 0 {
		return core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "config: mining.max_len must not be negative, got %d", c.Mining.MaxLen)
	}
	if c.Recommend.TopN <= 0 {
		return core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "config: recommend.top_n must be positive, got %d", c.Recommend.TopN)
	}
	if !core.ValidSortBy(c.Recommend.SortBy) {
		return core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "config: unsupported recommend.sort_by %q", c.Recommend.SortBy)
	}
	return ValidatePipelineSpec(c.Pipeline)
}
