package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/shoprec/core"
)

// Settings 是引擎级配置（与 pipeline 配置分离）：
// 权重表、混合参数、趋势快照参数与存储后端。
type Settings struct {
	// Weights 行为类型 -> 权重，缺省 view=1 / add_to_cart=3 / purchase=5
	Weights map[string]float64 `yaml:"weights"`

	// Blend 混合打分参数
	Blend struct {
		// Alpha 未配置时为 nil（引擎用缺省 0.7）；0 表示纯趋势排序
		Alpha          *float64 `yaml:"alpha"`
		DominanceRatio float64  `yaml:"dominance_ratio"` // 缺省 1.0
	} `yaml:"blend"`

	// Trending 分组趋势参数
	Trending struct {
		TopN int `yaml:"top_n"` // 每个分组快照的条数，缺省 50
	} `yaml:"trending"`

	// Store 存储后端："memory"（缺省）或 "redis"
	Store struct {
		Backend string `yaml:"backend"`
		Addr    string `yaml:"addr"` // redis 地址
		DB      int    `yaml:"db"`
	} `yaml:"store"`
}

// LoadSettings 从 YAML 文件加载引擎配置。
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings 从 YAML 字节解析引擎配置。
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &s, nil
}

// ScoringWeights 返回配置的权重表；未配置的类型保留引擎缺省值。
func (s *Settings) ScoringWeights() map[core.InteractionType]float64 {
	weights := map[core.InteractionType]float64{
		core.InteractionView:      1,
		core.InteractionAddToCart: 3,
		core.InteractionPurchase:  5,
	}
	for name, w := range s.Weights {
		weights[core.InteractionType(name)] = w
	}
	return weights
}

// TrendingTopN 返回分组趋势快照条数，缺省 50。
func (s *Settings) TrendingTopN() int {
	if s.Trending.TopN > 0 {
		return s.Trending.TopN
	}
	return 50
}
