package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/pipeline"
)

// 使用配置驱动时，通过 NewFactory(deps) 获得内置 Node 的工厂；
// 外部扩展的 Node 可以先 Register(typeName, builder) 再 NewFactory。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

var (
	extraBuilders   = make(map[string]NodeBuilder)
	extraBuildersMu sync.RWMutex
)

// Register 注册一种扩展 Node 的构建逻辑，随后 NewFactory 会带上它。
// 内置 Node（recall.fanout、rank.blended 等）无需注册。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	extraBuildersMu.Lock()
	defer extraBuildersMu.Unlock()
	extraBuilders[typeName] = builder
}

// SupportedTypes 返回内置 + 已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	set := make(map[string]struct{}, len(builtinTypes)+len(extraBuilders))
	for _, t := range builtinTypes {
		set[t] = struct{}{}
	}
	extraBuildersMu.RLock()
	for t := range extraBuilders {
		set[t] = struct{}{}
	}
	extraBuildersMu.RUnlock()

	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均受支持；
// 若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	supported := SupportedTypes()
	set := make(map[string]struct{}, len(supported))
	for _, t := range supported {
		set[t] = struct{}{}
	}
	for _, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			continue
		}
		if _, ok := set[nc.Type]; !ok {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}
