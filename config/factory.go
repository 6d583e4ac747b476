package config

import (
	"fmt"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/conv"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

// Deps 是配置驱动构建 Node 时注入的协作方。
// YAML 只描述结构与参数；目录、日志、存储等有状态依赖通过 Deps 注入。
type Deps struct {
	Catalog core.Catalog        // recall.catalog 使用
	Log     core.InteractionLog // filter 的 purchased 使用
	KV      core.KeyValueStore  // recall.trending、filter 的 blacklist 使用
}

// builtinTypes 是 NewFactory 内置注册的 Node 类型。
var builtinTypes = []string{
	"recall.fanout",
	"recall.catalog",
	"recall.trending",
	"filter",
	"rank.blended",
	"rerank.topn",
	"rerank.diversity",
}

// NewFactory 返回一个包含所有内置 Node 的工厂，外加 Register 注册的扩展 Node。
func NewFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	// 注册 Recall Nodes
	factory.Register("recall.fanout", buildFanoutNode(deps))
	factory.Register("recall.catalog", buildCatalogNode(deps))
	factory.Register("recall.trending", buildTrendingNode(deps))

	// 注册 Filter Node
	factory.Register("filter", buildFilterNode(deps))

	// 注册 Rank Node
	factory.Register("rank.blended", buildBlendedNode)

	// 注册 ReRank Nodes
	factory.Register("rerank.topn", buildTopNNode)
	factory.Register("rerank.diversity", buildDiversityNode)

	// 扩展 Node
	extraBuildersMu.RLock()
	for typeName, builder := range extraBuilders {
		factory.Register(typeName, builder)
	}
	extraBuildersMu.RUnlock()

	return factory
}

func buildFanoutNode(deps Deps) NodeBuilder {
	return func(config map[string]interface{}) (pipeline.Node, error) {
		sourcesConfig, ok := config["sources"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("sources not found or invalid")
		}

		sources := make([]recall.Source, 0, len(sourcesConfig))
		for _, sc := range sourcesConfig {
			sourceMap, ok := sc.(map[string]interface{})
			if !ok {
				continue
			}
			sourceType := conv.ConfigGet[string](sourceMap, "type", "")
			switch sourceType {
			case "catalog":
				if deps.Catalog == nil {
					return nil, fmt.Errorf("catalog source requires Deps.Catalog")
				}
				sources = append(sources, &recall.CatalogSource{Catalog: deps.Catalog})
			case "trending":
				src := &recall.Trending{Store: deps.KV}
				if limit := conv.ConfigGetInt64(sourceMap, "limit", 0); limit > 0 {
					src.Limit = limit
				}
				sources = append(sources, src)
			default:
				return nil, fmt.Errorf("unknown source type: %s", sourceType)
			}
		}

		fanout := &recall.Fanout{
			Sources: sources,
			Dedup:   conv.ConfigGet[bool](config, "dedup", true),
		}
		if sec := conv.ConfigGetInt64(config, "timeout", 0); sec > 0 {
			fanout.Timeout = time.Duration(sec) * time.Second
		}
		if n := conv.ConfigGetInt64(config, "max_concurrent", 0); n > 0 {
			fanout.MaxConcurrent = int(n)
		}
		return fanout, nil
	}
}

func buildCatalogNode(deps Deps) NodeBuilder {
	return func(config map[string]interface{}) (pipeline.Node, error) {
		if deps.Catalog == nil {
			return nil, fmt.Errorf("recall.catalog requires Deps.Catalog")
		}
		return &recall.CatalogSource{Catalog: deps.Catalog}, nil
	}
}

func buildTrendingNode(deps Deps) NodeBuilder {
	return func(config map[string]interface{}) (pipeline.Node, error) {
		src := &recall.Trending{Store: deps.KV}
		if limit := conv.ConfigGetInt64(config, "limit", 0); limit > 0 {
			src.Limit = limit
		}
		return src, nil
	}
}

func buildFilterNode(deps Deps) NodeBuilder {
	return func(config map[string]interface{}) (pipeline.Node, error) {
		filtersConfig, ok := config["filters"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("filters not found or invalid")
		}

		filters := make([]filter.Filter, 0, len(filtersConfig))
		for _, fc := range filtersConfig {
			filterMap, ok := fc.(map[string]interface{})
			if !ok {
				continue
			}
			filterType := conv.ConfigGet[string](filterMap, "type", "")
			switch filterType {
			case "purchased":
				if deps.Log == nil {
					return nil, fmt.Errorf("purchased filter requires Deps.Log")
				}
				filters = append(filters, filter.NewPurchasedFilter(deps.Log))

			case "blacklist":
				ids := conv.SliceAnyToString(filterMap["product_ids"])
				if ids == nil {
					ids = []string{}
				}
				key := conv.ConfigGet[string](filterMap, "key", "")
				filters = append(filters, filter.NewBlacklistFilter(ids, deps.KV, key))

			case "expr":
				expr := conv.ConfigGet[string](filterMap, "expr", "")
				if expr == "" {
					return nil, fmt.Errorf("expr filter requires expr")
				}
				filters = append(filters, filter.NewExprFilter(expr))

			default:
				return nil, fmt.Errorf("unknown filter type: %s", filterType)
			}
		}

		return &filter.FilterNode{Filters: filters}, nil
	}
}

func buildBlendedNode(config map[string]interface{}) (pipeline.Node, error) {
	node := &rank.Blended{
		DominanceRatio: conv.ConfigGetFloat64(config, "dominance_ratio", 0),
	}
	// alpha 只在显式配置时才设置，0 也是合法取值（纯趋势排序）
	if _, ok := config["alpha"]; ok {
		node.Alpha = conv.Ptr(conv.ConfigGetFloat64(config, "alpha", rank.DefaultAlpha))
	}
	if par := conv.ConfigGetInt64(config, "parallelism", 0); par > 0 {
		node.Parallelism = int(par)
	}
	return node, nil
}

func buildTopNNode(config map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(config, "n", 0)
	return &rerank.TopNNode{N: int(n)}, nil
}

func buildDiversityNode(config map[string]interface{}) (pipeline.Node, error) {
	metaKey := conv.ConfigGet[string](config, "meta_key", "category")
	if metaKey == "" {
		metaKey = "category"
	}
	return &rerank.Diversity{MetaKey: metaKey}, nil
}
