package pipeline

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成候选集（目录全量 / 分组趋势）
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合策略的候选（已购 / 规则）
	KindRank        Kind = "rank"        // 排序阶段：混合打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：TopN 截断等
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充元信息或最终修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便 Recall 生成、Filter 截断、Rank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node，供配置驱动的工厂使用。
type NodeBuilder = func(map[string]interface{}) (Node, error)
