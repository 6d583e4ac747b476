// Package shoprec 是电商场景的交互打分与推荐聚合引擎（Shop Recommender）。
//
// 设计要点：
// - Log-first: 行为日志（view/add_to_cart/purchase）是唯一持久事实来源，
//   画像/趋势/排序全部为可重建的派生结构，重算幂等
// - Pipeline-first: 推荐链路通过 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: 每条推荐携带解释标签（偏好主导/同城趋势/查询直达）
// - 确定性: 打分可交换、排序 tie-break 固定，同一快照重复计算结果逐位一致
package shoprec

import "github.com/rushteam/shoprec/pipeline"

// 轻量 facade：便于用户直接 import "shoprec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
