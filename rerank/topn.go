package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个商品。
// 通常在排序（Rank）节点之后使用，用于限制返回结果数量。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.Blended{...},       // 混合打分排序
//	        &rerank.TopNNode{N: 20},  // 截取 Top 20
//	    },
//	}
type TopNNode struct {
	// N 要保留的商品数量（Top N）
	// 如果 N <= 0，则返回所有商品（不截断）
	// 如果 N > len(items)，则返回所有商品
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
