package recall

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/shoprec/cohort"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Trending 是分组趋势召回源：从 Store 的有序集合读取该分组的 TopN 趋势商品。
// 快照由 cohort.Snapshot 写入（离线任务/定时刷新），召回侧只读。
// - Store 有快照时走 ZRange（按分数降序）
// - Store 为空/未配置时使用内存中的 Top 作为 fallback
// Trending 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Trending struct {
	Store core.KeyValueStore

	// Limit 读取的最大条数，<=0 时取 100
	Limit int64

	// Top 是 fallback 的内存趋势列表（通常来自 cohort.Aggregator.TopProducts）
	Top []cohort.ProductScore
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。分组键取自 rctx.CohortKey；空分组返回空结果。
// 趋势分写入 Item.Meta["trending_score"]，供混合打分的趋势项使用；
// 最近行为时间（纳秒）写入 Item.Meta["trending_last_seen"]。
func (r *Trending) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = 100
	}

	// 优先读 Store 快照
	if r.Store != nil && rctx != nil && rctx.CohortKey != "" {
		key := cohort.TrendingKey(rctx.CohortKey)
		members, err := r.Store.ZRange(ctx, key, 0, limit-1)
		if err == nil && len(members) > 0 {
			return r.fromSnapshot(ctx, rctx.CohortKey, key, members), nil
		}
	}

	// Fallback：内存趋势列表
	out := make([]*core.Item, 0, len(r.Top))
	for i, ps := range r.Top {
		if int64(i) >= limit {
			break
		}
		it := core.NewItem(ps.ProductID)
		it.Meta["trending_score"] = ps.Score
		if !ps.LastSeen.IsZero() {
			it.Meta["trending_last_seen"] = ps.LastSeen.UnixNano()
		}
		out = append(out, it)
	}
	return out, nil
}

// fromSnapshot 把 Store 快照还原成候选列表。快照里随分数落盘的
// last_seen 哈希用于同分的新鲜度 tie-break，使趋势顺序在落盘/回读
// 后与 cohort.Aggregator.TopProducts 的内存排序一致。
func (r *Trending) fromSnapshot(ctx context.Context, cohortKey, key string, members []string) []*core.Item {
	scores := make(map[string]float64, len(members))
	for _, id := range members {
		if score, err := r.Store.ZScore(ctx, key, id); err == nil {
			scores[id] = score
		}
	}

	lastSeen := make(map[string]int64, len(members))
	if raw, err := r.Store.HGetAll(ctx, cohort.LastSeenKey(cohortKey)); err == nil {
		for id, v := range raw {
			if ns, perr := strconv.ParseInt(string(v), 10, 64); perr == nil {
				lastSeen[id] = ns
			}
		}
	}

	// 分数降序；同分按最近行为时间降序；仍相同按 ID 升序
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		if lastSeen[a] != lastSeen[b] {
			return lastSeen[a] > lastSeen[b]
		}
		return a < b
	})

	out := make([]*core.Item, 0, len(members))
	for _, id := range members {
		it := core.NewItem(id)
		if score, ok := scores[id]; ok {
			it.Meta["trending_score"] = score
		}
		if ns, ok := lastSeen[id]; ok {
			it.Meta["trending_last_seen"] = ns
		}
		out = append(out, it)
	}
	return out
}
