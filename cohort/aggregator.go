package cohort

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/scoring"
)

// ProductScore 是分组趋势中的单个商品：加权总分、分行为计数、最近行为时间。
// 分行为计数（views/cart_adds/purchases）仅用于展示与审计，不参与排序。
type ProductScore struct {
	ProductID string    `json:"product_id"`
	Score     float64   `json:"score"`
	Views     int       `json:"views"`
	CartAdds  int       `json:"cart_adds"`
	Purchases int       `json:"purchases"`
	LastSeen  time.Time `json:"last_seen"`
}

// Aggregator 按分组键（如 location）聚合趋势信号。
//
// 分组语义：同组用户（如同城）被假定具有相关意图（本地供给、区域趋势），
// 作为非个性化的廉价信号补充稀疏的个人信号，对冷启动用户尤其重要。
type Aggregator struct {
	Scoring *scoring.Engine
}

// NewAggregator 创建分组聚合器；engine 为 nil 时使用默认权重。
func NewAggregator(engine *scoring.Engine) *Aggregator {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	return &Aggregator{Scoring: engine}
}

// TopProducts 产出分组内的 TopN 趋势商品：
//  1. 过滤出组内成员的行为记录
//  2. ScoreProducts 折叠加权分
//  3. 按分数降序；同分按该商品最近一次行为时间降序（偏向新鲜）；
//     仍相同则按商品 ID 升序，保证确定性
//  4. 截断到 n
//
// 空分组（无成员或无行为）返回空切片，不是错误。
// ctx 与 cohortKey 预留给存储侧聚合；当前是纯内存折叠，不发起 IO。
func (a *Aggregator) TopProducts(ctx context.Context, cohortKey string, memberIDs []string, records []core.InteractionRecord, n int) []ProductScore {
	if len(memberIDs) == 0 || len(records) == 0 {
		return []ProductScore{}
	}

	member := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		member[id] = true
	}

	scoped := make([]core.InteractionRecord, 0, len(records))
	for _, rec := range records {
		if member[rec.UserID] {
			scoped = append(scoped, rec)
		}
	}
	if len(scoped) == 0 {
		return []ProductScore{}
	}

	scores := a.Scoring.ScoreProducts(scoped)
	latest := scoring.LatestByProduct(scoped)

	// 分行为计数（对齐趋势展示里的 views/cart_adds/purchases 列）
	byProduct := make(map[string]*ProductScore, len(scores))
	for _, rec := range scoped {
		ps, ok := byProduct[rec.ProductID]
		if !ok {
			ps = &ProductScore{ProductID: rec.ProductID}
			byProduct[rec.ProductID] = ps
		}
		switch rec.Type {
		case core.InteractionView:
			ps.Views++
		case core.InteractionAddToCart:
			ps.CartAdds++
		case core.InteractionPurchase:
			ps.Purchases++
		}
	}

	out := make([]ProductScore, 0, len(scores))
	for id, score := range scores {
		ps := byProduct[id]
		if ps == nil {
			ps = &ProductScore{ProductID: id}
		}
		ps.Score = score
		ps.LastSeen = time.Unix(0, latest[id]).UTC()
		out = append(out, *ps)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ProductID < out[j].ProductID
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TrendingKey 返回分组趋势快照在 Store 中的 key。
func TrendingKey(cohortKey string) string {
	return "trending:" + cohortKey
}

// LastSeenKey 返回分组趋势最近行为时间哈希在 Store 中的 key。
func LastSeenKey(cohortKey string) string {
	return TrendingKey(cohortKey) + ":last_seen"
}

// Snapshot 把分组趋势全量覆盖写入 Store（供趋势召回与跨进程复用）：
// 先清空旧快照再写入，重算后掉出 TopN 的商品不会残留，刷新幂等。
// 通常由离线任务/定时刷新调用。
func Snapshot(ctx context.Context, kv core.KeyValueStore, cohortKey string, top []ProductScore) error {
	key := TrendingKey(cohortKey)
	seenKey := LastSeenKey(cohortKey)
	if err := kv.Delete(ctx, key); err != nil {
		return err
	}
	if err := kv.Delete(ctx, seenKey); err != nil {
		return err
	}
	for _, ps := range top {
		if err := kv.ZAdd(ctx, key, ps.Score, ps.ProductID); err != nil {
			return err
		}
		// 最近行为时间随分数一起落盘，召回侧无需回读全量日志
		if err := kv.HSet(ctx, seenKey, ps.ProductID, []byte(strconv.FormatInt(ps.LastSeen.UnixNano(), 10))); err != nil {
			return err
		}
	}
	return nil
}
