package filter

import (
	"context"
	"sync"

	"github.com/rushteam/shoprec/core"
)

// PurchasedFilter 过滤掉用户已购买过的商品（可选策略，推荐列表默认开启）。
// 已购集合从行为日志读取，单次请求内只读一次（快照语义），按用户缓存。
type PurchasedFilter struct {
	Log core.InteractionLog

	mu        sync.Mutex
	userID    string
	purchased map[string]bool
}

// NewPurchasedFilter 创建已购过滤器。
func NewPurchasedFilter(log core.InteractionLog) *PurchasedFilter {
	return &PurchasedFilter{Log: log}
}

func (f *PurchasedFilter) Name() string {
	return "filter.purchased"
}

func (f *PurchasedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Log == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	purchased, err := f.purchasedSet(ctx, rctx.UserID)
	if err != nil {
		// 日志读取失败时不过滤：宁可多推荐，不让请求失败
		return false, nil
	}
	return purchased[item.ID], nil
}

func (f *PurchasedFilter) purchasedSet(ctx context.Context, userID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.userID == userID && f.purchased != nil {
		return f.purchased, nil
	}

	records, err := f.Log.Read(ctx, core.LogFilter{
		UserID: userID,
		Type:   core.InteractionPurchase,
	})
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(records))
	for _, rec := range records {
		set[rec.ProductID] = true
	}
	f.userID = userID
	f.purchased = set
	return set, nil
}
