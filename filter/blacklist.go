package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/shoprec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉下架/禁推的商品。
type BlacklistFilter struct {
	// ProductIDs 是内存中的黑名单商品 ID 列表
	ProductIDs []string

	// Store 用于从存储中读取黑名单（可选，JSON 数组）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(productIDs []string, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{
		ProductIDs: productIDs,
		Store:      store,
		Key:        key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	// 从内存列表检查
	for _, id := range f.ProductIDs {
		if item.ID == id {
			return true, nil
		}
	}

	// 从 Store 检查
	if f.Store != nil && f.Key != "" {
		data, err := f.Store.Get(ctx, f.Key)
		if err == nil {
			var blacklist []string
			if json.Unmarshal(data, &blacklist) == nil {
				for _, id := range blacklist {
					if item.ID == id {
						return true, nil
					}
				}
			}
		}
	}

	return false, nil
}
