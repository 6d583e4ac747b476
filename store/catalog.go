package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rushteam/shoprec/core"
)

// 目录存储 key 约定
const catalogKey = "products" // 哈希：field=product_id, value=JSON

// Catalog 是 KeyValueStore 之上的商品目录实现。
// 目录归属外部协作方，本实现是其数据的一份只读投影（Put 仅供同步任务/测试灌数）。
type Catalog struct {
	kv core.KeyValueStore
}

// NewCatalog 创建目录实现。
func NewCatalog(kv core.KeyValueStore) *Catalog {
	return &Catalog{kv: kv}
}

var _ core.Catalog = (*Catalog)(nil)

// Put 写入/覆盖一个商品（同步任务或测试灌数用，引擎不调用）。
func (c *Catalog) Put(ctx context.Context, p *core.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.kv.HSet(ctx, catalogKey, p.ID, data)
}

// Resolve 按商品 ID 获取商品；不存在时返回 NOT_FOUND 领域错误。
func (c *Catalog) Resolve(ctx context.Context, productID string) (*core.Product, error) {
	data, err := c.kv.HGet(ctx, catalogKey, productID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrProductNotFound
		}
		return nil, core.ErrCatalogUnavailable
	}
	var p core.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, core.ErrProductNotFound
	}
	return &p, nil
}

// List 返回全部商品，按 ID 升序（确定性输出）。
func (c *Catalog) List(ctx context.Context) ([]*core.Product, error) {
	fields, err := c.kv.HGetAll(ctx, catalogKey)
	if err != nil {
		return nil, core.ErrCatalogUnavailable
	}

	out := make([]*core.Product, 0, len(fields))
	for _, data := range fields {
		var p core.Product
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Search 按关键词/类目/品牌检索（查询直达模式的后端）。
// 关键词对 名称/描述/类目/品牌 做大小写无关的子串匹配；
// category / brand 为大小写无关的精确匹配。全部条件取交集。
func (c *Catalog) Search(ctx context.Context, query, category, brand string) ([]*core.Product, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	out := make([]*core.Product, 0, len(all))
	for _, p := range all {
		if q != "" && !matchQuery(p, q) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if brand != "" && !strings.EqualFold(p.Brand, brand) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func matchQuery(p *core.Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q) ||
		strings.Contains(strings.ToLower(p.Brand), q)
}
