package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// CatalogSource 是目录召回源：以商品目录全量（或其预过滤子集）作为候选集。
// 商品属性（category/brand/price/...）写入 Item.Meta，供混合打分与结果富化使用。
// CatalogSource 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type CatalogSource struct {
	Catalog core.Catalog
}

func (r *CatalogSource) Name() string        { return "recall.catalog" }
func (r *CatalogSource) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *CatalogSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
// 目录不可达时向上传播 UNAVAILABLE（可重试）：没有候选集就没有可信的排序。
func (r *CatalogSource) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil {
		return nil, nil
	}

	products, err := r.Catalog.List(ctx)
	if err != nil {
		if core.GetDomainError(err) != nil {
			return nil, err
		}
		return nil, core.ErrCatalogUnavailable
	}

	out := make([]*core.Item, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		out = append(out, core.NewItemFromProduct(p))
	}
	return out, nil
}
