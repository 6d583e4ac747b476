package scoring

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// DefaultWeights 是行为类型 → 权重 的默认映射（按意图强度 1/3/5）。
// 未在表中的类型权重为 0：打分时被忽略，但不会被拒绝。
func DefaultWeights() map[core.InteractionType]float64 {
	return map[core.InteractionType]float64{
		core.InteractionView:      1,
		core.InteractionAddToCart: 3,
		core.InteractionPurchase:  5,
	}
}

// Engine 把行为记录折叠为加权累计分。
//
// 确定性保证：
//   - 求和可交换，打分与输入顺序无关
//   - 对任意记录子集（单用户 / 分组 / 全局）运行都安全
//   - 无内部状态、无随机源：同一快照重复计算结果逐位一致
type Engine struct {
	// Weights 为空时使用 DefaultWeights
	Weights map[core.InteractionType]float64
}

// NewEngine 创建使用默认权重表的打分引擎。
func NewEngine() *Engine {
	return &Engine{Weights: DefaultWeights()}
}

// Weight 返回行为类型的权重，未知类型为 0。
func (e *Engine) Weight(t core.InteractionType) float64 {
	w := e.Weights
	if w == nil {
		w = DefaultWeights()
	}
	return w[t]
}

// ScoreProducts 按商品折叠加权分：mapping<product_id, score>。
func (e *Engine) ScoreProducts(records []core.InteractionRecord) map[string]float64 {
	out := make(map[string]float64, len(records))
	for _, rec := range records {
		w := e.Weight(rec.Type)
		if w == 0 {
			continue
		}
		out[rec.ProductID] += w
	}
	return out
}

// DimensionKeyFn 从商品提取分组键（category / brand）。
type DimensionKeyFn func(p *core.Product) string

// CategoryKey 按类目分组。
func CategoryKey(p *core.Product) string { return p.Category }

// BrandKey 按品牌分组。
func BrandKey(p *core.Product) string { return p.Brand }

// ScoreDimension 把打分推广到任意分组键：先通过目录解析商品，再按键折叠。
//
// 失败语义：商品在目录中解析不到（NOT_FOUND）时，该记录被排除出维度打分，
// 但原始计数不受影响——单个下架/过期商品不能让整次画像计算失败。
// 目录不可达（非 NOT_FOUND 错误）则向上传播：不在不完整数据上打分。
func (e *Engine) ScoreDimension(
	ctx context.Context,
	records []core.InteractionRecord,
	keyFn DimensionKeyFn,
	catalog core.Catalog,
) (map[string]float64, error) {
	out := make(map[string]float64)
	// 同一商品在一次折叠里只解析一次
	resolved := make(map[string]*core.Product, len(records))

	for _, rec := range records {
		w := e.Weight(rec.Type)
		if w == 0 {
			continue
		}

		p, seen := resolved[rec.ProductID]
		if !seen {
			var err error
			p, err = catalog.Resolve(ctx, rec.ProductID)
			if err != nil {
				if core.IsNotFound(err) {
					resolved[rec.ProductID] = nil
					continue
				}
				return nil, err
			}
			resolved[rec.ProductID] = p
		}
		if p == nil {
			continue
		}

		key := keyFn(p)
		if key == "" {
			continue
		}
		out[key] += w
	}
	return out, nil
}

// CountTypes 按行为类型做不加权计数（含未知类型，可审计）。
func CountTypes(records []core.InteractionRecord) map[core.InteractionType]int {
	out := make(map[core.InteractionType]int)
	for _, rec := range records {
		out[rec.Type]++
	}
	return out
}

// LatestByProduct 返回每个商品最近一次行为的时间戳（分组趋势的新鲜度 tie-break 使用）。
func LatestByProduct(records []core.InteractionRecord) map[string]int64 {
	out := make(map[string]int64, len(records))
	for _, rec := range records {
		ts := rec.Timestamp.UnixNano()
		if cur, ok := out[rec.ProductID]; !ok || ts > cur {
			out[rec.ProductID] = ts
		}
	}
	return out
}
