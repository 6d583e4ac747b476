package rank

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/cohort"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// DefaultAlpha 是混合权重 α 的默认值：0.7，偏向个性化而非趋势。
const DefaultAlpha = 0.7

// DefaultDominanceRatio 是解释标签的主导判定比：
// α·affinity >= ratio · (1−α)·trending 时标记为“偏好主导”。
const DefaultDominanceRatio = 1.0

// Blended 是混合打分 Rank Node：
//
//	blended = α · personal_affinity + (1−α) · cohort_trending
//
//   - personal_affinity = 画像的 category 权重 + brand 权重（无画像时为 0）
//   - cohort_trending   = 分组趋势分，对分组自身的分数区间做 min-max 归一化到 [0,1]
//     （商品不在趋势里为 0；区间退化 max==min 时在趋势里的商品取 1）
//
// 冷启动是公式的自然结果而不是分支：空画像 ⇒ affinity 恒为 0 ⇒
// 排序完全由趋势项驱动，无论 α 配成多少。函数保持全函数、无副作用。
//
// 每个候选的打分相互独立（map 步），用 errgroup 并行；排序（reduce 步）
// 确定性 tie-break：分数降序，同分按商品 ID 升序。
type Blended struct {
	// Alpha ∈ [0,1]，nil 时取 DefaultAlpha。
	// 0 是合法配置：排序完全由分组趋势驱动。
	Alpha *float64

	// DominanceRatio 主导判定比，<=0 时取 DefaultDominanceRatio
	DominanceRatio float64

	// CohortTop 是该请求分组的趋势列表（通常来自 cohort.Aggregator.TopProducts）。
	// 为空时退化为从候选的 Meta["trending_score"] 取趋势分
	//（配置驱动场景下由 recall.trending 写入）。
	CohortTop []cohort.ProductScore

	// Parallelism 打分并发度，<=0 时取 GOMAXPROCS
	Parallelism int
}

func (n *Blended) Name() string        { return "rank.blended" }
func (n *Blended) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Blended) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	alpha := DefaultAlpha
	if n.Alpha != nil {
		alpha = *n.Alpha
	}
	ratio := n.DominanceRatio
	if ratio <= 0 {
		ratio = DefaultDominanceRatio
	}

	top := n.CohortTop
	if len(top) == 0 {
		top = trendingFromMeta(items)
	}
	trending := normalizeTrending(top)

	var profile *core.PreferenceProfile
	if rctx != nil {
		profile = rctx.Profile
	}

	// map 步：逐候选独立打分，可并行且不改变结果（打分可交换）
	eg, egCtx := errgroup.WithContext(ctx)
	par := n.Parallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(par)

	for _, item := range items {
		it := item
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}

			affinity := profile.CategoryWeight(it.MetaString("category")) +
				profile.BrandWeight(it.MetaString("brand"))
			trend := trending[it.ID]

			personalTerm := alpha * affinity
			trendTerm := (1 - alpha) * trend
			it.Score = personalTerm + trendTerm

			source := core.SourceTrending
			if personalTerm >= ratio*trendTerm && affinity > 0 {
				source = core.SourcePreferences
			}
			it.PutLabel("rec_source", utils.Label{Value: string(source), Source: "rank"})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// reduce 步：确定性排序
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})

	return items, nil
}

// trendingFromMeta 从候选的 Meta["trending_score"] 还原趋势列表，
// 用于 CohortTop 未注入的配置驱动场景。没有趋势分的候选不参与归一。
func trendingFromMeta(items []*core.Item) []cohort.ProductScore {
	var top []cohort.ProductScore
	for _, it := range items {
		if _, ok := it.Meta["trending_score"]; !ok {
			continue
		}
		top = append(top, cohort.ProductScore{
			ProductID: it.ID,
			Score:     it.MetaFloat64("trending_score"),
		})
	}
	return top
}

// normalizeTrending 对分组趋势做 min-max 归一化：
// (s − min) / (max − min)，对分组自身的分数区间归一；
// 区间退化（max==min）时在趋势里的商品取 1，不在趋势里的商品为 0。
func normalizeTrending(top []cohort.ProductScore) map[string]float64 {
	out := make(map[string]float64, len(top))
	if len(top) == 0 {
		return out
	}

	min, max := top[0].Score, top[0].Score
	for _, ps := range top[1:] {
		if ps.Score < min {
			min = ps.Score
		}
		if ps.Score > max {
			max = ps.Score
		}
	}

	if max == min {
		for _, ps := range top {
			out[ps.ProductID] = 1
		}
		return out
	}

	span := max - min
	for _, ps := range top {
		out[ps.ProductID] = (ps.Score - min) / span
	}
	return out
}
