// Package service 是面向店面（storefront）的门面层：
// 把引擎各组件（画像构建、分组趋势、Pipeline 排序）组合成店面需要的出参，
// 并承担 UI 侧的输入校验（行为类型、用户/商品存在性）。
//
// 分层约定：
//   - 引擎（scoring/profile/cohort/rank）只读日志、宽容未知输入
//   - 校验与写入都发生在这一层：RecordInteraction 校验后 Append
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rushteam/shoprec/cohort"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/profile"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
	"github.com/rushteam/shoprec/scoring"
)

// DefaultTrendingTopN 是分组趋势列表的缺省条数。
const DefaultTrendingTopN = 50

// DefaultLogTimeout 是读取行为日志的缺省超时；
// 超时降级到冷启动路径而不是让整个请求失败。
const DefaultLogTimeout = 2 * time.Second

// Service 是推荐引擎的门面。
type Service struct {
	Users   core.UserDirectory
	Catalog core.Catalog
	Log     core.InteractionLog

	Scoring  *scoring.Engine
	Profiles *profile.Builder
	Cohorts  *cohort.Aggregator

	// Alpha 透传给 rank.Blended，nil 时用其缺省值；0 是合法配置（纯趋势排序）
	Alpha *float64

	// DominanceRatio 透传给 rank.Blended，<=0 时用其缺省值
	DominanceRatio float64

	// TrendingTopN 分组趋势条数，<=0 时取 DefaultTrendingTopN
	TrendingTopN int

	// LogTimeout 读取行为日志的超时，<=0 时取 DefaultLogTimeout
	LogTimeout time.Duration

	// IncludePurchased 为 true 时不过滤已购商品（缺省过滤）
	IncludePurchased bool
}

// New 创建门面，打分引擎按默认权重表初始化。
func New(users core.UserDirectory, catalog core.Catalog, log core.InteractionLog) *Service {
	engine := scoring.NewEngine()
	return &Service{
		Users:    users,
		Catalog:  catalog,
		Log:      log,
		Scoring:  engine,
		Profiles: profile.NewBuilder(engine, catalog),
		Cohorts:  cohort.NewAggregator(engine),
	}
}

// Recommend 返回用户的 Top-N 推荐（已按混合分排序、已补齐商品字段）。
//
// 降级策略：
//   - 用户不存在：空画像 + 空分组 ⇒ 趋势/目录驱动的冷启动列表
//   - 日志读取超时：冷启动路径（空画像），请求不失败
//   - 目录不可达：UNAVAILABLE 向上传播（不在残缺候选上排序）
func (s *Service) Recommend(ctx context.Context, userID string, n int) ([]core.RankedRecommendation, error) {
	cohortKey := ""
	if user, err := s.Users.Lookup(ctx, userID); err == nil {
		cohortKey = user.Location
	} else if !core.IsNotFound(err) {
		return nil, err
	}

	prof, err := s.buildProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	top, err := s.cohortTop(ctx, cohortKey)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:    userID,
		CohortKey: cohortKey,
		Profile:   prof,
	}

	p := s.buildPipeline(top, n)
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	return s.toRecommendations(items), nil
}

// buildProfile 读取用户记录并构建画像；读取超时降级为空画像。
func (s *Service) buildProfile(ctx context.Context, userID string) (*core.PreferenceProfile, error) {
	timeout := s.LogTimeout
	if timeout <= 0 {
		timeout = DefaultLogTimeout
	}
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	records, err := s.Log.Read(readCtx, core.LogFilter{UserID: userID})
	if err != nil {
		// 超时走冷启动；其余（日志不可达等）向上传播
		if errors.Is(readCtx.Err(), context.DeadlineExceeded) {
			return core.EmptyPreferenceProfile(userID), nil
		}
		return nil, err
	}
	return s.Profiles.Build(ctx, userID, records)
}

// cohortTop 计算该分组的趋势列表；分组为空/成员不可得时返回空列表。
func (s *Service) cohortTop(ctx context.Context, cohortKey string) ([]cohort.ProductScore, error) {
	if cohortKey == "" {
		return nil, nil
	}
	memberIDs, err := s.Users.CohortMembers(ctx, cohortKey)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, nil
	}

	records, err := s.Log.Read(ctx, core.LogFilter{UserIDs: memberIDs})
	if err != nil {
		return nil, err
	}

	topN := s.TrendingTopN
	if topN <= 0 {
		topN = DefaultTrendingTopN
	}
	return s.Cohorts.TopProducts(ctx, cohortKey, memberIDs, records, topN), nil
}

// buildPipeline 组装单次请求的推荐链：目录召回 → 已购过滤 → 混合排序 → TopN。
func (s *Service) buildPipeline(top []cohort.ProductScore, n int) *pipeline.Pipeline {
	nodes := []pipeline.Node{
		&recall.CatalogSource{Catalog: s.Catalog},
	}
	if !s.IncludePurchased {
		nodes = append(nodes, &filter.FilterNode{
			Filters: []filter.Filter{filter.NewPurchasedFilter(s.Log)},
		})
	}
	nodes = append(nodes,
		&rank.Blended{
			Alpha:          s.Alpha,
			DominanceRatio: s.DominanceRatio,
			CohortTop:      top,
		},
		&rerank.TopNNode{N: n},
	)
	return &pipeline.Pipeline{Nodes: nodes}
}

// toRecommendations 把排序后的 Item 转成店面出参，并编号 Rank（从 1 起）。
func (s *Service) toRecommendations(items []*core.Item) []core.RankedRecommendation {
	out := make([]core.RankedRecommendation, 0, len(items))
	for _, it := range items {
		source := core.SourceTrending
		if lbl, ok := it.Labels["rec_source"]; ok && lbl.Value != "" {
			source = core.RecSource(lbl.Value)
		}
		out = append(out, core.RankedRecommendation{
			ProductID:   it.ID,
			Name:        it.MetaString("product_name"),
			Category:    it.MetaString("category"),
			Brand:       it.MetaString("brand"),
			Price:       it.MetaFloat64("price"),
			Description: it.MetaString("description"),
			Score:       it.Score,
			Source:      source,
			Rank:        len(out) + 1,
		})
	}
	return out
}

// RecordInteraction 校验并追加一条行为记录。
//
// 校验都在这一层：未知行为类型、未知用户、未知商品都在写入前拒绝；
// 引擎侧读到历史脏数据时仍按权重 0 宽容处理。
func (s *Service) RecordInteraction(ctx context.Context, userID, productID string, t core.InteractionType) error {
	if !t.IsValid() {
		return core.ErrInvalidInteraction
	}
	if _, err := s.Users.Lookup(ctx, userID); err != nil {
		return err
	}
	if _, err := s.Catalog.Resolve(ctx, productID); err != nil {
		return err
	}
	return s.Log.Append(ctx, core.InteractionRecord{
		UserID:    userID,
		ProductID: productID,
		Type:      t,
		Timestamp: time.Now().UTC(),
	})
}

// Search 是查询直达模式：绕过排序器，按目录检索结果原序返回，
// 统一打 "Search Result" 标签与固定分。
func (s *Service) Search(ctx context.Context, query, category, brand string) ([]core.RankedRecommendation, error) {
	products, err := s.Catalog.Search(ctx, query, category, brand)
	if err != nil {
		return nil, err
	}
	out := make([]core.RankedRecommendation, 0, len(products))
	for i, p := range products {
		out = append(out, core.RankedRecommendation{
			ProductID:   p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Brand:       p.Brand,
			Price:       p.Price,
			Description: p.Description,
			Score:       core.SearchScore,
			Source:      core.SourceSearch,
			Rank:        i + 1,
		})
	}
	return out, nil
}
