package service

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
)

// RecentLimit 是画像视图里 recent 的最大条数。
const RecentLimit = 10

// ProfileView 是画像接口的出参：用户信息 + 归一化画像 + 近期行为 + 行为统计。
type ProfileView struct {
	User                  UserView              `json:"user"`
	RecommendationProfile RecommendationProfile `json:"recommendation_profile"`
	Recent                []InteractionView     `json:"recent"`
	Summary               map[string]int        `json:"summary"`
}

// UserView 只暴露店面需要的用户字段。
type UserView struct {
	Email string `json:"email"`
}

// RecommendationProfile 是画像的偏好部分：均已归一化（非空维度权重和为 1）。
type RecommendationProfile struct {
	CategoryPreferences map[string]float64 `json:"category_preferences"`
	BrandPreferences    map[string]float64 `json:"brand_preferences"`
}

// InteractionView 是补齐了商品字段的行为记录（newest first）。
type InteractionView struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"product_name,omitempty"`
	Category  string  `json:"category,omitempty"`
	Brand     string  `json:"brand,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
}

// Profile 返回用户画像视图。
// 与 Recommend 不同：用户不存在这里是硬错误（NOT_FOUND 向上传播），
// 因为画像页没有冷启动语义。
func (s *Service) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.Users.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.Log.Read(ctx, core.LogFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	prof, err := s.Profiles.Build(ctx, userID, records)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]int, len(prof.Summary))
	for t, c := range prof.Summary {
		summary[string(t)] = c
	}

	return &ProfileView{
		User: UserView{Email: user.Email},
		RecommendationProfile: RecommendationProfile{
			CategoryPreferences: prof.Categories,
			BrandPreferences:    prof.Brands,
		},
		Recent:  s.enrich(ctx, newestFirst(records, RecentLimit)),
		Summary: summary,
	}, nil
}

// PreviousOrders 返回用户的购买历史（newest first，补齐商品字段）。
func (s *Service) PreviousOrders(ctx context.Context, userID string) ([]InteractionView, error) {
	return s.history(ctx, userID, core.InteractionPurchase)
}

// CartInteractions 返回用户的加购历史（newest first，补齐商品字段）。
func (s *Service) CartInteractions(ctx context.Context, userID string) ([]InteractionView, error) {
	return s.history(ctx, userID, core.InteractionAddToCart)
}

func (s *Service) history(ctx context.Context, userID string, t core.InteractionType) ([]InteractionView, error) {
	if _, err := s.Users.Lookup(ctx, userID); err != nil {
		return nil, err
	}
	records, err := s.Log.Read(ctx, core.LogFilter{UserID: userID, Type: t})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, newestFirst(records, 0)), nil
}

// newestFirst 按时间降序排序（同刻按商品 ID 升序保证确定性），limit>0 时截断。
func newestFirst(records []core.InteractionRecord, limit int) []core.InteractionRecord {
	out := make([]core.InteractionRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// enrich 逐条补齐商品字段；商品解析不到时保留裸记录（不丢行为历史）。
func (s *Service) enrich(ctx context.Context, records []core.InteractionRecord) []InteractionView {
	out := make([]InteractionView, 0, len(records))
	resolved := make(map[string]*core.Product, len(records))
	for _, rec := range records {
		view := InteractionView{
			ProductID: rec.ProductID,
			Type:      string(rec.Type),
			Timestamp: rec.Timestamp.UTC().Format(time.RFC3339),
		}
		p, seen := resolved[rec.ProductID]
		if !seen {
			p, _ = s.Catalog.Resolve(ctx, rec.ProductID)
			resolved[rec.ProductID] = p
		}
		if p != nil {
			view.Name = p.Name
			view.Category = p.Category
			view.Brand = p.Brand
			view.Price = p.Price
		}
		out = append(out, view)
	}
	return out
}
