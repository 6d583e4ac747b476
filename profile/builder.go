package profile

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/scoring"
)

// Builder 把一个用户的行为记录折叠为归一化偏好画像。
//
// 纯函数语义：画像只是行为日志与目录快照的确定性函数，
// 无隐藏状态、无随机源，同一输入重复 Build 结果逐位一致。
type Builder struct {
	Scoring *scoring.Engine
	Catalog core.Catalog
}

// NewBuilder 创建画像构建器；scoring 为 nil 时使用默认权重引擎。
func NewBuilder(engine *scoring.Engine, catalog core.Catalog) *Builder {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	return &Builder{Scoring: engine, Catalog: catalog}
}

// Build 构建用户画像：
//  1. 分别对 category / brand 维度做加权折叠（经目录解析）
//  2. 两个维度独立归一化 raw/Σraw；Σraw==0 时该维度为空 map
//  3. 行为类型计数独立于 1-2，不加权、含未知类型，仅用于展示/审计
//
// 目录解析 NOT_FOUND 的记录被排除出维度打分但仍计入计数；
// 目录不可达则错误向上传播（可重试，不产出部分画像）。
func (b *Builder) Build(ctx context.Context, userID string, records []core.InteractionRecord) (*core.PreferenceProfile, error) {
	if len(records) == 0 {
		return core.EmptyPreferenceProfile(userID), nil
	}

	rawCategories, err := b.Scoring.ScoreDimension(ctx, records, scoring.CategoryKey, b.Catalog)
	if err != nil {
		return nil, err
	}
	rawBrands, err := b.Scoring.ScoreDimension(ctx, records, scoring.BrandKey, b.Catalog)
	if err != nil {
		return nil, err
	}

	return core.NewPreferenceProfile(userID, rawCategories, rawBrands, scoring.CountTypes(records)), nil
}
