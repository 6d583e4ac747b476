package core

import "github.com/rushteam/shoprec/pkg/utils"

// RecommendContext 承载单次推荐请求的用户/分组/画像信息，贯穿整个 Pipeline 透传。
// 引擎无全局会话概念：UserID 必须由调用方显式传入。
type RecommendContext struct {
	UserID string

	// CohortKey 是用户的分组键（如 location），趋势召回与混合打分使用
	CohortKey string

	// Profile 是用户的归一化偏好画像；冷启动用户为空画像（非 nil 亦可为 nil）
	Profile *PreferenceProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为（如新用户、价格敏感）
	Labels map[string]utils.Label

	// Params 请求级上下文参数（query、topN、debug 等）
	Params map[string]any
}

// HasPreferences 判断请求用户是否有偏好画像（冷启动分支依据）。
func (rctx *RecommendContext) HasPreferences() bool {
	return rctx != nil && rctx.Profile.HasPreferences()
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
