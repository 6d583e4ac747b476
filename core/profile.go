package core

import "sort"

// PreferenceProfile 是派生的用户偏好画像：
// category / brand 两个维度各自归一化到 [0,1]（非空维度权重和为 1.0），
// 外加不加权的行为类型计数（仅用于展示/审计，不参与排序）。
//
// 不变量由构造函数 NewPreferenceProfile 保证：
//   - 归一化要么完整成功，要么显式为空 map——不存在“部分归一化”的中间态
//   - 零可解析行为的用户得到空 map 而不是零值填充：
//     “没有观点”和“零置信观点”是不同语义，调用方会按 HasPreferences 分支
type PreferenceProfile struct {
	UserID string `json:"user_id"`

	// Categories 是类目偏好分布，权重 ∈ [0,1]，非空时和为 1.0
	Categories map[string]float64 `json:"category_preferences"`

	// Brands 是品牌偏好分布，同上
	Brands map[string]float64 `json:"brand_preferences"`

	// Summary 是行为类型 → 次数 的简单计数（不加权、含未知类型）
	Summary map[InteractionType]int `json:"interaction_patterns"`
}

// NewPreferenceProfile 从原始加权分构造画像，构造时完成归一化。
// rawCategories / rawBrands 的某一维度总分为 0 时，该维度为空 map（不是 NaN，不是错误）。
func NewPreferenceProfile(userID string, rawCategories, rawBrands map[string]float64, summary map[InteractionType]int) *PreferenceProfile {
	p := &PreferenceProfile{
		UserID:     userID,
		Categories: normalize(rawCategories),
		Brands:     normalize(rawBrands),
		Summary:    make(map[InteractionType]int, len(summary)),
	}
	for t, n := range summary {
		p.Summary[t] = n
	}
	return p
}

// EmptyPreferenceProfile 返回无任何可解析行为的用户画像（冷启动态）。
func EmptyPreferenceProfile(userID string) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:     userID,
		Categories: map[string]float64{},
		Brands:     map[string]float64{},
		Summary:    map[InteractionType]int{},
	}
}

// normalize 对单个维度独立归一化：normalized[k] = raw[k] / Σraw。
// Σraw == 0 时返回空 map。纯函数，同一输入必得 bit 级相同输出。
func normalize(raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(raw))
	var total float64
	for _, v := range raw {
		total += v
	}
	if total == 0 {
		return out
	}
	for k, v := range raw {
		out[k] = v / total
	}
	return out
}

// HasPreferences 判断用户是否有任一维度的偏好（冷启动分支依据）。
func (p *PreferenceProfile) HasPreferences() bool {
	if p == nil {
		return false
	}
	return len(p.Categories) > 0 || len(p.Brands) > 0
}

// CategoryWeight 返回类目偏好权重，无画像时为 0。
func (p *PreferenceProfile) CategoryWeight(category string) float64 {
	if p == nil || p.Categories == nil {
		return 0
	}
	return p.Categories[category]
}

// BrandWeight 返回品牌偏好权重，无画像时为 0。
func (p *PreferenceProfile) BrandWeight(brand string) float64 {
	if p == nil || p.Brands == nil {
		return 0
	}
	return p.Brands[brand]
}

// PreferenceEntry 是展示用的有序偏好条目。
type PreferenceEntry struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// TopCategories 按权重降序返回类目偏好；同分时按键名字典序，保证可复现。
func (p *PreferenceProfile) TopCategories() []PreferenceEntry {
	return sortedEntries(p.Categories)
}

// TopBrands 按权重降序返回品牌偏好，tie-break 同 TopCategories。
func (p *PreferenceProfile) TopBrands() []PreferenceEntry {
	return sortedEntries(p.Brands)
}

func sortedEntries(m map[string]float64) []PreferenceEntry {
	out := make([]PreferenceEntry, 0, len(m))
	for k, w := range m {
		out = append(out, PreferenceEntry{Key: k, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Key < out[j].Key
	})
	return out
}
