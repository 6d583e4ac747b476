package core

// RecSource 是推荐结果的解释标签（explain）。
// 用显式类型承载，避免把“Search Result 的哨兵分数”混进真实低分的数值约定里。
type RecSource string

const (
	// SourcePreferences 表示个人偏好项主导（α·affinity 占优）
	SourcePreferences RecSource = "Based on your preferences"

	// SourceTrending 表示同城趋势项主导（(1−α)·trending 占优）
	SourceTrending RecSource = "Trending near you"

	// SourceSearch 表示查询直达模式：绕过排序器，分数固定为 1（哨兵，非计算值）
	SourceSearch RecSource = "Search Result"
)

// SearchScore 是查询直达模式的固定哨兵分数。
const SearchScore = 1.0

// RankedRecommendation 是排序输出的单个条目：派生、不持久化，按请求重算。
type RankedRecommendation struct {
	ProductID   string    `json:"product_id"`
	Name        string    `json:"product_name"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Score       float64   `json:"score"`
	Source      RecSource `json:"recommendation_category"`
	Rank        int       `json:"rank"`
}
