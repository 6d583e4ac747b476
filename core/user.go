package core

import "context"

// User 是身份协作方的外部实体。Location 即 cohort 分组键。
// 引擎不依赖任何“当前登录用户”的环境状态，user_id 必须显式传入每次调用。
type User struct {
	ID       string `json:"user_id" yaml:"user_id"`
	Email    string `json:"email" yaml:"email"`
	Location string `json:"location" yaml:"location"`
}

// UserDirectory 是用户目录协作方的领域接口。
//
// cohort 语义：同一分组键（如同城）的用户被假定具有相关意图
// （本地供给、区域趋势），作为稀疏个人信号的廉价补充，
// 对新用户尤其重要（冷启动兜底）。
type UserDirectory interface {
	// Lookup 按用户 ID 获取用户；不存在时返回 NOT_FOUND
	Lookup(ctx context.Context, userID string) (*User, error)

	// CohortKey 返回用户的分组键（如 location）
	CohortKey(ctx context.Context, userID string) (string, error)

	// CohortMembers 返回分组内的全部用户 ID
	CohortMembers(ctx context.Context, cohortKey string) ([]string, error)
}
