package core

import (
	"context"
	"time"
)

// InteractionType 是用户行为类型，按意图强度排序的封闭集合。
// 未知类型不会被引擎拒绝：打分时权重为 0，但仍计入行为统计（可审计）。
type InteractionType string

const (
	InteractionView      InteractionType = "view"        // 浏览
	InteractionAddToCart InteractionType = "add_to_cart" // 加购
	InteractionPurchase  InteractionType = "purchase"    // 购买
)

// IsValid 检查是否为已知行为类型。
// 引擎内部不依赖此校验（未知类型权重为 0 即可）；
// 写入侧（service.RecordInteraction）用它做入参校验。
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionView, InteractionAddToCart, InteractionPurchase:
		return true
	}
	return false
}

// InteractionRecord 是信号的原子单元：一条用户对商品的行为记录。
//
// 不变量：
//   - 一旦写入不可变；引擎只读、只折叠，从不修改或删除
//   - 行为日志是唯一的持久事实来源，所有派生结构（画像/排序）均可重建
type InteractionRecord struct {
	UserID    string          `json:"user_id" yaml:"user_id"`
	ProductID string          `json:"product_id" yaml:"product_id"`
	Type      InteractionType `json:"interaction_type" yaml:"interaction_type"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"` // UTC
}

// LogFilter 是读取行为日志的过滤条件。零值字段表示不过滤。
type LogFilter struct {
	// UserID 只读取该用户的记录
	UserID string

	// UserIDs 只读取这批用户（cohort 成员）的记录
	UserIDs []string

	// Type 只读取该行为类型的记录
	Type InteractionType

	// Since 只读取该时间点之后的记录
	Since time.Time
}

// Match 判断一条记录是否命中过滤条件。
func (f LogFilter) Match(rec InteractionRecord) bool {
	if f.UserID != "" && rec.UserID != f.UserID {
		return false
	}
	if len(f.UserIDs) > 0 {
		hit := false
		for _, id := range f.UserIDs {
			if rec.UserID == id {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Type != "" && rec.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && rec.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// InteractionLog 是行为日志的领域接口（append-only）。
//
// 设计原则：
//   - 接口定义在领域层（core），由基础设施层（store）实现
//   - 引擎只调用 Read；Append 由 UI 层（service.RecordInteraction）调用
//   - Read 必须返回快照：实现方在返回前拷贝，保证引擎单次计算的内部一致性，
//     即使底层存储在计算期间仍有并发 Append
type InteractionLog interface {
	// Append 追加一条行为记录（UI 层调用，引擎本身从不写入）
	Append(ctx context.Context, rec InteractionRecord) error

	// Read 按过滤条件读取行为记录快照
	Read(ctx context.Context, filter LogFilter) ([]InteractionRecord, error)
}
