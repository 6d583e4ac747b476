package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// ExprFilter 是规则过滤器：用 CEL 表达式描述候选的保留条件。
// 表达式返回 true 表示保留，false 表示过滤。
//
// 示例：
//   - `item.meta.price < 1000.0` → 只保留价格低于 1000 的候选
//   - `item.meta.category != "Gift Cards"` → 剔除礼品卡类目
type ExprFilter struct {
	// Expr 是 CEL 表达式；空表达式恒保留
	Expr string
}

// NewExprFilter 创建规则过滤器。
func NewExprFilter(expr string) *ExprFilter {
	return &ExprFilter{Expr: expr}
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}

	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		// 表达式错误时保留候选：规则失效不应清空推荐列表
		return false, err
	}
	return !keep, nil
}
