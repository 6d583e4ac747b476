package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是候选规则解释器，使用 CEL (Common Expression Language) 实现。
// 用于候选集的策略过滤：价格区间、类目白名单、召回来源等。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.meta.price < 500.0 / item.score > 0.7
//   - 字符串：item.meta.category == "Shoes"
//   - 逻辑：item.meta.brand == "Nike" && item.meta.price < 200.0
//   - 标签：label.recall_source.contains("trending")
//
// 示例：
//   - `item.meta.price < 1000.0` → 只保留价格低于 1000 的候选
//   - `label.recall_source == "recall.catalog"` → 只保留目录召回的候选
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行 CEL 表达式，返回布尔结果。
// 空表达式恒为 true。
//
// 注意：CEL 访问不存在的 key 会报错，检查存在性请用 label.key != null。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	for k, v := range e.item.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
		// label.recall_source 直接取 value，兼容简写
		labelAccessor[k] = v.Value
	}

	item := map[string]interface{}{
		"id":     e.item.ID,
		"score":  e.item.Score,
		"meta":   e.item.Meta,
		"labels": labels,
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx["user_id"] = e.rctx.UserID
		rctx["cohort"] = e.rctx.CohortKey
		rctx["params"] = e.rctx.Params
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelAccessor,
		"rctx":  rctx,
	}
}
