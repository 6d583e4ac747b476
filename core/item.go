package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选商品、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
// Meta 中约定的键：category / brand / price / product_name / description。
type Item struct {
	ID     string
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// NewItemFromProduct 从目录商品构造候选 Item，商品属性写入 Meta。
func NewItemFromProduct(p *Product) *Item {
	it := NewItem(p.ID)
	it.Meta["product_name"] = p.Name
	it.Meta["category"] = p.Category
	it.Meta["brand"] = p.Brand
	it.Meta["price"] = p.Price
	it.Meta["description"] = p.Description
	return it
}

// MetaString 读取 Meta 中的字符串字段，缺失或类型不符返回 ""。
func (it *Item) MetaString(key string) string {
	if it.Meta == nil {
		return ""
	}
	s, _ := it.Meta[key].(string)
	return s
}

// MetaFloat64 读取 Meta 中的数值字段，缺失或类型不符返回 0。
func (it *Item) MetaFloat64(key string) float64 {
	if it.Meta == nil {
		return 0
	}
	f, _ := it.Meta[key].(float64)
	return f
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
