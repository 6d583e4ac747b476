package core

import "context"

// Product 是商品目录中的外部实体，对本引擎只读。
// Category 与 Brand 是偏好画像的两个维度键。
type Product struct {
	ID          string  `json:"product_id" yaml:"product_id"`
	Name        string  `json:"product_name" yaml:"product_name"`
	Category    string  `json:"category" yaml:"category"`
	Brand       string  `json:"brand" yaml:"brand"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
}

// Catalog 是商品目录协作方的领域接口。
//
// 设计原则：
//   - 目录归属外部协作方，引擎只读
//   - Resolve 找不到商品时返回 NOT_FOUND 领域错误（IsNotFound 可判断），
//     调用方据此把该记录从维度打分中剔除，而不是让整次计算失败
//
// 实现：
//   - store.StoreCatalog（Hash 存储，memory/redis 通用）
//   - ext/catalog/feast（Feast 在线特征库）
type Catalog interface {
	// Resolve 按商品 ID 获取商品
	Resolve(ctx context.Context, productID string) (*Product, error)

	// List 返回全部商品（候选集来源）
	List(ctx context.Context) ([]*Product, error)

	// Search 按关键词/类目/品牌检索（查询直达模式，绕过排序器）
	Search(ctx context.Context, query, category, brand string) ([]*Product, error)
}
