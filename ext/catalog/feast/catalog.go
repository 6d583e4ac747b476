// Package feast 提供 Feast Feature Store 之上的商品目录实现。
//
// 适用场景：商品属性（类目/品牌/价格）已作为在线特征存放在 Feast 中，
// 引擎侧无需再维护一份目录投影，直接按 product_id 解析在线特征。
//
// 注意：Feast 在线存储不支持实体枚举，List/Search 需要配合 Fallback
// 目录（如 store.Catalog）使用；只配 Feast 时这两个操作返回 NOT_SUPPORTED。
package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/shoprec/core"
)

// 商品特征名约定（FeatureTable:feature 形式）
const (
	featureName        = "product:product_name"
	featureCategory    = "product:category"
	featureBrand       = "product:brand"
	featurePrice       = "product:price"
	featureDescription = "product:description"
)

// Catalog 是 Feast 在线特征库之上的 core.Catalog 实现。
type Catalog struct {
	client  *feastsdk.GrpcClient
	project string

	// Fallback 承接 List/Search（可选）
	Fallback core.Catalog
}

// NewCatalog 连接 Feast Feature Server 并创建目录。
func NewCatalog(host string, port int, project string) (*Catalog, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("connect feast: %w", err)
	}
	return &Catalog{client: client, project: project}, nil
}

var _ core.Catalog = (*Catalog)(nil)

// Resolve 按商品 ID 解析在线特征并组装商品。
// 特征全部缺失（实体不存在）时返回 NOT_FOUND；服务不可达返回 UNAVAILABLE。
func (c *Catalog) Resolve(ctx context.Context, productID string) (*core.Product, error) {
	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{
			featureName, featureCategory, featureBrand, featurePrice, featureDescription,
		},
		Entities: []feastsdk.Row{
			{"product_id": feastsdk.StrVal(productID)},
		},
		Project: c.project,
	}

	resp, err := c.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, core.ErrCatalogUnavailable
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, core.ErrProductNotFound
	}
	row := rows[0]

	p := &core.Product{
		ID:          productID,
		Name:        strVal(row, featureName),
		Category:    strVal(row, featureCategory),
		Brand:       strVal(row, featureBrand),
		Price:       doubleVal(row, featurePrice),
		Description: strVal(row, featureDescription),
	}
	// 关键维度全空视为实体不存在
	if p.Name == "" && p.Category == "" && p.Brand == "" {
		return nil, core.ErrProductNotFound
	}
	return p, nil
}

// List 委托给 Fallback 目录；未配置时返回 NOT_SUPPORTED。
func (c *Catalog) List(ctx context.Context) ([]*core.Product, error) {
	if c.Fallback != nil {
		return c.Fallback.List(ctx)
	}
	return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotSupported, "catalog: feast backend cannot enumerate products")
}

// Search 委托给 Fallback 目录；未配置时返回 NOT_SUPPORTED。
func (c *Catalog) Search(ctx context.Context, query, category, brand string) ([]*core.Product, error) {
	if c.Fallback != nil {
		return c.Fallback.Search(ctx, query, category, brand)
	}
	return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotSupported, "catalog: feast backend cannot search products")
}

func strVal(row feastsdk.Row, feature string) string {
	if v, ok := row[feature]; ok && v != nil {
		return v.GetStringVal()
	}
	return ""
}

func doubleVal(row feastsdk.Row, feature string) float64 {
	if v, ok := row[feature]; ok && v != nil {
		if d := v.GetDoubleVal(); d != 0 {
			return d
		}
		return float64(v.GetFloatVal())
	}
	return 0
}
