package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

// fakeCatalog 是测试用目录：只认识 products 里的商品，unavailable 时模拟目录宕机。
type fakeCatalog struct {
	products    map[string]*core.Product
	unavailable bool
	resolves    int
}

func (c *fakeCatalog) Resolve(_ context.Context, id string) (*core.Product, error) {
	c.resolves++
	if c.unavailable {
		return nil, core.ErrCatalogUnavailable
	}
	p, ok := c.products[id]
	if !ok {
		return nil, core.ErrProductNotFound
	}
	return p, nil
}

func (c *fakeCatalog) List(_ context.Context) ([]*core.Product, error) {
	return nil, nil
}

func (c *fakeCatalog) Search(_ context.Context, _, _, _ string) ([]*core.Product, error) {
	return nil, nil
}

func rec(user, product string, t core.InteractionType) core.InteractionRecord {
	return core.InteractionRecord{UserID: user, ProductID: product, Type: t, Timestamp: time.Now()}
}

func TestEngine_Weight(t *testing.T) {
	tests := []struct {
		name string
		typ  core.InteractionType
		want float64
	}{
		{name: "view weights 1", typ: core.InteractionView, want: 1},
		{name: "add_to_cart weights 3", typ: core.InteractionAddToCart, want: 3},
		{name: "purchase weights 5", typ: core.InteractionPurchase, want: 5},
		{name: "unknown type weights 0", typ: core.InteractionType("wishlist"), want: 0},
		{name: "empty type weights 0", typ: core.InteractionType(""), want: 0},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Weight(tt.typ); got != tt.want {
				t.Errorf("Weight(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestEngine_ScoreProducts(t *testing.T) {
	e := NewEngine()

	// view + view + add_to_cart = 1 + 1 + 3 = 5
	records := []core.InteractionRecord{
		rec("u1", "p1", core.InteractionView),
		rec("u1", "p1", core.InteractionView),
		rec("u1", "p1", core.InteractionAddToCart),
		rec("u1", "p2", core.InteractionPurchase),
		rec("u1", "p3", core.InteractionType("wishlist")), // 未知类型不计分
	}

	scores := e.ScoreProducts(records)
	if got := scores["p1"]; got != 5 {
		t.Errorf("p1 score = %v, want 5", got)
	}
	if got := scores["p2"]; got != 5 {
		t.Errorf("p2 score = %v, want 5", got)
	}
	if _, ok := scores["p3"]; ok {
		t.Errorf("p3 should not appear (unknown type only)")
	}
}

func TestEngine_ScoreProducts_OrderInvariant(t *testing.T) {
	e := NewEngine()

	forward := []core.InteractionRecord{
		rec("u1", "p1", core.InteractionView),
		rec("u2", "p1", core.InteractionAddToCart),
		rec("u3", "p2", core.InteractionPurchase),
		rec("u1", "p2", core.InteractionView),
	}
	backward := make([]core.InteractionRecord, len(forward))
	for i, r := range forward {
		backward[len(forward)-1-i] = r
	}

	a, b := e.ScoreProducts(forward), e.ScoreProducts(backward)
	if len(a) != len(b) {
		t.Fatalf("score maps differ in size: %d vs %d", len(a), len(b))
	}
	for id, s := range a {
		if b[id] != s {
			t.Errorf("product %s: %v vs %v, scoring must be order invariant", id, s, b[id])
		}
	}
}

func TestEngine_ScoreDimension(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*core.Product{
		"p1": {ID: "p1", Category: "shoes", Brand: "acme"},
		"p2": {ID: "p2", Category: "shoes", Brand: "zephyr"},
		"p3": {ID: "p3", Category: "jackets", Brand: "acme"},
	}}

	records := []core.InteractionRecord{
		rec("u1", "p1", core.InteractionView),      // shoes +1
		rec("u1", "p2", core.InteractionAddToCart), // shoes +3
		rec("u1", "p3", core.InteractionPurchase),  // jackets +5
		rec("u1", "gone", core.InteractionPurchase), // 目录解析不到：不计入维度分
	}

	e := NewEngine()
	got, err := e.ScoreDimension(context.Background(), records, CategoryKey, catalog)
	if err != nil {
		t.Fatalf("ScoreDimension() error = %v", err)
	}
	if got["shoes"] != 4 {
		t.Errorf("shoes = %v, want 4", got["shoes"])
	}
	if got["jackets"] != 5 {
		t.Errorf("jackets = %v, want 5", got["jackets"])
	}
	if _, ok := got[""]; ok {
		t.Errorf("empty dimension key must not be scored")
	}
}

func TestEngine_ScoreDimension_ResolvesOnce(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*core.Product{
		"p1": {ID: "p1", Category: "shoes"},
	}}
	records := []core.InteractionRecord{
		rec("u1", "p1", core.InteractionView),
		rec("u1", "p1", core.InteractionView),
		rec("u1", "p1", core.InteractionPurchase),
	}

	e := NewEngine()
	if _, err := e.ScoreDimension(context.Background(), records, CategoryKey, catalog); err != nil {
		t.Fatalf("ScoreDimension() error = %v", err)
	}
	if catalog.resolves != 1 {
		t.Errorf("resolves = %d, want 1 (same product resolved once per fold)", catalog.resolves)
	}
}

func TestEngine_ScoreDimension_CatalogUnavailable(t *testing.T) {
	catalog := &fakeCatalog{unavailable: true}
	records := []core.InteractionRecord{rec("u1", "p1", core.InteractionView)}

	e := NewEngine()
	_, err := e.ScoreDimension(context.Background(), records, CategoryKey, catalog)
	if !core.IsUnavailable(err) {
		t.Errorf("ScoreDimension() error = %v, want UNAVAILABLE to propagate", err)
	}
}

func TestCountTypes(t *testing.T) {
	records := []core.InteractionRecord{
		rec("u1", "p1", core.InteractionView),
		rec("u1", "p2", core.InteractionView),
		rec("u1", "p1", core.InteractionPurchase),
		rec("u1", "p3", core.InteractionType("wishlist")),
	}

	got := CountTypes(records)
	if got[core.InteractionView] != 2 {
		t.Errorf("view count = %d, want 2", got[core.InteractionView])
	}
	if got[core.InteractionPurchase] != 1 {
		t.Errorf("purchase count = %d, want 1", got[core.InteractionPurchase])
	}
	// 未知类型照常计数（审计用途），只是不参与打分
	if got[core.InteractionType("wishlist")] != 1 {
		t.Errorf("unknown type must still be tallied")
	}
}

func TestLatestByProduct(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []core.InteractionRecord{
		{UserID: "u1", ProductID: "p1", Type: core.InteractionView, Timestamp: t0},
		{UserID: "u2", ProductID: "p1", Type: core.InteractionView, Timestamp: t0.Add(time.Hour)},
		{UserID: "u1", ProductID: "p2", Type: core.InteractionView, Timestamp: t0.Add(time.Minute)},
	}

	got := LatestByProduct(records)
	if got["p1"] != t0.Add(time.Hour).UnixNano() {
		t.Errorf("p1 latest = %d, want the newer timestamp", got["p1"])
	}
	if got["p2"] != t0.Add(time.Minute).UnixNano() {
		t.Errorf("p2 latest = %d", got["p2"])
	}
}
