package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/shoprec/cohort"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/conv"
)

func item(id, category, brand string) *core.Item {
	it := core.NewItem(id)
	it.Meta["category"] = category
	it.Meta["brand"] = brand
	return it
}

func profileOf(categories, brands map[string]float64) *core.PreferenceProfile {
	return core.NewPreferenceProfile("u1", categories, brands, nil)
}

func TestBlended_ColdStartFollowsTrending(t *testing.T) {
	node := &Blended{
		CohortTop: []cohort.ProductScore{
			{ProductID: "p2", Score: 10},
			{ProductID: "p1", Score: 4},
		},
	}
	rctx := &core.RecommendContext{UserID: "u1", Profile: core.EmptyPreferenceProfile("u1")}
	items := []*core.Item{item("p1", "shoes", "acme"), item("p2", "jackets", "nordic")}

	got, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// 空画像 ⇒ affinity 恒 0 ⇒ 排序由趋势项决定
	if got[0].ID != "p2" {
		t.Errorf("got[0] = %s, want p2 (trending order)", got[0].ID)
	}
	for _, it := range got {
		lbl, ok := it.Labels["rec_source"]
		if !ok || lbl.Value != string(core.SourceTrending) {
			t.Errorf("item %s label = %v, want %q", it.ID, lbl.Value, core.SourceTrending)
		}
	}
}

func TestBlended_BlendMath(t *testing.T) {
	node := &Blended{
		Alpha: conv.Ptr(0.7),
		CohortTop: []cohort.ProductScore{
			{ProductID: "p1", Score: 10}, // 归一化后 1.0
			{ProductID: "p2", Score: 2},  // 归一化后 0.0
		},
	}
	rctx := &core.RecommendContext{
		UserID:  "u1",
		Profile: profileOf(map[string]float64{"shoes": 4}, map[string]float64{"acme": 6, "zephyr": 3}),
	}
	items := []*core.Item{item("p1", "shoes", "acme"), item("p2", "shoes", "zephyr")}

	got, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	byID := map[string]*core.Item{}
	for _, it := range got {
		byID[it.ID] = it
	}
	// p1: affinity = 1.0(shoes 归一化) + 6/9(acme) ；trend = 1.0
	// profileOf 内部构造时归一化：shoes=1.0, acme=2/3, zephyr=1/3
	wantP1 := 0.7*(1.0+2.0/3) + 0.3*1.0
	if got := byID["p1"].Score; math.Abs(got-wantP1) > 1e-9 {
		t.Errorf("p1 score = %v, want %v", got, wantP1)
	}
	wantP2 := 0.7*(1.0+1.0/3) + 0.3*0.0
	if got := byID["p2"].Score; math.Abs(got-wantP2) > 1e-9 {
		t.Errorf("p2 score = %v, want %v", got, wantP2)
	}
}

func TestBlended_AlphaZeroPureTrending(t *testing.T) {
	// α=0 是显式配置而不是“未设置”：画像再强也不参与排序
	node := &Blended{
		Alpha: conv.Ptr(0.0),
		CohortTop: []cohort.ProductScore{
			{ProductID: "p2", Score: 10},
			{ProductID: "p1", Score: 4},
		},
	}
	rctx := &core.RecommendContext{
		UserID:  "u1",
		Profile: profileOf(map[string]float64{"shoes": 1}, map[string]float64{"acme": 1}),
	}
	items := []*core.Item{item("p1", "shoes", "acme"), item("p2", "jackets", "nordic")}

	got, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got[0].ID != "p2" {
		t.Errorf("got[0] = %s, want p2 (alpha=0 ranks by trending only)", got[0].ID)
	}
	// p1 偏好拉满但 α=0：blended = 0 + 1.0·归一化趋势
	if got[0].Score != 1.0 || got[1].Score != 0.0 {
		t.Errorf("scores = [%v %v], want [1 0]", got[0].Score, got[1].Score)
	}
}

func TestBlended_DominanceLabels(t *testing.T) {
	tests := []struct {
		name       string
		categories map[string]float64
		item       *core.Item
		want       core.RecSource
	}{
		{
			name:       "preference dominated",
			categories: map[string]float64{"shoes": 1},
			item:       item("p1", "shoes", ""),
			want:       core.SourcePreferences,
		},
		{
			name:       "no affinity stays trending",
			categories: map[string]float64{"jackets": 1},
			item:       item("p1", "shoes", ""),
			want:       core.SourceTrending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &Blended{
				CohortTop: []cohort.ProductScore{{ProductID: "p1", Score: 5}},
			}
			rctx := &core.RecommendContext{UserID: "u1", Profile: profileOf(tt.categories, nil)}

			got, err := node.Process(context.Background(), rctx, []*core.Item{tt.item})
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if lbl := got[0].Labels["rec_source"]; lbl.Value != string(tt.want) {
				t.Errorf("label = %q, want %q", lbl.Value, tt.want)
			}
		})
	}
}

func TestBlended_DeterministicTieBreak(t *testing.T) {
	node := &Blended{}
	rctx := &core.RecommendContext{UserID: "u1", Profile: core.EmptyPreferenceProfile("u1")}

	// 无趋势、无画像：全员 0 分，只能靠 ID 升序
	items := []*core.Item{item("p3", "", ""), item("p1", "", ""), item("p2", "", "")}
	got, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if got[i].ID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestBlended_TrendingFromMeta(t *testing.T) {
	// CohortTop 未注入：从 Meta["trending_score"] 还原（recall.trending 写入的路径）
	node := &Blended{}
	rctx := &core.RecommendContext{UserID: "u1", Profile: core.EmptyPreferenceProfile("u1")}

	warm := item("p1", "", "")
	warm.Meta["trending_score"] = 9.0
	mild := item("p2", "", "")
	mild.Meta["trending_score"] = 3.0
	cold := item("p3", "", "")

	got, err := node.Process(context.Background(), rctx, []*core.Item{cold, mild, warm})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got[0].ID != "p1" || got[1].ID != "p2" || got[2].ID != "p3" {
		t.Errorf("order = [%s %s %s], want [p1 p2 p3]", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestNormalizeTrending(t *testing.T) {
	tests := []struct {
		name string
		top  []cohort.ProductScore
		want map[string]float64
	}{
		{
			name: "min max over the cohort range",
			top: []cohort.ProductScore{
				{ProductID: "p1", Score: 10},
				{ProductID: "p2", Score: 6},
				{ProductID: "p3", Score: 2},
			},
			want: map[string]float64{"p1": 1, "p2": 0.5, "p3": 0},
		},
		{
			name: "degenerate range maps to 1",
			top: []cohort.ProductScore{
				{ProductID: "p1", Score: 7},
				{ProductID: "p2", Score: 7},
			},
			want: map[string]float64{"p1": 1, "p2": 1},
		},
		{
			name: "empty trending",
			top:  nil,
			want: map[string]float64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeTrending(tt.top)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				if math.Abs(got[id]-want) > 1e-9 {
					t.Errorf("normalized[%s] = %v, want %v", id, got[id], want)
				}
			}
		})
	}
}
