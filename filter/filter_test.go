package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

type fakeLog struct {
	records []core.InteractionRecord
	err     error
	reads   int
}

func (l *fakeLog) Append(_ context.Context, rec core.InteractionRecord) error {
	l.records = append(l.records, rec)
	return nil
}

func (l *fakeLog) Read(_ context.Context, f core.LogFilter) ([]core.InteractionRecord, error) {
	l.reads++
	if l.err != nil {
		return nil, l.err
	}
	var out []core.InteractionRecord
	for _, rec := range l.records {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func purchase(user, product string) core.InteractionRecord {
	return core.InteractionRecord{UserID: user, ProductID: product, Type: core.InteractionPurchase, Timestamp: time.Now()}
}

func TestPurchasedFilter(t *testing.T) {
	log := &fakeLog{records: []core.InteractionRecord{
		purchase("u1", "p1"),
		purchase("u2", "p2"), // 别人买的不影响 u1
		{UserID: "u1", ProductID: "p3", Type: core.InteractionView, Timestamp: time.Now()},
	}}
	f := NewPurchasedFilter(log)
	rctx := &core.RecommendContext{UserID: "u1"}

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "own purchase filtered", id: "p1", want: true},
		{name: "other user purchase kept", id: "p2", want: false},
		{name: "viewed but not purchased kept", id: "p3", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem(tt.id))
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter(%s) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}

	// 单次请求内按用户缓存：日志只读一次
	if log.reads != 1 {
		t.Errorf("log reads = %d, want 1 (snapshot per request)", log.reads)
	}
}

func TestPurchasedFilter_LogErrorKeepsItem(t *testing.T) {
	f := NewPurchasedFilter(&fakeLog{err: core.ErrLogUnavailable})
	rctx := &core.RecommendContext{UserID: "u1"}

	got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem("p1"))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if got {
		t.Errorf("log failure must not drop candidates")
	}
}

func TestBlacklistFilter(t *testing.T) {
	f := NewBlacklistFilter([]string{"banned"}, nil, "")

	if got, _ := f.ShouldFilter(context.Background(), nil, core.NewItem("banned")); !got {
		t.Errorf("blacklisted item must be filtered")
	}
	if got, _ := f.ShouldFilter(context.Background(), nil, core.NewItem("ok")); got {
		t.Errorf("non-blacklisted item must pass")
	}
}

func TestExprFilter(t *testing.T) {
	cheap := core.NewItem("p1")
	cheap.Meta["price"] = 50.0
	pricey := core.NewItem("p2")
	pricey.Meta["price"] = 500.0

	f := NewExprFilter(`item.meta["price"] < 100.0`)
	rctx := &core.RecommendContext{UserID: "u1"}

	if got, err := f.ShouldFilter(context.Background(), rctx, cheap); err != nil || got {
		t.Errorf("cheap item: filter=%v err=%v, want kept", got, err)
	}
	if got, err := f.ShouldFilter(context.Background(), rctx, pricey); err != nil || !got {
		t.Errorf("pricey item: filter=%v err=%v, want filtered", got, err)
	}
}

func TestFilterNode(t *testing.T) {
	log := &fakeLog{records: []core.InteractionRecord{purchase("u1", "p1")}}
	node := &FilterNode{Filters: []Filter{
		NewPurchasedFilter(log),
		NewBlacklistFilter([]string{"p3"}, nil, ""),
	}}
	rctx := &core.RecommendContext{UserID: "u1"}

	items := []*core.Item{core.NewItem("p1"), core.NewItem("p2"), core.NewItem("p3")}
	got, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("got %d items, want only p2", len(got))
	}

	// 被过滤的 item 打上 filtered 标签并记录来源过滤器
	if lbl, ok := items[0].Labels["filtered"]; !ok || lbl.Source != "filter.purchased" {
		t.Errorf("p1 filtered label = %+v, want source filter.purchased", items[0].Labels["filtered"])
	}
}
