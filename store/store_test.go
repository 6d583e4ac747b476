package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

func TestMemoryStore_KV(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want v", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after delete error = %v, want store not found", err)
	}
}

func TestMemoryStore_DeleteClearsHashAndZSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.ZAdd(ctx, "z", 5, "p1"); err != nil {
		t.Fatalf("ZAdd() error = %v", err)
	}
	for field, v := range map[string]string{"p1": "a", "p2": "b"} {
		if err := s.HSet(ctx, "h", field, []byte(v)); err != nil {
			t.Fatalf("HSet() error = %v", err)
		}
	}

	// DEL 语义：整 key 删除，hash 的所有字段一并消失
	if err := s.Delete(ctx, "z"); err != nil {
		t.Fatalf("Delete(z) error = %v", err)
	}
	if err := s.Delete(ctx, "h"); err != nil {
		t.Fatalf("Delete(h) error = %v", err)
	}

	if members, _ := s.ZRange(ctx, "z", 0, -1); len(members) != 0 {
		t.Errorf("ZRange after delete = %v, want empty", members)
	}
	if _, err := s.HGet(ctx, "h", "p1"); !core.IsStoreNotFound(err) {
		t.Errorf("HGet after delete error = %v, want store not found", err)
	}
	if fields, _ := s.HGetAll(ctx, "h"); len(fields) != 0 {
		t.Errorf("HGetAll after delete = %v, want empty", fields)
	}
}

func TestMemoryStore_ZSetDeterministicOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	// p2 与 p3 同分：按 member 升序
	for member, score := range map[string]float64{"p1": 9, "p3": 5, "p2": 5} {
		if err := s.ZAdd(ctx, "z", score, member); err != nil {
			t.Fatalf("ZAdd() error = %v", err)
		}
	}

	got, err := s.ZRange(ctx, "z", 0, -1)
	if err != nil {
		t.Fatalf("ZRange() error = %v", err)
	}
	want := []string{"p1", "p2", "p3"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ZRange()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestInteractionLog_AppendRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()
	log := NewInteractionLog(s)

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []core.InteractionRecord{
		{UserID: "u1", ProductID: "p1", Type: core.InteractionView, Timestamp: t0},
		{UserID: "u1", ProductID: "p2", Type: core.InteractionPurchase, Timestamp: t0.Add(time.Minute)},
		{UserID: "u2", ProductID: "p1", Type: core.InteractionAddToCart, Timestamp: t0.Add(2 * time.Minute)},
	}
	for _, rec := range records {
		if err := log.Append(ctx, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter core.LogFilter
		want   int
	}{
		{name: "all records", filter: core.LogFilter{}, want: 3},
		{name: "by user", filter: core.LogFilter{UserID: "u1"}, want: 2},
		{name: "by users (cohort)", filter: core.LogFilter{UserIDs: []string{"u1", "u2"}}, want: 3},
		{name: "by type", filter: core.LogFilter{UserID: "u1", Type: core.InteractionPurchase}, want: 1},
		{name: "by since", filter: core.LogFilter{Since: t0.Add(90 * time.Second)}, want: 1},
		{name: "unknown user", filter: core.LogFilter{UserID: "nobody"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := log.Read(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len(Read()) = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestInteractionLog_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()
	log := NewInteractionLog(s)

	rec := core.InteractionRecord{UserID: "u1", ProductID: "p1", Type: core.InteractionView, Timestamp: time.Now().UTC()}
	if err := log.Append(ctx, rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	snapshot, err := log.Read(ctx, core.LogFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// 读取之后的 Append 不影响已返回的快照
	rec.ProductID = "p2"
	if err := log.Append(ctx, rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(snapshot) != 1 {
		t.Errorf("snapshot grew after Append: len = %d", len(snapshot))
	}
}

func TestCatalog_ResolveListSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()
	catalog := NewCatalog(s)

	products := []*core.Product{
		{ID: "p2", Name: "Road Racer", Category: "Shoes", Brand: "Zephyr", Price: 129, Description: "carbon racing shoe"},
		{ID: "p1", Name: "Trail Runner", Category: "Shoes", Brand: "Acme", Price: 89.9},
		{ID: "p3", Name: "Rain Shell", Category: "Jackets", Brand: "Acme", Price: 159},
	}
	for _, p := range products {
		if err := catalog.Put(ctx, p); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	got, err := catalog.Resolve(ctx, "p1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Name != "Trail Runner" || got.Price != 89.9 {
		t.Errorf("Resolve(p1) = %+v", got)
	}
	if _, err := catalog.Resolve(ctx, "missing"); !core.IsNotFound(err) {
		t.Errorf("Resolve(missing) error = %v, want NOT_FOUND", err)
	}

	all, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "p1" || all[2].ID != "p3" {
		t.Errorf("List() order not deterministic by ID: %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}

	searches := []struct {
		name                   string
		query, category, brand string
		want                   []string
	}{
		{name: "query matches name", query: "runner", want: []string{"p1"}},
		{name: "query matches description", query: "carbon", want: []string{"p2"}},
		{name: "category exact case-insensitive", category: "shoes", want: []string{"p1", "p2"}},
		{name: "brand narrows category", category: "shoes", brand: "acme", want: []string{"p1"}},
		{name: "no match", query: "bicycle", want: []string{}},
	}
	for _, tt := range searches {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := catalog.Search(ctx, tt.query, tt.category, tt.brand)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(hits) != len(tt.want) {
				t.Fatalf("len(hits) = %d, want %d", len(hits), len(tt.want))
			}
			for i, id := range tt.want {
				if hits[i].ID != id {
					t.Errorf("hits[%d] = %s, want %s", i, hits[i].ID, id)
				}
			}
		})
	}
}

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()
	users := NewUserDirectory(s)

	for _, u := range []*core.User{
		{ID: "carol", Email: "carol@example.com", Location: "berlin"},
		{ID: "alice", Email: "alice@example.com", Location: "berlin"},
		{ID: "dan", Email: "dan@example.com", Location: "tokyo"},
	} {
		if err := users.Put(ctx, u); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	u, err := users.Lookup(ctx, "alice")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Lookup(alice) = %+v", u)
	}
	if _, err := users.Lookup(ctx, "nobody"); !core.IsNotFound(err) {
		t.Errorf("Lookup(nobody) error = %v, want NOT_FOUND", err)
	}

	key, err := users.CohortKey(ctx, "dan")
	if err != nil {
		t.Fatalf("CohortKey() error = %v", err)
	}
	if key != "tokyo" {
		t.Errorf("CohortKey(dan) = %q, want tokyo", key)
	}

	members, err := users.CohortMembers(ctx, "berlin")
	if err != nil {
		t.Fatalf("CohortMembers() error = %v", err)
	}
	if len(members) != 2 || members[0] != "alice" || members[1] != "carol" {
		t.Errorf("CohortMembers(berlin) = %v, want [alice carol]", members)
	}
}
