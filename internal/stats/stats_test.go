package stats

import (
	"encoding/json"
	"testing"

	"PosBoard/internal/order"
)

func coffeeOrder(id string, count int) order.Order {
	return order.Order{
		ID:    id,
		Items: []order.LineItem{{Name: "Coffee", Count: count, Price: 50}},
		Total: float64(count) * 50,
	}
}

func assertItem(t *testing.T, s Stats, name string, count int, revenue float64) {
	t.Helper()
	e, ok := s.Items[name]
	if !ok {
		t.Fatalf("item %q missing in %+v", name, s.Items)
	}
	if e.Count != count || e.Revenue != revenue {
		t.Fatalf("item %q = %+v, want count=%d revenue=%v", name, e, count, revenue)
	}
}

func TestAdd_CreateScenario(t *testing.T) {
	s := Add(Empty(), coffeeOrder("1", 2))

	assertItem(t, s, "Coffee", 2, 100)
	if s.TotalRevenue != 100 {
		t.Fatalf("totalRevenue=%v want 100", s.TotalRevenue)
	}
}

func TestRemoveThenAdd_UpdateScenario(t *testing.T) {
	before := coffeeOrder("1", 2)
	after := coffeeOrder("1", 1)

	s := Add(Empty(), before)
	s = Add(Remove(s, before), after)

	assertItem(t, s, "Coffee", 1, 50)
	if s.TotalRevenue != 50 {
		t.Fatalf("totalRevenue=%v want 50", s.TotalRevenue)
	}
}

func TestRemove_FullRetractionDropsItem(t *testing.T) {
	s := Add(Empty(), coffeeOrder("1", 2))

	// Revenue left on the entry must not keep it alive.
	s.Items["Coffee"] = ItemStats{Count: 2, Revenue: 130}

	s = Remove(s, coffeeOrder("1", 2))
	if _, ok := s.Items["Coffee"]; ok {
		t.Fatalf("Coffee still present: %+v", s.Items)
	}
}

func TestRemove_DropsItemWhenCountGoesNegative(t *testing.T) {
	s := Add(Empty(), coffeeOrder("1", 1))
	s = Remove(s, coffeeOrder("1", 3))

	if _, ok := s.Items["Coffee"]; ok {
		t.Fatalf("Coffee still present: %+v", s.Items)
	}
}

func TestRemove_FloorsTotalRevenueAtZero(t *testing.T) {
	s := Add(Empty(), coffeeOrder("1", 1))
	s = Remove(s, coffeeOrder("2", 10))

	if s.TotalRevenue != 0 {
		t.Fatalf("totalRevenue=%v want 0", s.TotalRevenue)
	}
}

func TestRemove_SkipsUnknownItems(t *testing.T) {
	s := Add(Empty(), coffeeOrder("1", 2))

	s = Remove(s, order.Order{
		Items: []order.LineItem{{Name: "Tea", Count: 1, Price: 40}},
		Total: 40,
	})

	if _, ok := s.Items["Tea"]; ok {
		t.Fatalf("unknown item was created: %+v", s.Items)
	}
	assertItem(t, s, "Coffee", 2, 100)
	if s.TotalRevenue != 60 {
		t.Fatalf("totalRevenue=%v want 60", s.TotalRevenue)
	}
}

func TestAdd_UsesCallerTotal(t *testing.T) {
	o := coffeeOrder("1", 2)
	o.Total = 90

	s := Add(Empty(), o)
	if s.TotalRevenue != 90 {
		t.Fatalf("totalRevenue=%v want caller total 90", s.TotalRevenue)
	}
	assertItem(t, s, "Coffee", 2, 100)
}

func TestAddRemove_DoNotMutateInput(t *testing.T) {
	base := Add(Empty(), coffeeOrder("1", 2))

	_ = Add(base, coffeeOrder("2", 5))
	_ = Remove(base, coffeeOrder("1", 2))

	assertItem(t, base, "Coffee", 2, 100)
	if base.TotalRevenue != 100 {
		t.Fatalf("input stats mutated: %+v", base)
	}
}

func TestRebuild_TotalMatchesOrderTotals(t *testing.T) {
	orders := []order.Order{
		coffeeOrder("1", 2),
		{ID: "2", Items: []order.LineItem{{Name: "Tea", Count: 3, Price: 40}, {Name: "Coffee", Count: 1, Price: 50}}, Total: 170},
		{ID: "3", Items: []order.LineItem{{Name: "Cake", Count: 1, Price: 85.5}}, Total: 85.5},
	}

	s := Rebuild(orders)

	var want float64
	for _, o := range orders {
		want += o.Total
	}
	if s.TotalRevenue != want {
		t.Fatalf("totalRevenue=%v want %v", s.TotalRevenue, want)
	}
	assertItem(t, s, "Coffee", 3, 150)
	assertItem(t, s, "Tea", 3, 120)
	assertItem(t, s, "Cake", 1, 85.5)
}

func TestRebuild_MatchesIncrementalAdds(t *testing.T) {
	orders := []order.Order{coffeeOrder("1", 2), coffeeOrder("2", 4), coffeeOrder("3", 1)}

	inc := Empty()
	for _, o := range orders {
		inc = Add(inc, o)
	}
	full := Rebuild(orders)

	if inc.TotalRevenue != full.TotalRevenue {
		t.Fatalf("incremental=%v rebuild=%v", inc.TotalRevenue, full.TotalRevenue)
	}
	if inc.Items["Coffee"] != full.Items["Coffee"] {
		t.Fatalf("incremental=%+v rebuild=%+v", inc.Items, full.Items)
	}
}

func TestEmpty_JSONShape(t *testing.T) {
	b, err := json.Marshal(Empty())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"items":{},"totalRevenue":0}` {
		t.Fatalf("json=%s", b)
	}
}
