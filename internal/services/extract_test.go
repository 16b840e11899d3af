package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"collection-route-service/internal/domain"
	"collection-route-service/internal/milp"
)

// assignment builds an all-zero value vector for m and flips the given
// variable indices to 1.
func assignment(m *milp.Model, ones ...int) []float64 {
	vals := make([]float64, m.NumVars())
	for _, i := range ones {
		vals[i] = 1
	}
	return vals
}

func mustArc(t *testing.T, rv *RouteVars, r int, a, b string) int {
	t.Helper()
	idx, ok := rv.ArcIndex(r, a, b)
	if !ok {
		t.Fatalf("arc %s->%s missing on route %d", a, b, r)
	}
	return idx
}

func TestExtractResultRoute(t *testing.T) {
	g := scenarioGraph(t, domain.Unconstrained, domain.Unconstrained)
	cfg := flatConfig(60, 1)
	m, rv, err := BuildRouteModel(g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sol := milp.Solution{
		Status: milp.StatusOptimal,
		Values: assignment(m,
			rv.Used[0],
			mustArc(t, rv, 0, "HUB", "A"),
			mustArc(t, rv, 0, "A", "B"),
			mustArc(t, rv, 0, "B", "HUB"),
		),
	}

	res, err := ExtractResult(sol, rv, g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusOptimal {
		t.Fatalf("status = %v, want optimal", res.Status)
	}
	if len(res.Direct) != 0 {
		t.Fatalf("direct shipments = %v, want none", res.Direct)
	}
	if len(res.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(res.Routes))
	}

	route := res.Routes[0]
	wantStops := []domain.RouteStop{
		{LocationID: "A", Minutes: 20, Cost: 40},
		{LocationID: "B", Minutes: 35, Cost: 70},
		{LocationID: "HUB", Minutes: 60, Cost: 120},
	}
	if len(route.Stops) != len(wantStops) {
		t.Fatalf("stops = %v, want %v", route.Stops, wantStops)
	}
	for i, want := range wantStops {
		got := route.Stops[i]
		if got.LocationID != want.LocationID ||
			math.Abs(got.Minutes-want.Minutes) > 1e-9 ||
			math.Abs(got.Cost-want.Cost) > 1e-9 {
			t.Fatalf("stop %d = %+v, want %+v", i, got, want)
		}
	}
	if math.Abs(route.TotalMinutes-60) > 1e-9 || math.Abs(route.TotalCost-120) > 1e-9 {
		t.Fatalf("route totals = %v min / %v cost, want 60 / 120", route.TotalMinutes, route.TotalCost)
	}
	if math.Abs(res.TotalCost-120) > 1e-9 {
		t.Fatalf("total cost = %v, want 120", res.TotalCost)
	}
}

func TestExtractResultDirectShipments(t *testing.T) {
	g := scenarioGraph(t, domain.Unconstrained, domain.Unconstrained)
	cfg := flatConfig(60, 1)
	m, rv, err := BuildRouteModel(g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sol := milp.Solution{
		Status: milp.StatusOptimal,
		Values: assignment(m, rv.Direct["A"], rv.Direct["B"]),
	}
	res, err := ExtractResult(sol, rv, g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Routes) != 0 {
		t.Fatalf("routes = %v, want none", res.Routes)
	}
	if len(res.Direct) != 2 || res.Direct[0].LocationID != "A" || res.Direct[1].LocationID != "B" {
		t.Fatalf("direct = %v, want [A B] in order", res.Direct)
	}
	if math.Abs(res.TotalCost-250) > 1e-9 {
		t.Fatalf("total cost = %v, want 250", res.TotalCost)
	}
}

func TestExtractResultRejectsBrokenAssignments(t *testing.T) {
	g := scenarioGraph(t, domain.Unconstrained, domain.Unconstrained)
	cfg := flatConfig(60, 1)
	m, rv, err := BuildRouteModel(g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		ones []int
		want string
	}{
		{
			name: "arcs on unused route",
			ones: []int{mustArc(t, rv, 0, "HUB", "A")},
			want: "unused route",
		},
		{
			name: "dead end",
			ones: []int{rv.Used[0], mustArc(t, rv, 0, "HUB", "A")},
			want: "path ends",
		},
		{
			name: "duplicate outgoing arc",
			ones: []int{
				rv.Used[0],
				mustArc(t, rv, 0, "HUB", "A"),
				mustArc(t, rv, 0, "HUB", "B"),
			},
			want: "two outgoing arcs",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sol := milp.Solution{Status: milp.StatusOptimal, Values: assignment(m, tc.ones...)}
			_, err := ExtractResult(sol, rv, g, cfg)
			var rErr *domain.ReconstructionError
			if !errors.As(err, &rErr) {
				t.Fatalf("expected ReconstructionError, got %T: %v", err, err)
			}
			if !strings.Contains(rErr.Reason, tc.want) {
				t.Fatalf("reason = %q, want it to mention %q", rErr.Reason, tc.want)
			}
		})
	}
}

func TestExtractResultDetectsDisjointCycle(t *testing.T) {
	locations := []domain.Location{
		{ID: "HUB", Role: domain.RoleHub, Included: true},
		{ID: "A", Role: domain.RoleDepot, Included: true, DirectCost: 100},
		{ID: "B", Role: domain.RoleDepot, Included: true, DirectCost: 150},
		{ID: "C", Role: domain.RoleDepot, Included: true, DirectCost: 200},
	}
	g, err := domain.NewGraph(locations, symmetricEdges(map[[2]string]float64{
		{"HUB", "A"}: 20,
		{"HUB", "B"}: 25,
		{"HUB", "C"}: 10,
		{"A", "B"}:   15,
		{"A", "C"}:   12,
		{"B", "C"}:   18,
	}))
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	cfg := flatConfig(120, 1)
	m, rv, err := BuildRouteModel(g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A legal-looking walk HUB->C->HUB plus a cycle A->B->A that never
	// touches the anchors.
	sol := milp.Solution{
		Status: milp.StatusOptimal,
		Values: assignment(m,
			rv.Used[0],
			mustArc(t, rv, 0, "HUB", "C"),
			mustArc(t, rv, 0, "C", "HUB"),
			mustArc(t, rv, 0, "A", "B"),
			mustArc(t, rv, 0, "B", "A"),
		),
	}
	_, err = ExtractResult(sol, rv, g, cfg)
	var rErr *domain.ReconstructionError
	if !errors.As(err, &rErr) {
		t.Fatalf("expected ReconstructionError, got %T: %v", err, err)
	}
	if !strings.Contains(rErr.Reason, "disjoint cycle") {
		t.Fatalf("reason = %q, want disjoint cycle", rErr.Reason)
	}
}

func TestExtractResultNeedsAssignment(t *testing.T) {
	g := scenarioGraph(t, domain.Unconstrained, domain.Unconstrained)
	cfg := flatConfig(60, 1)
	_, rv, err := BuildRouteModel(g, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sol := milp.Solution{Status: milp.StatusInfeasible}
	if _, err := ExtractResult(sol, rv, g, cfg); err == nil {
		t.Fatal("expected error for infeasible status")
	}
}
