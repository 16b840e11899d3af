package domain

import (
	"errors"
	"testing"
)

func miles(v float64) *float64 { return &v }

func validLocations() []Location {
	return []Location{
		{ID: "HUB", Role: RoleHub, Included: true},
		{ID: "A", Role: RoleDepot, Included: true, DirectCost: 100},
		{ID: "B", Role: RoleDepot, Included: true, DirectCost: 150},
	}
}

func validEdges() []Edge {
	return []Edge{
		{From: "HUB", To: "A", Minutes: 20, Miles: miles(12)},
		{From: "A", To: "HUB", Minutes: 20, Miles: miles(12)},
		{From: "HUB", To: "B", Minutes: 25, Miles: miles(15)},
		{From: "B", To: "HUB", Minutes: 25, Miles: miles(15)},
		{From: "A", To: "B", Minutes: 15, Miles: miles(9)},
		{From: "B", To: "A", Minutes: 15, Miles: miles(9)},
	}
}

func TestNewGraphLookups(t *testing.T) {
	g, err := NewGraph(validLocations(), validEdges())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Hub() != "HUB" {
		t.Fatalf("hub = %q, want HUB", g.Hub())
	}

	minutes, ok := g.Time("A", "B")
	if !ok || minutes != 15 {
		t.Fatalf("time A->B = %v (ok=%v), want 15", minutes, ok)
	}

	dist, ok := g.Distance("HUB", "B")
	if !ok || dist != 15 {
		t.Fatalf("distance HUB->B = %v (ok=%v), want 15", dist, ok)
	}

	if _, ok := g.Time("A", "Z"); ok {
		t.Fatal("expected missing pair A->Z")
	}
}

func TestNewGraphValidation(t *testing.T) {
	cases := []struct {
		name      string
		locations []Location
		edges     []Edge
	}{
		{
			name: "duplicate id",
			locations: append(validLocations(),
				Location{ID: "A", Role: RoleDepot, Included: true}),
			edges: validEdges(),
		},
		{
			name: "no hub",
			locations: []Location{
				{ID: "A", Role: RoleDepot, Included: true},
			},
			edges: nil,
		},
		{
			name: "two hubs",
			locations: append(validLocations(),
				Location{ID: "HUB2", Role: RoleHub, Included: true}),
			edges: validEdges(),
		},
		{
			name:      "unknown edge endpoint",
			locations: validLocations(),
			edges:     []Edge{{From: "HUB", To: "Z", Minutes: 5}},
		},
		{
			name:      "negative drive time",
			locations: validLocations(),
			edges:     []Edge{{From: "HUB", To: "A", Minutes: -1}},
		},
		{
			name:      "negative distance",
			locations: validLocations(),
			edges:     []Edge{{From: "HUB", To: "A", Minutes: 5, Miles: miles(-2)}},
		},
		{
			name:      "self loop",
			locations: validLocations(),
			edges:     []Edge{{From: "A", To: "A", Minutes: 5}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGraph(tc.locations, tc.edges)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestEnsurePairs(t *testing.T) {
	g, err := NewGraph(validLocations(), validEdges())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := g.EnsurePairs([]string{"HUB", "A", "B"}); err != nil {
		t.Fatalf("complete matrix rejected: %v", err)
	}

	edges := validEdges()[:5] // drop B->A
	g2, err := NewGraph(validLocations(), edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = g2.EnsurePairs([]string{"HUB", "A", "B"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if vErr.Field != "edge B->A" {
		t.Fatalf("violation names %q, want edge B->A", vErr.Field)
	}
}
