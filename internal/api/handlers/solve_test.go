package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"collection-route-service/internal/adapters/solver"
	"collection-route-service/internal/api/dto"
	"collection-route-service/internal/domain"
)

// stubRepo serves a fixed scenario.
type stubRepo struct {
	locations []domain.Location
	edges     []domain.Edge
	err       error
}

func (s *stubRepo) LoadScenario(ctx context.Context) ([]domain.Location, []domain.Edge, error) {
	return s.locations, s.edges, s.err
}

func (s *stubRepo) ReplaceScenario(ctx context.Context, locations []domain.Location, edges []domain.Edge) error {
	s.locations, s.edges = locations, edges
	return nil
}

// memoryCache is an in-process ResultCache for handler tests.
type memoryCache struct {
	entries map[string]*domain.Result
	puts    int
}

func (c *memoryCache) Get(ctx context.Context, key string) (*domain.Result, bool, error) {
	res, ok := c.entries[key]
	return res, ok, nil
}

func (c *memoryCache) Put(ctx context.Context, key string, res *domain.Result) error {
	if c.entries == nil {
		c.entries = make(map[string]*domain.Result)
	}
	c.entries[key] = res
	c.puts++
	return nil
}

func scenarioRepo() *stubRepo {
	mi := func(v float64) *float64 { return &v }
	return &stubRepo{
		locations: []domain.Location{
			{ID: "HUB", Role: domain.RoleHub, Included: true},
			{ID: "A", Role: domain.RoleDepot, Included: true, DirectCost: 100},
			{ID: "B", Role: domain.RoleDepot, Included: true, DirectCost: 150},
		},
		edges: []domain.Edge{
			{From: "HUB", To: "A", Minutes: 20, Miles: mi(12)},
			{From: "A", To: "HUB", Minutes: 20, Miles: mi(12)},
			{From: "HUB", To: "B", Minutes: 25, Miles: mi(15)},
			{From: "B", To: "HUB", Minutes: 25, Miles: mi(15)},
			{From: "A", To: "B", Minutes: 15, Miles: mi(9)},
			{From: "B", To: "A", Minutes: 15, Miles: mi(9)},
		},
	}
}

func solveHandler(repo *stubRepo, cache *memoryCache) *SolveHandler {
	h := &SolveHandler{Repo: repo, Solver: solver.NewBranchBound(0)}
	if cache != nil {
		h.Cache = cache
	}
	return h
}

func postSolve(t *testing.T, h *SolveHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/solve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Solve(rec, req)
	return rec
}

func decodeSolve(t *testing.T, rec *httptest.ResponseRecorder) dto.SolveResponse {
	t.Helper()
	var resp dto.SolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestSolveEndpoint(t *testing.T) {
	h := solveHandler(scenarioRepo(), nil)
	rec := postSolve(t, h, `{"max_drive_minutes": 60, "flat_cost_per_minute": 2}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	resp := decodeSolve(t, rec)
	if resp.Status != "optimal" {
		t.Fatalf("status = %q, want optimal", resp.Status)
	}
	if resp.RunID == "" {
		t.Fatal("run_id is empty")
	}
	if len(resp.Routes) != 1 || len(resp.Direct) != 0 {
		t.Fatalf("routes/direct = %d/%d, want 1/0", len(resp.Routes), len(resp.Direct))
	}
	if math.Abs(resp.TotalCost-120) > 1e-9 {
		t.Fatalf("total cost = %v, want 120", resp.TotalCost)
	}
	if resp.Cached {
		t.Fatal("first run must not be flagged cached")
	}
}

func TestSolveEndpointOverrides(t *testing.T) {
	h := solveHandler(scenarioRepo(), nil)
	rec := postSolve(t, h, `{
		"max_drive_minutes": 60,
		"flat_cost_per_minute": 2,
		"overrides": [{"location_id": "A", "fixed": "force-direct"}]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	resp := decodeSolve(t, rec)
	if len(resp.Direct) != 1 || resp.Direct[0].LocationID != "A" {
		t.Fatalf("direct = %+v, want [A]", resp.Direct)
	}
}

func TestSolveEndpointCaches(t *testing.T) {
	cache := &memoryCache{}
	h := solveHandler(scenarioRepo(), cache)
	body := `{"max_drive_minutes": 60, "flat_cost_per_minute": 2}`

	first := decodeSolve(t, postSolve(t, h, body))
	if first.Cached {
		t.Fatal("first run flagged cached")
	}
	if cache.puts != 1 {
		t.Fatalf("cache puts = %d, want 1", cache.puts)
	}

	second := decodeSolve(t, postSolve(t, h, body))
	if !second.Cached {
		t.Fatal("second identical run should come from the cache")
	}
	if second.RunID != first.RunID {
		t.Fatalf("cached run id = %q, want %q", second.RunID, first.RunID)
	}
	if cache.puts != 1 {
		t.Fatalf("cache puts = %d after hit, want 1", cache.puts)
	}
}

func TestSolveEndpointRejectsBadRequests(t *testing.T) {
	h := solveHandler(scenarioRepo(), nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"max_drive_minutes":`},
		{"unknown field", `{"max_drive_minutes": 60, "budget": 1}`},
		{"trailing object", `{"max_drive_minutes": 60}{"again": true}`},
		{"bad cost model", `{"max_drive_minutes": 60, "cost_model": "hourly"}`},
		{"unknown override", `{"max_drive_minutes": 60, "overrides": [{"location_id": "Z"}]}`},
		{"bad fixed value", `{"max_drive_minutes": 60, "overrides": [{"location_id": "A", "fixed": "maybe"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSolve(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSolveEndpointInfeasible(t *testing.T) {
	h := solveHandler(scenarioRepo(), nil)
	// forcing a depot onto a route that cannot fit the budget
	rec := postSolve(t, h, `{
		"max_drive_minutes": 10,
		"flat_cost_per_minute": 2,
		"overrides": [{"location_id": "A", "fixed": "force-route"}]
	}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestSolveEndpointMethodNotAllowed(t *testing.T) {
	h := solveHandler(scenarioRepo(), nil)
	req := httptest.NewRequest(http.MethodGet, "/solve", nil)
	rec := httptest.NewRecorder()
	h.Solve(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("Allow = %q, want POST", rec.Header().Get("Allow"))
	}
}

func TestSolveEndpointRepositoryFailure(t *testing.T) {
	h := solveHandler(&stubRepo{err: errors.New("disk gone")}, nil)
	rec := postSolve(t, h, `{"max_drive_minutes": 60}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
