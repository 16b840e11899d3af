package services

import (
	"fmt"

	"collection-route-service/internal/domain"
	"collection-route-service/internal/milp"
)

// Binary variables come back as floats; anything past the midpoint counts
// as selected.
const selected = 0.5

// ExtractResult turns the solver's raw assignment into the structured
// Result: the direct-shipment list at declared costs, every used route
// re-stitched into an ordered stop sequence with cumulative time and cost,
// and the aggregate total.
//
// Path following is guarded by a visited set so a modeling inconsistency
// (a cycle, a dead end, or leftover arcs) is converted into a diagnosable
// ReconstructionError instead of looping forever or returning a corrupt
// route.
func ExtractResult(sol milp.Solution, rv *RouteVars, g *domain.Graph, cfg domain.PlanConfig) (*domain.Result, error) {
	res := &domain.Result{
		Direct: make([]domain.DirectShipment, 0),
		Routes: make([]domain.Route, 0),
	}

	switch sol.Status {
	case milp.StatusOptimal:
		res.Status = domain.StatusOptimal
	case milp.StatusTimeLimit:
		res.Status = domain.StatusTimeLimit
	default:
		return nil, fmt.Errorf("extract result: no assignment to extract (status %s)", sol.Status)
	}

	// Depots are kept sorted by the builder, so the direct list is stable.
	for _, d := range rv.Depots {
		if sol.Value(rv.Direct[d]) > selected {
			loc, _ := g.Location(d)
			res.Direct = append(res.Direct, domain.DirectShipment{LocationID: d, Cost: loc.DirectCost})
			res.TotalCost += loc.DirectCost
		}
	}

	for r := 0; r < rv.Routes; r++ {
		route, used, err := followRoute(sol, rv, g, cfg, r)
		if err != nil {
			return nil, err
		}
		if !used {
			continue
		}
		res.Routes = append(res.Routes, *route)
		res.TotalCost += route.TotalCost
	}

	return res, nil
}

// followRoute walks the selected arcs of route r from start to end.
func followRoute(sol milp.Solution, rv *RouteVars, g *domain.Graph, cfg domain.PlanConfig, r int) (*domain.Route, bool, error) {
	next := make(map[string]string)
	arcs := 0
	for id, idx := range rv.Arc {
		if id.R != r || sol.Value(idx) <= selected {
			continue
		}
		if _, dup := next[id.A]; dup {
			return nil, false, &domain.ReconstructionError{Route: r, Reason: fmt.Sprintf("location %q has two outgoing arcs", id.A)}
		}
		next[id.A] = id.B
		arcs++
	}

	if sol.Value(rv.Used[r]) <= selected {
		if arcs != 0 {
			return nil, false, &domain.ReconstructionError{Route: r, Reason: fmt.Sprintf("%d arcs selected on an unused route", arcs)}
		}
		return nil, false, nil
	}

	route := &domain.Route{Stops: make([]domain.RouteStop, 0, arcs)}
	visited := map[string]struct{}{rv.Start: {}}
	current := rv.Start
	walked := 0

	for {
		to, ok := next[current]
		if !ok {
			return nil, false, &domain.ReconstructionError{Route: r, Reason: fmt.Sprintf("path ends at %q before reaching %q", current, rv.End)}
		}

		minutes, ok := g.Time(current, to)
		if !ok {
			return nil, false, &domain.ReconstructionError{Route: r, Reason: fmt.Sprintf("no drive time for selected arc %s->%s", current, to)}
		}
		cost, ok := cfg.ArcCost(g, current, to)
		if !ok {
			return nil, false, &domain.ReconstructionError{Route: r, Reason: fmt.Sprintf("no cost for selected arc %s->%s", current, to)}
		}

		route.TotalMinutes += minutes
		route.TotalCost += cost
		route.Stops = append(route.Stops, domain.RouteStop{
			LocationID: to,
			Minutes:    route.TotalMinutes,
			Cost:       route.TotalCost,
		})
		walked++

		if to == rv.End {
			break
		}
		if _, seen := visited[to]; seen {
			return nil, false, &domain.ReconstructionError{Route: r, Reason: fmt.Sprintf("location %q visited twice", to)}
		}
		visited[to] = struct{}{}
		current = to
	}

	// Every selected arc must lie on the walked path; anything left over is
	// a disjoint cycle the position constraints should have excluded.
	if walked != arcs {
		return nil, false, &domain.ReconstructionError{
			Route:  r,
			Reason: fmt.Sprintf("%d of %d selected arcs form the path, remainder is a disjoint cycle", walked, arcs),
		}
	}

	return route, true, nil
}
