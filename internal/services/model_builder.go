package services

import (
	"fmt"
	"slices"

	"collection-route-service/internal/domain"
	"collection-route-service/internal/milp"
)

// arcID identifies one arc-selected variable: route r drives from A to B.
type arcID struct {
	R    int
	A, B string
}

// posID identifies the sequencing position of a depot within a route.
type posID struct {
	R  int
	ID string
}

// RouteVars maps the routing decisions onto model variable indices.
// The solution extractor reads the solver's assignment back through it.
type RouteVars struct {
	Start  string
	End    string
	Depots []string
	Routes int

	Direct map[string]int
	Arc    map[arcID]int
	Pos    map[posID]int
	Used   []int
}

// ArcIndex returns the variable index of arc (a->b) on route r.
func (v *RouteVars) ArcIndex(r int, a, b string) (int, bool) {
	idx, ok := v.Arc[arcID{R: r, A: a, B: b}]
	return idx, ok
}

// BuildRouteModel turns a validated graph and a normalized config into the
// mixed-integer routing model.
//
// Per included depot it introduces a binary direct-ship variable; per route
// and ordered location pair a binary arc-selected variable; per route a
// binary route-used indicator; and per depot per route an integer position
// variable for MTZ subtour elimination. The linear-size sequencing
// formulation trades tighter bounds for polynomial size, which is
// acceptable at the depot counts this system targets.
//
// Fixed decisions become equality rows, never variable deletions, so a
// conflicting override surfaces as solver infeasibility instead of being
// silently dropped. A fixed decision on a location outside the active
// graph is rejected here as InfeasibleError.
func BuildRouteModel(g *domain.Graph, cfg domain.PlanConfig) (*milp.Model, *RouteVars, error) {
	depots := make([]string, 0)
	for _, loc := range g.Locations() {
		if loc.Role != domain.RoleDepot || loc.ID == cfg.StartID || loc.ID == cfg.EndID {
			continue
		}
		if !loc.Included {
			// Overrides on excluded locations cannot be honored, and the
			// model never drops a fix silently.
			if loc.Fixed != domain.Unconstrained {
				return nil, nil, &domain.InfeasibleError{
					Reason: fmt.Sprintf("location %q is fixed to %s but not included", loc.ID, loc.Fixed),
				}
			}
			continue
		}
		depots = append(depots, loc.ID)
	}
	slices.Sort(depots)

	for _, id := range []string{cfg.StartID, cfg.EndID} {
		loc, _ := g.Location(id)
		if loc.Fixed != domain.Unconstrained {
			return nil, nil, &domain.InfeasibleError{
				Reason: fmt.Sprintf("route anchor %q cannot be fixed to %s", id, loc.Fixed),
			}
		}
	}

	// The builder needs the full ordered-pair matrix over every location a
	// route may touch.
	ids := append([]string{cfg.StartID}, depots...)
	if cfg.EndID != cfg.StartID {
		ids = append(ids, cfg.EndID)
	}
	if err := g.EnsurePairs(ids); err != nil {
		return nil, nil, err
	}

	rv := &RouteVars{
		Start:  cfg.StartID,
		End:    cfg.EndID,
		Depots: depots,
		Routes: cfg.MaxRoutes,
		Direct: make(map[string]int, len(depots)),
		Arc:    make(map[arcID]int),
		Pos:    make(map[posID]int),
		Used:   make([]int, cfg.MaxRoutes),
	}
	m := milp.NewModel()

	for _, d := range depots {
		rv.Direct[d] = m.AddBinary("direct[" + d + "]")
	}
	for r := 0; r < cfg.MaxRoutes; r++ {
		rv.Used[r] = m.AddBinary(fmt.Sprintf("used[%d]", r))
	}
	for r := 0; r < cfg.MaxRoutes; r++ {
		for _, a := range ids {
			for _, b := range ids {
				if a == b {
					continue
				}
				// With distinct anchors a route never re-enters the start
				// or leaves the end.
				if cfg.StartID != cfg.EndID && (b == cfg.StartID || a == cfg.EndID) {
					continue
				}
				rv.Arc[arcID{R: r, A: a, B: b}] = m.AddBinary(fmt.Sprintf("arc[%d,%s->%s]", r, a, b))
			}
		}
	}
	n := len(depots)
	for r := 0; r < cfg.MaxRoutes; r++ {
		for _, d := range depots {
			rv.Pos[posID{R: r, ID: d}] = m.AddInteger(fmt.Sprintf("pos[%d,%s]", r, d), 1, n)
		}
	}

	// Coverage: each depot ships direct or is entered by exactly one route.
	for _, d := range depots {
		terms := []milp.Term{{Var: rv.Direct[d], Coeff: 1}}
		for r := 0; r < cfg.MaxRoutes; r++ {
			for _, a := range ids {
				if idx, ok := rv.ArcIndex(r, a, d); ok {
					terms = append(terms, milp.Term{Var: idx, Coeff: 1})
				}
			}
		}
		m.AddConstraint("cover["+d+"]", terms, milp.Equal, 1)
	}

	// Degree balance per depot per route: leave what you enter, at most once.
	for r := 0; r < cfg.MaxRoutes; r++ {
		for _, d := range depots {
			balance := make([]milp.Term, 0, 2*len(ids))
			indeg := make([]milp.Term, 0, len(ids))
			for _, o := range ids {
				if idx, ok := rv.ArcIndex(r, d, o); ok {
					balance = append(balance, milp.Term{Var: idx, Coeff: 1})
				}
				if idx, ok := rv.ArcIndex(r, o, d); ok {
					balance = append(balance, milp.Term{Var: idx, Coeff: -1})
					indeg = append(indeg, milp.Term{Var: idx, Coeff: 1})
				}
			}
			m.AddConstraint(fmt.Sprintf("balance[%d,%s]", r, d), balance, milp.Equal, 0)
			m.AddConstraint(fmt.Sprintf("indeg[%d,%s]", r, d), indeg, milp.LessEqual, 1)
		}
	}

	// Start/end anchoring: a used route leaves the start once and reaches
	// the end once. Degenerates to a closed tour when start == end.
	for r := 0; r < cfg.MaxRoutes; r++ {
		out := []milp.Term{{Var: rv.Used[r], Coeff: -1}}
		in := []milp.Term{{Var: rv.Used[r], Coeff: -1}}
		for _, o := range ids {
			if idx, ok := rv.ArcIndex(r, cfg.StartID, o); ok {
				out = append(out, milp.Term{Var: idx, Coeff: 1})
			}
			if idx, ok := rv.ArcIndex(r, o, cfg.EndID); ok {
				in = append(in, milp.Term{Var: idx, Coeff: 1})
			}
		}
		m.AddConstraint(fmt.Sprintf("anchor_out[%d]", r), out, milp.Equal, 0)
		m.AddConstraint(fmt.Sprintf("anchor_in[%d]", r), in, milp.Equal, 0)
	}

	// Time budget per route.
	for r := 0; r < cfg.MaxRoutes; r++ {
		terms := make([]milp.Term, 0, len(rv.Arc)/cfg.MaxRoutes)
		for _, a := range ids {
			for _, b := range ids {
				idx, ok := rv.ArcIndex(r, a, b)
				if !ok {
					continue
				}
				minutes, ok := g.Time(a, b)
				if !ok {
					return nil, nil, &domain.ValidationError{
						Field:  fmt.Sprintf("edge %s->%s", a, b),
						Reason: "drive time missing for required pair",
					}
				}
				terms = append(terms, milp.Term{Var: idx, Coeff: minutes})
			}
		}
		m.AddConstraint(fmt.Sprintf("budget[%d]", r), terms, milp.LessEqual, cfg.MaxDriveMinutes)
	}

	// MTZ subtour elimination: selecting depot arc a->b forces b's position
	// past a's, so a cycle disconnected from the anchors cannot close.
	// Arcs into the end point are exempt.
	for r := 0; r < cfg.MaxRoutes; r++ {
		for _, a := range depots {
			for _, b := range depots {
				if a == b {
					continue
				}
				idx, ok := rv.ArcIndex(r, a, b)
				if !ok {
					continue
				}
				terms := []milp.Term{
					{Var: rv.Pos[posID{R: r, ID: a}], Coeff: 1},
					{Var: rv.Pos[posID{R: r, ID: b}], Coeff: -1},
					{Var: idx, Coeff: float64(n)},
				}
				m.AddConstraint(fmt.Sprintf("seq[%d,%s->%s]", r, a, b), terms, milp.LessEqual, float64(n-1))
			}
		}
	}

	// Fixed decisions, as equality rows.
	for _, d := range depots {
		loc, _ := g.Location(d)
		switch loc.Fixed {
		case domain.ForceDirect:
			m.AddConstraint("fix_direct["+d+"]",
				[]milp.Term{{Var: rv.Direct[d], Coeff: 1}}, milp.Equal, 1)
			touching := make([]milp.Term, 0)
			for r := 0; r < cfg.MaxRoutes; r++ {
				for _, o := range ids {
					if idx, ok := rv.ArcIndex(r, d, o); ok {
						touching = append(touching, milp.Term{Var: idx, Coeff: 1})
					}
					if idx, ok := rv.ArcIndex(r, o, d); ok {
						touching = append(touching, milp.Term{Var: idx, Coeff: 1})
					}
				}
			}
			m.AddConstraint("fix_no_arcs["+d+"]", touching, milp.Equal, 0)
		case domain.ForceRoute:
			m.AddConstraint("fix_route["+d+"]",
				[]milp.Term{{Var: rv.Direct[d], Coeff: 1}}, milp.Equal, 0)
		}
	}

	// Route-count cap. Redundant when a single route is all there is.
	if cfg.MaxRoutes > 1 {
		terms := make([]milp.Term, 0, cfg.MaxRoutes)
		for r := 0; r < cfg.MaxRoutes; r++ {
			terms = append(terms, milp.Term{Var: rv.Used[r], Coeff: 1})
		}
		m.AddConstraint("route_cap", terms, milp.LessEqual, float64(cfg.MaxRoutes))
	}

	return m, rv, nil
}
