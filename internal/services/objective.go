package services

import (
	"fmt"

	"collection-route-service/internal/domain"
	"collection-route-service/internal/milp"
)

// ComposeObjective fills in the model's cost coefficients from the config
// and graph. It is a pure function of its inputs: direct-ship variables
// cost the depot's declared direct cost, arc variables the configured leg
// price (flat per driven minute, or gas per mile plus staff per hour).
// Indicator and position variables carry no cost.
//
// The itemized model needs a distance for every required pair; a missing
// one is reported as ValidationError before solving.
func ComposeObjective(m *milp.Model, rv *RouteVars, g *domain.Graph, cfg domain.PlanConfig) error {
	for _, d := range rv.Depots {
		loc, ok := g.Location(d)
		if !ok {
			return fmt.Errorf("compose objective: depot %q not in graph", d)
		}
		m.SetObjective(rv.Direct[d], loc.DirectCost)
	}

	for id, idx := range rv.Arc {
		cost, ok := cfg.ArcCost(g, id.A, id.B)
		if !ok {
			return &domain.ValidationError{
				Field:  fmt.Sprintf("edge %s->%s", id.A, id.B),
				Reason: fmt.Sprintf("distance missing for %s cost model", cfg.CostModel),
			}
		}
		m.SetObjective(idx, cost)
	}

	return nil
}
