package domain

import "fmt"

// CostModel selects how route legs are priced.
type CostModel int

const (
	// CostModelFlat prices every driven minute at a flat rate.
	CostModelFlat CostModel = iota
	// CostModelItemized prices gas per mile plus staff time per hour.
	CostModelItemized
)

func (m CostModel) String() string {
	if m == CostModelItemized {
		return "itemized"
	}
	return "flat"
}

// PlanConfig is the read-only configuration surface for a single run.
// Start/End default to the hub when left empty.
type PlanConfig struct {
	MaxDriveMinutes   float64
	MaxRoutes         int
	CostModel         CostModel
	FlatCostPerMinute float64
	GasCostPerMile    float64
	StaffCostPerHour  float64
	StartID           string
	EndID             string
}

// Normalize resolves defaulted fields against the graph and validates the
// configuration. It returns a copy so the caller's config stays immutable.
func (c PlanConfig) Normalize(g *Graph) (PlanConfig, error) {
	if c.MaxDriveMinutes < 0 {
		return c, &ValidationError{Field: "max_drive_minutes", Reason: "must be non-negative"}
	}
	if c.MaxRoutes < 1 {
		return c, &ValidationError{Field: "max_routes", Reason: "must be at least 1"}
	}

	switch c.CostModel {
	case CostModelFlat:
		if c.FlatCostPerMinute < 0 {
			return c, &ValidationError{Field: "flat_cost_per_minute", Reason: "must be non-negative"}
		}
	case CostModelItemized:
		if c.GasCostPerMile < 0 {
			return c, &ValidationError{Field: "gas_cost_per_mile", Reason: "must be non-negative"}
		}
		if c.StaffCostPerHour < 0 {
			return c, &ValidationError{Field: "staff_cost_per_hour", Reason: "must be non-negative"}
		}
	default:
		return c, &ValidationError{Field: "cost_model", Reason: fmt.Sprintf("unknown model %d", c.CostModel)}
	}

	if c.StartID == "" {
		c.StartID = g.Hub()
	}
	if c.EndID == "" {
		c.EndID = g.Hub()
	}
	if _, ok := g.Location(c.StartID); !ok {
		return c, &ValidationError{Field: "start", Reason: fmt.Sprintf("unknown location %q", c.StartID)}
	}
	if _, ok := g.Location(c.EndID); !ok {
		return c, &ValidationError{Field: "end", Reason: fmt.Sprintf("unknown location %q", c.EndID)}
	}

	return c, nil
}

// ArcCost prices a single leg from a to b under the configured cost model.
// Itemized pricing needs a recorded distance for the pair; the second
// return is false when it is missing.
func (c PlanConfig) ArcCost(g *Graph, a, b string) (float64, bool) {
	minutes, ok := g.Time(a, b)
	if !ok {
		return 0, false
	}

	switch c.CostModel {
	case CostModelItemized:
		miles, ok := g.Distance(a, b)
		if !ok {
			return 0, false
		}
		return c.GasCostPerMile*miles + c.StaffCostPerHour*minutes/60, true
	default:
		return c.FlatCostPerMinute * minutes, true
	}
}
