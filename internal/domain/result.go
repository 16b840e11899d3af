package domain

// SolverStatus reflects how the solving capability terminated.
type SolverStatus string

const (
	// StatusOptimal means the returned assignment is proven optimal.
	StatusOptimal SolverStatus = "optimal"
	// StatusTimeLimit means the wall-clock limit was hit and the result is
	// the best incumbent found so far, possibly suboptimal.
	StatusTimeLimit SolverStatus = "time_limit"
)

// A depot that arranges its own delivery at its declared cost.
type DirectShipment struct {
	LocationID string
	Cost       float64
}

// Represents a single stop in a reconstructed route.
// Minutes and Cost are cumulative from the route start.
type RouteStop struct {
	LocationID string
	Minutes    float64
	Cost       float64
}

// Represents one collection run: the ordered locations visited after the
// start, ending at the configured end location.
type Route struct {
	Stops        []RouteStop
	TotalMinutes float64
	TotalCost    float64
}

// Result is the structured outcome of a single optimization run.
// It is produced once per run and is thereafter immutable.
type Result struct {
	RunID     string
	Direct    []DirectShipment
	Routes    []Route
	TotalCost float64
	Status    SolverStatus
}
