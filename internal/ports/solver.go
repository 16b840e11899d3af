package ports

import (
	"context"

	"collection-route-service/internal/milp"
)

// Port: a boundary for the MILP-solving capability.
//
// The core is agnostic to search strategy. Implementations must report
// infeasibility and time limits through the solution status (not an error),
// return the best incumbent when a wall-clock limit is hit, and reserve the
// error return for transport or input failures.
type Solver interface {
	// Solve the model to optimality or to the adapter's time limit.
	Solve(ctx context.Context, m *milp.Model) (milp.Solution, error)
}
