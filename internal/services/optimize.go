package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"collection-route-service/internal/domain"
	"collection-route-service/internal/milp"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
)

// OptimizeRoutes runs one synchronous optimization: normalize the config,
// build the model, compose the objective, delegate to the solving
// capability, and stitch the assignment back into a Result.
//
// A run is a pure function of (graph, config, solver); the graph and
// config are never mutated. Infeasibility is returned as InfeasibleError
// verbatim, a hit time limit as a Result flagged StatusTimeLimit carrying
// the best incumbent. The core never retries; relaxation policy belongs to
// the caller.
func OptimizeRoutes(ctx context.Context, g *domain.Graph, cfg domain.PlanConfig, solver ports.Solver) (res *domain.Result, err error) {
	defer obs.Time(ctx, "optimize_routes")(&err)
	start := time.Now()

	cfg, err = cfg.Normalize(g)
	if err != nil {
		return nil, err
	}

	model, rv, err := BuildRouteModel(g, cfg)
	if err != nil {
		return nil, err
	}
	if err := ComposeObjective(model, rv, g, cfg); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("optimize routes: %w", err)
	}
	obs.ModelSize.Observe(float64(model.NumVars()))

	sol, err := solver.Solve(ctx, model)
	if err != nil {
		// Transport or input failure in the capability, distinct from a
		// well-formed "no assignment exists" answer.
		obs.SolveRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("optimize routes: solve: %w", err)
	}

	switch sol.Status {
	case milp.StatusInfeasible:
		obs.SolveRuns.WithLabelValues("infeasible").Inc()
		return nil, &domain.InfeasibleError{
			Reason: "no assignment satisfies the fixed decisions and time budget",
		}
	case milp.StatusTimeLimit:
		if !sol.HasSolution() {
			obs.SolveRuns.WithLabelValues("timeout_empty").Inc()
			return nil, fmt.Errorf("optimize routes: time limit reached with no incumbent")
		}
	case milp.StatusOptimal:
		// fall through to extraction
	default:
		obs.SolveRuns.WithLabelValues("unknown").Inc()
		return nil, fmt.Errorf("optimize routes: solver returned status %s", sol.Status)
	}

	res, err = ExtractResult(sol, rv, g, cfg)
	if err != nil {
		obs.SolveRuns.WithLabelValues("reconstruction_error").Inc()
		return nil, err
	}
	res.RunID = uuid.NewString()

	obs.SolveRuns.WithLabelValues(string(res.Status)).Inc()
	obs.SolveDuration.Observe(time.Since(start).Seconds())
	return res, nil
}
