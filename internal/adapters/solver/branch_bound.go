package solver

import (
	"context"
	"time"

	"collection-route-service/internal/milp"
)

// BranchBound is an in-process exact solver for the small integer models
// this service builds.
//
// It runs a depth-first search over the variables in declaration order
// with incremental interval pruning on every constraint, an admissible
// objective lower bound, and a soft wall-clock limit checked sparsely.
// Branching is fully deterministic (index order, ascending values), so
// equal-cost optima always resolve the same way and re-solving a scenario
// reproduces the same assignment.
//
// Production deployments can swap in an external MILP engine behind the
// same port; this adapter exists so the service is self-contained and the
// test suite needs no native solver.
type BranchBound struct {
	timeLimit time.Duration
}

// NewBranchBound returns a solver with the given wall-clock limit.
// A zero limit means no limit beyond the context's.
func NewBranchBound(timeLimit time.Duration) *BranchBound {
	return &BranchBound{timeLimit: timeLimit}
}

const (
	eps = 1e-6
	// Deadline checks are rare so the hot path stays branch-light.
	deadlineCheckMask = 1023
)

// conState tracks one constraint's interval under the current partial
// assignment: the sum over fixed variables plus the tightest and loosest
// sums still reachable from the unfixed ones.
type conState struct {
	sense   milp.Sense
	rhs     float64
	fixed   float64
	minRest float64
	maxRest float64
}

// varCon links a variable to one constraint it appears in.
type varCon struct {
	con   int
	coeff float64
	// Contribution bounds of this variable over its domain.
	minC float64
	maxC float64
}

type bbEngine struct {
	model *milp.Model
	cons  []conState
	byVar [][]varCon

	objMin   []float64 // per-variable minimal objective contribution
	objFixed float64
	objRest  float64 // sum of objMin over unfixed vars

	value []int

	best     []float64
	bestObj  float64
	found    bool
	steps    int
	deadline time.Time
	hasDL    bool
	ctx      context.Context
	timedOut bool
}

// Solve runs the search. Infeasibility and time limits are reported in the
// solution status; the error return is reserved for malformed input and
// context cancellation.
func (s *BranchBound) Solve(ctx context.Context, m *milp.Model) (milp.Solution, error) {
	if err := m.Validate(); err != nil {
		return milp.Solution{}, err
	}

	e := &bbEngine{
		model:  m,
		cons:   make([]conState, len(m.Constraints)),
		byVar:  make([][]varCon, len(m.Vars)),
		objMin: make([]float64, len(m.Vars)),
		value:  make([]int, len(m.Vars)),
		ctx:    ctx,
	}

	if s.timeLimit > 0 {
		e.deadline = time.Now().Add(s.timeLimit)
		e.hasDL = true
	}
	if dl, ok := ctx.Deadline(); ok && (!e.hasDL || dl.Before(e.deadline)) {
		e.deadline = dl
		e.hasDL = true
	}

	for ci, c := range m.Constraints {
		st := conState{sense: c.Sense, rhs: c.RHS}
		for _, t := range c.Terms {
			v := m.Vars[t.Var]
			lo := t.Coeff * float64(v.Lb)
			hi := t.Coeff * float64(v.Ub)
			if lo > hi {
				lo, hi = hi, lo
			}
			st.minRest += lo
			st.maxRest += hi
			e.byVar[t.Var] = append(e.byVar[t.Var], varCon{con: ci, coeff: t.Coeff, minC: lo, maxC: hi})
		}
		e.cons[ci] = st
	}
	for i, v := range m.Vars {
		lo := m.Objective[i] * float64(v.Lb)
		if hi := m.Objective[i] * float64(v.Ub); hi < lo {
			lo = hi
		}
		e.objMin[i] = lo
		e.objRest += lo
	}

	// Root feasibility: an interval already violated cannot be repaired by
	// any assignment.
	feasible := true
	for ci := range e.cons {
		if !e.feasibleInterval(ci) {
			feasible = false
			break
		}
	}
	if feasible {
		e.search(0)
	}

	if e.timedOut && ctx.Err() != nil && !e.pastDeadline() {
		// Stopped by cancellation, not by the wall clock.
		return milp.Solution{}, ctx.Err()
	}

	sol := milp.Solution{}
	switch {
	case e.timedOut:
		sol.Status = milp.StatusTimeLimit
	case e.found:
		sol.Status = milp.StatusOptimal
	default:
		sol.Status = milp.StatusInfeasible
	}
	if e.found {
		sol.Values = e.best
		sol.Objective = e.bestObj
	}
	return sol, nil
}

func (e *bbEngine) pastDeadline() bool {
	return e.hasDL && !time.Now().Before(e.deadline)
}

func (e *bbEngine) feasibleInterval(ci int) bool {
	st := &e.cons[ci]
	lo := st.fixed + st.minRest
	hi := st.fixed + st.maxRest
	switch st.sense {
	case milp.LessEqual:
		return lo <= st.rhs+eps
	case milp.GreaterEqual:
		return hi >= st.rhs-eps
	default:
		return lo <= st.rhs+eps && hi >= st.rhs-eps
	}
}

func (e *bbEngine) assign(i, v int) bool {
	e.value[i] = v
	ok := true
	for _, vc := range e.byVar[i] {
		st := &e.cons[vc.con]
		st.fixed += vc.coeff * float64(v)
		st.minRest -= vc.minC
		st.maxRest -= vc.maxC
	}
	for _, vc := range e.byVar[i] {
		if !e.feasibleInterval(vc.con) {
			ok = false
			break
		}
	}
	e.objFixed += e.model.Objective[i] * float64(v)
	e.objRest -= e.objMin[i]
	return ok
}

func (e *bbEngine) unassign(i, v int) {
	for _, vc := range e.byVar[i] {
		st := &e.cons[vc.con]
		st.fixed -= vc.coeff * float64(v)
		st.minRest += vc.minC
		st.maxRest += vc.maxC
	}
	e.objFixed -= e.model.Objective[i] * float64(v)
	e.objRest += e.objMin[i]
}

func (e *bbEngine) search(depth int) {
	if e.timedOut {
		return
	}
	e.steps++
	if e.steps&deadlineCheckMask == 0 {
		if e.pastDeadline() || e.ctx.Err() != nil {
			e.timedOut = true
			return
		}
	}

	if depth == len(e.model.Vars) {
		// All intervals collapsed to points and stayed feasible on the way
		// down, so this is a feasible assignment.
		obj := e.objFixed
		if !e.found || obj < e.bestObj-eps {
			e.best = make([]float64, len(e.value))
			for i, v := range e.value {
				e.best[i] = float64(v)
			}
			e.bestObj = obj
			e.found = true
		}
		return
	}

	v := e.model.Vars[depth]
	for val := v.Lb; val <= v.Ub; val++ {
		ok := e.assign(depth, val)
		if ok {
			// Admissible bound: fixed cost plus each unfixed variable's
			// cheapest contribution. Prune once it cannot beat the incumbent.
			if !e.found || e.objFixed+e.objRest < e.bestObj-eps {
				e.search(depth + 1)
			}
		}
		e.unassign(depth, val)
		if e.timedOut {
			return
		}
	}
}
