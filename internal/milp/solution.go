package milp

// Status indicates the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusTimeLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeLimit:
		return "time_limit"
	default:
		return "unknown"
	}
}

// Solution contains the results from solving a model.
type Solution struct {
	// Status indicates how the solve terminated.
	Status Status `json:"status"`

	// Values contains one assignment per variable, aligned by index.
	// Empty when no feasible assignment was found.
	Values []float64 `json:"values"`

	// Objective is the objective value at the returned assignment.
	Objective float64 `json:"objective"`
}

// IsOptimal returns true if the assignment is proven optimal.
func (s *Solution) IsOptimal() bool { return s.Status == StatusOptimal }

// IsTimeLimit returns true if the solve stopped on its wall-clock limit.
func (s *Solution) IsTimeLimit() bool { return s.Status == StatusTimeLimit }

// HasSolution returns true if the solution carries a feasible assignment.
// A time-limited solve may terminate with or without an incumbent.
func (s *Solution) HasSolution() bool { return len(s.Values) > 0 }

// Value returns the assignment of a variable by index, 0 if out of range.
func (s *Solution) Value(index int) float64 {
	if index < 0 || index >= len(s.Values) {
		return 0
	}
	return s.Values[index]
}
