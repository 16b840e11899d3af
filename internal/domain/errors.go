package domain

import "fmt"

// ValidationError reports a malformed or incomplete graph/config.
// It is raised before solving and names the first violation found.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InfeasibleError reports that the fixed decisions or the time budget admit
// no assignment. Relaxing parameters is a caller decision, never an
// automatic retry.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	return "infeasible model: " + e.Reason
}

// ReconstructionError reports an internal invariant violation while
// stitching routes from the solver's arc selection. It always indicates a
// modeling defect, not a user error.
type ReconstructionError struct {
	Route  int
	Reason string
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("route reconstruction: route %d: %s", e.Route, e.Reason)
}
