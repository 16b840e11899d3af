// Package milp holds a solver-agnostic integer programming model.
//
// The route optimizer only ever produces binary and bounded-integer
// variables with linear constraints, so the model is deliberately small:
// enough surface for an in-process solver or a remote solving service,
// without committing to any engine's native API.
package milp

import "fmt"

// VarType distinguishes 0/1 variables from general bounded integers.
type VarType int

const (
	Binary VarType = iota
	Integer
)

// A single decision variable with inclusive integer bounds.
type Var struct {
	Name string  `json:"name"`
	Type VarType `json:"type"`
	Lb   int     `json:"lb"`
	Ub   int     `json:"ub"`
}

// Sense of a linear constraint row.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return "<="
	}
}

// One coefficient entry of a constraint row.
type Term struct {
	Var   int     `json:"var"`
	Coeff float64 `json:"coeff"`
}

// A linear constraint: sum(terms) <sense> rhs.
type Constraint struct {
	Name  string  `json:"name"`
	Terms []Term  `json:"terms"`
	Sense Sense   `json:"sense"`
	RHS   float64 `json:"rhs"`
}

// Model is a minimization problem over integer variables.
// Objective holds one coefficient per variable, aligned by index.
type Model struct {
	Vars        []Var        `json:"vars"`
	Constraints []Constraint `json:"constraints"`
	Objective   []float64    `json:"objective"`
}

func NewModel() *Model {
	return &Model{}
}

// AddBinary appends a 0/1 variable and returns its index.
func (m *Model) AddBinary(name string) int {
	m.Vars = append(m.Vars, Var{Name: name, Type: Binary, Lb: 0, Ub: 1})
	m.Objective = append(m.Objective, 0)
	return len(m.Vars) - 1
}

// AddInteger appends a bounded integer variable and returns its index.
func (m *Model) AddInteger(name string, lb, ub int) int {
	m.Vars = append(m.Vars, Var{Name: name, Type: Integer, Lb: lb, Ub: ub})
	m.Objective = append(m.Objective, 0)
	return len(m.Vars) - 1
}

// AddConstraint appends a linear row.
func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// SetObjective assigns the objective coefficient of a variable.
func (m *Model) SetObjective(v int, coeff float64) {
	m.Objective[v] = coeff
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.Vars) }

// Validate checks internal index consistency. A failure here is a
// construction defect in the caller, never solver input trouble.
func (m *Model) Validate() error {
	if len(m.Objective) != len(m.Vars) {
		return fmt.Errorf("milp model: objective has %d coefficients for %d vars", len(m.Objective), len(m.Vars))
	}
	for i, v := range m.Vars {
		if v.Lb > v.Ub {
			return fmt.Errorf("milp model: var %q (#%d) has empty domain [%d,%d]", v.Name, i, v.Lb, v.Ub)
		}
	}
	for _, c := range m.Constraints {
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= len(m.Vars) {
				return fmt.Errorf("milp model: constraint %q references unknown var %d", c.Name, t.Var)
			}
		}
	}
	return nil
}
