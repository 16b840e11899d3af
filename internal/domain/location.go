package domain

import "fmt"

// Role distinguishes the central hub from collection depots.
type Role int

const (
	RoleDepot Role = iota
	RoleHub
)

func (r Role) String() string {
	if r == RoleHub {
		return "hub"
	}
	return "depot"
}

// FixedDecision is an operator override applied before solving.
// It pins a depot's assignment instead of leaving it to the optimizer.
type FixedDecision int

const (
	Unconstrained FixedDecision = iota
	ForceDirect
	ForceRoute
)

func (d FixedDecision) String() string {
	switch d {
	case ForceDirect:
		return "force-direct"
	case ForceRoute:
		return "force-route"
	default:
		return "unconstrained"
	}
}

// ParseRole maps a stored role string onto its Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "hub":
		return RoleHub, nil
	case "depot":
		return RoleDepot, nil
	default:
		return RoleDepot, fmt.Errorf("unknown role %q", s)
	}
}

// ParseFixedDecision maps a stored override string onto its FixedDecision.
func ParseFixedDecision(s string) (FixedDecision, error) {
	switch s {
	case "", "unconstrained":
		return Unconstrained, nil
	case "force-direct":
		return ForceDirect, nil
	case "force-route":
		return ForceRoute, nil
	default:
		return Unconstrained, fmt.Errorf("unknown fixed decision %q", s)
	}
}

// Represents a single location in a collection scenario.
// A Location is either the hub (fixed origin/destination of routes) or a
// depot that is visited by a route or ships directly at its declared cost.
type Location struct {
	ID         string
	Role       Role
	Included   bool
	DirectCost float64
	Fixed      FixedDecision
}
