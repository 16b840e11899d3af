package domain

import "fmt"

// Arc between two locations carrying drive time and an optional distance.
// Edges are directed; ingestion mirrors both directions when the source
// data is undirected.
type Edge struct {
	From    string
	To      string
	Minutes float64
	Miles   *float64
}

// Immutable hub + depot records with a pairwise time/distance matrix.
// A Graph is constructed once per run and is never mutated while solving.
type Graph struct {
	locations map[string]Location
	order     []string
	minutes   map[string]float64
	miles     map[string]float64
}

func pairKey(a, b string) string { return a + "|" + b }

// NewGraph validates the raw location and edge tables and builds the
// lookup matrices. It fails with ValidationError on the first violation:
// duplicate ids, missing or duplicate hub, unknown edge endpoints, or a
// negative drive time/distance.
func NewGraph(locations []Location, edges []Edge) (*Graph, error) {
	g := &Graph{
		locations: make(map[string]Location, len(locations)),
		order:     make([]string, 0, len(locations)),
		minutes:   make(map[string]float64, len(edges)),
		miles:     make(map[string]float64, len(edges)),
	}

	hubs := 0
	for _, loc := range locations {
		if loc.ID == "" {
			return nil, &ValidationError{Field: "location", Reason: "id must be non-empty"}
		}
		if _, ok := g.locations[loc.ID]; ok {
			return nil, &ValidationError{Field: "location " + loc.ID, Reason: "duplicate id"}
		}
		if loc.Role == RoleHub {
			hubs++
		}
		g.locations[loc.ID] = loc
		g.order = append(g.order, loc.ID)
	}
	if hubs == 0 {
		return nil, &ValidationError{Field: "locations", Reason: "no hub defined"}
	}
	if hubs > 1 {
		return nil, &ValidationError{Field: "locations", Reason: "more than one hub defined"}
	}

	for _, e := range edges {
		if _, ok := g.locations[e.From]; !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("edge %s->%s", e.From, e.To), Reason: "unknown origin"}
		}
		if _, ok := g.locations[e.To]; !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("edge %s->%s", e.From, e.To), Reason: "unknown destination"}
		}
		if e.From == e.To {
			return nil, &ValidationError{Field: fmt.Sprintf("edge %s->%s", e.From, e.To), Reason: "self loop"}
		}
		if e.Minutes < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("edge %s->%s", e.From, e.To), Reason: "negative drive time"}
		}
		if e.Miles != nil && *e.Miles < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("edge %s->%s", e.From, e.To), Reason: "negative distance"}
		}

		key := pairKey(e.From, e.To)
		g.minutes[key] = e.Minutes
		if e.Miles != nil {
			g.miles[key] = *e.Miles
		}
	}

	return g, nil
}

// Hub returns the id of the single hub location.
func (g *Graph) Hub() string {
	for _, id := range g.order {
		if g.locations[id].Role == RoleHub {
			return id
		}
	}
	return ""
}

// Location returns the record for id.
func (g *Graph) Location(id string) (Location, bool) {
	loc, ok := g.locations[id]
	return loc, ok
}

// Locations returns all location records in their declared order.
func (g *Graph) Locations() []Location {
	out := make([]Location, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.locations[id])
	}
	return out
}

// Time returns the drive time in minutes from a to b.
func (g *Graph) Time(a, b string) (float64, bool) {
	v, ok := g.minutes[pairKey(a, b)]
	return v, ok
}

// Distance returns the drive distance in miles from a to b.
// The second return is false when the pair has no recorded distance.
func (g *Graph) Distance(a, b string) (float64, bool) {
	v, ok := g.miles[pairKey(a, b)]
	return v, ok
}

// EnsurePairs verifies that every ordered pair among ids has a drive time.
// The routing model needs the full matrix over the locations it may visit,
// so a missing pair is reported as ValidationError before solving.
func (g *Graph) EnsurePairs(ids []string) error {
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			if _, ok := g.minutes[pairKey(a, b)]; !ok {
				return &ValidationError{
					Field:  fmt.Sprintf("edge %s->%s", a, b),
					Reason: "drive time missing for required pair",
				}
			}
		}
	}
	return nil
}
