package dto

// Per-location operator override merged into the scenario before solving.
// Nil fields leave the stored value untouched.
type SolveOverride struct {
	LocationID string   `json:"location_id"`
	Fixed      *string  `json:"fixed"`
	DirectCost *float64 `json:"direct_cost"`
	Included   *bool    `json:"included"`
}

type SolveRequest struct {
	MaxDriveMinutes   float64         `json:"max_drive_minutes"`
	MaxRoutes         int             `json:"max_routes"`
	CostModel         string          `json:"cost_model"`
	FlatCostPerMinute float64         `json:"flat_cost_per_minute"`
	GasCostPerMile    float64         `json:"gas_cost_per_mile"`
	StaffCostPerHour  float64         `json:"staff_cost_per_hour"`
	Start             string          `json:"start"`
	End               string          `json:"end"`
	Overrides         []SolveOverride `json:"overrides"`
}

type DirectShipmentResponse struct {
	LocationID string  `json:"location_id"`
	Cost       float64 `json:"cost"`
}

type RouteStopResponse struct {
	LocationID string  `json:"location_id"`
	Minutes    float64 `json:"minutes"`
	Cost       float64 `json:"cost"`
}

type RouteResponse struct {
	Stops        []RouteStopResponse `json:"stops"`
	TotalMinutes float64             `json:"total_minutes"`
	TotalCost    float64             `json:"total_cost"`
}

type SolveResponse struct {
	RunID     string                   `json:"run_id"`
	Status    string                   `json:"status"`
	Direct    []DirectShipmentResponse `json:"direct"`
	Routes    []RouteResponse          `json:"routes"`
	TotalCost float64                  `json:"total_cost"`
	Cached    bool                     `json:"cached"`
}
