package dto

type LocationResponse struct {
	ID         string  `json:"id"`
	Role       string  `json:"role"`
	Included   bool    `json:"included"`
	DirectCost float64 `json:"direct_cost"`
	Fixed      string  `json:"fixed"`
}

type ListLocationResponse struct {
	Locations []LocationResponse `json:"locations"`
}
