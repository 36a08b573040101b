package models

// Restaurant is a place a review can be attached to. The id comes from the
// search provider (usually the maps URI) or is generated when none is given.
type Restaurant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	MapsURL string `json:"mapsUrl"`
}

// RestaurantWithStats is the dashboard view of a restaurant joined with its
// reviews. It is computed on every read and never persisted.
type RestaurantWithStats struct {
	Restaurant
	Reviews      []Review `json:"reviews"`
	AverageScore float64  `json:"averageScore"`
	TotalSpent   float64  `json:"totalSpent"`
}

// Coordinates is an optional location hint for restaurant search.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
