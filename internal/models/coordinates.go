package models

// Coordinates is a point in decimal degrees (WGS 84).
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}
