package models

// AdminLevel is one rung of an address's administrative hierarchy (state, county, ...).
type AdminLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Bounds is a rectangular area around a location.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Location is a provider-neutral geocoding result.
// Empty string fields are absent values.
type Location struct {
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Bounds       *Bounds      `json:"bounds,omitempty"`
	StreetNumber string       `json:"street_number,omitempty"`
	StreetName   string       `json:"street_name,omitempty"`
	Locality     string       `json:"locality,omitempty"`
	SubLocality  string       `json:"sub_locality,omitempty"`
	PostalCode   string       `json:"postal_code,omitempty"`
	AdminLevels  []AdminLevel `json:"admin_levels,omitempty"`
	Country      string       `json:"country,omitempty"`
	CountryCode  string       `json:"country_code,omitempty"`
	Timezone     string       `json:"timezone,omitempty"`
	ProvidedBy   string       `json:"provided_by"`
}

// Coordinates returns the point of the location.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// AdminLevel returns the name of the administrative area at level, or "".
func (l Location) AdminLevel(level int) string {
	for _, lvl := range l.AdminLevels {
		if lvl.Level == level {
			return lvl.Name
		}
	}

	return ""
}

// Clone returns a deep copy of the location, so that slices and pointers
// of the copy can be modified without touching the original.
func (l Location) Clone() Location {
	out := l
	if l.Bounds != nil {
		b := *l.Bounds
		out.Bounds = &b
	}
	if l.AdminLevels != nil {
		out.AdminLevels = append([]AdminLevel(nil), l.AdminLevels...)
	}

	return out
}
