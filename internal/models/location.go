// server/internal/models/location.go
package models

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MapMarker struct {
	Label     string      `json:"label"`
	Position  Coordinates `json:"position"`
	Synthetic bool        `json:"synthetic"`
}

// LocationView is computed per request and never stored.
type LocationView struct {
	Destination MapMarker     `json:"destination"`
	Driver      *MapMarker    `json:"driver,omitempty"`
	Path        []Coordinates `json:"path,omitempty"`
}
