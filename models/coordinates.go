package models

import "fmt"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate rejects coordinates outside the WGS84 degree ranges. The pipeline
// calls this once up front; everything downstream assumes valid input.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// ServiceLocation is where care is requested. The addresses are advisory;
// only the coordinates and the administrative area take part in matching.
type ServiceLocation struct {
	Coordinates Coordinates `json:"coordinates"`
	RoadAddress string      `json:"road_address,omitempty"`
	LotAddress  string      `json:"lot_address,omitempty"`
	AdminArea   string      `json:"admin_area,omitempty"` // e.g. "Gangnam-gu"
	Source      string      `json:"source,omitempty"`     // e.g. "OpenStreetMap"
}
