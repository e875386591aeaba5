package model

import "time"

// Location is a geographic position with an optional reverse-geocoded
// address. UpdatedAt is the observation time reported by the device, not
// the time the update reached the server.
type Location struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Address   string    `json:"address,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsZero reports whether the location has never been set.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0 && l.UpdatedAt.IsZero()
}

// ValidateCoordinates checks that lat/lng are within WGS84 bounds.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return ValidationError{Field: "lat", Reason: "latitude must be within [-90, 90]"}
	}
	if lng < -180 || lng > 180 {
		return ValidationError{Field: "lng", Reason: "longitude must be within [-180, 180]"}
	}
	return nil
}
