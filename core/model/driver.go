package model

import "time"

// DriverStatus is the working state of a driver.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "AVAILABLE"
	DriverBusy      DriverStatus = "BUSY"
	DriverOffline   DriverStatus = "OFFLINE"
	DriverBreak     DriverStatus = "BREAK"
)

// Valid reports whether s is a known driver status.
func (s DriverStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverBusy, DriverOffline, DriverBreak:
		return true
	}
	return false
}

// Driver is a fleet driver. VehicleID is a weak reference to the vehicle
// the driver operates; it may be empty. When set, the referenced
// vehicle's DriverID must point back at this driver.
type Driver struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	PhoneNumber   string       `json:"phone_number"`
	LicenseNumber string       `json:"license_number"`
	Status        DriverStatus `json:"status"`
	VehicleID     string       `json:"vehicle_id,omitempty"`
	Location      Location     `json:"current_location"`
	LastActive    time.Time    `json:"last_active,omitempty"`
}

// Assignable reports whether the driver can be committed to a trip.
func (d Driver) Assignable() bool {
	return d.Status == DriverAvailable && d.VehicleID != ""
}
