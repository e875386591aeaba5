package model

// VehicleType classifies the vehicle body.
type VehicleType string

const (
	VehicleSedan      VehicleType = "SEDAN"
	VehicleSUV        VehicleType = "SUV"
	VehicleVan        VehicleType = "VAN"
	VehicleTruck      VehicleType = "TRUCK"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
)

// VehicleStatus is the operational state of a vehicle. It is a closed
// set distinct from DriverStatus and TripStatus even where labels match.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleBusy        VehicleStatus = "BUSY"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleOffline     VehicleStatus = "OFFLINE"
)

// Valid reports whether s is a known vehicle status.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleBusy, VehicleMaintenance, VehicleOffline:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle. DriverID is a weak reference to the
// driver the vehicle is paired with; it may be empty. When set, the
// referenced driver's VehicleID must point back at this vehicle.
type Vehicle struct {
	ID           string        `json:"id"`
	LicensePlate string        `json:"license_plate"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Color        string        `json:"color"`
	Type         VehicleType   `json:"type"`
	Status       VehicleStatus `json:"status"`
	DriverID     string        `json:"driver_id,omitempty"`
	Location     Location      `json:"current_location"`
}

// Assignable reports whether the vehicle can be committed to a trip.
func (v Vehicle) Assignable() bool {
	return v.Status == VehicleAvailable && v.DriverID != ""
}
