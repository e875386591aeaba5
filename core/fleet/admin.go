package fleet

import (
	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/core/trip"
)

// Administrative operations: vehicle and driver records are created and
// paired at this boundary; the dispatch core afterwards only mutates
// their status, location and back-references.

// AddVehicle registers a vehicle. An empty status defaults to
// AVAILABLE. The driver pairing, if any, is established separately via
// PairDriverVehicle so both back-references commit together.
func (s *Service) AddVehicle(v model.Vehicle) (model.Vehicle, error) {
	if v.Status == "" {
		v.Status = model.VehicleAvailable
	}
	v.DriverID = ""
	if err := s.store.PutVehicle(v); err != nil {
		return model.Vehicle{}, err
	}
	return v, nil
}

// AddDriver registers a driver. An empty status defaults to AVAILABLE.
func (s *Service) AddDriver(d model.Driver) (model.Driver, error) {
	if d.Status == "" {
		d.Status = model.DriverAvailable
	}
	d.VehicleID = ""
	if err := s.store.PutDriver(d); err != nil {
		return model.Driver{}, err
	}
	return d, nil
}

// PairDriverVehicle sets the mutual back-references between a driver
// and a vehicle in one atomic update. Both must exist, be unpaired, and
// not be committed to an active trip.
func (s *Service) PairDriverVehicle(driverID, vehicleID string) error {
	return s.store.Retry(func() ([]store.Op, error) {
		d, dVer, err := s.store.Driver(driverID)
		if err != nil {
			return nil, err
		}
		v, vVer, err := s.store.Vehicle(vehicleID)
		if err != nil {
			return nil, err
		}
		if d.Status == model.DriverBusy {
			return nil, trip.UnavailableError{Kind: store.KindDriver, ID: driverID, Reason: "committed to an active trip"}
		}
		if v.Status == model.VehicleBusy {
			return nil, trip.UnavailableError{Kind: store.KindVehicle, ID: vehicleID, Reason: "committed to an active trip"}
		}
		if d.VehicleID != "" && d.VehicleID != vehicleID {
			return nil, trip.UnavailableError{Kind: store.KindDriver, ID: driverID, Reason: "already paired with vehicle " + d.VehicleID}
		}
		if v.DriverID != "" && v.DriverID != driverID {
			return nil, trip.UnavailableError{Kind: store.KindVehicle, ID: vehicleID, Reason: "already paired with driver " + v.DriverID}
		}
		return []store.Op{
			{Kind: store.KindDriver, ID: driverID, Version: dVer, Mutate: store.MutateDriver(func(d model.Driver) (model.Driver, error) {
				d.VehicleID = vehicleID
				return d, nil
			})},
			{Kind: store.KindVehicle, ID: vehicleID, Version: vVer, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
				v.DriverID = driverID
				return v, nil
			})},
		}, nil
	})
}

// UnpairDriverVehicle clears both sides of an existing pairing. It is
// rejected while either side is committed to an active trip, so a trip
// never ends up referencing a split pair.
func (s *Service) UnpairDriverVehicle(driverID string) error {
	return s.store.Retry(func() ([]store.Op, error) {
		d, dVer, err := s.store.Driver(driverID)
		if err != nil {
			return nil, err
		}
		if d.VehicleID == "" {
			return nil, nil // nothing paired
		}
		v, vVer, err := s.store.Vehicle(d.VehicleID)
		if err != nil {
			return nil, err
		}
		if d.Status == model.DriverBusy || v.Status == model.VehicleBusy {
			return nil, trip.UnavailableError{Kind: store.KindDriver, ID: driverID, Reason: "committed to an active trip"}
		}
		return []store.Op{
			{Kind: store.KindDriver, ID: driverID, Version: dVer, Mutate: store.MutateDriver(func(d model.Driver) (model.Driver, error) {
				d.VehicleID = ""
				return d, nil
			})},
			{Kind: store.KindVehicle, ID: v.ID, Version: vVer, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
				v.DriverID = ""
				return v, nil
			})},
		}, nil
	})
}
