package tracking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
	"github.com/itskeerthanraj/NeuroFleetX/infra/logger"
	"github.com/itskeerthanraj/NeuroFleetX/internal/geoindex"
)

func seedFleet(t *testing.T, st *store.MemoryStore) {
	t.Helper()
	if err := st.PutDriver(model.Driver{ID: "d1", Status: model.DriverAvailable}); err != nil {
		t.Fatalf("put driver: %v", err)
	}
	if err := st.PutVehicle(model.Vehicle{ID: "v1", Status: model.VehicleAvailable}); err != nil {
		t.Fatalf("put vehicle: %v", err)
	}
	err := st.Apply(
		store.Op{Kind: store.KindDriver, ID: "d1", Version: 1, Mutate: store.MutateDriver(func(d model.Driver) (model.Driver, error) {
			d.VehicleID = "v1"
			return d, nil
		})},
		store.Op{Kind: store.KindVehicle, ID: "v1", Version: 1, Mutate: store.MutateVehicle(func(v model.Vehicle) (model.Vehicle, error) {
			v.DriverID = "d1"
			return v, nil
		})},
	)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
}

func TestUpdateLocation_DriverMovesPairedVehicle(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st)
	idx := geoindex.New(geoindex.DefaultPrecision)
	tk := NewTracker(st, idx, logger.NopLogger{}, nil, nil)

	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	applied, err := tk.UpdateLocation(store.KindDriver, "d1", 12.97, 77.59, when)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !applied {
		t.Fatal("fresh observation was not applied")
	}

	d, _, _ := st.Driver("d1")
	v, _, _ := st.Vehicle("v1")
	if d.Location.Lat != 12.97 || v.Location.Lat != 12.97 {
		t.Fatalf("driver/vehicle positions diverge: %+v vs %+v", d.Location, v.Location)
	}
	if !d.Location.UpdatedAt.Equal(when) || !v.Location.UpdatedAt.Equal(when) {
		t.Fatalf("observation timestamp not recorded")
	}
	if !d.LastActive.Equal(when) {
		t.Fatalf("LastActive not advanced: %v", d.LastActive)
	}
	if _, _, ok := idx.Position("v1"); !ok {
		t.Fatal("vehicle missing from spatial index")
	}
}

func TestUpdateLocation_StaleObservationSuperseded(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st)
	tk := NewTracker(st, nil, logger.NopLogger{}, nil, nil)

	newer := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	older := newer.Add(-time.Minute)

	if _, err := tk.UpdateLocation(store.KindVehicle, "v1", 12.97, 77.59, newer); err != nil {
		t.Fatalf("update: %v", err)
	}
	applied, err := tk.UpdateLocation(store.KindVehicle, "v1", 40.0, -74.0, older)
	if err != nil {
		t.Fatalf("stale update must not error: %v", err)
	}
	if applied {
		t.Fatal("stale observation was applied")
	}
	v, _, _ := st.Vehicle("v1")
	if v.Location.Lat != 12.97 || !v.Location.UpdatedAt.Equal(newer) {
		t.Fatalf("stale observation overwrote newer state: %+v", v.Location)
	}
}

func TestUpdateLocation_DriverReportDoesNotRegressVehicle(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st)
	tk := NewTracker(st, nil, logger.NopLogger{}, nil, nil)

	vehicleTime := time.Date(2026, 3, 1, 10, 10, 0, 0, time.UTC)
	driverTime := vehicleTime.Add(-time.Minute)

	if _, err := tk.UpdateLocation(store.KindVehicle, "v1", 12.97, 77.59, vehicleTime); err != nil {
		t.Fatalf("vehicle update: %v", err)
	}
	applied, err := tk.UpdateLocation(store.KindDriver, "d1", 40.0, -74.0, driverTime)
	if err != nil {
		t.Fatalf("driver update: %v", err)
	}
	if !applied {
		t.Fatal("driver observation is fresh for the driver and must apply")
	}

	d, _, _ := st.Driver("d1")
	v, _, _ := st.Vehicle("v1")
	if d.Location.Lat != 40.0 {
		t.Fatalf("driver position not updated: %+v", d.Location)
	}
	if v.Location.Lat != 12.97 || !v.Location.UpdatedAt.Equal(vehicleTime) {
		t.Fatalf("older driver report regressed the vehicle: %+v", v.Location)
	}
}

func TestUpdateLocation_ConcurrentReportsConverge(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st)
	tk := NewTracker(st, nil, logger.NopLogger{}, nil, nil)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Interleave driver and vehicle reports with distinct timestamps.
			when := base.Add(time.Duration(i) * time.Second)
			if i%2 == 0 {
				_, _ = tk.UpdateLocation(store.KindDriver, "d1", 10.0+float64(i), 70.0, when)
			} else {
				_, _ = tk.UpdateLocation(store.KindVehicle, "v1", 10.0+float64(i), 70.0, when)
			}
		}(i)
	}
	wg.Wait()

	v, _, _ := st.Vehicle("v1")
	d, _, _ := st.Driver("d1")
	// The vehicle must hold the report with the latest timestamp it saw,
	// never one that was superseded.
	if v.Location.UpdatedAt.Before(base) {
		t.Fatalf("vehicle timestamp regressed: %v", v.Location.UpdatedAt)
	}
	if d.Location.UpdatedAt.After(v.Location.UpdatedAt) {
		// Driver reports propagate to the vehicle atomically, so the
		// vehicle can never lag behind a driver report that won.
		t.Fatalf("vehicle lags driver: %v < %v", v.Location.UpdatedAt, d.Location.UpdatedAt)
	}
}

func TestUpdateLocation_ValidatesInput(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st)
	tk := NewTracker(st, nil, logger.NopLogger{}, nil, nil)
	when := time.Now()

	var verr model.ValidationError
	if _, err := tk.UpdateLocation(store.KindVehicle, "v1", 91.0, 0, when); !errors.As(err, &verr) {
		t.Fatalf("latitude out of range: got %v", err)
	}
	if _, err := tk.UpdateLocation(store.KindVehicle, "v1", 0, 181.0, when); !errors.As(err, &verr) {
		t.Fatalf("longitude out of range: got %v", err)
	}
	if _, err := tk.UpdateLocation(store.KindVehicle, "v1", 12.9, 77.5, time.Time{}); !errors.As(err, &verr) {
		t.Fatalf("zero timestamp: got %v", err)
	}
	if _, err := tk.UpdateLocation(store.KindTrip, "t1", 12.9, 77.5, when); !errors.As(err, &verr) {
		t.Fatalf("trip kind: got %v", err)
	}
}

func TestUpdateLocation_UnknownEntity(t *testing.T) {
	st := store.NewMemoryStore()
	tk := NewTracker(st, nil, logger.NopLogger{}, nil, nil)
	_, err := tk.UpdateLocation(store.KindVehicle, "ghost", 12.9, 77.5, time.Now())
	var nf store.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
