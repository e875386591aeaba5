package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	if d := HaversineKm(40.0, -74.0, 40.0, -74.0); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Paris to London, roughly 344 km.
	d := HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	if math.Abs(d-344) > 5 {
		t.Fatalf("Paris-London distance off: %v km", d)
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	a := HaversineKm(40.0, -74.0, 41.0, -75.0)
	b := HaversineKm(41.0, -75.0, 40.0, -74.0)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", a, b)
	}
}
