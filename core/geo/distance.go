// Package geo provides great-circle distance helpers used by the
// dispatch optimizer and the query layer.
package geo

import "math"

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between
// two WGS84 coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
