package query

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/itskeerthanraj/NeuroFleetX/core/model"
)

// FareStats summarizes completed trips for the performance charts.
type FareStats struct {
	Completed       int     `json:"completed"`
	MeanFare        float64 `json:"mean_fare"`
	StdDevFare      float64 `json:"stddev_fare"`
	MedianFare      float64 `json:"median_fare"`
	P90Fare         float64 `json:"p90_fare"`
	TotalFare       float64 `json:"total_fare"`
	MeanDurationSec float64 `json:"mean_duration_sec"`
}

// FareStats computes fare and duration statistics over completed trips.
// An empty fleet yields the zero value rather than NaNs.
func (q *Views) FareStats() FareStats {
	completed := q.store.Trips(func(t model.Trip) bool { return t.Status == model.TripCompleted })
	if len(completed) == 0 {
		return FareStats{}
	}

	fares := make([]float64, 0, len(completed))
	durations := make([]float64, 0, len(completed))
	var total float64
	for _, t := range completed {
		fares = append(fares, t.Fare)
		total += t.Fare
		if !t.StartTime.IsZero() && !t.EndTime.IsZero() {
			durations = append(durations, t.EndTime.Sub(t.StartTime).Seconds())
		}
	}
	sort.Float64s(fares)

	s := FareStats{
		Completed:  len(completed),
		MeanFare:   stat.Mean(fares, nil),
		MedianFare: stat.Quantile(0.5, stat.Empirical, fares, nil),
		P90Fare:    stat.Quantile(0.9, stat.Empirical, fares, nil),
		TotalFare:  total,
	}
	if len(fares) > 1 {
		s.StdDevFare = stat.StdDev(fares, nil)
	}
	if len(durations) > 0 {
		s.MeanDurationSec = stat.Mean(durations, nil)
	}
	return s
}
