package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	tripAPIAddr   string
	tripPassenger string
	tripPickup    []float64
	tripDropoff   []float64
	tripFare      float64
	tripOptimize  bool
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Inject a trip request into a running service",
	RunE:  runTrip,
}

func init() {
	tripCmd.Flags().StringVar(&tripAPIAddr, "addr", "http://localhost:8080", "API base URL")
	tripCmd.Flags().StringVar(&tripPassenger, "passenger", "cli-passenger", "passenger ID")
	tripCmd.Flags().Float64SliceVar(&tripPickup, "pickup", []float64{12.9716, 77.5946}, "pickup lat,lng")
	tripCmd.Flags().Float64SliceVar(&tripDropoff, "dropoff", []float64{12.9352, 77.6245}, "dropoff lat,lng")
	tripCmd.Flags().Float64Var(&tripFare, "fare", 150, "quoted fare")
	tripCmd.Flags().BoolVar(&tripOptimize, "optimize", true, "dispatch the trip after creating it")
	rootCmd.AddCommand(tripCmd)
}

func runTrip(cmd *cobra.Command, args []string) error {
	if len(tripPickup) != 2 || len(tripDropoff) != 2 {
		return fmt.Errorf("pickup and dropoff must be lat,lng pairs")
	}
	client := &http.Client{Timeout: 10 * time.Second}

	body := map[string]any{
		"passenger_id":     tripPassenger,
		"pickup_location":  map[string]float64{"lat": tripPickup[0], "lng": tripPickup[1]},
		"dropoff_location": map[string]float64{"lat": tripDropoff[0], "lng": tripDropoff[1]},
		"fare":             tripFare,
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := postJSON(client, tripAPIAddr+"/api/trips", body, &created); err != nil {
		return fmt.Errorf("create trip: %w", err)
	}
	cmd.Printf("trip %s created (%s)\n", created.ID, created.Status)

	if !tripOptimize {
		return nil
	}
	var result struct {
		Assigned bool   `json:"assigned"`
		Reason   string `json:"reason"`
		Trip     struct {
			DriverID  string `json:"driver_id"`
			VehicleID string `json:"vehicle_id"`
		} `json:"trip"`
	}
	if err := postJSON(client, tripAPIAddr+"/api/trips/"+created.ID+"/optimize", nil, &result); err != nil {
		return fmt.Errorf("optimize trip: %w", err)
	}
	if result.Assigned {
		cmd.Printf("assigned to driver %s, vehicle %s\n", result.Trip.DriverID, result.Trip.VehicleID)
	} else {
		cmd.Printf("not assigned: %s\n", result.Reason)
	}
	return nil
}

func postJSON(client *http.Client, url string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
