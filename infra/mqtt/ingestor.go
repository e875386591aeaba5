package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/core/store"
)

// LocationTopicPrefix is where driver devices publish position reports.
// The last topic segment is the driver ID.
const LocationTopicPrefix = "fleet/location/"

// LocationApplier is the slice of the fleet service the ingestor needs.
type LocationApplier interface {
	UpdateLocation(kind store.Kind, id string, lat, lng float64, observedAt time.Time) (bool, error)
}

// locationReport is the wire format driver devices publish.
type locationReport struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ObservedAt int64   `json:"observed_at_ms"`
}

// Ingestor decodes location reports from the broker and forwards them
// to the tracker. Malformed or rejected reports are logged and dropped;
// the subscription stays up.
type Ingestor struct {
	applier LocationApplier
	log     logger.Logger
}

// NewIngestor returns an Ingestor forwarding to applier.
func NewIngestor(applier LocationApplier, log logger.Logger) *Ingestor {
	return &Ingestor{applier: applier, log: log}
}

// Start subscribes to the driver location topics.
func (i *Ingestor) Start(c *Client) error {
	return c.Subscribe(LocationTopicPrefix+"+", "location", i.handle)
}

func (i *Ingestor) handle(topic string, payload []byte) {
	driverID := strings.TrimPrefix(topic, LocationTopicPrefix)
	if driverID == "" || strings.Contains(driverID, "/") {
		i.log.Warnf("location report on unexpected topic %s", topic)
		return
	}
	var rep locationReport
	if err := json.Unmarshal(payload, &rep); err != nil {
		i.log.Warnf("malformed location report from %s: %v", driverID, err)
		return
	}
	observed := time.UnixMilli(rep.ObservedAt)
	if rep.ObservedAt == 0 {
		observed = time.Now()
	}
	applied, err := i.applier.UpdateLocation(store.KindDriver, driverID, rep.Lat, rep.Lng, observed)
	if err != nil {
		i.log.Warnf("location report from %s rejected: %v", driverID, err)
		return
	}
	if !applied {
		i.log.Debugf("location report from %s superseded", driverID)
	}
}
