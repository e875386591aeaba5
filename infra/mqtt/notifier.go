package mqtt

import (
	"context"

	"github.com/itskeerthanraj/NeuroFleetX/core/events"
	"github.com/itskeerthanraj/NeuroFleetX/core/logger"
	"github.com/itskeerthanraj/NeuroFleetX/internal/eventbus"
)

// TripTopicPrefix is where assignment notifications are published; the
// last segment is the driver ID the notification is addressed to.
const TripTopicPrefix = "fleet/trips/"

// Notifier consumes trip events from the bus and publishes the ones a
// driver device cares about to its topic.
type Notifier struct {
	client *Client
	bus    *eventbus.TypedBus[events.TripEvent]
	log    logger.Logger
}

// NewNotifier returns a Notifier reading from bus.
func NewNotifier(client *Client, bus *eventbus.TypedBus[events.TripEvent], log logger.Logger) *Notifier {
	return &Notifier{client: client, bus: bus, log: log}
}

// Run consumes the bus until the context is canceled. It blocks, so
// callers start it in a goroutine.
func (n *Notifier) Run(ctx context.Context) {
	sub := n.bus.Subscribe()
	defer n.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			n.notify(ev)
		}
	}
}

func (n *Notifier) notify(ev events.TripEvent) {
	// Drivers only hear about trips addressed to them.
	if ev.Trip.DriverID == "" {
		return
	}
	switch ev.Type {
	case events.TripAssigned, events.TripCancelled, events.TripCompleted:
	default:
		return
	}
	topic := TripTopicPrefix + ev.Trip.DriverID
	if err := n.client.PublishJSON(topic, "trips", ev); err != nil {
		n.log.Errorf("notify driver %s about trip %s: %v", ev.Trip.DriverID, ev.Trip.ID, err)
	}
}
