package notify

import "time"

// OrdersUpdated is the signal name clients listen for.
const OrdersUpdated = "ordersUpdated"

// Event is the envelope relays publish to external systems.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

func newEvent(now time.Time) Event {
	return Event{Type: OrdersUpdated, At: now.UTC()}
}
