package notify

import (
	"time"

	"github.com/derecho-hq/pasantias-monitor/internal/domain"
)

// Event is the payload delivered downstream for one newly discovered offer.
type Event struct {
	Source       string       `json:"source"`
	Offer        domain.Offer `json:"offer"`
	DiscoveredAt time.Time    `json:"discovered_at"`
}

// NewEvent wraps a new offer from the given source page.
func NewEvent(source string, offer domain.Offer) Event {
	return Event{
		Source:       source,
		Offer:        offer,
		DiscoveredAt: time.Now().UTC(),
	}
}
