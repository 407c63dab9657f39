package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingPlaced          EventType = "booking.placed"
	EventPaymentCompleted       EventType = "payment.completed"
	EventPaymentIntentAbandoned EventType = "payment.intent_abandoned"
)

// Event is a booking lifecycle fact published for downstream consumers
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	OwnerID   string    `json:"ownerId"`
	VehicleID string    `json:"vehicleId,omitempty"`
	BookingID string    `json:"bookingId,omitempty"`

	// Card payments
	PaymentIntentID string `json:"paymentIntentId,omitempty"`

	BookingDate   string   `json:"bookingDate,omitempty"`
	SeatKeys      []string `json:"seatKeys,omitempty"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with an id and the current time
func NewEvent(eventType EventType, ownerID string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps one owner's events ordered
func (e Event) PartitionKey() string {
	return e.OwnerID
}
