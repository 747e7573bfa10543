package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

type EventLine struct {
	SlotID   string    `json:"slot_id"`
	RoadID   string    `json:"road_id"`
	SlotTime time.Time `json:"slot_time"`
	Quantity int       `json:"quantity"`
}

// Event is published after a booking transaction commits. Consumers key on BookingID.
type Event struct {
	Type       string      `json:"type"`
	BookingID  string      `json:"booking_id"`
	UserID     string      `json:"user_id"`
	Status     string      `json:"status,omitempty"`
	Lines      []EventLine `json:"lines,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
