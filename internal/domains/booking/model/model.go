package model

import (
	"database/sql"
	"roadbook/shared/model"
	"time"

	"github.com/google/uuid"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldOrigin      = "origin"
	FieldDestination = "destination"
)

const (
	LineTableName  = "booking_lines"
	LineEntityName = "booking_line"

	LineFieldID        = "id"
	LineFieldBookingID = "booking_id"
	LineFieldSlotID    = "slot_id"
	LineFieldQuantity  = "quantity"
)

// Booking is a trip header. It is only ever stored together with at least one line.
type Booking struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	Origin      string `db:"origin"`
	Destination string `db:"destination"`
	model.Metadata
}

func NewBooking(userID, origin, destination string, now time.Time) Booking {
	return Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		Origin:      origin,
		Destination: destination,
		Metadata:    model.NewMetadata(userID, now),
	}
}

// BookingLine reserves Quantity units of one slot for one booking.
type BookingLine struct {
	ID        string `db:"id"`
	BookingID string `db:"booking_id"`
	SlotID    string `db:"slot_id"`
	Quantity  int    `db:"quantity"`
}

func NewBookingLine(bookingID, slotID string, quantity int) BookingLine {
	return BookingLine{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		SlotID:    slotID,
		Quantity:  quantity,
	}
}

// LineDetail is a booking line joined with its slot and road.
type LineDetail struct {
	ID        string    `db:"id"`
	BookingID string    `db:"booking_id"`
	SlotID    string    `db:"slot_id"`
	Quantity  int       `db:"quantity"`
	SlotTime  time.Time `db:"slot_time" table:"road_booking_slots"`
	RoadID    string    `db:"road_id"   table:"road_booking_slots"`
	RoadName  string    `db:"road_name" table:"roads"              column:"name"`
}

func (LineDetail) GetJoinQuery() string {
	return "JOIN road_booking_slots ON road_booking_slots.id = booking_lines.slot_id " +
		"JOIN roads ON roads.id = road_booking_slots.road_id"
}

// Summary aggregates one booking of a user. StartTime and LastSlotTime are null for a
// booking whose lines are gone.
type Summary struct {
	BookingID    string       `db:"booking_id"`
	Origin       string       `db:"origin"`
	Destination  string       `db:"destination"`
	CreatedAt    time.Time    `db:"created_at"`
	StartTime    sql.NullTime `db:"start_time"`
	LastSlotTime sql.NullTime `db:"last_slot_time"`
	LineCount    int          `db:"line_count"`
	RoadCount    int          `db:"road_count"`
	Quantity     int          `db:"quantity"`
}
