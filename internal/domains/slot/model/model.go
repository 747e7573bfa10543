package model

import (
	"roadbook/shared/constant"
	"roadbook/shared/model"
	"time"

	"github.com/google/uuid"
)

const (
	TableName  = "road_booking_slots"
	EntityName = "slot"

	FieldID                = "id"
	FieldRoadID            = "road_id"
	FieldSlotTime          = "slot_time"
	FieldCapacity          = "capacity"
	FieldAvailableCapacity = "available_capacity"
)

// Slot is the ledger row for one road and one hour. Capacity is copied from the road when the
// row is created and does not follow later road edits.
type Slot struct {
	ID                string    `db:"id"`
	RoadID            string    `db:"road_id"`
	SlotTime          time.Time `db:"slot_time"`
	Capacity          int       `db:"capacity"`
	AvailableCapacity int       `db:"available_capacity"`
	model.Metadata
}

// NewSlot materializes a slot that is created together with its first debit.
func NewSlot(roadID string, slotTime time.Time, capacity, debit int, actor string, now time.Time) Slot {
	return Slot{
		ID:                uuid.NewString(),
		RoadID:            roadID,
		SlotTime:          slotTime,
		Capacity:          capacity,
		AvailableCapacity: capacity - debit,
		Metadata:          model.NewMetadata(actor, now),
	}
}

func (s Slot) Booked() int {
	return s.Capacity - s.AvailableCapacity
}

func (s Slot) EndTime() time.Time {
	return s.SlotTime.Add(constant.SlotDuration)
}
