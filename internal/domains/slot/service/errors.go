package service

import "errors"

var (
	ErrRoadNotFound        = errors.New("road not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrInvalidHorizon      = errors.New("invalid horizon")
	ErrCapacityBelowBooked = errors.New("capacity below booked quantity")
	ErrSlotInUse           = errors.New("slot is referenced by a booking")
)
