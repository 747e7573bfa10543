package service

import (
	"errors"
	"fmt"
	"net/http"
	"roadbook/shared/failure"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUserNotFound     = errors.New("user not found")
	ErrRoadNotFound     = errors.New("road not found")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrForbidden        = errors.New("booking belongs to another user")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrPastSlot         = errors.New("slot has already started")
	ErrStorage          = errors.New("storage unavailable")
	ErrConflict         = errors.New("concurrent booking conflict")

	ErrSlotCapacityExceeded = fmt.Errorf("slot %w", ErrCapacityExceeded)
	ErrRoadCapacityExceeded = fmt.Errorf("road %w", ErrCapacityExceeded)
)

// reasons label rejected bookings in metrics.
var reasons = []struct {
	kind   error
	reason string
}{
	{ErrValidation, "validation"},
	{ErrUserNotFound, "user_not_found"},
	{ErrRoadNotFound, "road_not_found"},
	{ErrSlotNotFound, "slot_not_found"},
	{ErrCapacityExceeded, "capacity_exceeded"},
	{ErrPastSlot, "past_slot"},
	{ErrConflict, "conflict"},
	{ErrStorage, "storage"},
}

func rejectReason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.kind) {
			return r.reason
		}
	}

	return "unknown"
}

func validationError(msg string) error {
	return failure.Wrap(http.StatusBadRequest, ErrValidation, msg) //nolint:wrapcheck
}

func userNotFound(userID string) error {
	return failure.Wrap(http.StatusNotFound, ErrUserNotFound, fmt.Sprintf("user %s not found", userID)) //nolint:wrapcheck
}

func roadNotFound(roadID string) error {
	return failure.Wrap(http.StatusNotFound, ErrRoadNotFound, fmt.Sprintf("road %s not found", roadID)) //nolint:wrapcheck
}

func slotNotFound(slotID string) error {
	return failure.Wrap(http.StatusNotFound, ErrSlotNotFound, fmt.Sprintf("slot %s not found for the requested road and hour", slotID)) //nolint:wrapcheck
}

func bookingNotFound(bookingID string) error {
	return failure.Wrap(http.StatusNotFound, ErrBookingNotFound, fmt.Sprintf("booking %s not found", bookingID)) //nolint:wrapcheck
}

func forbidden() error {
	return failure.Wrap(http.StatusForbidden, ErrForbidden, "you can only cancel your own bookings") //nolint:wrapcheck
}

func pastSlot(start string) error {
	return failure.Wrap(http.StatusUnprocessableEntity, ErrPastSlot, fmt.Sprintf("slot starting at %s is in the past", start)) //nolint:wrapcheck
}

func slotCapacityExceeded(slotID string, available, requested int) error {
	msg := fmt.Sprintf("slot %s has %d units available, %d requested", slotID, available, requested)

	return failure.Wrap(http.StatusConflict, ErrSlotCapacityExceeded, msg) //nolint:wrapcheck
}

func roadCapacityExceeded(roadID string, available, requested int) error {
	msg := fmt.Sprintf("road %s has %d units available for the hour, %d requested", roadID, available, requested)

	return failure.Wrap(http.StatusConflict, ErrRoadCapacityExceeded, msg) //nolint:wrapcheck
}

func conflict() error {
	return failure.Wrap(http.StatusConflict, ErrConflict, "booking conflicted with concurrent requests, please retry") //nolint:wrapcheck
}

func storageUnavailable() error {
	return failure.Wrap(http.StatusServiceUnavailable, ErrStorage, "storage unavailable, please retry") //nolint:wrapcheck
}

// ErrIntegrity means the ledger no longer matches the booking lines referencing it.
var ErrIntegrity = errors.New("ledger integrity violated")

func integrityViolated(slotID string) error {
	return failure.Wrap(http.StatusInternalServerError, ErrIntegrity, fmt.Sprintf("releasing slot %s would exceed its capacity", slotID)) //nolint:wrapcheck
}
