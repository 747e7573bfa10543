package dto

import (
	"fmt"
	"roadbook/internal/domains/booking/model"
	"roadbook/shared"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/timezone"
	"time"
)

const (
	StatusCancelled    = "cancelled"
	StatusEmptyBooking = "empty_booking"

	defaultQuantity = 1
)

type SlotRequest struct {
	SlotID    string `json:"slot_id"    validate:"omitempty,uuid"`
	StartTime string `json:"start_time" validate:"required,hour"`
}

type RoadBookingRequest struct {
	RoadID   string        `json:"road_id"  validate:"required,uuid"`
	Quantity *int          `json:"quantity" validate:"omitempty,min=1"`
	Slots    []SlotRequest `json:"slots"    validate:"required,min=1,dive"`
}

// CreateBookingRequest books every listed slot of every listed road, or nothing at all.
type CreateBookingRequest struct {
	Bookings    []RoadBookingRequest `json:"bookings"    validate:"required,min=1,dive"`
	Origin      string               `json:"origin"      validate:"max=255"`
	Destination string               `json:"destination" validate:"max=255"`
}

// Intent is one (road, hour) pair of a request, in request order.
type Intent struct {
	RoadID   string
	SlotID   string
	SlotTime time.Time
	Quantity int
}

// ToIntents flattens the request. A road entry without quantity books one unit per slot.
func (c *CreateBookingRequest) ToIntents() ([]Intent, error) {
	intents := []Intent{}

	for i, road := range c.Bookings {
		quantity := defaultQuantity
		if road.Quantity != nil {
			quantity = *road.Quantity
		}

		if quantity < 1 {
			return nil, fmt.Errorf("bookings[%d].quantity must be greater than or equal to 1", i)
		}

		if len(road.Slots) == 0 {
			return nil, fmt.Errorf("bookings[%d].slots must not be empty", i)
		}

		for j, slot := range road.Slots {
			start, err := time.Parse(constant.DateFormat, slot.StartTime)
			if err != nil {
				return nil, fmt.Errorf("bookings[%d].slots[%d].start_time: %w", i, j, err)
			}

			start = timezone.ToAppTime(start)
			if !timezone.IsStartOfHour(start) {
				return nil, fmt.Errorf("bookings[%d].slots[%d].start_time must be aligned to the hour", i, j)
			}

			intents = append(intents, Intent{
				RoadID:   road.RoadID,
				SlotID:   slot.SlotID,
				SlotTime: start,
				Quantity: quantity,
			})
		}
	}

	if len(intents) == 0 {
		return nil, fmt.Errorf("bookings must not be empty")
	}

	return intents, nil
}

type BookingResult struct {
	Success      bool   `json:"success"`
	BookingID    string `json:"booking_id"`
	SuccessCount int    `json:"success_count"`
	TotalCount   int    `json:"total_count"`
}

type CancelResult struct {
	Status         string `json:"status"`
	CancelledCount int    `json:"cancelled_count"`
}

type BookingSummaryResponse struct {
	BookingID   string  `json:"booking_id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	CreatedAt   string  `json:"created_at"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	LineCount   int     `json:"line_count"`
	RoadCount   int     `json:"road_count"`
	Quantity    int     `json:"quantity"`
}

func (b *BookingSummaryResponse) FromModel(m model.Summary) {
	b.BookingID = m.BookingID
	b.Origin = m.Origin
	b.Destination = m.Destination
	b.CreatedAt = timezone.Format(m.CreatedAt, constant.DateFormat)
	b.LineCount = m.LineCount
	b.RoadCount = m.RoadCount
	b.Quantity = m.Quantity

	if m.StartTime.Valid {
		start := timezone.Format(m.StartTime.Time, constant.DateFormat)
		b.StartTime = &start
	}

	if m.LastSlotTime.Valid {
		end := timezone.Format(m.LastSlotTime.Time.Add(constant.SlotDuration), constant.DateFormat)
		b.EndTime = &end
	}
}

func FromSummaries(models []model.Summary) []BookingSummaryResponse {
	res := make([]BookingSummaryResponse, 0, len(models))

	for _, m := range models {
		var summary BookingSummaryResponse

		summary.FromModel(m)
		res = append(res, summary)
	}

	return res
}

type BookingResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	LineCount   int    `json:"line_count"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(m model.Booking, lineCount int) {
	b.ID = m.ID
	b.UserID = m.UserID
	b.Origin = m.Origin
	b.Destination = m.Destination
	b.LineCount = lineCount
	b.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (g *GetBookingsResponse) FromModels(models []model.Booking, lineCounts map[string]int, total, limit int) {
	g.Bookings = make([]BookingResponse, 0, len(models))

	for _, m := range models {
		var booking BookingResponse

		booking.FromModel(m, lineCounts[m.ID])
		g.Bookings = append(g.Bookings, booking)
	}

	g.TotalData = total
	g.TotalPage = shared.CalculateTotalPage(total, limit)
}

type LineResponse struct {
	ID        string `json:"id"`
	SlotID    string `json:"slot_id"`
	RoadID    string `json:"road_id"`
	RoadName  string `json:"road_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Quantity  int    `json:"quantity"`
}

func (l *LineResponse) FromModel(m model.LineDetail) {
	l.ID = m.ID
	l.SlotID = m.SlotID
	l.RoadID = m.RoadID
	l.RoadName = m.RoadName
	l.StartTime = timezone.Format(m.SlotTime, constant.DateFormat)
	l.EndTime = timezone.Format(m.SlotTime.Add(constant.SlotDuration), constant.DateFormat)
	l.Quantity = m.Quantity
}

type BookingDetailResponse struct {
	BookingResponse
	Lines []LineResponse `json:"lines"`
}

func (b *BookingDetailResponse) FromModel(m model.Booking, lines []model.LineDetail) {
	b.BookingResponse.FromModel(m, len(lines))

	b.Lines = make([]LineResponse, 0, len(lines))
	for _, line := range lines {
		var res LineResponse

		res.FromModel(line)
		b.Lines = append(b.Lines, res)
	}
}

type StatsResponse struct {
	Roads        int `json:"roads"`
	Slots        int `json:"slots"`
	Bookings     int `json:"bookings"`
	BookingLines int `json:"booking_lines"`
	Users        int `json:"users"`
}
