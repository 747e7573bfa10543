package dto_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadbook/internal/domains/booking/model"
	"roadbook/internal/domains/booking/model/dto"
)

func intPtr(v int) *int {
	return &v
}

func TestCreateBookingRequest_ToIntents(t *testing.T) {
	tests := []struct {
		name       string
		request    dto.CreateBookingRequest
		wantTimes  []string
		wantQty    []int
		wantErrMsg string
	}{
		{
			name: "missing quantity books one unit per slot",
			request: dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{{
				RoadID: "road-1",
				Slots:  []dto.SlotRequest{{StartTime: "2030-03-04T10:00:00Z"}, {StartTime: "2030-03-04T11:00:00Z"}},
			}}},
			wantTimes: []string{"2030-03-04T10:00:00Z", "2030-03-04T11:00:00Z"},
			wantQty:   []int{1, 1},
		},
		{
			name: "request order is kept across roads",
			request: dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{
				{RoadID: "road-2", Quantity: intPtr(3), Slots: []dto.SlotRequest{{StartTime: "2030-03-04T12:00:00Z"}}},
				{RoadID: "road-1", Quantity: intPtr(2), Slots: []dto.SlotRequest{{StartTime: "2030-03-04T09:00:00Z"}}},
			}},
			wantTimes: []string{"2030-03-04T12:00:00Z", "2030-03-04T09:00:00Z"},
			wantQty:   []int{3, 2},
		},
		{
			name: "offset is normalized",
			request: dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{{
				RoadID: "road-1",
				Slots:  []dto.SlotRequest{{StartTime: "2030-03-04T17:00:00+07:00"}},
			}}},
			wantTimes: []string{"2030-03-04T10:00:00Z"},
			wantQty:   []int{1},
		},
		{
			name:       "no bookings",
			request:    dto.CreateBookingRequest{},
			wantErrMsg: "bookings must not be empty",
		},
		{
			name: "zero quantity",
			request: dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{{
				RoadID:   "road-1",
				Quantity: intPtr(0),
				Slots:    []dto.SlotRequest{{StartTime: "2030-03-04T10:00:00Z"}},
			}}},
			wantErrMsg: "bookings[0].quantity",
		},
		{
			name:       "road without slots",
			request:    dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{{RoadID: "road-1"}}},
			wantErrMsg: "bookings[0].slots must not be empty",
		},
		{
			name: "unparsable start time",
			request: dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{{
				RoadID: "road-1",
				Slots:  []dto.SlotRequest{{StartTime: "tomorrow"}},
			}}},
			wantErrMsg: "bookings[0].slots[0].start_time",
		},
		{
			name: "start time inside the hour",
			request: dto.CreateBookingRequest{Bookings: []dto.RoadBookingRequest{{
				RoadID: "road-1",
				Slots:  []dto.SlotRequest{{StartTime: "2030-03-04T10:00:00Z"}, {StartTime: "2030-03-04T10:30:00Z"}},
			}}},
			wantErrMsg: "bookings[0].slots[1].start_time must be aligned to the hour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intents, err := tt.request.ToIntents()

			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)

				return
			}

			require.NoError(t, err)
			require.Len(t, intents, len(tt.wantTimes))

			for i, intent := range intents {
				want, err := time.Parse(time.RFC3339, tt.wantTimes[i])
				require.NoError(t, err)

				assert.True(t, want.Equal(intent.SlotTime), "intent %d: got %s", i, intent.SlotTime)
				assert.Equal(t, tt.wantQty[i], intent.Quantity)
			}
		})
	}
}

func TestBookingSummaryResponse_FromModel(t *testing.T) {
	first := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	last := first.Add(2 * time.Hour)

	var withLines dto.BookingSummaryResponse
	withLines.FromModel(model.Summary{
		BookingID:    "b-1",
		StartTime:    sql.NullTime{Time: first, Valid: true},
		LastSlotTime: sql.NullTime{Time: last, Valid: true},
		LineCount:    3,
		RoadCount:    1,
		Quantity:     6,
	})

	require.NotNil(t, withLines.StartTime)
	require.NotNil(t, withLines.EndTime)

	end, err := time.Parse(time.RFC3339, *withLines.EndTime)
	require.NoError(t, err)
	assert.True(t, end.Equal(last.Add(time.Hour)))
	assert.Equal(t, 6, withLines.Quantity)

	var empty dto.BookingSummaryResponse
	empty.FromModel(model.Summary{BookingID: "b-2"})

	assert.Nil(t, empty.StartTime)
	assert.Nil(t, empty.EndTime)
}
