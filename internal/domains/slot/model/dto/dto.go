package dto

import (
	"fmt"
	"net/http"
	"roadbook/internal/domains/slot/model"
	"roadbook/shared"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/timezone"
	"time"
)

type AvailableSlotsRequest struct {
	RoadIDs     []string `json:"road_ids"     validate:"required,min=1,dive,uuid"`
	HorizonDays int      `json:"horizon_days" validate:"min=0"`
}

// SlotResponse is one bookable hour. SlotID is nil for a virtual slot that has no ledger row yet.
type SlotResponse struct {
	SlotID            *string `json:"slot_id"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	Capacity          int     `json:"capacity"`
	AvailableCapacity int     `json:"available_capacity"`
	Available         bool    `json:"available"`
}

func (s *SlotResponse) FromModel(m model.Slot) {
	id := m.ID

	s.SlotID = &id
	s.StartTime = timezone.Format(m.SlotTime, constant.DateFormat)
	s.EndTime = timezone.Format(m.EndTime(), constant.DateFormat)
	s.Capacity = m.Capacity
	s.AvailableCapacity = m.AvailableCapacity
	s.Available = m.AvailableCapacity > 0
}

// Virtual describes an hour nobody has booked yet: the whole road capacity is free.
func Virtual(start time.Time, capacity int) SlotResponse {
	return SlotResponse{
		StartTime:         timezone.Format(start, constant.DateFormat),
		EndTime:           timezone.Format(start.Add(constant.SlotDuration), constant.DateFormat),
		Capacity:          capacity,
		AvailableCapacity: capacity,
		Available:         capacity > 0,
	}
}

type RoadAvailabilityResponse struct {
	RoadID string         `json:"road_id"`
	Slots  []SlotResponse `json:"slots"`
}

type SlotDetailResponse struct {
	ID                string `json:"id"`
	RoadID            string `json:"road_id"`
	SlotTime          string `json:"slot_time"`
	Capacity          int    `json:"capacity"`
	AvailableCapacity int    `json:"available_capacity"`
	Booked            int    `json:"booked"`
	gDto.Metadata
}

func (s *SlotDetailResponse) FromModel(m model.Slot) {
	s.ID = m.ID
	s.RoadID = m.RoadID
	s.SlotTime = timezone.Format(m.SlotTime, constant.DateFormat)
	s.Capacity = m.Capacity
	s.AvailableCapacity = m.AvailableCapacity
	s.Booked = m.Booked()
	s.Metadata.FromModel(m.Metadata)
}

type GetSlotsResponse struct {
	Slots     []SlotDetailResponse `json:"slots"`
	TotalPage int                  `json:"total_page"`
	TotalData int                  `json:"total_data"`
}

func (g *GetSlotsResponse) FromModels(models []model.Slot, total, limit int) {
	g.Slots = make([]SlotDetailResponse, 0, len(models))

	for _, m := range models {
		var slot SlotDetailResponse

		slot.FromModel(m)
		g.Slots = append(g.Slots, slot)
	}

	g.TotalData = total
	g.TotalPage = shared.CalculateTotalPage(total, limit)
}

// UpdateSlotRequest sets a new total. The booked part is kept, so available becomes
// capacity minus booked.
type UpdateSlotRequest struct {
	Capacity *int `json:"capacity" validate:"required,min=0"`
}

// FilterFromRequest builds the admin slot listing filter from road_id, date_from and date_to.
// Both dates are days in the application timezone and date_to is inclusive.
func FilterFromRequest(r *http.Request) (gDto.FilterGroup, error) {
	query := r.URL.Query()
	filters := []any{}

	if roadID := query.Get(constant.RequestParamRoadID); roadID != "" {
		if !shared.IsUUID(roadID) {
			return gDto.FilterGroup{}, fmt.Errorf("invalid %s: %q is not a uuid", constant.RequestParamRoadID, roadID)
		}

		filters = append(filters, gDto.Filter{
			Field:    model.FieldRoadID,
			Value:    roadID,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if dateFrom := query.Get(constant.RequestParamDateFrom); dateFrom != "" {
		from, err := timezone.Parse(constant.DayFormat, dateFrom)
		if err != nil {
			return gDto.FilterGroup{}, fmt.Errorf("invalid %s: %w", constant.RequestParamDateFrom, err)
		}

		filters = append(filters, gDto.Filter{
			ArgName:  constant.RequestParamDateFrom,
			Field:    model.FieldSlotTime,
			Value:    from,
			Operator: gDto.FilterOperatorGreaterEq,
			Table:    model.TableName,
		})
	}

	if dateTo := query.Get(constant.RequestParamDateTo); dateTo != "" {
		to, err := timezone.Parse(constant.DayFormat, dateTo)
		if err != nil {
			return gDto.FilterGroup{}, fmt.Errorf("invalid %s: %w", constant.RequestParamDateTo, err)
		}

		filters = append(filters, gDto.Filter{
			ArgName:  constant.RequestParamDateTo,
			Field:    model.FieldSlotTime,
			Value:    to.AddDate(0, 0, 1),
			Operator: gDto.FilterOperatorLess,
			Table:    model.TableName,
		})
	}

	if len(filters) == 0 {
		return gDto.FilterGroup{}, nil
	}

	return gDto.And(filters...), nil
}
