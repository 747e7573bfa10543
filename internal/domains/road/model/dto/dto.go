package dto

import (
	"roadbook/internal/domains/road/model"
	"roadbook/shared"
	gDto "roadbook/shared/dto"
)

type RoadResponse struct {
	ID             string `json:"id"`
	OsmID          int64  `json:"osm_id"`
	Name           string `json:"name"`
	RoadType       string `json:"road_type"`
	HourlyCapacity int    `json:"hourly_capacity"`
	gDto.Metadata
}

func (r *RoadResponse) FromModel(m model.Road) {
	r.ID = m.ID
	r.OsmID = m.OsmID
	r.Name = m.Name
	r.RoadType = m.RoadType
	r.HourlyCapacity = m.HourlyCapacity
	r.Metadata.FromModel(m.Metadata)
}

type GetRoadsResponse struct {
	Roads     []RoadResponse `json:"roads"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (g *GetRoadsResponse) FromModels(models []model.Road, total, limit int) {
	g.Roads = make([]RoadResponse, 0, len(models))

	for _, m := range models {
		var road RoadResponse

		road.FromModel(m)
		g.Roads = append(g.Roads, road)
	}

	g.TotalData = total
	g.TotalPage = shared.CalculateTotalPage(total, limit)
}

// UpdateRoadRequest edits the capacity advertised for hours that have no slot yet.
// Slots that already exist keep the total they were created with.
type UpdateRoadRequest struct {
	HourlyCapacity int `db:"hourly_capacity" json:"hourly_capacity" validate:"required,min=1"`
}
