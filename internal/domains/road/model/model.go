package model

import "roadbook/shared/model"

const (
	TableName  = "roads"
	EntityName = "road"

	FieldID             = "id"
	FieldOsmID          = "osm_id"
	FieldName           = "name"
	FieldRoadType       = "road_type"
	FieldHourlyCapacity = "hourly_capacity"
)

// Road is a segment imported from OpenStreetMap. HourlyCapacity 0 means unset.
type Road struct {
	ID             string `db:"id"`
	OsmID          int64  `db:"osm_id"`
	Name           string `db:"name"`
	RoadType       string `db:"road_type"`
	HourlyCapacity int    `db:"hourly_capacity"`
	model.Metadata
}

// EffectiveCapacity returns the hourly capacity the ledger uses for this road and whether
// fallback had to stand in for an unset value.
func (r Road) EffectiveCapacity(fallback int) (int, bool) {
	if r.HourlyCapacity > 0 {
		return r.HourlyCapacity, false
	}

	return fallback, true
}
