package models

import "gorm.io/gorm"

// Connection is a stretch of track between two stations, owned by exactly one
// line. Start and destination are stored directionally but the edge is walked
// in both directions when pathfinding. Distance drives the shortest-path
// search; TravelTime is informational only.
//
// No two connections may share the same (line, start, destination) triple.
type Connection struct {
	gorm.Model

	LineID               uint `json:"line_id" gorm:"not null;uniqueIndex:idx_line_start_dest"`
	StartStationID       uint `json:"start_station_id" gorm:"not null;uniqueIndex:idx_line_start_dest"`
	DestinationStationID uint `json:"destination_station_id" gorm:"not null;uniqueIndex:idx_line_start_dest"`

	Distance   float64 `json:"distance"`    // kilometers
	TravelTime uint    `json:"travel_time"` // minutes
	Cost       float64 `json:"cost"`
}
