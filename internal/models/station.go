package models

import "gorm.io/gorm"

// Station is a stop on the metro network. Stations are created by operators
// and referenced by connections and tickets; they own neither.
type Station struct {
	gorm.Model

	Name string `json:"name" gorm:"not null"`
}
