package models

import "gorm.io/gorm"

// Line groups connections into an operable unit. Only connections whose line
// is active participate in route costing; operators toggle IsActive to take a
// line in or out of service, and the change applies to the next costing call.
type Line struct {
	gorm.Model

	Name     string `json:"name" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}
