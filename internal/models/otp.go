package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPLength is the number of digits in a confirmation code.
const OTPLength = 6

// DefaultOTPWindow is how long a code stays valid after issuance.
const DefaultOTPWindow = 10 * time.Minute

// OTPRecord is one issued confirmation code. Records are never mutated after
// creation; reissuing supersedes older records because verification matches
// the most recent one. CreatedAt doubles as the issue timestamp.
type OTPRecord struct {
	gorm.Model

	PassengerID uint   `json:"passenger_id" gorm:"not null;index"`
	Code        string `json:"-" gorm:"not null;type:char(6)"`
}

// IsValid reports whether the code is still inside its validity window.
func (o *OTPRecord) IsValid(window time.Duration, now time.Time) bool {
	return !o.CreatedAt.Before(now.Add(-window))
}
