package otp

import (
	"time"
)

// OneTimeCode is the single live code for an identifier (email or phone
// number). Issuing a new code for the same identifier overwrites this row.
type OneTimeCode struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Identifier string     `json:"identifier" gorm:"uniqueIndex;size:255;not null"`
	Code       string     `json:"-" gorm:"size:10;not null"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (OneTimeCode) TableName() string {
	return "one_time_codes"
}
