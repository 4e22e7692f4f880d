package ledger

import (
	"time"
)

// OutstandingAccessToken is one row per access token ever minted. The user
// reference is nullable so the row survives deletion of its owner.
type OutstandingAccessToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	JTI       string    `json:"jti" gorm:"uniqueIndex;size:255;not null"`
	Token     string    `json:"token" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

func (OutstandingAccessToken) TableName() string {
	return "outstanding_access_tokens"
}

// BlacklistedAccessToken is a one-to-one marker on an outstanding token.
// Once a row exists the token id is permanently rejected.
type BlacklistedAccessToken struct {
	ID            uint                   `json:"id" gorm:"primaryKey"`
	TokenID       uint                   `json:"token_id" gorm:"uniqueIndex;not null"`
	Token         OutstandingAccessToken `json:"-" gorm:"foreignKey:TokenID;constraint:OnDelete:CASCADE"`
	BlacklistedAt time.Time              `json:"blacklisted_at" gorm:"autoCreateTime"`
}

func (BlacklistedAccessToken) TableName() string {
	return "blacklisted_access_tokens"
}
