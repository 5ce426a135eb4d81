package models

import (
	"time"

	"gorm.io/datatypes"
)

// WaitlistStatus tracks the lifecycle of a queued provider application.
type WaitlistStatus string

const (
	WaitlistPending    WaitlistStatus = "pending"
	WaitlistInvited    WaitlistStatus = "invited"
	WaitlistRegistered WaitlistStatus = "registered"
	WaitlistExpired    WaitlistStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s WaitlistStatus) Terminal() bool {
	return s == WaitlistRegistered || s == WaitlistExpired
}

// WaitlistEntry is a provider application queued for an oversubscribed niche.
// TokenHash and InvitationExpiresAt are set exactly while status is invited.
type WaitlistEntry struct {
	BaseModel

	Email    string `gorm:"not null;index" json:"email"`
	FullName string `gorm:"not null" json:"full_name"`
	Phone    string `json:"phone,omitempty"`

	PriceRangeLabel string                      `gorm:"not null" json:"price_range_label"`
	SessionPrice    int                         `json:"session_price"`
	Topics          datatypes.JSONSlice[string] `json:"topics"`
	Practices       datatypes.JSONSlice[string] `json:"practices"`

	Status              WaitlistStatus `gorm:"not null;index;default:pending" json:"status"`
	TokenHash           *string        `gorm:"index" json:"-"`
	InvitedAt           *time.Time     `json:"invited_at,omitempty"`
	InvitationExpiresAt *time.Time     `gorm:"index" json:"invitation_expires_at,omitempty"`
}
