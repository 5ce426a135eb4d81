package models

import "gorm.io/datatypes"

// ProviderStatus describes where a provider sits in the onboarding lifecycle.
type ProviderStatus string

const (
	ProviderActive   ProviderStatus = "active"
	ProviderInactive ProviderStatus = "inactive"
	ProviderPending  ProviderStatus = "pending"
)

// AvailabilityPeriod is a recurring window in which a provider accepts sessions.
type AvailabilityPeriod struct {
	DayOfWeek string `json:"day_of_week"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// Provider represents a professional offering sessions on the platform.
// The matching engine reads providers; only the onboarding flow mutates them.
type Provider struct {
	BaseModel

	FullName string         `gorm:"not null" json:"full_name"`
	Email    string         `gorm:"not null;uniqueIndex" json:"email"`
	Status   ProviderStatus `gorm:"not null;index;default:pending" json:"status"`

	Gender          string `json:"gender"`
	SessionPrice    int    `gorm:"not null" json:"session_price"`
	PriceRangeLabel string `gorm:"index" json:"price_range_label"`

	Topics     datatypes.JSONSlice[string] `json:"topics"`
	Approaches datatypes.JSONSlice[string] `json:"approaches"`
	Practices  datatypes.JSONSlice[string] `json:"practices"`

	Availability datatypes.JSONSlice[AvailabilityPeriod] `json:"availability"`
}
