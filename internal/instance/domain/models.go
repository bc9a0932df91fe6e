// Package domain contains the instance model and lifecycle contract.
package domain

import "github.com/bwmarrin/snowflake"

// Instance is one provisioned service instance. Active transitions only
// through the lifecycle service, never by direct update.
type Instance struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	CountryCode string       `gorm:"column:country_code;type:text;not null" json:"country_code"`
	PhoneNumber string       `gorm:"column:phone_number;type:text;not null" json:"phone_number"`
	Active      int          `gorm:"not null;default:0" json:"active"`
	CreatedAt   int64        `gorm:"not null" json:"created_at"`
}

func (Instance) TableName() string { return "instances" }

// IsActive reports whether the instance is in the Active state.
func (i Instance) IsActive() bool { return i.Active != 0 }
