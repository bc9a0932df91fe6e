// Package domain contains the identity models and the provisioning
// contract every signup must satisfy.
package domain

import "github.com/bwmarrin/snowflake"

// User is immutable once created; CreatedAt is the sole input to promotion
// eligibility.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	Passkey      *string      `gorm:"type:text" json:"-"`
	EAKey        string       `gorm:"column:eakey;type:text;not null;uniqueIndex" json:"eakey"`
	CreatedAt    int64        `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

// UserProperty tracks per-user operational state, including whether the
// paid API key has been activated.
type UserProperty struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	InstanceStatus string       `gorm:"column:instance_status;type:text;not null" json:"instance_status"`
	InstanceUsage  float64      `gorm:"column:instance_usage;not null;default:0" json:"instance_usage"`
	APIKeyActive   bool         `gorm:"column:api_key_active;not null;default:false" json:"api_key_active"`
}

func (UserProperty) TableName() string { return "user_property" }
