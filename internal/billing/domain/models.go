// Package domain contains the billing ledger models.
package domain

import "github.com/bwmarrin/snowflake"

// BillingRecord is one billing window: a continuous active period of an
// instance. Records are append-only and never deleted. At most one record
// per instance may be open (EndedAt nil) at any time.
type BillingRecord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InstanceID  snowflake.ID `gorm:"column:instance_id;not null;index" json:"instance_id"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	StartedAt   int64        `gorm:"column:started_at;not null" json:"started_at"`
	EndedAt     *int64       `gorm:"column:ended_at" json:"ended_at"`
	AmountCents int64        `gorm:"column:amount_cents;not null;default:0" json:"amount_cents"`
}

func (BillingRecord) TableName() string { return "billing_records" }

// Open reports whether the window is still accruing time.
func (r BillingRecord) Open() bool { return r.EndedAt == nil }

// Account aggregates a user's wallet and spend totals. One per user,
// provisioned at signup.
type Account struct {
	ID                       snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID                   snowflake.ID `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	AmountInWallet           float64      `gorm:"column:amount_in_wallet;not null;default:0" json:"amount_in_wallet"`
	AmountSpent              float64      `gorm:"column:amount_spent;not null;default:0" json:"amount_spent"`
	TotalAmountSpent         float64      `gorm:"column:total_amount_spent;not null;default:0" json:"total_amount_spent"`
	AverageHourlyConsumption float64      `gorm:"column:average_hourly_consumption;not null;default:0" json:"average_hourly_consumption"`
}

func (Account) TableName() string { return "billing" }
