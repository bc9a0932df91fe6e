package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Summary is the per-user ledger view. TotalCents sums closed windows only:
// open windows contribute 0 regardless of elapsed time, since the charge is
// computed at close.
type Summary struct {
	UserID     snowflake.ID    `json:"user_id"`
	Records    []BillingRecord `json:"records"`
	TotalCents int64           `json:"total_cents"`
}

type Service interface {
	// ListRecords returns all windows for the user, open and closed,
	// ordered by started_at ascending.
	ListRecords(ctx context.Context, userID snowflake.ID) ([]BillingRecord, error)
	// ListInstanceRecords returns all windows for one instance.
	ListInstanceRecords(ctx context.Context, instanceID snowflake.ID) ([]BillingRecord, error)
	Summary(ctx context.Context, userID snowflake.ID) (Summary, error)
	AccountSummary(ctx context.Context, userID snowflake.ID) (*Account, error)
	// RecordSpend adds an administrative charge to the user's account,
	// updating amount_spent and total_amount_spent. It is a direct field
	// update, not transactional with other ledger state.
	RecordSpend(ctx context.Context, userID snowflake.ID, cents int64) error
}

// TotalCents sums amount_cents over closed records.
func TotalCents(records []BillingRecord) int64 {
	var total int64
	for _, r := range records {
		if !r.Open() {
			total += r.AmountCents
		}
	}
	return total
}

var (
	ErrAccountNotFound = errors.New("billing_account_not_found")
	ErrInvalidSpend    = errors.New("invalid_spend")
)
