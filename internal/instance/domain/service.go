package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateInstanceRequest struct {
	UserID      snowflake.ID `json:"user_id"`
	CountryCode string       `json:"country_code"`
	PhoneNumber string       `json:"phone_number"`
}

type Service interface {
	Create(ctx context.Context, req CreateInstanceRequest) (*Instance, error)
	List(ctx context.Context, userID snowflake.ID) ([]Instance, error)
	// Activate marks the instance active and opens a billing window. Both
	// writes commit atomically on the primary store.
	Activate(ctx context.Context, id snowflake.ID) error
	// Deactivate closes the open billing window, computes the charge and
	// marks the instance inactive, atomically on the primary store.
	Deactivate(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInstanceNotFound = errors.New("instance_not_found")
	ErrAlreadyActive    = errors.New("instance_already_active")
	ErrAlreadyInactive  = errors.New("instance_already_inactive")
	// ErrNoOpenWindow means an active instance had no open billing record.
	// That is an invariant violation, not a caller mistake: it maps to 500
	// and is logged with full context.
	ErrNoOpenWindow    = errors.New("billing_window_missing")
	ErrInvalidInstance = errors.New("invalid_instance")
)
