// Package domain defines API-key activation: a paid administrative
// operation gating the secondary access credential.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/orsta/orsta/internal/providers/payment/domain"
)

type Service interface {
	// Activate charges the configured price through the payment provider
	// and, on success, flips user_property.api_key_active and records the
	// spend on the user's billing account.
	Activate(ctx context.Context, userID snowflake.ID) (paymentdomain.Outcome, error)
}

var (
	ErrAlreadyActivated = errors.New("api_key_already_active")
	ErrPaymentDeclined  = errors.New("payment_declined")
	ErrPropertyNotFound = errors.New("user_property_not_found")
)
