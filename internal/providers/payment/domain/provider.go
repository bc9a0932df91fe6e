// Package domain defines the payment capability interface. Charges are
// always validated server-side; the client never controls the outcome.
package domain

import "context"

// Details is a provider-agnostic description of a charge to make.
type Details struct {
	AmountCents int64
	Description string
	Metadata    map[string]any
}

// Outcome is what a provider reports after attempting a charge.
type Outcome struct {
	Success       bool   `json:"success"`
	Provider      string `json:"provider"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Provider executes charges against one payment backend. Implementations
// are selected at process start and swapped without changing call sites.
type Provider interface {
	Name() string
	Charge(ctx context.Context, details Details) (Outcome, error)
}
