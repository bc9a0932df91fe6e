package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orsta/orsta/internal/providers/payment/domain"
)

// Dummy approves every charge. Development and testing only; the process
// refuses to start with it unless DUMMY_PAYMENT_MODE is set.
type Dummy struct{}

func (Dummy) Name() string { return "dummy" }

func (Dummy) Charge(_ context.Context, details domain.Details) (domain.Outcome, error) {
	return domain.Outcome{
		Success:       true,
		Provider:      "dummy",
		Message:       fmt.Sprintf("Dummy charge of $%.2f approved.", float64(details.AmountCents)/100.0),
		TransactionID: "dummy_txn_" + uuid.NewString(),
	}, nil
}

var _ domain.Provider = Dummy{}
