package payment

import (
	"errors"

	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/providers/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.payment",
	fx.Provide(NewProvider),
)

// NewProvider selects the payment backend at process start.
func NewProvider(cfg config.Config, log *zap.Logger) (domain.Provider, error) {
	if cfg.PaymentDummyMode {
		log.Warn("DUMMY_PAYMENT_MODE enabled, all payments will auto-succeed")
		return Dummy{}, nil
	}
	return nil, errors.New("no payment provider configured: set DUMMY_PAYMENT_MODE=true for development or wire a real provider")
}
