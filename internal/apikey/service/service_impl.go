package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orsta/orsta/internal/apikey/domain"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/orchestrator"
	paymentdomain "github.com/orsta/orsta/internal/providers/payment/domain"
	userdomain "github.com/orsta/orsta/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Orch       *orchestrator.Orchestrator
	Log        *zap.Logger
	Cfg        config.Config
	Provider   paymentdomain.Provider
	BillingSvc billingdomain.Service
}

type Service struct {
	orch       *orchestrator.Orchestrator
	log        *zap.Logger
	priceCents int64
	provider   paymentdomain.Provider
	billingSvc billingdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		orch:       p.Orch,
		log:        p.Log.Named("apikey.service"),
		priceCents: p.Cfg.APIKeyPriceCents,
		provider:   p.Provider,
		billingSvc: p.BillingSvc,
	}
}

func (s *Service) Activate(ctx context.Context, userID snowflake.ID) (paymentdomain.Outcome, error) {
	var property userdomain.UserProperty
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.First(&property, "user_id = ?", userID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return paymentdomain.Outcome{}, domain.ErrPropertyNotFound
		}
		return paymentdomain.Outcome{}, err
	}
	if property.APIKeyActive {
		return paymentdomain.Outcome{}, domain.ErrAlreadyActivated
	}

	outcome, err := s.provider.Charge(ctx, paymentdomain.Details{
		AmountCents: s.priceCents,
		Description: "API key activation",
		Metadata:    map[string]any{"user_id": userID.String()},
	})
	if err != nil {
		return paymentdomain.Outcome{}, err
	}
	if !outcome.Success {
		s.log.Warn("api key activation payment declined",
			zap.Int64("user_id", int64(userID)),
			zap.String("provider", outcome.Provider),
			zap.String("message", outcome.Message),
		)
		return outcome, domain.ErrPaymentDeclined
	}

	if _, err := s.orch.Write(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Model(&userdomain.UserProperty{}).
			Where("user_id = ?", userID).
			Update("api_key_active", true)
	}); err != nil {
		return outcome, err
	}

	if err := s.billingSvc.RecordSpend(ctx, userID, s.priceCents); err != nil {
		// The key is live but the spend did not land; surface loudly, the
		// account books need a manual correction.
		s.log.Error("api key activated but spend not recorded",
			zap.Int64("user_id", int64(userID)),
			zap.Int64("amount_cents", s.priceCents),
			zap.Error(err),
		)
		return outcome, err
	}

	s.log.Info("api key activated",
		zap.Int64("user_id", int64(userID)),
		zap.String("provider", outcome.Provider),
		zap.String("transaction_id", outcome.TransactionID),
	)
	return outcome, nil
}
