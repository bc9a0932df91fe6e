package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/orsta/orsta/internal/billing/domain"
	"github.com/orsta/orsta/internal/orchestrator"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Orch *orchestrator.Orchestrator
	Log  *zap.Logger
}

type Service struct {
	orch *orchestrator.Orchestrator
	log  *zap.Logger
}

func NewService(p Params) domain.Service {
	return &Service{
		orch: p.Orch,
		log:  p.Log.Named("billing.service"),
	}
}

func (s *Service) ListRecords(ctx context.Context, userID snowflake.ID) ([]domain.BillingRecord, error) {
	return s.listRecords(ctx, "user_id = ?", userID)
}

func (s *Service) ListInstanceRecords(ctx context.Context, instanceID snowflake.ID) ([]domain.BillingRecord, error) {
	return s.listRecords(ctx, "instance_id = ?", instanceID)
}

func (s *Service) listRecords(ctx context.Context, cond string, arg snowflake.ID) ([]domain.BillingRecord, error) {
	var records []domain.BillingRecord
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.
			Where(cond, arg).
			Order("started_at ASC").
			Find(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Summary(ctx context.Context, userID snowflake.ID) (domain.Summary, error) {
	records, err := s.ListRecords(ctx, userID)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{
		UserID:     userID,
		Records:    records,
		TotalCents: domain.TotalCents(records),
	}, nil
}

func (s *Service) AccountSummary(ctx context.Context, userID snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.First(&account, "user_id = ?", userID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// RecordSpend applies an administrative charge as a direct field update.
// It is not transactional with any other ledger state.
func (s *Service) RecordSpend(ctx context.Context, userID snowflake.ID, cents int64) error {
	if cents <= 0 {
		return domain.ErrInvalidSpend
	}
	amount := float64(cents) / 100.0

	rows, err := s.orch.Write(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Model(&domain.Account{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"amount_spent":       gorm.Expr("amount_spent + ?", amount),
				"total_amount_spent": gorm.Expr("total_amount_spent + ?", amount),
			})
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}

	s.log.Info("administrative spend recorded",
		zap.Int64("user_id", int64(userID)),
		zap.Int64("amount_cents", cents),
	)
	return nil
}
