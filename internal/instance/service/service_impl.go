package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	"github.com/orsta/orsta/internal/clock"
	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/instance/domain"
	"github.com/orsta/orsta/internal/orchestrator"
	"github.com/orsta/orsta/internal/pricing"
	userdomain "github.com/orsta/orsta/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Orch  *orchestrator.Orchestrator
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Cfg   config.Config
}

type Service struct {
	orch  *orchestrator.Orchestrator
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	calc  pricing.Calculator
}

func NewService(p Params) domain.Service {
	return &Service{
		orch:  p.Orch,
		log:   p.Log.Named("instance.service"),
		clock: p.Clock,
		genID: p.GenID,
		calc:  pricing.FromConfig(p.Cfg),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInstanceRequest) (*domain.Instance, error) {
	countryCode := strings.TrimSpace(req.CountryCode)
	phoneNumber := strings.TrimSpace(req.PhoneNumber)
	if req.UserID == 0 || countryCode == "" || phoneNumber == "" {
		return nil, domain.ErrInvalidInstance
	}

	inst := &domain.Instance{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		CountryCode: countryCode,
		PhoneNumber: phoneNumber,
		Active:      0,
		CreatedAt:   s.clock.Now().Unix(),
	}

	if _, err := s.orch.Write(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Create(inst)
	}); err != nil {
		return nil, err
	}

	s.log.Info("instance provisioned",
		zap.Int64("instance_id", int64(inst.ID)),
		zap.Int64("user_id", int64(inst.UserID)),
	)
	return inst, nil
}

func (s *Service) List(ctx context.Context, userID snowflake.ID) ([]domain.Instance, error) {
	var instances []domain.Instance
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.
			Where("user_id = ?", userID).
			Order("created_at ASC").
			Find(&instances).Error
	})
	if err != nil {
		return nil, err
	}
	return instances, nil
}

// Activate flips the instance active and opens a billing window. Both
// writes commit in one primary transaction under the coordinator lock, so
// a crash cannot leave an active instance without an open window.
func (s *Service) Activate(ctx context.Context, id snowflake.ID) error {
	now := s.clock.Now().Unix()
	recordID := s.genID.Generate()

	err := s.orch.Transact(ctx, func(tx *orchestrator.Tx) error {
		inst, err := findInstance(tx.DB(), id)
		if err != nil {
			return err
		}
		if inst.IsActive() {
			return domain.ErrAlreadyActive
		}

		if _, err := tx.Exec(func(db *gorm.DB) *gorm.DB {
			return db.Model(&domain.Instance{}).Where("id = ?", id).Update("active", 1)
		}); err != nil {
			return err
		}

		record := &billingdomain.BillingRecord{
			ID:         recordID,
			InstanceID: id,
			UserID:     inst.UserID,
			StartedAt:  now,
		}
		_, err = tx.Exec(func(db *gorm.DB) *gorm.DB {
			return db.Create(record)
		})
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info("instance activated",
		zap.Int64("instance_id", int64(id)),
		zap.Int64("billing_record_id", int64(recordID)),
		zap.Int64("started_at", now),
	)
	return nil
}

// Deactivate closes the open billing window with the computed charge and
// flips the instance inactive, atomically on the primary store.
func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) error {
	now := s.clock.Now().Unix()
	var charge int64

	err := s.orch.Transact(ctx, func(tx *orchestrator.Tx) error {
		inst, err := findInstance(tx.DB(), id)
		if err != nil {
			return err
		}
		if !inst.IsActive() {
			return domain.ErrAlreadyInactive
		}

		var user userdomain.User
		if err := tx.DB().First(&user, "id = ?", inst.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return userdomain.ErrUserNotFound
			}
			return err
		}

		var record billingdomain.BillingRecord
		err = tx.DB().
			Where("instance_id = ? AND ended_at IS NULL", id).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.log.Error("active instance has no open billing window",
					zap.Int64("instance_id", int64(id)),
					zap.Int64("user_id", int64(inst.UserID)),
				)
				return domain.ErrNoOpenWindow
			}
			return err
		}

		duration := now - record.StartedAt
		if duration < 0 {
			s.log.Error("open billing window starts in the future",
				zap.Int64("instance_id", int64(id)),
				zap.Int64("started_at", record.StartedAt),
				zap.Int64("now", now),
			)
			return domain.ErrNoOpenWindow
		}
		charge = s.calc.ChargeCents(duration, user.CreatedAt, record.StartedAt)

		if _, err := tx.Exec(func(db *gorm.DB) *gorm.DB {
			return db.Model(&billingdomain.BillingRecord{}).
				Where("id = ?", record.ID).
				Updates(map[string]any{
					"ended_at":     now,
					"amount_cents": charge,
				})
		}); err != nil {
			return err
		}

		_, err = tx.Exec(func(db *gorm.DB) *gorm.DB {
			return db.Model(&domain.Instance{}).Where("id = ?", id).Update("active", 0)
		})
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info("instance deactivated",
		zap.Int64("instance_id", int64(id)),
		zap.Int64("ended_at", now),
		zap.Int64("amount_cents", charge),
	)
	return nil
}

func findInstance(db *gorm.DB, id snowflake.ID) (*domain.Instance, error) {
	var inst domain.Instance
	if err := db.First(&inst, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, err
	}
	return &inst, nil
}
