package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/orsta/orsta/internal/auth/accesskey"
	"github.com/orsta/orsta/internal/auth/password"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	"github.com/orsta/orsta/internal/clock"
	"github.com/orsta/orsta/internal/orchestrator"
	"github.com/orsta/orsta/internal/user/domain"
	pkgdb "github.com/orsta/orsta/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InstanceStatusInactive is the provisioning default for user_property.
const InstanceStatusInactive = "inactive"

type Params struct {
	fx.In

	Orch  *orchestrator.Orchestrator
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
}

type Service struct {
	orch  *orchestrator.Orchestrator
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		orch:  p.Orch,
		log:   p.Log.Named("user.service"),
		clock: p.Clock,
		genID: p.GenID,
	}
}

// Signup creates the user row and its companion user_property and billing
// account rows in one coordinated transaction, so every user has a billing
// account from the moment it exists.
func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, domain.ErrInvalidSignup
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	eakey, err := accesskey.New()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		EAKey:        eakey,
		CreatedAt:    s.clock.Now().Unix(),
	}
	property := &domain.UserProperty{
		ID:             s.genID.Generate(),
		UserID:         user.ID,
		InstanceStatus: InstanceStatusInactive,
	}
	account := &billingdomain.Account{
		ID:     s.genID.Generate(),
		UserID: user.ID,
	}

	err = s.orch.Transact(ctx, func(tx *orchestrator.Tx) error {
		var count int64
		if err := tx.DB().Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrUsernameTaken
		}
		if err := tx.DB().Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrEmailTaken
		}

		for _, row := range []any{user, property, account} {
			row := row
			if _, err := tx.Exec(func(db *gorm.DB) *gorm.DB {
				return db.Create(row)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user signed up",
		zap.Int64("user_id", int64(user.ID)),
		zap.String("username", user.Username),
	)
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var user domain.User
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.First(&user, "email = ?", email).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Service) FindByAccessKey(ctx context.Context, eakey string) (*domain.User, error) {
	eakey = strings.TrimSpace(eakey)
	if eakey == "" {
		return nil, domain.ErrUserNotFound
	}

	var user domain.User
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.First(&user, "eakey = ?", eakey).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := s.orch.Read(ctx, func(db *gorm.DB) error {
		return db.First(&user, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
