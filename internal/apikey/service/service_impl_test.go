package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orsta/orsta/internal/apikey/domain"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	billingservice "github.com/orsta/orsta/internal/billing/service"
	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/orchestrator"
	payment "github.com/orsta/orsta/internal/providers/payment"
	paymentdomain "github.com/orsta/orsta/internal/providers/payment/domain"
	userdomain "github.com/orsta/orsta/internal/user/domain"
)

type decliningProvider struct{}

func (decliningProvider) Name() string { return "declining" }

func (decliningProvider) Charge(context.Context, paymentdomain.Details) (paymentdomain.Outcome, error) {
	return paymentdomain.Outcome{
		Success:  false,
		Provider: "declining",
		Message:  "card declined",
	}, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ddl := []string{
		`CREATE TABLE user_property (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE,
			instance_status TEXT NOT NULL,
			instance_usage DOUBLE PRECISION NOT NULL DEFAULT 0,
			api_key_active BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE billing (
			id BIGINT PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE,
			amount_in_wallet DOUBLE PRECISION NOT NULL DEFAULT 0,
			amount_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_amount_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
			average_hourly_consumption DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE billing_records (
			id BIGINT PRIMARY KEY,
			instance_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			started_at BIGINT NOT NULL,
			ended_at BIGINT,
			amount_cents BIGINT NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func setupAPIKeyService(t *testing.T, provider paymentdomain.Provider) (domain.Service, *gorm.DB, snowflake.ID) {
	t.Helper()

	db := openTestDB(t)
	orch := orchestrator.NewWithHandles(db, nil, zap.NewNop(), nil)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	userID := node.Generate()

	property := &userdomain.UserProperty{
		ID:             node.Generate(),
		UserID:         userID,
		InstanceStatus: "inactive",
	}
	account := &billingdomain.Account{ID: node.Generate(), UserID: userID}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	billingSvc := billingservice.NewService(billingservice.Params{Orch: orch, Log: zap.NewNop()})
	svc := NewService(Params{
		Orch:       orch,
		Log:        zap.NewNop(),
		Cfg:        config.Config{APIKeyPriceCents: config.DefaultAPIKeyPriceCents},
		Provider:   provider,
		BillingSvc: billingSvc,
	})
	return svc, db, userID
}

func TestActivateChargesAndFlipsFlag(t *testing.T) {
	svc, db, userID := setupAPIKeyService(t, payment.Dummy{})

	outcome, err := svc.Activate(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !outcome.Success {
		t.Fatal("expected approved outcome")
	}
	if !strings.HasPrefix(outcome.TransactionID, "dummy_txn_") {
		t.Fatalf("unexpected transaction id %q", outcome.TransactionID)
	}

	var property userdomain.UserProperty
	if err := db.First(&property, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load property: %v", err)
	}
	if !property.APIKeyActive {
		t.Fatal("api_key_active must be set after activation")
	}

	var account billingdomain.Account
	if err := db.First(&account, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if account.AmountSpent != 9.99 {
		t.Fatalf("expected spend 9.99, got %v", account.AmountSpent)
	}
}

func TestActivateTwiceConflicts(t *testing.T) {
	svc, _, userID := setupAPIKeyService(t, payment.Dummy{})

	if _, err := svc.Activate(context.Background(), userID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := svc.Activate(context.Background(), userID); !errors.Is(err, domain.ErrAlreadyActivated) {
		t.Fatalf("expected ErrAlreadyActivated, got: %v", err)
	}
}

func TestActivateDeclinedLeavesStateUntouched(t *testing.T) {
	svc, db, userID := setupAPIKeyService(t, decliningProvider{})

	outcome, err := svc.Activate(context.Background(), userID)
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got: %v", err)
	}
	if outcome.Success {
		t.Fatal("declined outcome must not be successful")
	}

	var property userdomain.UserProperty
	if err := db.First(&property, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load property: %v", err)
	}
	if property.APIKeyActive {
		t.Fatal("declined payment must not activate the key")
	}

	var account billingdomain.Account
	if err := db.First(&account, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if account.AmountSpent != 0 {
		t.Fatalf("declined payment must not record spend, got %v", account.AmountSpent)
	}
}

func TestActivateUnknownUser(t *testing.T) {
	svc, _, _ := setupAPIKeyService(t, payment.Dummy{})

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	if _, err := svc.Activate(context.Background(), node.Generate()); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got: %v", err)
	}
}
