package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orsta/orsta/internal/auth/session"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	"github.com/orsta/orsta/internal/config"
	instancedomain "github.com/orsta/orsta/internal/instance/domain"
	paymentdomain "github.com/orsta/orsta/internal/providers/payment/domain"
	userdomain "github.com/orsta/orsta/internal/user/domain"
)

type fakeUserService struct {
	user *userdomain.User
}

func (f *fakeUserService) Signup(ctx context.Context, req userdomain.SignupRequest) (*userdomain.User, error) {
	return f.user, nil
}

func (f *fakeUserService) Login(ctx context.Context, req userdomain.LoginRequest) (*userdomain.User, error) {
	if req.Password != "good" {
		return nil, userdomain.ErrInvalidCredentials
	}
	return f.user, nil
}

func (f *fakeUserService) FindByAccessKey(ctx context.Context, eakey string) (*userdomain.User, error) {
	if f.user == nil || eakey != f.user.EAKey {
		return nil, userdomain.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUserService) FindByID(ctx context.Context, id snowflake.ID) (*userdomain.User, error) {
	return f.user, nil
}

type fakeInstanceService struct {
	activateErr   error
	deactivateErr error
}

func (f *fakeInstanceService) Create(ctx context.Context, req instancedomain.CreateInstanceRequest) (*instancedomain.Instance, error) {
	return &instancedomain.Instance{ID: snowflake.ID(7), UserID: req.UserID, CountryCode: req.CountryCode, PhoneNumber: req.PhoneNumber}, nil
}

func (f *fakeInstanceService) List(ctx context.Context, userID snowflake.ID) ([]instancedomain.Instance, error) {
	return []instancedomain.Instance{}, nil
}

func (f *fakeInstanceService) Activate(ctx context.Context, id snowflake.ID) error {
	return f.activateErr
}

func (f *fakeInstanceService) Deactivate(ctx context.Context, id snowflake.ID) error {
	return f.deactivateErr
}

type fakeBillingService struct{}

func (fakeBillingService) ListRecords(ctx context.Context, userID snowflake.ID) ([]billingdomain.BillingRecord, error) {
	return nil, nil
}

func (fakeBillingService) ListInstanceRecords(ctx context.Context, instanceID snowflake.ID) ([]billingdomain.BillingRecord, error) {
	return nil, nil
}

func (fakeBillingService) Summary(ctx context.Context, userID snowflake.ID) (billingdomain.Summary, error) {
	return billingdomain.Summary{UserID: userID, Records: []billingdomain.BillingRecord{}, TotalCents: 72}, nil
}

func (fakeBillingService) AccountSummary(ctx context.Context, userID snowflake.ID) (*billingdomain.Account, error) {
	return nil, billingdomain.ErrAccountNotFound
}

func (fakeBillingService) RecordSpend(ctx context.Context, userID snowflake.ID, cents int64) error {
	return nil
}

type fakeAPIKeyService struct{}

func (fakeAPIKeyService) Activate(ctx context.Context, userID snowflake.ID) (paymentdomain.Outcome, error) {
	return paymentdomain.Outcome{Success: true, Provider: "dummy"}, nil
}

func setupTestServer(t *testing.T, instances instancedomain.Service) (*Server, *userdomain.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	user := &userdomain.User{
		ID:       snowflake.ID(200),
		Username: "alice",
		Email:    "alice@example.com",
		EAKey:    "test-access-key",
	}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:         engine,
		Cfg:         config.Config{Port: "3000"},
		Sessions:    session.NewManager(config.Config{}),
		Usersvc:     &fakeUserService{user: user},
		InstanceSvc: instances,
		BillingSvc:  fakeBillingService{},
		APIKeySvc:   fakeAPIKeyService{},
		Log:         zap.NewNop(),
	})
	return srv, user
}

func doRequest(srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func TestSignupSetsSessionCookie(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{})

	w := doRequest(srv, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName && cookie.Value == user.EAKey {
			found = true
		}
	}
	if !found {
		t.Fatal("signup must set the session cookie to the access key")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := setupTestServer(t, &fakeInstanceService{})

	w := doRequest(srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "bad",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if payload := decodeError(t, w); payload.Type != "unauthorized" {
		t.Fatalf("expected unauthorized type, got %q", payload.Type)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{})

	w := doRequest(srv, http.MethodGet, "/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = doRequest(srv, http.MethodGet, "/auth/me", "wrong-key", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", w.Code)
	}

	w = doRequest(srv, http.MethodGet, "/auth/me", user.EAKey, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActivateConflictMapsTo409(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{activateErr: instancedomain.ErrAlreadyActive})

	w := doRequest(srv, http.MethodPatch, "/instances/7/activate", user.EAKey, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if payload := decodeError(t, w); payload.Type != "conflict" {
		t.Fatalf("expected conflict type, got %q", payload.Type)
	}
}

func TestMissingWindowMapsTo500(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{deactivateErr: instancedomain.ErrNoOpenWindow})

	w := doRequest(srv, http.MethodPatch, "/instances/7/deactivate", user.EAKey, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	if payload := decodeError(t, w); payload.Type != "inconsistent" {
		t.Fatalf("expected inconsistent type, got %q", payload.Type)
	}
}

func TestInstanceIDValidation(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{})

	w := doRequest(srv, http.MethodPatch, "/instances/not-a-number/activate", user.EAKey, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBillingEndpoints(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{})

	w := doRequest(srv, http.MethodGet, "/billing", user.EAKey, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary billingdomain.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalCents != 72 {
		t.Fatalf("expected total 72, got %d", summary.TotalCents)
	}

	w = doRequest(srv, http.MethodGet, "/billing/account", user.EAKey, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing account, got %d", w.Code)
	}
}

func TestAPIKeyActivation(t *testing.T) {
	srv, user := setupTestServer(t, &fakeInstanceService{})

	w := doRequest(srv, http.MethodPost, "/apikey/activate", user.EAKey, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var outcome paymentdomain.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !outcome.Success {
		t.Fatal("expected successful outcome")
	}
}
