package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apikeydomain "github.com/orsta/orsta/internal/apikey/domain"
	billingdomain "github.com/orsta/orsta/internal/billing/domain"
	instancedomain "github.com/orsta/orsta/internal/instance/domain"
	userdomain "github.com/orsta/orsta/internal/user/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware turns the last gin error into the JSON error
// envelope. Handlers report failures with AbortWithError and never write
// error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	errType, code := classifyErrorForLog(err)

	switch errType {
	case "unauthorized":
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	case "validation_error":
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: code}
	case "not_found":
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: code}
	case "conflict":
		return http.StatusConflict, errorPayload{Type: "conflict", Message: code}
	case "payment_required":
		return http.StatusPaymentRequired, errorPayload{Type: "payment_required", Message: code}
	case "inconsistent":
		return http.StatusInternalServerError, errorPayload{Type: "inconsistent", Message: "billing state inconsistent"}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

// classifyErrorForLog buckets domain errors for both the response mapper
// and the request log. Primary store failures and invariant violations
// both land in the 500 family but keep distinct types so they can be told
// apart in logs.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, userdomain.ErrInvalidCredentials):
		return "unauthorized", "unauthorized"
	case errors.Is(err, ErrInvalidRequest):
		return "validation_error", "invalid request"
	case errors.Is(err, userdomain.ErrInvalidSignup):
		return "validation_error", "invalid signup"
	case errors.Is(err, instancedomain.ErrInvalidInstance):
		return "validation_error", "invalid instance"
	case errors.Is(err, billingdomain.ErrInvalidSpend):
		return "validation_error", "invalid spend"
	case errors.Is(err, userdomain.ErrUserNotFound):
		return "not_found", "user not found"
	case errors.Is(err, instancedomain.ErrInstanceNotFound):
		return "not_found", "instance not found"
	case errors.Is(err, billingdomain.ErrAccountNotFound):
		return "not_found", "billing account not found"
	case errors.Is(err, apikeydomain.ErrPropertyNotFound):
		return "not_found", "user property not found"
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return "not_found", "not found"
	case errors.Is(err, userdomain.ErrUsernameTaken):
		return "conflict", "username taken"
	case errors.Is(err, userdomain.ErrEmailTaken):
		return "conflict", "email taken"
	case errors.Is(err, instancedomain.ErrAlreadyActive):
		return "conflict", "instance already active"
	case errors.Is(err, instancedomain.ErrAlreadyInactive):
		return "conflict", "instance already inactive"
	case errors.Is(err, apikeydomain.ErrAlreadyActivated):
		return "conflict", "api key already active"
	case errors.Is(err, apikeydomain.ErrPaymentDeclined):
		return "payment_required", "payment declined"
	case errors.Is(err, instancedomain.ErrNoOpenWindow):
		return "inconsistent", err.Error()
	default:
		return "internal_error", "internal server error"
	}
}
