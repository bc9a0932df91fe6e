package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service interface {
	// Signup creates the user plus its companion user_property and billing
	// account rows in one coordinated transaction.
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, error)
	// FindByAccessKey resolves a caller identity from its access key.
	FindByAccessKey(ctx context.Context, eakey string) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
}

var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSignup      = errors.New("invalid_signup")
)
