// Package domain defines name-based login. There are no passwords: an
// evaluator identifies by full name, and the normalized name is the
// identity every ledger row and admin check keys on.
package domain

import (
	"context"
	"errors"
	"time"
)

// Session is one live login.
type Session struct {
	Token     string    `json:"-"`
	UserName  string    `json:"user_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Name string `json:"name"`
}

type LoginResult struct {
	Session  *Session
	RawToken string
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrSessionNotFound = errors.New("session_not_found")
	ErrSessionExpired  = errors.New("session_expired")
)
