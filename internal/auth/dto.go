package auth

import (
	"strings"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/approval"
	"github.com/frahmantamala/study-tracker/internal/core/common/validation"
)

type SignupDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d SignupDTO) Normalize() SignupDTO {
	d.Email = validation.NormalizeEmail(d.Email)
	d.Username = strings.TrimSpace(d.Username)
	return d
}

func (d SignupDTO) Validate() error {
	if d.Email == "" || d.Username == "" || d.Password == "" {
		return internal.ErrMissingFields
	}
	if !validation.LooksLikeEmail(d.Email) {
		return internal.ErrInvalidEmail
	}
	return nil
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Normalize() LoginDTO {
	d.Email = validation.NormalizeEmail(d.Email)
	return d
}

func (d LoginDTO) Validate() error {
	if d.Email == "" || d.Password == "" {
		return internal.ErrMissingFields
	}
	return nil
}

// NewAccount is everything the signup transaction writes.
type NewAccount struct {
	Email        string
	Name         string
	PasswordHash string
	Status       approval.Status
	GrantAdmin   bool
	RequestedAt  time.Time
}

type SignupResult struct {
	Success bool            `json:"success"`
	Status  approval.Status `json:"status"`
	UserID  int64           `json:"-"`
}

type SessionUser struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}
