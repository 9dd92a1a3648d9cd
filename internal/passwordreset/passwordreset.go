package passwordreset

import (
	"net/url"
	"strings"
	"time"

	passwordresetDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/passwordreset"
)

const (
	GenericRequestMessage = "If an account exists with this email, you will receive a password reset link shortly."
	ResetSuccessMessage   = "Password has been reset successfully. You can now login with your new password."
	MinPasswordLength     = 6
	UnknownIP             = "unknown"
)

type Token struct {
	ID        int64
	UserID    int64
	Email     string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ResetLink builds the URL sent in the reset email.
func ResetLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

func ToDataModel(t *Token) *passwordresetDatamodel.Token {
	return &passwordresetDatamodel.Token{
		ID:        t.ID,
		UserID:    t.UserID,
		Email:     t.Email,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}

func FromDataModel(t *passwordresetDatamodel.Token) *Token {
	return &Token{
		ID:        t.ID,
		UserID:    t.UserID,
		Email:     t.Email,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}
