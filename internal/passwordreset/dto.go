package passwordreset

import (
	"strings"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/core/common/validation"
)

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (d ForgotPasswordDTO) Validate() (string, error) {
	email := validation.NormalizeEmail(d.Email)
	if email == "" || !validation.LooksLikeEmail(email) {
		return "", internal.ErrInvalidEmail
	}
	return email, nil
}

type ResetPasswordDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (d ResetPasswordDTO) Validate() error {
	if strings.TrimSpace(d.Token) == "" || d.Password == "" {
		return internal.ErrResetFieldsRequired
	}

	v := validation.NewValidator()
	v.Field("password", d.Password).MinLength(MinPasswordLength)
	if v.Validate() != nil {
		return internal.ErrPasswordTooShort
	}
	return nil
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
