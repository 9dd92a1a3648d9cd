package passwordreset

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/auth"
	"github.com/frahmantamala/study-tracker/internal/core/events"
	"github.com/frahmantamala/study-tracker/internal/user"
)

type TokenRepository interface {
	Create(ctx context.Context, token *Token) error
	GetByToken(ctx context.Context, token string) (*Token, error)
	// Redeem marks the token used and stores the new hash atomically. A token already used yields internal.ErrResetTokenUsed.
	Redeem(ctx context.Context, tokenID, userID int64, passwordHash string) error
}

type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type Service struct {
	tokens     TokenRepository
	users      UserLookup
	limiter    *RateLimiter
	publisher  events.Publisher
	tokenTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time
	newToken   func() (string, error)
}

func NewService(tokens TokenRepository, users UserLookup, limiter *RateLimiter, publisher events.Publisher, tokenTTL time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		tokens:     tokens,
		users:      users,
		limiter:    limiter,
		publisher:  publisher,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
		newToken:   auth.GenerateRandomToken,
	}
}

// RequestReset answers identically whether or not the email has an account.
func (s *Service) RequestReset(ctx context.Context, dto ForgotPasswordDTO, ip string) (*MessageResponse, error) {
	email, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	if ip == "" {
		ip = UnknownIP
	}

	if err := s.limiter.Check(ctx, email); err != nil {
		return nil, err
	}
	s.limiter.Record(ctx, email, ip)

	generic := &MessageResponse{Success: true, Message: GenericRequestMessage}

	// a failed lookup answers like an unknown email so the response never reveals the account
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.InfoContext(ctx, "reset requested for unknown email", "email", email, "ip", ip)
		} else {
			s.logger.ErrorContext(ctx, "reset: failed to look up user", "error", err, "email", email)
		}
		return generic, nil
	}

	value, err := s.newToken()
	if err != nil {
		return nil, internal.NewInternalError("Failed to process password reset request", err)
	}

	token := &Token{
		UserID:    u.ID,
		Email:     email,
		Token:     value,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "reset: failed to store token", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("Failed to process password reset request", err)
	}

	s.logger.InfoContext(ctx, "reset token issued", "user_id", u.ID, "expires_at", token.ExpiresAt)

	if s.publisher != nil {
		event := events.NewPasswordResetRequestedEvent(u.ID, email, u.Name, token.Token, token.ExpiresAt)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "reset: failed to publish event", "error", err, "user_id", u.ID)
		}
	}

	return generic, nil
}

// Redeem sets a new password using a single-use, unexpired token.
func (s *Service) Redeem(ctx context.Context, dto ResetPasswordDTO) (*MessageResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	token, err := s.tokens.GetByToken(ctx, dto.Token)
	if err != nil {
		if errors.Is(err, internal.ErrInvalidResetToken) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "reset: failed to load token", "error", err)
		return nil, internal.NewInternalError("Failed to reset password", err)
	}

	if token.Used {
		return nil, internal.ErrResetTokenUsed
	}
	if token.IsExpired(s.now()) {
		return nil, internal.ErrResetTokenExpired
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to reset password", err)
	}

	if err := s.tokens.Redeem(ctx, token.ID, token.UserID, hash); err != nil {
		if errors.Is(err, internal.ErrResetTokenUsed) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "reset: failed to update password", "error", err, "user_id", token.UserID)
		return nil, internal.NewInternalError("Failed to reset password", err)
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", token.UserID)
	return &MessageResponse{Success: true, Message: ResetSuccessMessage}, nil
}
