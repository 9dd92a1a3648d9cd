package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/approval"
	"github.com/frahmantamala/study-tracker/internal/core/events"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/frahmantamala/study-tracker/internal/session"
	"github.com/frahmantamala/study-tracker/internal/user"
)

// RepositoryAPI writes a new account: the user, its approval request and an optional admin grant.
type RepositoryAPI interface {
	CreateAccount(ctx context.Context, account *NewAccount) (*user.User, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, userID int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
}

type ApprovalReader interface {
	GetByEmail(ctx context.Context, email string) (*approval.Request, error)
}

type Dependencies struct {
	Accounts   RepositoryAPI
	Users      UserRepository
	Approvals  ApprovalReader
	Issuer     SessionIssuer
	Denylist   session.Denylist
	Publisher  events.Publisher
	Admin      internal.AdminConfig
	BCryptCost int
	Logger     *slog.Logger
}

type Service struct {
	accounts   RepositoryAPI
	users      UserRepository
	approvals  ApprovalReader
	issuer     SessionIssuer
	denylist   session.Denylist
	publisher  events.Publisher
	admin      internal.AdminConfig
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(deps Dependencies) *Service {
	denylist := deps.Denylist
	if denylist == nil {
		denylist = session.NoopDenylist{}
	}
	lg := deps.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		accounts:   deps.Accounts,
		users:      deps.Users,
		approvals:  deps.Approvals,
		issuer:     deps.Issuer,
		denylist:   denylist,
		publisher:  deps.Publisher,
		admin:      deps.Admin,
		bcryptCost: deps.BCryptCost,
		logger:     lg,
		now:        time.Now,
	}
}

// Signup registers a new account in the pending state, or approved for configured administrators.
// Any existing approval for the email blocks the signup, whatever its status.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*SignupResult, error) {
	dto = dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.approvals.GetByEmail(ctx, dto.Email)
	switch {
	case err == nil:
		return nil, signupConflict(existing.Status)
	case !errors.Is(err, internal.ErrApprovalNotFound):
		s.logger.ErrorContext(ctx, "signup: failed to check existing approval", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("Failed to create account", err)
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to create account", err)
	}

	isAdmin := s.admin.IsAdminEmail(dto.Email)
	status := approval.InitialStatus(isAdmin)

	created, err := s.accounts.CreateAccount(ctx, &NewAccount{
		Email:        dto.Email,
		Name:         dto.Username,
		PasswordHash: hash,
		Status:       status,
		GrantAdmin:   isAdmin,
		RequestedAt:  s.now(),
	})
	if err != nil {
		if errors.Is(err, internal.ErrAlreadyRegistered) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "signup: failed to create account", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("Failed to create account", err)
	}

	s.logger.InfoContext(ctx, "account created",
		"user_id", created.ID,
		"email", created.Email,
		"status", status,
		"admin", isAdmin)

	if s.publisher != nil {
		event := events.NewUserSignedUpEvent(created.ID, created.Email, created.Name, string(status))
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "signup: failed to publish event", "error", err, "user_id", created.ID)
		}
	}

	return &SignupResult{Success: true, Status: status, UserID: created.ID}, nil
}

func signupConflict(status approval.Status) error {
	switch status {
	case approval.StatusApproved:
		return internal.ErrAlreadyRegistered
	case approval.StatusRejected:
		return internal.ErrPreviouslyRejected
	default:
		return internal.ErrSignupPending
	}
}

// Login checks the approval state before the password, so pending and rejected
// accounts learn their status without a session being issued.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	dto = dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.approvals.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrApprovalNotFound) {
			return nil, internal.ErrAccountNotFound
		}
		s.logger.ErrorContext(ctx, "login: failed to load approval", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("Login failed", err)
	}

	switch req.Status {
	case approval.StatusPending:
		return nil, internal.ErrAccountPending
	case approval.StatusRejected:
		return nil, internal.ErrAccountRejected
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "login: failed to load user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("Login failed", err)
	}

	if !VerifyPassword(u.PasswordHash, dto.Password) {
		s.logger.WarnContext(ctx, "login: password mismatch", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	perms, err := s.users.GetPermissions(ctx, u.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "login: failed to load permissions", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("Login failed", err)
	}
	u.Permissions = perms

	token, claims, err := s.issuer.Issue(u.Principal())
	if err != nil {
		return nil, internal.NewInternalError("Login failed", err)
	}

	s.logger.InfoContext(ctx, "session issued", "user_id", u.ID, "session_id", claims.ID)

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User: SessionUser{
			ID:      u.ID,
			Email:   u.Email,
			Name:    u.Name,
			IsAdmin: u.IsAdmin(),
		},
	}, nil
}

// ValidateSession resolves a bearer token into the request principal.
func (s *Service) ValidateSession(ctx context.Context, token string) (*coreuser.User, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "session denylist lookup failed", "error", err, "session_id", claims.ID)
		return nil, internal.NewInternalError("Failed to verify session", err)
	}
	if revoked {
		return nil, internal.ErrSessionRevoked
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUnauthorized
		}
		return nil, internal.NewInternalError("Failed to verify session", err)
	}

	perms, err := s.users.GetPermissions(ctx, u.ID)
	if err != nil {
		return nil, internal.NewInternalError("Failed to verify session", err)
	}
	u.Permissions = perms

	principal := u.Principal()
	principal.SessionID = claims.ID
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Logout revokes the caller's session until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, principal *coreuser.User) error {
	if principal == nil || principal.SessionID == "" {
		return internal.ErrUnauthorized
	}
	if err := s.denylist.Revoke(ctx, principal.SessionID, principal.ExpiresAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke session", "error", err, "session_id", principal.SessionID)
		return internal.NewInternalError("Failed to log out", err)
	}
	s.logger.InfoContext(ctx, "session revoked", "user_id", principal.ID, "session_id", principal.SessionID)
	return nil
}
