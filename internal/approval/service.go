package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/core/events"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*Request, error)
	GetByUserID(ctx context.Context, userID int64) (*Request, error)
	GetByEmail(ctx context.Context, email string) (*Request, error)
	ListAll(ctx context.Context) ([]*Request, error)
	// UpdateStatus only moves a pending request; a reviewed one yields internal.ErrApprovalReviewed.
	UpdateStatus(ctx context.Context, id int64, status Status, reviewerID int64, reviewedAt time.Time, notes *string) (*Request, error)
}

// UserLookup resolves the display name used in the approval email.
type UserLookup interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

type Service struct {
	repo      RepositoryAPI
	users     UserLookup
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, users UserLookup, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// GetStatus returns the caller's current approval status.
func (s *Service) GetStatus(ctx context.Context, userID int64) (Status, error) {
	req, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrApprovalNotFound) {
			return "", err
		}
		s.logger.ErrorContext(ctx, "failed to load approval status", "error", err, "user_id", userID)
		return "", internal.NewInternalError("Failed to load approval status", err)
	}
	return req.Status, nil
}

// CheckAccess gates study routes. It is re-evaluated on every request because approval can change at any time.
func (s *Service) CheckAccess(ctx context.Context, principal *coreuser.User) error {
	if coreuser.IsAdmin(principal) {
		return nil
	}

	status, err := s.GetStatus(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, internal.ErrApprovalNotFound) {
			return internal.ErrAccountPending
		}
		return err
	}

	switch status {
	case StatusApproved:
		return nil
	case StatusRejected:
		return internal.ErrAccountRejected
	default:
		return internal.ErrAccountPending
	}
}

func (s *Service) ListApprovals(ctx context.Context, principal *coreuser.User) ([]*Request, error) {
	if !coreuser.IsAdmin(principal) {
		return nil, internal.ErrForbidden
	}

	requests, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list approvals", "error", err)
		return nil, internal.NewInternalError("Failed to fetch approvals", err)
	}
	return requests, nil
}

// Decide moves a pending request to approved or rejected, stamping the reviewer.
// The notification is published after the update is committed and can never undo it.
func (s *Service) Decide(ctx context.Context, reviewer *coreuser.User, dto DecisionDTO) (*Request, error) {
	if !coreuser.IsAdmin(reviewer) {
		s.logger.WarnContext(ctx, "approval decision denied: not an administrator", "user_id", reviewerID(reviewer))
		return nil, internal.ErrForbidden
	}

	status, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		if errors.Is(err, internal.ErrApprovalNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "failed to load approval", "error", err, "approval_id", dto.ID)
		return nil, internal.NewInternalError("Failed to update approval", err)
	}

	if !current.CanBeReviewed() {
		s.logger.WarnContext(ctx, "approval already reviewed",
			"approval_id", dto.ID,
			"current_status", current.Status)
		return nil, internal.ErrApprovalReviewed
	}

	updated, err := s.repo.UpdateStatus(ctx, dto.ID, status, reviewer.ID, s.now(), dto.Notes)
	if err != nil {
		if errors.Is(err, internal.ErrApprovalReviewed) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "failed to update approval status", "error", err, "approval_id", dto.ID)
		return nil, internal.NewInternalError("Failed to update approval", err)
	}

	s.logger.InfoContext(ctx, "approval decided",
		"approval_id", updated.ID,
		"user_id", updated.UserID,
		"status", updated.Status,
		"reviewer_id", reviewer.ID)

	s.publishDecision(ctx, updated, reviewer.ID)

	return updated, nil
}

func (s *Service) publishDecision(ctx context.Context, req *Request, reviewer int64) {
	if s.publisher == nil {
		return
	}

	eventType := events.EventTypeApprovalRejected
	if req.Status == StatusApproved {
		eventType = events.EventTypeApprovalApproved
	}

	name := req.Username
	if name == "" && s.users != nil {
		n, err := s.users.DisplayName(ctx, req.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "could not resolve display name for notification", "user_id", req.UserID, "error", err)
		} else {
			name = n
		}
	}

	event := events.NewApprovalDecidedEvent(eventType, req.ID, req.UserID, req.Email, name, reviewer)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish approval event", "error", err, "approval_id", req.ID)
	}
}

func reviewerID(u *coreuser.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
