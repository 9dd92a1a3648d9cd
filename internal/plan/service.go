package plan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
)

const (
	DayToday    = "today"
	DayTomorrow = "tomorrow"

	historyLimit = 200
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *Plan) error
	ListByDate(ctx context.Context, userID int64, date Date) ([]*Plan, error)
	CountByDate(ctx context.Context, userID int64, date Date) (int64, error)
	// RolloverBefore moves PLANNED items dated before today onto today.
	RolloverBefore(ctx context.Context, userID int64, today Date) (int64, error)
	// UpdateStatus only touches the caller's own plan; anything else is internal.ErrPlanNotFound.
	UpdateStatus(ctx context.Context, id, userID int64, status Status, completedAt *time.Time, plannedDate *Date) (*Plan, error)
	ListCompleted(ctx context.Context, userID int64, limit int) ([]*Plan, error)
}

type Service struct {
	repo     RepositoryAPI
	calendar *Calendar
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, calendar *Calendar, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		calendar: calendar,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, dto CreatePlanDTO) (*Plan, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	date := s.calendar.Today()
	if dto.PlannedDate != "" {
		date, _ = ParseDate(dto.PlannedDate)
	}

	p := &Plan{
		UserID:       userID,
		ProblemTitle: dto.ProblemTitle,
		Topic:        dto.Topic,
		Platform:     dto.Platform,
		Difficulty:   dto.Difficulty,
		Status:       StatusPlanned,
		PlannedDate:  date,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to create plan", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("Failed to create plan", err)
	}
	return p, nil
}

// ListDay rolls unfinished past items onto today, then lists the requested day.
func (s *Service) ListDay(ctx context.Context, userID int64, day string) (*DayResponse, error) {
	var date Date
	switch day {
	case "", DayToday:
		day = DayToday
		date = s.calendar.Today()
	case DayTomorrow:
		date = s.calendar.Tomorrow()
	default:
		return nil, internal.ErrInvalidParameters
	}

	moved, err := s.repo.RolloverBefore(ctx, userID, s.calendar.Today())
	if err != nil {
		// the listing is still useful without the rollover
		s.logger.ErrorContext(ctx, "plan rollover failed", "error", err, "user_id", userID)
		moved = 0
	} else if moved > 0 {
		s.logger.InfoContext(ctx, "rolled over unfinished plans", "user_id", userID, "count", moved)
	}

	plans, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list plans", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("Failed to fetch plans", err)
	}
	if plans == nil {
		plans = []*Plan{}
	}

	return &DayResponse{Day: day, Date: date.String(), RolledOver: moved, Plans: plans}, nil
}

func (s *Service) Counts(ctx context.Context, userID int64) (*CountsResponse, error) {
	today, err := s.repo.CountByDate(ctx, userID, s.calendar.Today())
	if err != nil {
		return nil, internal.NewInternalError("Failed to count plans", err)
	}
	tomorrow, err := s.repo.CountByDate(ctx, userID, s.calendar.Tomorrow())
	if err != nil {
		return nil, internal.NewInternalError("Failed to count plans", err)
	}
	return &CountsResponse{Today: today, Tomorrow: tomorrow}, nil
}

func (s *Service) MarkDone(ctx context.Context, userID, planID int64) (*Plan, error) {
	now := s.now()
	return s.updateStatus(ctx, userID, planID, StatusDone, &now, nil)
}

// MarkSkipped also moves the plan to tomorrow.
func (s *Service) MarkSkipped(ctx context.Context, userID, planID int64) (*Plan, error) {
	tomorrow := s.calendar.Tomorrow()
	return s.updateStatus(ctx, userID, planID, StatusSkipped, nil, &tomorrow)
}

func (s *Service) updateStatus(ctx context.Context, userID, planID int64, status Status, completedAt *time.Time, plannedDate *Date) (*Plan, error) {
	updated, err := s.repo.UpdateStatus(ctx, planID, userID, status, completedAt, plannedDate)
	if err != nil {
		if errors.Is(err, internal.ErrPlanNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "failed to update plan", "error", err, "plan_id", planID, "status", status)
		return nil, internal.NewInternalError("Failed to update plan", err)
	}
	return updated, nil
}

func (s *Service) History(ctx context.Context, userID int64) ([]*Plan, error) {
	plans, err := s.repo.ListCompleted(ctx, userID, historyLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load plan history", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("Failed to fetch history", err)
	}
	if plans == nil {
		plans = []*Plan{}
	}
	return plans, nil
}
