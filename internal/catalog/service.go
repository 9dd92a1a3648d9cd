package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	catalogDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/catalog"
)

type RepositoryAPI interface {
	ListCategories(ctx context.Context) ([]catalogDatamodel.Category, error)
	ListPatterns(ctx context.Context) ([]catalogDatamodel.Pattern, error)
	ListProblems(ctx context.Context) ([]catalogDatamodel.Problem, error)
	ProblemExists(ctx context.Context, problemID int64) (bool, error)
}

type ProgressRepository interface {
	ListProgress(ctx context.Context, userID int64) ([]catalogDatamodel.Progress, error)
	// GetProgress returns nil without error when the user has no record.
	GetProgress(ctx context.Context, userID, problemID int64) (*catalogDatamodel.Progress, error)
	SaveProgress(ctx context.Context, p *catalogDatamodel.Progress) error
	DeleteProgress(ctx context.Context, userID, problemID int64) error
}

type Service struct {
	catalog  RepositoryAPI
	progress ProgressRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(catalog RepositoryAPI, progress ProgressRepository, logger *slog.Logger) *Service {
	return &Service{
		catalog:  catalog,
		progress: progress,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) GetCatalog(ctx context.Context) (*CatalogResponse, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list categories", "error", err)
		return nil, internal.NewInternalError("Failed to fetch catalog", err)
	}
	patterns, err := s.catalog.ListPatterns(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list patterns", "error", err)
		return nil, internal.NewInternalError("Failed to fetch catalog", err)
	}
	problems, err := s.catalog.ListProblems(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list problems", "error", err)
		return nil, internal.NewInternalError("Failed to fetch catalog", err)
	}

	return &CatalogResponse{Categories: BuildTree(categories, patterns, problems)}, nil
}

func (s *Service) ListProgress(ctx context.Context, userID int64) (*ProgressResponse, error) {
	rows, err := s.progress.ListProgress(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list progress", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("Failed to fetch progress", err)
	}
	return &ProgressResponse{Progress: ProgressFromDataModel(rows)}, nil
}

// ToggleProgress flips a problem between solved and unsolved for the user.
// Marking an existing unsolved record solved again counts as a revision.
func (s *Service) ToggleProgress(ctx context.Context, userID, problemID int64) (*ToggleResponse, error) {
	exists, err := s.catalog.ProblemExists(ctx, problemID)
	if err != nil {
		return nil, internal.NewInternalError("Failed to update progress", err)
	}
	if !exists {
		return nil, internal.ErrProblemNotFound
	}

	current, err := s.progress.GetProgress(ctx, userID, problemID)
	if err != nil {
		return nil, internal.NewInternalError("Failed to update progress", err)
	}

	if current != nil && current.Status == ProgressSolved {
		if err := s.progress.DeleteProgress(ctx, userID, problemID); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear progress", "error", err, "user_id", userID, "problem_id", problemID)
			return nil, internal.NewInternalError("Failed to update progress", err)
		}
		return &ToggleResponse{ProblemID: problemID, Solved: false}, nil
	}

	now := s.now()
	if current == nil {
		current = &catalogDatamodel.Progress{
			UserID:        userID,
			ProblemID:     problemID,
			FirstSolvedAt: &now,
		}
	}
	current.Status = ProgressSolved
	current.LastSolvedAt = &now
	current.RevisionCount++

	if err := s.progress.SaveProgress(ctx, current); err != nil {
		s.logger.ErrorContext(ctx, "failed to save progress", "error", err, "user_id", userID, "problem_id", problemID)
		return nil, internal.NewInternalError("Failed to update progress", err)
	}

	return &ToggleResponse{ProblemID: problemID, Solved: true, Progress: progressFromDataModel(current)}, nil
}
