package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/approval"
	approvalDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/approval"
	"gorm.io/gorm"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) first(ctx context.Context, query string, arg interface{}) (*approval.Request, error) {
	var row approvalDatamodel.ApprovalRequest
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrApprovalNotFound
		}
		return nil, err
	}
	return approval.FromDataModel(&row), nil
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id int64) (*approval.Request, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ApprovalRepository) GetByUserID(ctx context.Context, userID int64) (*approval.Request, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *ApprovalRepository) GetByEmail(ctx context.Context, email string) (*approval.Request, error) {
	return r.first(ctx, "email = ?", email)
}

// ListAll returns every request, newest first, with the requesting user's name.
func (r *ApprovalRepository) ListAll(ctx context.Context) ([]*approval.Request, error) {
	var rows []approvalDatamodel.ApprovalWithUser
	err := r.db.WithContext(ctx).
		Table("approval_requests AS ar").
		Select("ar.*, u.name AS username").
		Joins("LEFT JOIN users u ON u.id = ar.user_id").
		Order("ar.requested_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*approval.Request, 0, len(rows))
	for i := range rows {
		req := approval.FromDataModel(&rows[i].ApprovalRequest)
		req.Username = rows[i].Username
		out = append(out, req)
	}
	return out, nil
}

// UpdateStatus is a single conditional UPDATE so two reviewers cannot both decide the same request.
func (r *ApprovalRepository) UpdateStatus(ctx context.Context, id int64, status approval.Status, reviewerID int64, reviewedAt time.Time, notes *string) (*approval.Request, error) {
	updates := map[string]interface{}{
		"status":      string(status),
		"reviewed_at": reviewedAt,
		"reviewed_by": reviewerID,
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	res := r.db.WithContext(ctx).
		Model(&approvalDatamodel.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, string(approval.StatusPending)).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, internal.ErrApprovalReviewed
	}

	return r.GetByID(ctx, id)
}
