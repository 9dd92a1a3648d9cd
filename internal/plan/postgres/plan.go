package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/study-tracker/internal"
	planDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/plan"
	"github.com/frahmantamala/study-tracker/internal/plan"
	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	row := plan.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	return nil
}

func (r *PlanRepository) ListByDate(ctx context.Context, userID int64, date plan.Date) ([]*plan.Plan, error) {
	var rows []planDatamodel.DailyPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND planned_date = ?", userID, date.Time()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

func (r *PlanRepository) CountByDate(ctx context.Context, userID int64, date plan.Date) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&planDatamodel.DailyPlan{}).
		Where("user_id = ? AND planned_date = ?", userID, date.Time()).
		Count(&count).Error
	return count, err
}

func (r *PlanRepository) RolloverBefore(ctx context.Context, userID int64, today plan.Date) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&planDatamodel.DailyPlan{}).
		Where("user_id = ? AND status = ? AND planned_date < ?", userID, string(plan.StatusPlanned), today.Time()).
		Update("planned_date", today.Time())
	return result.RowsAffected, result.Error
}

func (r *PlanRepository) UpdateStatus(ctx context.Context, id, userID int64, status plan.Status, completedAt *time.Time, plannedDate *plan.Date) (*plan.Plan, error) {
	updates := map[string]interface{}{
		"status":       string(status),
		"completed_at": completedAt,
	}
	if plannedDate != nil {
		updates["planned_date"] = plannedDate.Time()
	}

	var row planDatamodel.DailyPlan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&planDatamodel.DailyPlan{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrPlanNotFound
		}
		return tx.First(&row, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPlanNotFound
		}
		return nil, err
	}
	return plan.FromDataModel(&row), nil
}

func (r *PlanRepository) ListCompleted(ctx context.Context, userID int64, limit int) ([]*plan.Plan, error) {
	var rows []planDatamodel.DailyPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(plan.StatusDone)).
		Order("completed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

func toDomain(rows []planDatamodel.DailyPlan) []*plan.Plan {
	plans := make([]*plan.Plan, 0, len(rows))
	for i := range rows {
		plans = append(plans, plan.FromDataModel(&rows[i]))
	}
	return plans
}
