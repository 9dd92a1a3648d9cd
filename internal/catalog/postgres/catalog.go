package postgres

import (
	"context"
	"errors"

	catalogDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalogDatamodel.Category, error) {
	var rows []catalogDatamodel.Category
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) ListPatterns(ctx context.Context) ([]catalogDatamodel.Pattern, error) {
	var rows []catalogDatamodel.Pattern
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) ListProblems(ctx context.Context) ([]catalogDatamodel.Problem, error) {
	var rows []catalogDatamodel.Problem
	err := r.db.WithContext(ctx).Order("display_order ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) ProblemExists(ctx context.Context, problemID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalogDatamodel.Problem{}).Where("id = ?", problemID).Count(&count).Error
	return count > 0, err
}

func (r *CatalogRepository) ListProgress(ctx context.Context, userID int64) ([]catalogDatamodel.Progress, error) {
	var rows []catalogDatamodel.Progress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("problem_id ASC").Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) GetProgress(ctx context.Context, userID, problemID int64) (*catalogDatamodel.Progress, error) {
	var row catalogDatamodel.Progress
	err := r.db.WithContext(ctx).Where("user_id = ? AND problem_id = ?", userID, problemID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *CatalogRepository) SaveProgress(ctx context.Context, p *catalogDatamodel.Progress) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *CatalogRepository) DeleteProgress(ctx context.Context, userID, problemID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Delete(&catalogDatamodel.Progress{}).Error
}

func (r *CatalogRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&catalogDatamodel.Progress{},
			&catalogDatamodel.Problem{},
			&catalogDatamodel.Pattern{},
			&catalogDatamodel.Category{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// The upserts re-read the row so the caller always gets the stored ID, whether it was inserted or updated.

func (r *CatalogRepository) UpsertCategory(ctx context.Context, c *catalogDatamodel.Category) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"icon", "description", "display_order"}),
	}).Create(c).Error
	if err != nil {
		return err
	}
	var stored catalogDatamodel.Category
	if err := db.Where("name = ?", c.Name).First(&stored).Error; err != nil {
		return err
	}
	c.ID = stored.ID
	return nil
}

func (r *CatalogRepository) UpsertPattern(ctx context.Context, p *catalogDatamodel.Pattern) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "difficulty_level", "display_order"}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	var stored catalogDatamodel.Pattern
	if err := db.Where("category_id = ? AND name = ?", p.CategoryID, p.Name).First(&stored).Error; err != nil {
		return err
	}
	p.ID = stored.ID
	return nil
}

func (r *CatalogRepository) UpsertProblem(ctx context.Context, p *catalogDatamodel.Problem) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pattern_id"}, {Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"difficulty", "leetcode_url", "display_order", "is_premium"}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	var stored catalogDatamodel.Problem
	if err := db.Where("pattern_id = ? AND title = ?", p.PatternID, p.Title).First(&stored).Error; err != nil {
		return err
	}
	p.ID = stored.ID
	return nil
}
