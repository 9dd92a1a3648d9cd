package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/study-tracker/internal"
	userDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/study-tracker/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("permissions p").
		Joins("JOIN user_permissions up ON p.id = up.permission_id").
		Where("up.user_id = ?", userID).
		Order("p.name ASC").
		Pluck("p.name", &names).Error
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GrantPermission creates the permission row if needed and links it to the user. Repeated grants are no-ops.
func (r *UserRepository) GrantPermission(ctx context.Context, userID int64, permission string, grantedBy *int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return GrantPermissionTx(tx, userID, permission, grantedBy)
	})
}

// GrantPermissionTx is shared with the signup transaction.
func GrantPermissionTx(tx *gorm.DB, userID int64, permission string, grantedBy *int64) error {
	perm := userDatamodel.Permission{Name: permission}
	if err := tx.Where(userDatamodel.Permission{Name: permission}).FirstOrCreate(&perm).Error; err != nil {
		return err
	}

	link := userDatamodel.UserPermission{
		UserID:       userID,
		PermissionID: perm.ID,
		GrantedBy:    grantedBy,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// EnsurePermission makes sure a named permission exists before anyone holds it.
func (r *UserRepository) EnsurePermission(ctx context.Context, name, description string) error {
	perm := userDatamodel.Permission{Name: name, Description: description}
	return r.db.WithContext(ctx).
		Where(userDatamodel.Permission{Name: name}).
		Attrs(userDatamodel.Permission{Description: description}).
		FirstOrCreate(&perm).Error
}
