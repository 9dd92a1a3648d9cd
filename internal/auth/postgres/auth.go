package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/study-tracker/internal"
	"github.com/frahmantamala/study-tracker/internal/auth"
	approvalDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/approval"
	userDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/user"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
	"github.com/frahmantamala/study-tracker/internal/user"
	userpostgres "github.com/frahmantamala/study-tracker/internal/user/postgres"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateAccount writes the user and its approval request in one transaction, so a
// failure can never leave a user without an approval record.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *auth.NewAccount) (*user.User, error) {
	row := userDatamodel.User{
		Email:        account.Email,
		Name:         account.Name,
		PasswordHash: account.PasswordHash,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		req := approvalDatamodel.ApprovalRequest{
			UserID:      row.ID,
			Email:       account.Email,
			Status:      string(account.Status),
			RequestedAt: account.RequestedAt,
		}
		if err := tx.Create(&req).Error; err != nil {
			return err
		}

		if account.GrantAdmin {
			return userpostgres.GrantPermissionTx(tx, row.ID, coreuser.PermissionAdmin, nil)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrAlreadyRegistered
		}
		return nil, err
	}

	created := user.FromDataModel(&row)
	if account.GrantAdmin {
		created.Permissions = []string{coreuser.PermissionAdmin}
	}
	return created, nil
}
