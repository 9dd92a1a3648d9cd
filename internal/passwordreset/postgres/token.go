package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/study-tracker/internal"
	passwordresetDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/passwordreset"
	userDatamodel "github.com/frahmantamala/study-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/study-tracker/internal/passwordreset"
	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *passwordreset.Token) error {
	row := passwordreset.ToDataModel(token)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	token.ID = row.ID
	token.CreatedAt = row.CreatedAt
	return nil
}

func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*passwordreset.Token, error) {
	var row passwordresetDatamodel.Token
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrInvalidResetToken
		}
		return nil, err
	}
	return passwordreset.FromDataModel(&row), nil
}

// Redeem claims the token with a conditional update before touching the password,
// so two concurrent redemptions cannot both succeed.
func (r *TokenRepository) Redeem(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&passwordresetDatamodel.Token{}).
			Where("id = ? AND used = ?", tokenID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrResetTokenUsed
		}

		res = tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Update("password_hash", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}
