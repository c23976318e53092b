package repository

import (
	"context"
	"errors"

	"github.com/waveline/backstage/internal/entity"
	"gorm.io/gorm"
)

// AccountRepo is the MySQL repository for account operations
type AccountRepo struct {
	db *gorm.DB
}

// NewAccountRepo creates a new AccountRepo
func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Create creates a new account
func (r *AccountRepo) Create(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetById gets account by id
func (r *AccountRepo) GetById(ctx context.Context, id int64) (*entity.Account, error) {
	var account entity.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByUsername gets account by username
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	var account entity.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
