package repository

import (
	"context"
	"errors"

	"github.com/waveline/backstage/internal/entity"
	"gorm.io/gorm"
)

// ArtistRepo is the MySQL repository for artist profile operations
type ArtistRepo struct {
	db *gorm.DB
}

// NewArtistRepo creates a new ArtistRepo
func NewArtistRepo(db *gorm.DB) *ArtistRepo {
	return &ArtistRepo{db: db}
}

// Create creates a new artist profile. The unique index on owner_account_id
// enforces at most one profile per account.
func (r *ArtistRepo) Create(ctx context.Context, profile *entity.ArtistProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetById gets artist profile by id
func (r *ArtistRepo) GetById(ctx context.Context, id int64) (*entity.ArtistProfile, error) {
	var profile entity.ArtistProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByOwner gets the artist profile owned by an account, nil if none
func (r *ArtistRepo) GetByOwner(ctx context.Context, ownerAccountId int64) (*entity.ArtistProfile, error) {
	var profile entity.ArtistProfile
	err := r.db.WithContext(ctx).Where("owner_account_id = ?", ownerAccountId).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
