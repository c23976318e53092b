package service

import (
	"context"
	"errors"

	"github.com/waveline/backstage/internal/entity"
	"github.com/waveline/backstage/internal/repository"
	"github.com/waveline/backstage/pkg/constant"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/idgen"
	"github.com/waveline/backstage/pkg/logger"
	"gorm.io/gorm"
)

// ArtistService handles artist profile ownership and identity selection
type ArtistService struct {
	artistRepo repository.ArtistRepository
}

// NewArtistService creates a new ArtistService
func NewArtistService(artistRepo repository.ArtistRepository) *ArtistService {
	return &ArtistService{artistRepo: artistRepo}
}

// BecomeArtistRequest represents become artist request
type BecomeArtistRequest struct {
	Name string `json:"name"`
}

// BecomeArtist creates the account's artist profile. At most one per account.
func (s *ArtistService) BecomeArtist(ctx context.Context, accountId int64, req *BecomeArtistRequest) (*entity.ArtistInfo, error) {
	if req.Name == "" {
		return nil, errcode.ErrInvalidParam
	}

	existing, err := s.artistRepo.GetByOwner(ctx, accountId)
	if err != nil {
		logger.CtxError(ctx, "check artist profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if existing != nil {
		return nil, errcode.ErrArtistExists
	}

	profileId, err := idgen.NextID()
	if err != nil {
		logger.CtxError(ctx, "generate artist profile id failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	profile := &entity.ArtistProfile{
		Id:             profileId,
		Name:           req.Name,
		OwnerAccountId: accountId,
	}

	if err := s.artistRepo.Create(ctx, profile); err != nil {
		// The unique owner index closes the check-then-create race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errcode.ErrArtistExists
		}
		logger.CtxError(ctx, "create artist profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	logger.CtxInfo(ctx, "artist profile created: artist_id=%d, owner_account_id=%d", profileId, accountId)
	return profile.ToArtistInfo(), nil
}

// GetArtist gets artist profile info by id
func (s *ArtistService) GetArtist(ctx context.Context, artistId int64) (*entity.ArtistInfo, error) {
	profile, err := s.artistRepo.GetById(ctx, artistId)
	if err != nil {
		logger.CtxError(ctx, "get artist profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if profile == nil {
		return nil, errcode.ErrArtistNotFound
	}
	return profile.ToArtistInfo(), nil
}

// GetOwnArtist gets the artist profile owned by the account, or
// ErrNoArtistProfile
func (s *ArtistService) GetOwnArtist(ctx context.Context, accountId int64) (*entity.ArtistInfo, error) {
	profile, err := s.artistRepo.GetByOwner(ctx, accountId)
	if err != nil {
		logger.CtxError(ctx, "get own artist profile failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if profile == nil {
		return nil, errcode.ErrNoArtistProfile
	}
	return profile.ToArtistInfo(), nil
}

// ResolveIdentity returns the identity an account acts as for the requested
// kind. Kind 0 defaults to PERSON. Acting as ARTIST requires an owned
// profile; without one this fails with ErrNoArtistProfile.
func (s *ArtistService) ResolveIdentity(ctx context.Context, accountId int64, kind int32) (entity.IdentityRef, error) {
	switch kind {
	case 0, constant.IdentityKindPerson:
		return entity.PersonIdentity(accountId), nil
	case constant.IdentityKindArtist:
		profile, err := s.artistRepo.GetByOwner(ctx, accountId)
		if err != nil {
			logger.CtxError(ctx, "get artist profile failed: %v", err)
			return entity.IdentityRef{}, errcode.ErrInternalServer
		}
		if profile == nil {
			return entity.IdentityRef{}, errcode.ErrNoArtistProfile
		}
		return profile.Identity(), nil
	default:
		return entity.IdentityRef{}, errcode.ErrInvalidParam
	}
}
