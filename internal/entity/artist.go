package entity

// ArtistProfile represents an account's artist persona. At most one per
// account, never transferred.
type ArtistProfile struct {
	Id             int64  `json:"id" gorm:"column:id;primaryKey"`
	Name           string `json:"name" gorm:"column:name"`
	OwnerAccountId int64  `json:"owner_account_id" gorm:"column:owner_account_id;uniqueIndex"`
	CreatedAt      int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt      int64  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for ArtistProfile
func (ArtistProfile) TableName() string {
	return "artist_profiles"
}

// Identity returns the ARTIST identity for this profile
func (p *ArtistProfile) Identity() IdentityRef {
	return ArtistIdentity(p.Id, p.OwnerAccountId)
}

// ArtistInfo represents artist profile info for API response
type ArtistInfo struct {
	Id             int64  `json:"id"`
	Name           string `json:"name"`
	OwnerAccountId int64  `json:"owner_account_id"`
	CreatedAt      int64  `json:"created_at"`
}

// ToArtistInfo converts ArtistProfile to ArtistInfo
func (p *ArtistProfile) ToArtistInfo() *ArtistInfo {
	return &ArtistInfo{
		Id:             p.Id,
		Name:           p.Name,
		OwnerAccountId: p.OwnerAccountId,
		CreatedAt:      p.CreatedAt,
	}
}
