package entity

import "github.com/waveline/backstage/pkg/constant"

// IdentityRef tags an actor with the persona it acts as. A PERSON ref carries
// only the account id; an ARTIST ref carries the artist profile id plus its
// owning account id. A PERSON ref and an ARTIST ref owned by the same account
// are never equal.
type IdentityRef struct {
	Kind            int32 `json:"kind"`
	AccountId       int64 `json:"account_id"`
	ArtistProfileId int64 `json:"artist_profile_id,omitempty"`
}

// PersonIdentity returns a PERSON identity for an account
func PersonIdentity(accountId int64) IdentityRef {
	return IdentityRef{
		Kind:      constant.IdentityKindPerson,
		AccountId: accountId,
	}
}

// ArtistIdentity returns an ARTIST identity for an artist profile and its owner
func ArtistIdentity(artistProfileId, ownerAccountId int64) IdentityRef {
	return IdentityRef{
		Kind:            constant.IdentityKindArtist,
		AccountId:       ownerAccountId,
		ArtistProfileId: artistProfileId,
	}
}

// IsPerson reports whether the identity is a PERSON identity
func (r IdentityRef) IsPerson() bool {
	return r.Kind == constant.IdentityKindPerson
}

// IsArtist reports whether the identity is an ARTIST identity
func (r IdentityRef) IsArtist() bool {
	return r.Kind == constant.IdentityKindArtist
}

// Equal reports exact identity equality: kind and ids must all match
func (r IdentityRef) Equal(o IdentityRef) bool {
	return r.Kind == o.Kind && r.AccountId == o.AccountId && r.ArtistProfileId == o.ArtistProfileId
}

// Valid reports whether the identity is structurally well formed
func (r IdentityRef) Valid() bool {
	switch r.Kind {
	case constant.IdentityKindPerson:
		return r.AccountId > 0 && r.ArtistProfileId == 0
	case constant.IdentityKindArtist:
		return r.AccountId > 0 && r.ArtistProfileId > 0
	default:
		return false
	}
}
