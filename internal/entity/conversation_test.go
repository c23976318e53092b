package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waveline/backstage/pkg/constant"
)

func TestNormalizePair(t *testing.T) {
	low, high := NormalizePair(7, 3)
	assert.Equal(t, int64(3), low)
	assert.Equal(t, int64(7), high)

	low, high = NormalizePair(3, 7)
	assert.Equal(t, int64(3), low)
	assert.Equal(t, int64(7), high)
}

func TestConversationParticipants(t *testing.T) {
	conv := &Conversation{AccountLowId: 3, AccountHighId: 7}

	assert.True(t, conv.HasParticipant(3))
	assert.True(t, conv.HasParticipant(7))
	assert.False(t, conv.HasParticipant(5))

	assert.Equal(t, int64(7), conv.OtherParticipant(3))
	assert.Equal(t, int64(3), conv.OtherParticipant(7))
}

func TestConversationInitiatorIdentity(t *testing.T) {
	asPerson := &Conversation{
		InitiatorKind:      constant.IdentityKindPerson,
		InitiatorAccountId: 3,
	}
	assert.True(t, asPerson.InitiatorIdentity().Equal(PersonIdentity(3)))

	asArtist := &Conversation{
		InitiatorKind:      constant.IdentityKindArtist,
		InitiatorAccountId: 3,
		InitiatorArtistId:  5,
	}
	assert.True(t, asArtist.InitiatorIdentity().Equal(ArtistIdentity(5, 3)))
}

func TestConversationSignatureMatches(t *testing.T) {
	conv := &Conversation{
		InitiatorKind:      constant.IdentityKindPerson,
		InitiatorAccountId: 3,
		TargetArtistId:     10,
	}

	assert.True(t, conv.SignatureMatches(PersonIdentity(3), 10))
	assert.False(t, conv.SignatureMatches(PersonIdentity(3), 11))
	assert.False(t, conv.SignatureMatches(ArtistIdentity(5, 3), 10))
}

func TestToConversationInfoTargetArtist(t *testing.T) {
	conv := &Conversation{
		Id:                 1,
		AccountLowId:       3,
		AccountHighId:      7,
		InitiatorKind:      constant.IdentityKindPerson,
		InitiatorAccountId: 3,
		TargetArtistId:     10,
	}

	info := conv.ToConversationInfo(3, 2, nil)
	assert.Equal(t, int64(7), info.PeerAccountId)
	assert.Equal(t, int64(2), info.UnreadCount)
	require.NotNil(t, info.TargetArtistId)
	assert.Equal(t, int64(10), *info.TargetArtistId)

	// Addressed as a plain person: target serializes as null.
	conv.TargetArtistId = constant.NoTargetArtist
	info = conv.ToConversationInfo(7, 0, nil)
	assert.Nil(t, info.TargetArtistId)
	assert.Equal(t, int64(3), info.PeerAccountId)
}

func TestMessageSenderIdentityRoundtrip(t *testing.T) {
	var msg Message
	msg.SetSenderIdentity(ArtistIdentity(5, 3))
	assert.True(t, msg.SenderIdentity().Equal(ArtistIdentity(5, 3)))

	msg.SetSenderIdentity(PersonIdentity(3))
	assert.True(t, msg.SenderIdentity().Equal(PersonIdentity(3)))
	assert.Zero(t, msg.SenderArtistId)
}
