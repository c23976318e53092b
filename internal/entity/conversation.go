package entity

import "github.com/waveline/backstage/pkg/constant"

// Conversation represents one thread between exactly two accounts. The
// participant pair is stored in canonical order (low id first). Between the
// same two accounts several conversations may exist, but each must carry a
// distinct (initiator identity, target artist) signature; the composite
// unique index enforces that at the database boundary.
type Conversation struct {
	Id                 int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	AccountLowId       int64 `json:"account_low_id" gorm:"column:account_low_id;uniqueIndex:uk_conv_signature"`
	AccountHighId      int64 `json:"account_high_id" gorm:"column:account_high_id;uniqueIndex:uk_conv_signature"`
	InitiatorKind      int32 `json:"initiator_kind" gorm:"column:initiator_kind;uniqueIndex:uk_conv_signature"`
	InitiatorAccountId int64 `json:"initiator_account_id" gorm:"column:initiator_account_id;uniqueIndex:uk_conv_signature"`
	InitiatorArtistId  int64 `json:"initiator_artist_id" gorm:"column:initiator_artist_id;uniqueIndex:uk_conv_signature"`
	TargetArtistId     int64 `json:"target_artist_id" gorm:"column:target_artist_id;uniqueIndex:uk_conv_signature"`
	IsAccepted         bool  `json:"is_accepted" gorm:"column:is_accepted"`
	LatestMessageId    int64 `json:"latest_message_id" gorm:"column:latest_message_id"`
	CreatedAt          int64 `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt          int64 `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for Conversation
func (Conversation) TableName() string {
	return "conversations"
}

// InitiatorIdentity returns the identity the creator opened the thread with
func (c *Conversation) InitiatorIdentity() IdentityRef {
	if c.InitiatorKind == constant.IdentityKindArtist {
		return ArtistIdentity(c.InitiatorArtistId, c.InitiatorAccountId)
	}
	return PersonIdentity(c.InitiatorAccountId)
}

// HasParticipant reports whether the account is one of the two participants
func (c *Conversation) HasParticipant(accountId int64) bool {
	return accountId == c.AccountLowId || accountId == c.AccountHighId
}

// OtherParticipant returns the participant that is not accountId.
// Caller must ensure accountId is a participant.
func (c *Conversation) OtherParticipant(accountId int64) int64 {
	if accountId == c.AccountLowId {
		return c.AccountHighId
	}
	return c.AccountLowId
}

// SignatureMatches reports whether the conversation carries exactly this
// (initiator identity, target artist) signature
func (c *Conversation) SignatureMatches(initiator IdentityRef, targetArtistId int64) bool {
	return c.InitiatorIdentity().Equal(initiator) && c.TargetArtistId == targetArtistId
}

// ConversationInfo represents conversation info for API response, from the
// requesting viewer's perspective
type ConversationInfo struct {
	Id                int64        `json:"id"`
	PeerAccountId     int64        `json:"peer_account_id"`
	InitiatorIdentity IdentityRef  `json:"initiator_identity"`
	TargetArtistId    *int64       `json:"target_artist_id"` // null when addressed as a plain person
	IsAccepted        bool         `json:"is_accepted"`
	UnreadCount       int64        `json:"unread_count"`
	LatestMessage     *MessageInfo `json:"latest_message,omitempty"`
	CreatedAt         int64        `json:"created_at"`
	UpdatedAt         int64        `json:"updated_at"`
}

// ToConversationInfo converts Conversation to ConversationInfo for a viewer
func (c *Conversation) ToConversationInfo(viewerAccountId, unreadCount int64, latest *MessageInfo) *ConversationInfo {
	info := &ConversationInfo{
		Id:                c.Id,
		PeerAccountId:     c.OtherParticipant(viewerAccountId),
		InitiatorIdentity: c.InitiatorIdentity(),
		IsAccepted:        c.IsAccepted,
		UnreadCount:       unreadCount,
		LatestMessage:     latest,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.TargetArtistId != constant.NoTargetArtist {
		target := c.TargetArtistId
		info.TargetArtistId = &target
	}
	return info
}
