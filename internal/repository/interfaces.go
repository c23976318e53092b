package repository

import (
	"context"

	"github.com/waveline/backstage/internal/entity"
)

// AccountRepository stores accounts
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetById(ctx context.Context, id int64) (*entity.Account, error)
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
}

// ArtistRepository stores artist profiles
type ArtistRepository interface {
	Create(ctx context.Context, profile *entity.ArtistProfile) error
	GetById(ctx context.Context, id int64) (*entity.ArtistProfile, error)
	// GetByOwner returns nil, nil when the account has no artist profile
	GetByOwner(ctx context.Context, ownerAccountId int64) (*entity.ArtistProfile, error)
}

// ConversationRepository stores conversations. Create must enforce the
// signature uniqueness invariant at the storage boundary and surface a
// violation as gorm.ErrDuplicatedKey.
type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) error
	GetById(ctx context.Context, id int64) (*entity.Conversation, error)
	// ListByPair returns all conversations between the two accounts,
	// ordered by id ascending. Inputs must be in canonical (low, high) order.
	ListByPair(ctx context.Context, accountLowId, accountHighId int64) ([]*entity.Conversation, error)
	// ListForAccount returns all conversations an account participates in,
	// ordered by updated_at descending.
	ListForAccount(ctx context.Context, accountId int64) ([]*entity.Conversation, error)
	// MarkAccepted transitions is_accepted false -> true. Idempotent, never
	// reverses.
	MarkAccepted(ctx context.Context, conversationId int64) error
}

// MessageRepository stores messages and the per-viewer read state
type MessageRepository interface {
	// Append atomically inserts the message and bumps the conversation's
	// latest message pointer and updated_at; when accept is set it also
	// marks the conversation accepted in the same transaction.
	Append(ctx context.Context, msg *entity.Message, accept bool) error
	// GetByClientMsgId returns nil, nil when no message matches (send
	// idempotency check)
	GetByClientMsgId(ctx context.Context, senderAccountId int64, clientMsgId string) (*entity.Message, error)
	GetByIds(ctx context.Context, ids []int64) ([]*entity.Message, error)
	// ListByConversation returns messages older than beforeId (0 = newest),
	// newest first, capped at limit.
	ListByConversation(ctx context.Context, conversationId, beforeId int64, limit int) ([]*entity.Message, error)
	// MarkRead flips is_read on all messages in the conversation that were
	// not sent by an identity owned by the viewer. Returns affected rows.
	MarkRead(ctx context.Context, conversationId, viewerAccountId int64) (int64, error)
	CountUnread(ctx context.Context, conversationId, viewerAccountId int64) (int64, error)
	// CountUnreadByConversations returns per-conversation unread counts for
	// the viewer, keyed by conversation id. Conversations with zero unread
	// may be absent from the map.
	CountUnreadByConversations(ctx context.Context, conversationIds []int64, viewerAccountId int64) (map[int64]int64, error)
	// CountUnreadTotal aggregates unread across all of the viewer's
	// conversations.
	CountUnreadTotal(ctx context.Context, viewerAccountId int64) (int64, error)
}

// UnreadBadgeCache caches the aggregate unread badge per viewer. It is an
// explicitly refreshed projection: read through on miss, invalidated on
// append and mark-read.
type UnreadBadgeCache interface {
	// Get returns (count, true) on a hit, (0, false) on a miss
	Get(ctx context.Context, accountId int64) (int64, bool, error)
	Set(ctx context.Context, accountId int64, count int64) error
	Invalidate(ctx context.Context, accountId int64) error
}
