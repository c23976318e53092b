package repository

import (
	"context"
	"errors"

	"github.com/waveline/backstage/internal/entity"
	"gorm.io/gorm"
)

// MessageRepo is the MySQL repository for message operations
type MessageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a new MessageRepo
func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append inserts the message and bumps the conversation's latest message
// pointer and updated_at in one transaction, so a reader never observes a
// partially written message. When accept is set the conversation is marked
// accepted in the same transaction.
func (r *MessageRepo) Append(ctx context.Context, msg *entity.Message, accept bool) error {
	now := entity.NowUnixMilli()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"latest_message_id": msg.Id,
			"updated_at":        now,
		}
		if accept {
			updates["is_accepted"] = true
		}

		return tx.Model(&entity.Conversation{}).
			Where("id = ?", msg.ConversationId).
			Updates(updates).Error
	})
}

// GetByClientMsgId gets message by sender account and client_msg_id (for
// send idempotency)
func (r *MessageRepo) GetByClientMsgId(ctx context.Context, senderAccountId int64, clientMsgId string) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).
		Where("sender_account_id = ? AND client_msg_id = ?", senderAccountId, clientMsgId).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetByIds gets messages by ids
func (r *MessageRepo) GetByIds(ctx context.Context, ids []int64) ([]*entity.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var messages []*entity.Message
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ListByConversation pulls messages newest first, older than beforeId when
// beforeId > 0. limit is capped at 100.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationId, beforeId int64, limit int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId)
	if beforeId > 0 {
		q = q.Where("id < ?", beforeId)
	}

	var messages []*entity.Message
	err := q.Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips is_read on every message in the conversation that was not
// sent by an identity owned by the viewer
func (r *MessageRepo) MarkRead(ctx context.Context, conversationId, viewerAccountId int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_account_id <> ? AND is_read = ?", conversationId, viewerAccountId, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": entity.NowUnixMilli(),
		})
	return res.RowsAffected, res.Error
}

// CountUnread counts unread messages in one conversation for the viewer
func (r *MessageRepo) CountUnread(ctx context.Context, conversationId, viewerAccountId int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_account_id <> ? AND is_read = ?", conversationId, viewerAccountId, false).
		Count(&count).Error
	return count, err
}

// CountUnreadByConversations counts unread messages per conversation for the
// viewer in one grouped query
func (r *MessageRepo) CountUnreadByConversations(ctx context.Context, conversationIds []int64, viewerAccountId int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(conversationIds))
	if len(conversationIds) == 0 {
		return result, nil
	}

	var rows []struct {
		ConversationId int64
		Cnt            int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Select("conversation_id, COUNT(*) as cnt").
		Where("conversation_id IN ? AND sender_account_id <> ? AND is_read = ?", conversationIds, viewerAccountId, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ConversationId] = row.Cnt
	}
	return result, nil
}

// CountUnreadTotal aggregates unread messages across all of the viewer's
// conversations
func (r *MessageRepo) CountUnreadTotal(ctx context.Context, viewerAccountId int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("messages m").
		Joins("JOIN conversations c ON c.id = m.conversation_id").
		Where("(c.account_low_id = ? OR c.account_high_id = ?)", viewerAccountId, viewerAccountId).
		Where("m.sender_account_id <> ? AND m.is_read = ?", viewerAccountId, false).
		Count(&count).Error
	return count, err
}
