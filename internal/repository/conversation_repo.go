package repository

import (
	"context"
	"errors"

	"github.com/waveline/backstage/internal/entity"
	"gorm.io/gorm"
)

// ConversationRepo is the MySQL repository for conversation operations
type ConversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo creates a new ConversationRepo
func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create creates a new conversation. The uk_conv_signature unique index
// serializes concurrent creates for the same (pair, signature) key; a loser
// of that race gets gorm.ErrDuplicatedKey.
func (r *ConversationRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	now := entity.NowUnixMilli()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	return r.db.WithContext(ctx).Create(conv).Error
}

// GetById gets conversation by id
func (r *ConversationRepo) GetById(ctx context.Context, id int64) (*entity.Conversation, error) {
	var conv entity.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// ListByPair gets all conversations between two accounts, id ascending so
// resolution scans are deterministic
func (r *ConversationRepo) ListByPair(ctx context.Context, accountLowId, accountHighId int64) ([]*entity.Conversation, error) {
	var convs []*entity.Conversation
	err := r.db.WithContext(ctx).
		Where("account_low_id = ? AND account_high_id = ?", accountLowId, accountHighId).
		Order("id ASC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// ListForAccount gets all conversations an account participates in
func (r *ConversationRepo) ListForAccount(ctx context.Context, accountId int64) ([]*entity.Conversation, error) {
	var convs []*entity.Conversation
	err := r.db.WithContext(ctx).
		Where("account_low_id = ? OR account_high_id = ?", accountId, accountId).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// MarkAccepted transitions is_accepted false -> true. The guard in the WHERE
// clause makes it idempotent and irreversible.
func (r *ConversationRepo) MarkAccepted(ctx context.Context, conversationId int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("id = ? AND is_accepted = ?", conversationId, false).
		Updates(map[string]interface{}{
			"is_accepted": true,
			"updated_at":  entity.NowUnixMilli(),
		}).Error
}
