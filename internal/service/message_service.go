package service

import (
	"context"

	"github.com/waveline/backstage/internal/entity"
	"github.com/waveline/backstage/internal/repository"
	"github.com/waveline/backstage/pkg/constant"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/logger"
)

// MessageService appends messages against resolved conversations
type MessageService struct {
	msgRepo  repository.MessageRepository
	convRepo repository.ConversationRepository
	badge    repository.UnreadBadgeCache
}

// NewMessageService creates a new MessageService
func NewMessageService(
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	badge repository.UnreadBadgeCache,
) *MessageService {
	return &MessageService{
		msgRepo:  msgRepo,
		convRepo: convRepo,
		badge:    badge,
	}
}

// SendMessageRequest represents send message request
type SendMessageRequest struct {
	ConversationId int64  `json:"conversation_id"`
	ClientMsgId    string `json:"client_msg_id"`
	MsgType        int32  `json:"msg_type"`
	Text           string `json:"text,omitempty"`
	AttachmentRef  string `json:"attachment_ref,omitempty"`
}

// validateContent enforces the content invariant: TEXT carries text, the
// attachment types carry an attachment reference
func validateContent(msgType int32, text, attachmentRef string) error {
	switch msgType {
	case constant.MsgTypeText:
		if text == "" {
			return errcode.ErrEmptyMessage
		}
	case constant.MsgTypeAudio, constant.MsgTypeVoice, constant.MsgTypeTrackShare:
		if attachmentRef == "" {
			return errcode.ErrAttachmentRequired
		}
	default:
		return errcode.ErrInvalidParam
	}
	return nil
}

// Send appends a message to a conversation. The first message from the
// non-initiating side accepts the conversation, in the same transaction as
// the append.
func (s *MessageService) Send(ctx context.Context, sender entity.IdentityRef, req *SendMessageRequest) (*entity.Message, error) {
	if !sender.Valid() {
		return nil, errcode.ErrInvalidParam
	}
	if req.ConversationId == 0 || req.ClientMsgId == "" {
		return nil, errcode.ErrInvalidParam
	}
	if err := validateContent(req.MsgType, req.Text, req.AttachmentRef); err != nil {
		return nil, err
	}

	conv, err := s.convRepo.GetById(ctx, req.ConversationId)
	if err != nil {
		logger.CtxError(ctx, "get conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	if !conv.HasParticipant(sender.AccountId) {
		return nil, errcode.ErrNoPermission
	}

	// Idempotency: a resent client_msg_id returns the stored message
	existing, err := s.msgRepo.GetByClientMsgId(ctx, sender.AccountId, req.ClientMsgId)
	if err != nil {
		logger.CtxError(ctx, "check idempotency failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if existing != nil {
		logger.CtxDebug(ctx, "duplicate message: client_msg_id=%s", req.ClientMsgId)
		return existing, nil
	}

	accept := !conv.IsAccepted && sender.AccountId != conv.InitiatorAccountId

	msg := &entity.Message{
		ConversationId: conv.Id,
		ClientMsgId:    req.ClientMsgId,
		MsgType:        req.MsgType,
		Text:           req.Text,
		AttachmentRef:  req.AttachmentRef,
		SendAt:         entity.NowUnixMilli(),
	}
	msg.SetSenderIdentity(sender)

	if err := s.msgRepo.Append(ctx, msg, accept); err != nil {
		logger.CtxError(ctx, "append message failed: %v", err)
		return nil, errcode.ErrSendFailed
	}

	// The recipient's badge projection is stale now
	recipientId := conv.OtherParticipant(sender.AccountId)
	if err := s.badge.Invalidate(ctx, recipientId); err != nil {
		logger.CtxWarn(ctx, "invalidate badge failed: account_id=%d, error=%v", recipientId, err)
	}

	logger.CtxInfo(ctx, "message sent: conversation_id=%d, sender_account_id=%d, sender_kind=%d, msg_type=%d, accepted=%t",
		conv.Id, sender.AccountId, sender.Kind, req.MsgType, accept)
	return msg, nil
}

// History pulls messages in a conversation, newest first, older than
// beforeId when set
func (s *MessageService) History(ctx context.Context, viewerAccountId, conversationId, beforeId int64, limit int) ([]*entity.Message, error) {
	conv, err := s.convRepo.GetById(ctx, conversationId)
	if err != nil {
		logger.CtxError(ctx, "get conversation failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if conv == nil {
		return nil, errcode.ErrConvNotFound
	}
	if !conv.HasParticipant(viewerAccountId) {
		return nil, errcode.ErrNoPermission
	}

	messages, err := s.msgRepo.ListByConversation(ctx, conversationId, beforeId, limit)
	if err != nil {
		logger.CtxError(ctx, "list messages failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	return messages, nil
}
