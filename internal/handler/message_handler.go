package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	"github.com/waveline/backstage/internal/middleware"
	"github.com/waveline/backstage/internal/service"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/response"
)

// MessageHandler handles message requests
type MessageHandler struct {
	msgService    *service.MessageService
	artistService *service.ArtistService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(msgService *service.MessageService, artistService *service.ArtistService) *MessageHandler {
	return &MessageHandler{msgService: msgService, artistService: artistService}
}

// SendMessageBody represents the send message request body.
// IdentityKind 0 defaults to PERSON.
type SendMessageBody struct {
	ConversationId int64  `json:"conversation_id"`
	ClientMsgId    string `json:"client_msg_id"`
	IdentityKind   int32  `json:"identity_kind"`
	MsgType        int32  `json:"msg_type"`
	Text           string `json:"text,omitempty"`
	AttachmentRef  string `json:"attachment_ref,omitempty"`
}

// Send handles send message request
func (h *MessageHandler) Send(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var body SendMessageBody
	if err := c.BindAndValidate(&body); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	sender, err := h.artistService.ResolveIdentity(ctx, accountId, body.IdentityKind)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// Clients that do not supply a dedup id get one per request.
	if body.ClientMsgId == "" {
		body.ClientMsgId = uuid.New().String()
	}

	msg, err := h.msgService.Send(ctx, sender, &service.SendMessageRequest{
		ConversationId: body.ConversationId,
		ClientMsgId:    body.ClientMsgId,
		MsgType:        body.MsgType,
		Text:           body.Text,
		AttachmentRef:  body.AttachmentRef,
	})
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg.ToMessageInfo())
}

// History handles pull message history request
func (h *MessageHandler) History(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId, _ := strconv.ParseInt(c.Query("conversation_id"), 10, 64)
	if conversationId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	beforeId, _ := strconv.ParseInt(c.Query("before_id"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.msgService.History(ctx, accountId, conversationId, beforeId, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	msgInfos := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		msgInfos = append(msgInfos, msg.ToMessageInfo())
	}

	response.Success(ctx, c, map[string]interface{}{
		"messages": msgInfos,
	})
}
