package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/waveline/backstage/internal/middleware"
	"github.com/waveline/backstage/internal/service"
	"github.com/waveline/backstage/pkg/constant"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/response"
)

// ConversationHandler handles conversation requests
type ConversationHandler struct {
	convService   *service.ConversationService
	artistService *service.ArtistService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(convService *service.ConversationService, artistService *service.ArtistService) *ConversationHandler {
	return &ConversationHandler{convService: convService, artistService: artistService}
}

// OpenConversationRequest represents open conversation request.
// IdentityKind 0 defaults to PERSON.
type OpenConversationRequest struct {
	IdentityKind   int32 `json:"identity_kind"`
	TargetArtistId int64 `json:"target_artist_id"`
}

// Open handles resolve-or-open conversation request
func (h *ConversationHandler) Open(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req OpenConversationRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}
	if req.TargetArtistId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	actor, err := h.artistService.ResolveIdentity(ctx, accountId, req.IdentityKind)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	conv, err := h.convService.ResolveOrOpen(ctx, actor, req.TargetArtistId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"conversation_id": conv.Id,
	})
}

// OpenWithPersonRequest represents open conversation toward a plain person.
// The caller always acts as its artist persona.
type OpenWithPersonRequest struct {
	TargetAccountId int64 `json:"target_account_id"`
}

// OpenWithPerson handles an artist persona opening a conversation that
// addresses an account as a plain person
func (h *ConversationHandler) OpenWithPerson(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req OpenWithPersonRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}
	if req.TargetAccountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	actor, err := h.artistService.ResolveIdentity(ctx, accountId, constant.IdentityKindArtist)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	conv, err := h.convService.ResolveOrOpenToPerson(ctx, actor, req.TargetAccountId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"conversation_id": conv.Id,
	})
}

// List handles get conversation list request
func (h *ConversationHandler) List(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	convs, err := h.convService.ListConversations(ctx, accountId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, convs)
}

// GetInfo handles get single conversation request
func (h *ConversationHandler) GetInfo(ctx context.Context, c *app.RequestContext) {
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

	conv, err := h.convService.GetConversation(ctx, accountId, conversationId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, conv)
}

// MarkReadRequest represents mark read request
type MarkReadRequest struct {
	ConversationId int64 `json:"conversation_id"`
}

// MarkRead handles mark conversation read request
func (h *ConversationHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req MarkReadRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}
	if req.ConversationId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	if err := h.convService.MarkRead(ctx, accountId, req.ConversationId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// UnreadCount handles get unread badge count request
func (h *ConversationHandler) UnreadCount(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	count, err := h.convService.UnreadBadgeCount(ctx, accountId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"unread_count": count,
	})
}
