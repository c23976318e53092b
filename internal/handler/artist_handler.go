package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/waveline/backstage/internal/middleware"
	"github.com/waveline/backstage/internal/service"
	"github.com/waveline/backstage/pkg/errcode"
	"github.com/waveline/backstage/pkg/response"
)

// ArtistHandler handles artist profile requests
type ArtistHandler struct {
	artistService *service.ArtistService
}

// NewArtistHandler creates a new ArtistHandler
func NewArtistHandler(artistService *service.ArtistService) *ArtistHandler {
	return &ArtistHandler{artistService: artistService}
}

// BecomeArtist handles become artist request
func (h *ArtistHandler) BecomeArtist(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.BecomeArtistRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	artistInfo, err := h.artistService.BecomeArtist(ctx, accountId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, artistInfo)
}

// GetArtist handles get artist info request
func (h *ArtistHandler) GetArtist(ctx context.Context, c *app.RequestContext) {
	artistId, _ := strconv.ParseInt(c.Query("artist_id"), 10, 64)
	if artistId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrInvalidParam)
		return
	}

	artistInfo, err := h.artistService.GetArtist(ctx, artistId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, artistInfo)
}

// GetOwnArtist handles get own artist profile request
func (h *ArtistHandler) GetOwnArtist(ctx context.Context, c *app.RequestContext) {
	accountId := middleware.GetAccountId(c)
	if accountId == 0 {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	artistInfo, err := h.artistService.GetOwnArtist(ctx, accountId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, artistInfo)
}
