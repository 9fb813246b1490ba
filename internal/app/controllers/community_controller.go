package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
)

// CommunityController handles community chats and creation requests
type CommunityController struct {
	communityService services.CommunityService
	upgrader         *websocket.Upgrader
	logger           zerolog.Logger
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService, upgrader *websocket.Upgrader, logger zerolog.Logger) *CommunityController {
	return &CommunityController{
		communityService: communityService,
		upgrader:         upgrader,
		logger:           logger,
	}
}

// ListCommunities godoc
// @Summary List joined communities
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityResponse}
// @Router /communities [get]
func (c *CommunityController) ListCommunities(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	communities, err := c.communityService.List(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(communities, ""))
}

// GetCommunity godoc
// @Summary Get a community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /communities/{id} [get]
func (c *CommunityController) GetCommunity(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	community, err := c.communityService.Get(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(community, ""))
}

// GetMessages godoc
// @Summary Community messages
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityMessageResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /communities/{id}/messages [get]
func (c *CommunityController) GetMessages(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	messages, err := c.communityService.Messages(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages, ""))
}

// SendText godoc
// @Summary Post a text message
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param request body dto.CommunityTextRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityMessageResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /communities/{id}/messages [post]
func (c *CommunityController) SendText(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.CommunityTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	msg, err := c.communityService.SendText(ctx.Request.Context(), session, ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg, "Message sent"))
}

// SendImage godoc
// @Summary Post an image
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param image formData file true "JPEG, PNG or WebP image"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityMessageResponse}
// @Failure 415 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /communities/{id}/images [post]
func (c *CommunityController) SendImage(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	file, name, ok := formFile(ctx, "image")
	if !ok {
		return
	}
	defer file.Close()

	msg, err := c.communityService.SendImage(ctx.Request.Context(), session, ctx.Param("id"), file, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg, "Image sent"))
}

// SendPDF godoc
// @Summary Post a PDF document
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param file formData file true "PDF document"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityMessageResponse}
// @Failure 415 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /communities/{id}/documents [post]
func (c *CommunityController) SendPDF(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	file, name, ok := formFile(ctx, "file")
	if !ok {
		return
	}
	defer file.Close()

	msg, err := c.communityService.SendPDF(ctx.Request.Context(), session, ctx.Param("id"), file, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg, "Document sent"))
}

// WatchCommunity godoc
// @Summary Live community chat
// @Description WebSocket. Pushes dto.CommunityFeedResponse frames after every new message. Client frames {"text": "..."} are posted as messages.
// @Tags communities
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {object} dto.CommunityFeedResponse
// @Router /communities/{id}/ws [get]
func (c *CommunityController) WatchCommunity(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	communityID := ctx.Param("id")
	log := c.logger.With().Str("lecturerID", session.LecturerID).Str("communityID", communityID).Logger()

	send := func(sendCtx context.Context, payload []byte) error {
		var req dto.CommunityTextRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return err
		}
		_, err := c.communityService.SendText(sendCtx, session, communityID, req)
		return err
	}
	serveStream(ctx, c.upgrader, log, func(streamCtx context.Context) (<-chan dto.CommunityFeedResponse, error) {
		return c.communityService.Watch(streamCtx, session, communityID)
	}, send)
}

// RequestCommunity godoc
// @Summary Request a new community
// @Description Files a pending request that administrators review
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommunityRequest true "Community details"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityRequestResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /communities/requests [post]
func (c *CommunityController) RequestCommunity(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.CreateCommunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	request, err := c.communityService.RequestCommunity(ctx.Request.Context(), session, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(request, "Request submitted"))
}

// ListRequests godoc
// @Summary Own community requests
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityRequestResponse}
// @Router /communities/requests [get]
func (c *CommunityController) ListRequests(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	requests, err := c.communityService.ListRequests(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(requests, ""))
}
