package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
)

// InboxController handles conversation lists and participant search
type InboxController struct {
	inboxService services.InboxService
	upgrader     *websocket.Upgrader
	logger       zerolog.Logger
}

// NewInboxController creates a new InboxController
func NewInboxController(inboxService services.InboxService, upgrader *websocket.Upgrader, logger zerolog.Logger) *InboxController {
	return &InboxController{
		inboxService: inboxService,
		upgrader:     upgrader,
		logger:       logger,
	}
}

// GetInbox godoc
// @Summary Conversation lists
// @Description Student and administrator conversations, newest first, with unread counts and last-message previews
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.InboxResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /messages/inbox [get]
func (c *InboxController) GetInbox(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	inbox, err := c.inboxService.Inbox(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(inbox, ""))
}

// GetUnreadCount godoc
// @Summary Unread direct messages
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse}
// @Router /messages/unread-count [get]
func (c *InboxController) GetUnreadCount(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	count, err := c.inboxService.UnreadCount(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(count, ""))
}

// WatchInbox godoc
// @Summary Live conversation lists
// @Description WebSocket. Pushes dto.InboxResponse frames whenever a message reaches the lecturer.
// @Tags inbox
// @Security BearerAuth
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {object} dto.InboxResponse
// @Router /messages/inbox/ws [get]
func (c *InboxController) WatchInbox(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	log := c.logger.With().Str("lecturerID", session.LecturerID).Str("stream", "inbox").Logger()
	serveStream(ctx, c.upgrader, log, func(streamCtx context.Context) (<-chan dto.InboxResponse, error) {
		return c.inboxService.Watch(streamCtx, session)
	}, nil)
}

// SearchStudents godoc
// @Summary Search students to message
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name or student ID"
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipantResponse}
// @Router /messages/participants/students [get]
func (c *InboxController) SearchStudents(ctx *gin.Context) {
	c.search(ctx, c.inboxService.SearchStudents)
}

// SearchAdmins godoc
// @Summary Search administrators to message
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name"
// @Param limit query int false "Maximum results"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipantResponse}
// @Router /messages/participants/admins [get]
func (c *InboxController) SearchAdmins(ctx *gin.Context) {
	c.search(ctx, c.inboxService.SearchAdmins)
}

type participantSearch func(context.Context, services.Session, dto.ParticipantSearchRequest) ([]dto.ParticipantResponse, error)

func (c *InboxController) search(ctx *gin.Context, find participantSearch) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.ParticipantSearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	participants, err := find(ctx.Request.Context(), session, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(participants, ""))
}
