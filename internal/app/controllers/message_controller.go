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

// MessageController handles direct messages between the lecturer and one counterpart
type MessageController struct {
	messageService services.MessageService
	threads        services.ThreadSynchronizer
	upgrader       *websocket.Upgrader
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, threads services.ThreadSynchronizer, upgrader *websocket.Upgrader, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		threads:        threads,
		upgrader:       upgrader,
		logger:         logger,
	}
}

// GetThread godoc
// @Summary Get a conversation
// @Description Returns both directions merged in time order. Unread inbound messages are marked read.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param counterpartId path string true "Student or administrator ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThreadResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /messages/threads/{counterpartId} [get]
func (c *MessageController) GetThread(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	thread, err := c.messageService.Thread(ctx.Request.Context(), session, ctx.Param("counterpartId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(thread, ""))
}

// SendText godoc
// @Summary Send a text message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param counterpartId path string true "Student or administrator ID"
// @Param request body dto.SendTextRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail} "Counterpart not found"
// @Router /messages/threads/{counterpartId} [post]
func (c *MessageController) SendText(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.SendTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	msg, err := c.messageService.SendText(ctx.Request.Context(), session, ctx.Param("counterpartId"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg, "Message sent"))
}

// SendImage godoc
// @Summary Send an image message
// @Description The image is downscaled, uploaded, then sent with an optional caption
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param counterpartId path string true "Student or administrator ID"
// @Param image formData file true "JPEG, PNG or WebP image"
// @Param caption formData string false "Optional caption"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 415 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 502 {object} dto.APIResponse{error=dto.ErrorDetail} "Upload failed, nothing was sent"
// @Router /messages/threads/{counterpartId}/image [post]
func (c *MessageController) SendImage(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	file, name, ok := formFile(ctx, "image")
	if !ok {
		return
	}
	defer file.Close()

	msg, err := c.messageService.SendImage(ctx.Request.Context(), session, ctx.Param("counterpartId"), file, name, ctx.PostForm("caption"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg, "Message sent"))
}

// MarkThreadRead godoc
// @Summary Mark a conversation read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param counterpartId path string true "Student or administrator ID"
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse}
// @Router /messages/threads/{counterpartId}/read [post]
func (c *MessageController) MarkThreadRead(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	resp, err := c.messageService.MarkThreadRead(ctx.Request.Context(), session, ctx.Param("counterpartId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// DeleteMessage godoc
// @Summary Delete a sent message
// @Description Only the sender can delete a message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /messages/{messageId} [delete]
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	if err := c.messageService.Delete(ctx.Request.Context(), session, ctx.Param("messageId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Message deleted"))
}

// WatchThread godoc
// @Summary Live conversation
// @Description WebSocket. Pushes dto.ThreadResponse frames with the merged conversation after every change in either direction. Text frames {"text": "..."} sent by the client are delivered as messages.
// @Tags messages
// @Security BearerAuth
// @Param counterpartId path string true "Student or administrator ID"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {object} dto.ThreadResponse
// @Router /messages/threads/{counterpartId}/ws [get]
func (c *MessageController) WatchThread(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	counterpartID := ctx.Param("counterpartId")
	log := c.logger.With().Str("lecturerID", session.LecturerID).Str("counterpartID", counterpartID).Logger()

	send := func(sendCtx context.Context, payload []byte) error {
		var req dto.SendTextRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return err
		}
		_, err := c.messageService.SendText(sendCtx, session, counterpartID, req)
		return err
	}
	serveStream(ctx, c.upgrader, log, func(streamCtx context.Context) (<-chan dto.ThreadResponse, error) {
		return c.threads.Sync(streamCtx, session, counterpartID)
	}, send)
}
