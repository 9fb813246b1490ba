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

// EventController serves the campus event list
type EventController struct {
	eventService services.EventService
	upgrader     *websocket.Upgrader
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, upgrader *websocket.Upgrader, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		upgrader:     upgrader,
		logger:       logger,
	}
}

// ListEvents godoc
// @Summary List campus events
// @Description Active events, soonest first. Events created within the last three days carry isNew.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param upcoming query bool false "Hide events that started before today"
// @Param limit query int false "Maximum number of events"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.EventListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	list, err := c.eventService.List(ctx.Request.Context(), session, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, ""))
}

// GetEvent godoc
// @Summary Event details
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	event, err := c.eventService.Get(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, ""))
}

// WatchEvents godoc
// @Summary Live campus events
// @Description WebSocket. Pushes the event list whenever an event is added or changed.
// @Tags events
// @Security BearerAuth
// @Param upcoming query bool false "Hide events that started before today"
// @Param limit query int false "Maximum number of events"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {object} dto.EventListResponse
// @Router /events/ws [get]
func (c *EventController) WatchEvents(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.EventListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	log := c.logger.With().Str("lecturerID", session.LecturerID).Str("stream", "events").Logger()
	serveStream(ctx, c.upgrader, log, func(streamCtx context.Context) (<-chan dto.EventListResponse, error) {
		return c.eventService.Watch(streamCtx, session, req)
	}, nil)
}
