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

// ConsultationController handles the lecturer's consultation requests
type ConsultationController struct {
	consultationService services.ConsultationService
	upgrader            *websocket.Upgrader
	logger              zerolog.Logger
}

// NewConsultationController creates a new ConsultationController
func NewConsultationController(consultationService services.ConsultationService, upgrader *websocket.Upgrader, logger zerolog.Logger) *ConsultationController {
	return &ConsultationController{
		consultationService: consultationService,
		upgrader:            upgrader,
		logger:              logger,
	}
}

// ListConsultations godoc
// @Summary List consultations
// @Description Lists the lecturer's consultations, newest first, with the requesting student
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, accepted, declined, started, ended)
// @Param search query string false "Student name, student id or topic"
// @Param limit query int false "Maximum rows (default 100)"
// @Success 200 {object} dto.APIResponse{data=[]dto.ConsultationResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /consultations [get]
func (c *ConsultationController) ListConsultations(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.ConsultationListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	list, err := c.consultationService.List(ctx.Request.Context(), session, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, ""))
}

// GetCounts godoc
// @Summary Consultation counts per status
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationCountsResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /consultations/counts [get]
func (c *ConsultationController) GetCounts(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	counts, err := c.consultationService.Counts(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts, ""))
}

// GetConsultation godoc
// @Summary Get a consultation
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Consultation ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /consultations/{id} [get]
func (c *ConsultationController) GetConsultation(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	consultation, err := c.consultationService.Get(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(consultation, ""))
}

// AcceptConsultation godoc
// @Summary Accept a pending consultation
// @Description Schedules the consultation and notifies the student. In-person meetings require a location.
// @Tags consultations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Consultation ID"
// @Param request body dto.AcceptConsultationRequest true "Schedule"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail} "Not pending or modified concurrently"
// @Router /consultations/{id}/accept [post]
func (c *ConsultationController) AcceptConsultation(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.AcceptConsultationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	consultation, err := c.consultationService.Accept(ctx.Request.Context(), session, ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(consultation, "Consultation accepted"))
}

// DeclineConsultation godoc
// @Summary Decline a pending consultation
// @Tags consultations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Consultation ID"
// @Param request body dto.DeclineConsultationRequest false "Reason"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /consultations/{id}/decline [post]
func (c *ConsultationController) DeclineConsultation(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.DeclineConsultationRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindingError(ctx, err)
			return
		}
	}
	consultation, err := c.consultationService.Decline(ctx.Request.Context(), session, ctx.Param("id"), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(consultation, "Consultation declined"))
}

// StartSession godoc
// @Summary Start the consultation session
// @Description Allowed on the scheduled day; in-person sessions also wait for the grace window before the scheduled time. Online sessions return the meeting link.
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Consultation ID"
// @Success 200 {object} dto.APIResponse{data=dto.StartConsultationResponse}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail} "Not startable yet"
// @Router /consultations/{id}/start [post]
func (c *ConsultationController) StartSession(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	started, err := c.consultationService.Start(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(started, "Session started"))
}

// EndSession godoc
// @Summary End the consultation session
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Consultation ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationResponse}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /consultations/{id}/end [post]
func (c *ConsultationController) EndSession(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	ended, err := c.consultationService.End(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(ended, "Session ended"))
}

// GetActions godoc
// @Summary Session actions available now
// @Description Evaluated at server time so client clocks do not matter
// @Tags consultations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Consultation ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationActionsResponse}
// @Router /consultations/{id}/actions [get]
func (c *ConsultationController) GetActions(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	actions, err := c.consultationService.Actions(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(actions, ""))
}

// WatchConsultations godoc
// @Summary Live consultation list
// @Description WebSocket. Pushes dto.ConsultationFeedResponse frames initially and after every change.
// @Tags consultations
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param search query string false "Search text"
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 101 {object} dto.ConsultationFeedResponse
// @Router /consultations/ws [get]
func (c *ConsultationController) WatchConsultations(ctx *gin.Context) {
	session, ok := middleware.RequireSession(ctx)
	if !ok {
		return
	}
	var req dto.ConsultationListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}
	log := c.logger.With().Str("lecturerID", session.LecturerID).Str("stream", "consultations").Logger()
	serveStream(ctx, c.upgrader, log, func(streamCtx context.Context) (<-chan dto.ConsultationFeedResponse, error) {
		return c.consultationService.Watch(streamCtx, session, req)
	}, nil)
}
