package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/sirupsen/logrus"
)

// Services groups the business services the API exposes
type Services struct {
	Incidents service.IncidentService
	Dispatch  service.DispatchService
	Analytics service.AnalyticsService
}

type Handler struct {
	incidentService  service.IncidentService
	dispatchService  service.DispatchService
	analyticsService service.AnalyticsService
	updates          http.Handler
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

// NewHandler builds the API handler. updates serves the incident update
// stream and may be nil.
func NewHandler(services Services, updates http.Handler, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService:  services.Incidents,
		dispatchService:  services.Dispatch,
		analyticsService: services.Analytics,
		updates:          updates,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// respondError maps service errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.WithField("errors", verr.Errors).Warn("Request rejected by validation")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: verr.Errors})
	case errors.Is(err, service.ErrNotFound):
		log.WithError(err).Warn("Resource not found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrForbidden):
		log.WithError(err).Warn("Caller is not allowed to perform the action")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "caller is not the assigned responder"})
	case errors.Is(err, service.ErrInvalidTransition):
		log.WithError(err).Warn("Invalid status transition")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid status transition"})
	case errors.Is(err, service.ErrIncidentConflict):
		log.WithError(err).Warn("Incident changed concurrently")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "incident is no longer open for assignment"})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// bindJSON decodes and validates the body, answering 400 on failure
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

// bindQuery decodes and validates query parameters, answering 400 on failure
func (h *Handler) bindQuery(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "transition_policy": h.cfg.TransitionPolicy})
}

// @Summary Subscribe to incident updates
// @Description Upgrades to a WebSocket that streams incident status updates. Browsers may pass the API key as the api_key query parameter.
// @Tags Realtime
// @Security ApiKeyAuth
// @Success 101 "Switching Protocols"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /ws [get]
func (h *Handler) streamUpdates(c *gin.Context) {
	h.updates.ServeHTTP(c.Writer, c.Request)
}
