package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

const responderHeader = "X-Responder-ID"

// @Summary Recommend agencies for an incident
// @Description Rank active agencies by distance, specialization, availability, workload and past performance. Requires API key.
// @Tags Dispatch
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} RecommendationsResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/recommendations [get]
func (h *Handler) recommendAgencies(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "recommendAgencies").WithField("id", id)

	set, err := h.dispatchService.Recommend(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, RecommendationSetToResponse(set))
}

// @Summary Estimate travel time
// @Description Estimate minutes to reach a point from the straight-line distance and a traffic band. Without traffic the band of the current hour is used. Requires API key.
// @Tags Dispatch
// @Produce json
// @Security ApiKeyAuth
// @Param from_lat query number true "Origin latitude"
// @Param from_lon query number true "Origin longitude"
// @Param to_lat query number true "Destination latitude"
// @Param to_lon query number true "Destination longitude"
// @Param traffic query string false "rush_hour, normal or night"
// @Success 200 {object} ETAResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /eta [get]
func (h *Handler) estimateETA(c *gin.Context) {
	var query ETAQuery
	log := h.logger.WithField("method", "estimateETA")

	if !h.bindQuery(c, log, &query) {
		return
	}

	eta := h.dispatchService.EstimateETA(
		models.GeoPoint{Latitude: *query.FromLat, Longitude: *query.FromLon},
		models.GeoPoint{Latitude: *query.ToLat, Longitude: *query.ToLon},
		query.Traffic,
	)
	c.JSON(http.StatusOK, ETAResponse{
		DistanceKm: eta.DistanceKm,
		Minutes:    eta.Minutes,
		Traffic:    string(eta.Traffic),
	})
}

// @Summary Create an assignment
// @Description Dispatch an agency, optionally a specific responder, to an open incident. Every violated rule is returned together. Requires API key.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param assignment body CreateAssignmentRequest true "Assignment creation request"
// @Success 201 {object} AssignmentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident, agency or responder not found"
// @Failure 409 {object} ErrorResponse "Incident changed concurrently"
// @Failure 422 {object} ErrorResponse "Assignment rules violated"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /assignments [post]
func (h *Handler) createAssignment(c *gin.Context) {
	var input CreateAssignmentRequest
	log := h.logger.WithField("method", "createAssignment")

	if !h.bindJSON(c, log, &input) {
		return
	}

	a, err := h.dispatchService.CreateAssignment(c.Request.Context(), service.CreateAssignmentInput{
		IncidentID:  input.IncidentID,
		AgencyID:    input.AgencyID,
		ResponderID: input.ResponderID,
		Priority:    input.Priority,
		Notes:       input.Notes,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToAssignmentResponse(a))
}

// @Summary Get assignment by ID
// @Description Get a single assignment by its ID. Requires API key.
// @Tags Assignments
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} AssignmentResponse
// @Failure 400 {object} ErrorResponse "Invalid assignment ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Assignment not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /assignments/{id} [get]
func (h *Handler) getAssignment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid assignment ID"})
		return
	}
	log := h.logger.WithField("method", "getAssignment").WithField("id", id)

	a, err := h.dispatchService.GetAssignment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAssignmentResponse(a))
}

// @Summary Report assignment status
// @Description Move the assignment to a new status, optionally with the responder position. Only the assigned responder may call it. Requires API key.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Assignment ID"
// @Param X-Responder-ID header string true "Calling responder ID"
// @Param status body UpdateAssignmentStatusRequest true "Status report"
// @Success 200 {object} AssignmentResponse
// @Failure 400 {object} ErrorResponse "Invalid ID, header or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Caller is not the assigned responder"
// @Failure 404 {object} ErrorResponse "Assignment not found"
// @Failure 409 {object} ErrorResponse "Transition not allowed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /assignments/{id}/status [post]
func (h *Handler) updateAssignmentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid assignment ID"})
		return
	}
	callerID, err := uuid.Parse(c.GetHeader(responderHeader))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + responderHeader + " header"})
		return
	}
	log := h.logger.WithField("method", "updateAssignmentStatus").WithField("id", id)

	var input UpdateAssignmentStatusRequest
	if !h.bindJSON(c, log, &input) {
		return
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude must be sent together"})
		return
	}

	status, location := statusRequestToInput(input)
	a, err := h.dispatchService.AdvanceAssignment(c.Request.Context(), service.AdvanceAssignmentInput{
		AssignmentID: id,
		CallerID:     callerID,
		Status:       status,
		Location:     location,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAssignmentResponse(a))
}
