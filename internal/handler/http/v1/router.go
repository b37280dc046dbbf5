package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers every v1 route
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("", APIKeyAuthMiddleware(h.cfg, h.logger))

	incidents := protected.Group("/incidents")
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.DELETE("/:id", h.cancelIncident)
		incidents.GET("/:id/recommendations", h.recommendAgencies)
	}

	protected.GET("/eta", h.estimateETA)

	assignments := protected.Group("/assignments")
	{
		assignments.POST("", h.createAssignment)
		assignments.GET("/:id", h.getAssignment)
		assignments.POST("/:id/status", h.updateAssignmentStatus)
	}

	protected.GET("/agencies/:id/performance", h.agencyPerformance)

	analytics := protected.Group("/analytics")
	{
		analytics.GET("/leaderboard", h.leaderboard)
		analytics.GET("/response-times", h.responseTimes)
	}

	if h.updates != nil {
		protected.GET("/ws", h.streamUpdates)
	}
}
