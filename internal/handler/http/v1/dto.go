package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/analytics"
	"github.com/shenikar/emergency_dispatch/internal/recommend"
)

// CreateIncidentRequest DTO for reporting an incident
// @Description DTO for reporting an incident
type CreateIncidentRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=255"`
	Description string   `json:"description,omitempty" validate:"max=5000"`
	Category    string   `json:"category" validate:"required,oneof=fire medical accident natural_disaster crime infrastructure other"`
	Severity    string   `json:"severity" validate:"required,oneof=low medium high critical"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
}

// IncidentResponse DTO with incident details
// @Description DTO with incident details
type IncidentResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	Category            string     `json:"category"`
	Severity            string     `json:"severity"`
	Latitude            float64    `json:"latitude"`
	Longitude           float64    `json:"longitude"`
	Status              string     `json:"status"`
	AssignedAgencyID    *uuid.UUID `json:"assigned_agency_id,omitempty"`
	ResponseTimeMinutes *float64   `json:"response_time_minutes,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	DispatchedAt        *time.Time `json:"dispatched_at,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ClosedAt            *time.Time `json:"closed_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ListIncidentsQuery query parameters of the incident listing
type ListIncidentsQuery struct {
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	Status   string `form:"status" validate:"omitempty,oneof=reported dispatched in_progress resolved closed cancelled"`
	Category string `form:"category" validate:"omitempty,oneof=fire medical accident natural_disaster crime infrastructure other"`
	AgencyID string `form:"agency_id" validate:"omitempty,uuid"`
	Sort     string `form:"sort" validate:"omitempty,oneof=created_at severity"`
}

// RecommendationItem one ranked agency
// @Description One ranked agency with its score breakdown
type RecommendationItem struct {
	AgencyID   uuid.UUID         `json:"agency_id"`
	AgencyName string            `json:"agency_name"`
	AgencyType string            `json:"agency_type"`
	Score      float64           `json:"score"`
	DistanceKm float64           `json:"distance_km"`
	Factors    recommend.Factors `json:"factors"`
	Reasons    []string          `json:"reasons"`
}

// RecommendationsResponse DTO with the ranked agencies for an incident
// @Description DTO with the ranked agencies for an incident
type RecommendationsResponse struct {
	IncidentID      uuid.UUID            `json:"incident_id"`
	SnapshotVersion int64                `json:"snapshot_version"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Recommendations []RecommendationItem `json:"recommendations"`
}

// ETAQuery query parameters of the ETA estimate
type ETAQuery struct {
	FromLat *float64 `form:"from_lat" validate:"required,latitude"`
	FromLon *float64 `form:"from_lon" validate:"required,longitude"`
	ToLat   *float64 `form:"to_lat" validate:"required,latitude"`
	ToLon   *float64 `form:"to_lon" validate:"required,longitude"`
	Traffic string   `form:"traffic" validate:"omitempty,oneof=rush_hour normal night"`
}

// ETAResponse DTO with the travel estimate
// @Description DTO with the travel estimate
type ETAResponse struct {
	DistanceKm float64 `json:"distance_km"`
	Minutes    int     `json:"minutes"`
	Traffic    string  `json:"traffic"`
}

// CreateAssignmentRequest DTO for dispatching an agency to an incident.
// Priority is checked by the assignment rules so that every violation is reported together.
// @Description DTO for dispatching an agency to an incident
type CreateAssignmentRequest struct {
	IncidentID  uuid.UUID  `json:"incident_id" validate:"required"`
	AgencyID    uuid.UUID  `json:"agency_id" validate:"required"`
	ResponderID *uuid.UUID `json:"responder_id,omitempty"`
	Priority    int        `json:"priority"`
	Notes       string     `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateAssignmentStatusRequest DTO for a responder status report. Latitude and
// longitude are sent together or not at all.
// @Description DTO for a responder status report
type UpdateAssignmentStatusRequest struct {
	Status    string   `json:"status" validate:"required,oneof=dispatched accepted en_route arrived completed"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// LocationResponse coordinates in a response
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AssignmentResponse DTO with assignment details
// @Description DTO with assignment details
type AssignmentResponse struct {
	ID              uuid.UUID         `json:"id"`
	IncidentID      uuid.UUID         `json:"incident_id"`
	AgencyID        uuid.UUID         `json:"agency_id"`
	ResponderID     *uuid.UUID        `json:"responder_id,omitempty"`
	Priority        int               `json:"priority"`
	Status          string            `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CurrentLocation *LocationResponse `json:"current_location,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	AcceptedAt      *time.Time        `json:"accepted_at,omitempty"`
	EnRouteAt       *time.Time        `json:"en_route_at,omitempty"`
	ArrivedAt       *time.Time        `json:"arrived_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// AnalyticsQuery trailing window in days; 0 uses the configured default
type AnalyticsQuery struct {
	Days int `form:"days" validate:"omitempty,min=1,max=365"`
}

// ResponseTimeQuery query parameters of the response time report
type ResponseTimeQuery struct {
	AgencyID  string  `form:"agency_id" validate:"omitempty,uuid"`
	Days      int     `form:"days" validate:"omitempty,min=1,max=365"`
	Threshold float64 `form:"threshold" validate:"omitempty,gt=0"`
	Window    int     `form:"window" validate:"omitempty,min=1,max=90"`
}

// LeaderboardResponse DTO with agencies ranked by performance
// @Description DTO with agencies ranked by performance
type LeaderboardResponse struct {
	Days    int                          `json:"days"`
	Entries []analytics.LeaderboardEntry `json:"entries"`
}

// ErrorResponse DTO for failures; Details lists every validation problem
// @Description DTO for failures
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
