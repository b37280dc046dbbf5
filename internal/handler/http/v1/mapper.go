package v1

import (
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

// DTOToIncidentModel converts the create request into the domain model
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    models.IncidentCategory(dto.Category),
		Severity:    models.Severity(dto.Severity),
		Latitude:    *dto.Latitude,
		Longitude:   *dto.Longitude,
	}
}

// ModelToIncidentResponse converts the domain model into the response DTO
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:                  model.ID,
		Title:               model.Title,
		Description:         model.Description,
		Category:            string(model.Category),
		Severity:            string(model.Severity),
		Latitude:            model.Latitude,
		Longitude:           model.Longitude,
		Status:              string(model.Status),
		AssignedAgencyID:    model.AssignedAgencyID,
		ResponseTimeMinutes: model.ResponseTimeMinutes,
		CreatedAt:           model.CreatedAt,
		DispatchedAt:        model.DispatchedAt,
		ResolvedAt:          model.ResolvedAt,
		ClosedAt:            model.ClosedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

// ModelsToIncidentResponses converts a slice of models
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func RecommendationSetToResponse(set *service.RecommendationSet) *RecommendationsResponse {
	items := make([]RecommendationItem, len(set.Recommendations))
	for i, rec := range set.Recommendations {
		items[i] = RecommendationItem{
			AgencyID:   rec.Agency.ID,
			AgencyName: rec.Agency.Name,
			AgencyType: string(rec.Agency.Type),
			Score:      rec.Score,
			DistanceKm: rec.DistanceKm,
			Factors:    rec.Factors,
			Reasons:    rec.Reasons,
		}
	}
	return &RecommendationsResponse{
		IncidentID:      set.IncidentID,
		SnapshotVersion: set.SnapshotVersion,
		GeneratedAt:     set.GeneratedAt,
		Recommendations: items,
	}
}

func ModelToAssignmentResponse(model *models.Assignment) *AssignmentResponse {
	resp := &AssignmentResponse{
		ID:          model.ID,
		IncidentID:  model.IncidentID,
		AgencyID:    model.AgencyID,
		ResponderID: model.ResponderID,
		Priority:    model.Priority,
		Status:      string(model.Status),
		Notes:       model.Notes,
		CreatedAt:   model.CreatedAt,
		AcceptedAt:  model.AcceptedAt,
		EnRouteAt:   model.EnRouteAt,
		ArrivedAt:   model.ArrivedAt,
		CompletedAt: model.CompletedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.CurrentLocation != nil {
		resp.CurrentLocation = &LocationResponse{
			Latitude:  model.CurrentLocation.Latitude,
			Longitude: model.CurrentLocation.Longitude,
		}
	}
	return resp
}

func statusRequestToInput(dto UpdateAssignmentStatusRequest) (models.AssignmentStatus, *models.GeoPoint) {
	var loc *models.GeoPoint
	if dto.Latitude != nil && dto.Longitude != nil {
		loc = &models.GeoPoint{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
	}
	return models.AssignmentStatus(dto.Status), loc
}
