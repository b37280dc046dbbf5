package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/analytics"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/outbox"
	"github.com/sirupsen/logrus"
)

// IncidentFilter narrows ListIncidents. Zero values mean no filter.
type IncidentFilter struct {
	Status   models.IncidentStatus
	Category models.IncidentCategory
	AgencyID *uuid.UUID
	// SortBySeverity lists the most severe incidents first, newest first within
	// a severity.
	SortBySeverity bool
	Page           int
	PageSize       int
}

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
	// Cancel sets the incident to cancelled if it still has the expected version,
	// cancelling its live assignments and releasing their responders.
	Cancel(ctx context.Context, id uuid.UUID, expectedVersion int64) error
	ListSince(ctx context.Context, agencyID *uuid.UUID, since time.Time) ([]*models.Incident, error)

	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error)
	CancelIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}

type incidentService struct {
	repo      IncidentRepository
	publisher outbox.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewIncidentService(repo IncidentRepository, publisher outbox.Publisher, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateIncident создает инцидент в статусе reported
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "CreateIncident",
		"category": incident.Category,
		"severity": incident.Severity,
	})
	log.Info("Attempting to create a new incident")

	incident.Status = models.IncidentReported
	incident.AssignedAgencyID = nil
	incident.DispatchedAt = nil
	incident.ResolvedAt = nil
	incident.ClosedAt = nil
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID, сначала из кэша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		s.withResponseTime(cached)
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}

	s.withResponseTime(incident)
	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, filter IncidentFilter) ([]*models.Incident, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	for _, incident := range incidents {
		s.withResponseTime(incident)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// CancelIncident withdraws an incident that has not been resolved yet
func (s *incidentService) CancelIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "CancelIncident",
		"incident_id": id,
	})
	log.Info("Attempting to cancel incident")

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to cancel a non-existent incident")
		return nil, fmt.Errorf("service: could not get incident for cancel: %w", err)
	}
	if incident.Status.IsFinal() || incident.Status == models.IncidentCancelled {
		log.WithField("status", incident.Status).Warn("Incident can no longer be cancelled")
		return nil, fmt.Errorf("service: incident is %s: %w", incident.Status, ErrInvalidTransition)
	}

	if err := s.repo.Cancel(ctx, id, incident.Version); err != nil {
		if errors.Is(err, ErrIncidentConflict) {
			log.Warn("Incident changed while cancelling")
		} else {
			log.WithError(err).Error("Failed to cancel incident in repository")
		}
		return nil, fmt.Errorf("service: could not cancel incident: %w", err)
	}

	now := s.now().UTC()
	incident.Status = models.IncidentCancelled
	incident.Version++
	incident.UpdatedAt = now

	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
	publishIncidentUpdate(ctx, s.publisher, log, models.IncidentUpdate{
		IncidentID: id,
		Status:     models.IncidentCancelled,
		UpdatedAt:  now,
	})

	log.Info("Incident cancelled successfully")
	return incident, nil
}

func (s *incidentService) withResponseTime(incident *models.Incident) {
	incident.ResponseTimeMinutes = analytics.ResponseTime(incident, s.now())
}

// publishIncidentUpdate enqueues the update; delivery is advisory so failures are only logged.
func publishIncidentUpdate(ctx context.Context, publisher outbox.Publisher, log *logrus.Entry, update models.IncidentUpdate) {
	if err := publisher.Enqueue(ctx, outbox.NewIncidentUpdateIntent(update)); err != nil {
		log.WithError(err).WithField("incident_id", update.IncidentID).Warn("Failed to enqueue incident update")
	}
}
