package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/assignment"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/outbox"
	"github.com/shenikar/emergency_dispatch/internal/recommend"
	"github.com/sirupsen/logrus"
)

type AgencyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	ListAll(ctx context.Context) ([]*models.Agency, error)
}

type ResponderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Responder, error)
}

// AssignmentRepository persists assignments together with the incident and
// responder rows they touch, each call in a single transaction.
type AssignmentRepository interface {
	// Create inserts the assignment and moves the incident to dispatched, provided the
	// incident still has expectedIncidentVersion and is open. Otherwise it returns
	// ErrIncidentConflict and writes nothing.
	Create(ctx context.Context, a *models.Assignment, expectedIncidentVersion int64) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	// ApplyTransition writes every change of t and returns the resulting incident status.
	ApplyTransition(ctx context.Context, t *models.Transition) (models.IncidentStatus, error)
}

// CounterSource provides the latest agency counter snapshot, nil when none was taken yet.
type CounterSource interface {
	Current(ctx context.Context) (*models.CounterSnapshot, error)
}

type CreateAssignmentInput struct {
	IncidentID  uuid.UUID
	AgencyID    uuid.UUID
	ResponderID *uuid.UUID
	Priority    int
	Notes       string
}

type AdvanceAssignmentInput struct {
	AssignmentID uuid.UUID
	CallerID     uuid.UUID
	Status       models.AssignmentStatus
	Location     *models.GeoPoint
}

// RecommendationSet is a ranking together with the counter snapshot it was computed from.
// SnapshotVersion is 0 when agency records were used instead.
type RecommendationSet struct {
	IncidentID      uuid.UUID                  `json:"incident_id"`
	SnapshotVersion int64                      `json:"snapshot_version"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

type ETAEstimate struct {
	DistanceKm float64         `json:"distance_km"`
	Minutes    int             `json:"minutes"`
	Traffic    geo.TrafficBand `json:"traffic"`
}

// DispatchService recommends agencies, creates assignments and drives them
// through their lifecycle
type DispatchService interface {
	Recommend(ctx context.Context, incidentID uuid.UUID) (*RecommendationSet, error)
	EstimateETA(from, to models.GeoPoint, traffic string) ETAEstimate
	CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*models.Assignment, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	AdvanceAssignment(ctx context.Context, in AdvanceAssignmentInput) (*models.Assignment, error)
}

type dispatchService struct {
	incidents   IncidentRepository
	agencies    AgencyRepository
	responders  ResponderRepository
	assignments AssignmentRepository
	counters    CounterSource
	publisher   outbox.Publisher
	recommender *recommend.Recommender
	policy      assignment.Policy
	logger      *logrus.Logger
	now         func() time.Time
}

type DispatchDeps struct {
	Incidents   IncidentRepository
	Agencies    AgencyRepository
	Responders  ResponderRepository
	Assignments AssignmentRepository
	Counters    CounterSource
	Publisher   outbox.Publisher
}

func NewDispatchService(deps DispatchDeps, policy assignment.Policy, logger *logrus.Logger) DispatchService {
	return &dispatchService{
		incidents:   deps.Incidents,
		agencies:    deps.Agencies,
		responders:  deps.Responders,
		assignments: deps.Assignments,
		counters:    deps.Counters,
		publisher:   deps.Publisher,
		recommender: recommend.NewRecommender(recommend.Options{ActiveOnly: true}),
		policy:      policy,
		logger:      logger,
		now:         time.Now,
	}
}

// Recommend ranks the active agencies for the incident
func (s *dispatchService) Recommend(ctx context.Context, incidentID uuid.UUID) (*RecommendationSet, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "Recommend",
		"incident_id": incidentID,
	})
	log.Info("Computing agency recommendations")

	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident for recommendation")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	agencies, err := s.agencies.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list agencies")
		return nil, fmt.Errorf("service: could not list agencies: %w", err)
	}

	snapshot, err := s.counters.Current(ctx)
	if err != nil {
		log.WithError(err).Warn("Counter snapshot unavailable, falling back to agency records")
		snapshot = nil
	}

	now := s.now()
	set := &RecommendationSet{
		IncidentID:      incidentID,
		GeneratedAt:     now.UTC(),
		Recommendations: s.recommender.Rank(incident, agencies, snapshot),
	}
	if snapshot.Fresh(now) {
		set.SnapshotVersion = snapshot.Version
	}

	log.WithFields(logrus.Fields{
		"count":            len(set.Recommendations),
		"snapshot_version": set.SnapshotVersion,
	}).Info("Recommendations computed")
	return set, nil
}

// EstimateETA falls back to the band of the current hour when traffic is empty
func (s *dispatchService) EstimateETA(from, to models.GeoPoint, traffic string) ETAEstimate {
	band := geo.ParseTrafficBand(traffic)
	if traffic == "" {
		band = geo.BandAt(s.now())
	}
	return ETAEstimate{
		DistanceKm: geo.Distance(from, to),
		Minutes:    geo.EstimateETA(from, to, band),
		Traffic:    band,
	}
}

// CreateAssignment validates and persists a new assignment, then notifies the
// responder and the agency administrator
func (s *dispatchService) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*models.Assignment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "CreateAssignment",
		"incident_id": in.IncidentID,
		"agency_id":   in.AgencyID,
	})
	log.Info("Attempting to create an assignment")

	incident, err := s.incidents.GetByID(ctx, in.IncidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident for assignment")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	agency, err := s.agencies.GetByID(ctx, in.AgencyID)
	if err != nil {
		log.WithError(err).Warn("Failed to get agency for assignment")
		return nil, fmt.Errorf("service: could not get agency: %w", err)
	}
	var responder *models.Responder
	if in.ResponderID != nil {
		responder, err = s.responders.GetByID(ctx, *in.ResponderID)
		if err != nil {
			log.WithError(err).Warn("Failed to get responder for assignment")
			return nil, fmt.Errorf("service: could not get responder: %w", err)
		}
	}

	now := s.now().UTC()
	a := &models.Assignment{
		ID:          uuid.New(),
		IncidentID:  in.IncidentID,
		AgencyID:    in.AgencyID,
		ResponderID: in.ResponderID,
		Priority:    in.Priority,
		Status:      models.AssignmentDispatched,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if result := assignment.Validate(a, incident, agency, responder); !result.Valid {
		log.WithField("errors", result.Errors).Warn("Assignment rejected by validation")
		return nil, &ValidationError{Errors: result.Errors}
	}

	if err := s.assignments.Create(ctx, a, incident.Version); err != nil {
		if errors.Is(err, ErrIncidentConflict) {
			log.Warn("Incident changed concurrently, assignment not created")
		} else {
			log.WithError(err).Error("Failed to create assignment in repository")
		}
		return nil, fmt.Errorf("service: could not create assignment: %w", err)
	}

	if err := s.incidents.InvalidateIncidentCache(ctx, incident.ID); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
	publishIncidentUpdate(ctx, s.publisher, log, models.IncidentUpdate{
		IncidentID:   incident.ID,
		Status:       models.IncidentDispatched,
		AssignmentID: &a.ID,
		Assignment:   a.Status,
		UpdatedAt:    now,
	})
	s.notifyAssignment(ctx, log, a, incident, agency)

	log.WithField("assignment_id", a.ID).Info("Assignment created successfully")
	return a, nil
}

func (s *dispatchService) notifyAssignment(ctx context.Context, log *logrus.Entry, a *models.Assignment, incident *models.Incident, agency *models.Agency) {
	critical := a.Priority >= 4
	var notifications []models.Notification

	if a.ResponderID != nil {
		priority := models.PriorityHigh
		if critical {
			priority = models.PriorityCritical
		}
		notifications = append(notifications, models.Notification{
			UserID:          *a.ResponderID,
			Type:            models.NotificationAssignmentCreated,
			Title:           "New assignment",
			Message:         fmt.Sprintf("You have been dispatched to incident: %s", incident.Title),
			RelatedEntityID: a.ID,
			Priority:        priority,
		})
	}
	if agency.AdminUserID != nil {
		priority := models.PriorityNormal
		if critical {
			priority = models.PriorityCritical
		}
		notifications = append(notifications, models.Notification{
			UserID:          *agency.AdminUserID,
			Type:            models.NotificationAssignmentCreated,
			Title:           "Agency dispatched",
			Message:         fmt.Sprintf("%s has been assigned to incident: %s", agency.Name, incident.Title),
			RelatedEntityID: a.ID,
			Priority:        priority,
		})
	}

	for _, n := range notifications {
		if err := s.publisher.Enqueue(ctx, outbox.NewNotificationIntent(n)); err != nil {
			log.WithError(err).WithField("user_id", n.UserID).Warn("Failed to enqueue notification")
		}
	}
}

// GetAssignment returns the assignment by ID
func (s *dispatchService) GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "dispatch",
		"method":        "GetAssignment",
		"assignment_id": id,
	})

	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get assignment in repository")
		return nil, fmt.Errorf("service: could not get assignment: %w", err)
	}
	return a, nil
}

// AdvanceAssignment is the only way an assignment changes status. A repeated
// status only records the reported location.
func (s *dispatchService) AdvanceAssignment(ctx context.Context, in AdvanceAssignmentInput) (*models.Assignment, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "dispatch",
		"method":        "AdvanceAssignment",
		"assignment_id": in.AssignmentID,
		"caller_id":     in.CallerID,
		"target":        in.Status,
	})
	log.Info("Attempting to advance assignment")

	if !in.Status.Valid() {
		return nil, fmt.Errorf("service: unknown assignment status %q: %w", in.Status, ErrInvalidTransition)
	}

	current, err := s.assignments.GetByID(ctx, in.AssignmentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get assignment for transition")
		return nil, fmt.Errorf("service: could not get assignment: %w", err)
	}

	if current.ResponderID == nil || *current.ResponderID != in.CallerID {
		log.Warn("Caller is not the assigned responder")
		return nil, fmt.Errorf("service: could not advance assignment: %w", ErrForbidden)
	}

	t, err := assignment.Plan(s.policy, current, in.Status, in.Location, s.now().UTC())
	if err != nil {
		log.WithError(err).Warn("Transition rejected by policy")
		return nil, fmt.Errorf("service: %w: %v", ErrInvalidTransition, err)
	}

	incidentStatus, err := s.assignments.ApplyTransition(ctx, t)
	if err != nil {
		log.WithError(err).Error("Failed to persist assignment transition")
		return nil, fmt.Errorf("service: could not advance assignment: %w", err)
	}

	if t.IncidentStatus != nil {
		if err := s.incidents.InvalidateIncidentCache(ctx, t.IncidentID); err != nil {
			log.WithError(err).Warn("Failed to invalidate incident cache")
		}
	}
	publishIncidentUpdate(ctx, s.publisher, log, models.IncidentUpdate{
		IncidentID:   t.IncidentID,
		Status:       incidentStatus,
		AssignmentID: &t.Assignment.ID,
		Assignment:   t.Assignment.Status,
		UpdatedAt:    t.Assignment.UpdatedAt,
	})

	log.WithField("status", t.Assignment.Status).Info("Assignment advanced successfully")
	return t.Assignment, nil
}
