package models

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentDispatched AssignmentStatus = "dispatched"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentEnRoute    AssignmentStatus = "en_route"
	AssignmentArrived    AssignmentStatus = "arrived"
	AssignmentCompleted  AssignmentStatus = "completed"

	// AssignmentCancelled is set only when the owning incident is cancelled;
	// it is not a lifecycle step a responder can report.
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// AssignmentStatuses lists the lifecycle in order.
var AssignmentStatuses = []AssignmentStatus{
	AssignmentDispatched,
	AssignmentAccepted,
	AssignmentEnRoute,
	AssignmentArrived,
	AssignmentCompleted,
}

// Step returns the position of the status in the lifecycle, -1 when unknown.
func (s AssignmentStatus) Step() int {
	for i, st := range AssignmentStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s AssignmentStatus) Valid() bool {
	return s.Step() >= 0
}

func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

const (
	MinPriority = 1
	MaxPriority = 5
)

type Assignment struct {
	ID              uuid.UUID        `json:"id"`
	IncidentID      uuid.UUID        `json:"incident_id"`
	AgencyID        uuid.UUID        `json:"agency_id"`
	ResponderID     *uuid.UUID       `json:"responder_id,omitempty"`
	Priority        int              `json:"priority"`
	Status          AssignmentStatus `json:"status"`
	Notes           string           `json:"notes,omitempty"`
	CurrentLocation *GeoPoint        `json:"current_location,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	AcceptedAt      *time.Time       `json:"accepted_at,omitempty"`
	EnRouteAt       *time.Time       `json:"en_route_at,omitempty"`
	ArrivedAt       *time.Time       `json:"arrived_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Transition is the full set of writes produced by one lifecycle step. It is
// persisted atomically.
type Transition struct {
	Assignment *Assignment

	// IncidentStatus is set when the step projects a new status onto the incident.
	IncidentID     uuid.UUID
	IncidentStatus *IncidentStatus
	ResolvedAt     *time.Time

	// ResponderLocation is set when the caller reported a position.
	ResponderID       *uuid.UUID
	ResponderLocation *GeoPoint
	LocationAt        time.Time

	// ReleaseResponder puts the responder back into the available pool.
	ReleaseResponder bool
}
