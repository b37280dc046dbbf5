package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentUpdate is broadcast to real-time subscribers after a lifecycle step.
type IncidentUpdate struct {
	IncidentID   uuid.UUID        `json:"incident_id"`
	Status       IncidentStatus   `json:"status"`
	AssignmentID *uuid.UUID       `json:"assignment_id,omitempty"`
	Assignment   AssignmentStatus `json:"assignment_status,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type NotificationPriority string

const (
	PriorityCritical NotificationPriority = "critical"
	PriorityHigh     NotificationPriority = "high"
	PriorityNormal   NotificationPriority = "normal"
)

const NotificationAssignmentCreated = "assignment_created"

type Notification struct {
	UserID          uuid.UUID            `json:"user_id"`
	Type            string               `json:"type"`
	Title           string               `json:"title"`
	Message         string               `json:"message"`
	RelatedEntityID uuid.UUID            `json:"related_entity_id"`
	Priority        NotificationPriority `json:"priority"`
}
