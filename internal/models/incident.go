package models

import (
	"time"

	"github.com/google/uuid"
)

type IncidentCategory string

const (
	CategoryFire            IncidentCategory = "fire"
	CategoryMedical         IncidentCategory = "medical"
	CategoryAccident        IncidentCategory = "accident"
	CategoryNaturalDisaster IncidentCategory = "natural_disaster"
	CategoryCrime           IncidentCategory = "crime"
	CategoryInfrastructure  IncidentCategory = "infrastructure"
	CategoryOther           IncidentCategory = "other"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists the severities from least to most severe.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the ordinal position of the severity, 0 for unknown values.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

type IncidentStatus string

const (
	IncidentReported   IncidentStatus = "reported"
	IncidentDispatched IncidentStatus = "dispatched"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentClosed     IncidentStatus = "closed"
	IncidentCancelled  IncidentStatus = "cancelled"
)

// AcceptsAssignments reports whether a new assignment may be attached in this status.
func (s IncidentStatus) AcceptsAssignments() bool {
	return s == IncidentReported || s == IncidentDispatched
}

// IsFinal reports whether the incident reached resolved or closed.
func (s IncidentStatus) IsFinal() bool {
	return s == IncidentResolved || s == IncidentClosed
}

type Incident struct {
	ID                  uuid.UUID        `json:"id"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Category            IncidentCategory `json:"category"`
	Severity            Severity         `json:"severity"`
	Latitude            float64          `json:"latitude"`
	Longitude           float64          `json:"longitude"`
	Status              IncidentStatus   `json:"status"`
	AssignedAgencyID    *uuid.UUID       `json:"assigned_agency_id,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	DispatchedAt        *time.Time       `json:"dispatched_at,omitempty"`
	ResolvedAt          *time.Time       `json:"resolved_at,omitempty"`
	ClosedAt            *time.Time       `json:"closed_at,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at"`
	ResponseTimeMinutes *float64         `json:"response_time_minutes,omitempty"`
	Version             int64            `json:"version"`
}

// Location returns the incident coordinates.
func (i *Incident) Location() GeoPoint {
	return GeoPoint{Latitude: i.Latitude, Longitude: i.Longitude}
}
