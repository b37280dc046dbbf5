package models

import (
	"time"

	"github.com/google/uuid"
)

type ResponderStatus string

const (
	ResponderAvailable  ResponderStatus = "available"
	ResponderDispatched ResponderStatus = "dispatched"
	ResponderOffDuty    ResponderStatus = "off_duty"
)

type Responder struct {
	ID             uuid.UUID       `json:"id"`
	AgencyID       uuid.UUID       `json:"agency_id"`
	Name           string          `json:"name"`
	Status         ResponderStatus `json:"status"`
	LastLocation   *GeoPoint       `json:"last_location,omitempty"`
	LastLocationAt *time.Time      `json:"last_location_at,omitempty"`
}
