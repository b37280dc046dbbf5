package models

import (
	"time"

	"github.com/google/uuid"
)

type AgencyType string

const (
	AgencyFireService        AgencyType = "fire_service"
	AgencyPolice             AgencyType = "police"
	AgencyAmbulance          AgencyType = "ambulance"
	AgencyDisasterManagement AgencyType = "disaster_management"
	AgencyPrivateResponder   AgencyType = "private_responder"
)

// Agency is a responding organization. The counters are refreshed externally and
// may lag behind the live state of the network.
type Agency struct {
	ID                      uuid.UUID  `json:"id"`
	Name                    string     `json:"name"`
	Type                    AgencyType `json:"type"`
	Location                *GeoPoint  `json:"location,omitempty"`
	Active                  bool       `json:"active"`
	AdminUserID             *uuid.UUID `json:"admin_user_id,omitempty"`
	ActiveIncidentCount     int        `json:"active_incident_count"`
	AvailableResponderCount int        `json:"available_responder_count"`
	AvgResponseTimeMinutes  *float64   `json:"avg_response_time_minutes,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// AgencyCounters is the workload/availability view of one agency at snapshot time.
type AgencyCounters struct {
	ActiveIncidents        int      `json:"active_incidents"`
	AvailableResponders    int      `json:"available_responders"`
	AvgResponseTimeMinutes *float64 `json:"avg_response_time_minutes,omitempty"`
}

// CountersOf returns the counters carried on the agency record itself.
func CountersOf(a *Agency) AgencyCounters {
	return AgencyCounters{
		ActiveIncidents:        a.ActiveIncidentCount,
		AvailableResponders:    a.AvailableResponderCount,
		AvgResponseTimeMinutes: a.AvgResponseTimeMinutes,
	}
}

// CounterSnapshot is a versioned, TTL-bound copy of agency counters.
type CounterSnapshot struct {
	Version  int64                        `json:"version"`
	TakenAt  time.Time                    `json:"taken_at"`
	TTL      time.Duration                `json:"ttl"`
	Counters map[uuid.UUID]AgencyCounters `json:"counters"`
}

// Fresh reports whether the snapshot is still within its TTL at now.
func (s *CounterSnapshot) Fresh(now time.Time) bool {
	if s == nil {
		return false
	}
	return now.Before(s.TakenAt.Add(s.TTL))
}

// For returns the counters of the agency if the snapshot is fresh and knows it.
func (s *CounterSnapshot) For(agencyID uuid.UUID, now time.Time) (AgencyCounters, bool) {
	if !s.Fresh(now) {
		return AgencyCounters{}, false
	}
	c, ok := s.Counters[agencyID]
	return c, ok
}
