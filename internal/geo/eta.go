package geo

import (
	"math"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/models"
)

// TrafficBand selects the average travel speed used for an estimate.
type TrafficBand string

const (
	TrafficRushHour TrafficBand = "rush_hour"
	TrafficNormal   TrafficBand = "normal"
	TrafficNight    TrafficBand = "night"
)

var speedKmH = map[TrafficBand]float64{
	TrafficRushHour: 30,
	TrafficNormal:   50,
	TrafficNight:    60,
}

// Speed returns the average speed for the band; unknown bands use normal traffic.
func (b TrafficBand) Speed() float64 {
	if s, ok := speedKmH[b]; ok {
		return s
	}
	return speedKmH[TrafficNormal]
}

// ParseTrafficBand maps free-form input to a band, falling back to normal.
func ParseTrafficBand(s string) TrafficBand {
	b := TrafficBand(s)
	if _, ok := speedKmH[b]; ok {
		return b
	}
	return TrafficNormal
}

// BandAt derives a band from the local hour of t.
func BandAt(t time.Time) TrafficBand {
	hour := t.Hour()
	switch {
	case hour >= 7 && hour <= 9, hour >= 17 && hour <= 19:
		return TrafficRushHour
	case hour >= 22 || hour <= 5:
		return TrafficNight
	default:
		return TrafficNormal
	}
}

// dispatchBuffer covers turnout time; it grows with distance.
func dispatchBuffer(distanceKm float64) int {
	switch {
	case distanceKm < 5:
		return 5
	case distanceKm < 10:
		return 10
	default:
		return 15
	}
}

// EstimateETA returns the expected minutes for a responder at from to reach to.
// The result is never below the dispatch buffer, even for identical points.
func EstimateETA(from, to models.GeoPoint, band TrafficBand) int {
	distance := Distance(from, to)
	travel := int(math.Ceil(distance / band.Speed() * 60))
	return travel + dispatchBuffer(distance)
}
