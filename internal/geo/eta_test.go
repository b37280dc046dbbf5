package geo

import (
	"testing"
	"time"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEstimateETA_ZeroDistanceKeepsBuffer(t *testing.T) {
	for _, band := range []TrafficBand{TrafficRushHour, TrafficNormal, TrafficNight, "unknown"} {
		assert.Equal(t, 5, EstimateETA(accra, accra, band), "band %s", band)
	}
}

func TestEstimateETA_Bands(t *testing.T) {
	target := models.GeoPoint{Latitude: 5.7, Longitude: -0.1870} // 10.71 km

	assert.Equal(t, 37, EstimateETA(accra, target, TrafficRushHour))
	assert.Equal(t, 28, EstimateETA(accra, target, TrafficNormal))
	assert.Equal(t, 26, EstimateETA(accra, target, TrafficNight))
}

func TestEstimateETA_BufferSteps(t *testing.T) {
	near := models.GeoPoint{Latitude: 5.65, Longitude: -0.1870} // 5.15 km

	assert.Equal(t, 17, EstimateETA(accra, near, TrafficNormal))
}

func TestEstimateETA_BandOrdering(t *testing.T) {
	targets := []models.GeoPoint{
		accra,
		{Latitude: 5.61, Longitude: -0.19},
		{Latitude: 5.9, Longitude: -0.5},
		{Latitude: 6.6885, Longitude: -1.6244},
	}
	for _, to := range targets {
		rush := EstimateETA(accra, to, TrafficRushHour)
		normal := EstimateETA(accra, to, TrafficNormal)
		night := EstimateETA(accra, to, TrafficNight)
		assert.GreaterOrEqual(t, rush, normal)
		assert.GreaterOrEqual(t, normal, night)
	}
}

func TestParseTrafficBand(t *testing.T) {
	assert.Equal(t, TrafficRushHour, ParseTrafficBand("rush_hour"))
	assert.Equal(t, TrafficNight, ParseTrafficBand("night"))
	assert.Equal(t, TrafficNormal, ParseTrafficBand(""))
	assert.Equal(t, TrafficNormal, ParseTrafficBand("gridlock"))
}

func TestBandAt(t *testing.T) {
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, TrafficRushHour, BandAt(day.Add(8*time.Hour)))
	assert.Equal(t, TrafficRushHour, BandAt(day.Add(18*time.Hour)))
	assert.Equal(t, TrafficNight, BandAt(day.Add(23*time.Hour)))
	assert.Equal(t, TrafficNight, BandAt(day.Add(3*time.Hour)))
	assert.Equal(t, TrafficNormal, BandAt(day.Add(13*time.Hour)))
}
