// Package geo holds the coordinate math used for dispatch: great-circle distance
// and travel time estimation over static speed bands.
package geo

import (
	"math"

	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/pkg/utils"
)

const earthRadiusKm = 6371.0

// Distance returns the Haversine great-circle distance in kilometers, rounded to
// two decimals.
func Distance(a, b models.GeoPoint) float64 {
	if a == b {
		return 0
	}
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return utils.RoundTo(earthRadiusKm*c, 2)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
