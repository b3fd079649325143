package routing

import (
	"math"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
)

const (
	earthRadiusKm = 6371.0

	// Assumed average speeds: city traffic vs ambulance with sirens.
	normalSpeedKmh    = 25.0
	emergencySpeedKmh = 45.0
)

// HaversineProvider estimates routes from great-circle distance and
// fixed average speeds. Pure and deterministic: no network calls, safe
// to memoize by coordinate pair.
type HaversineProvider struct{}

// NewHaversineProvider creates a haversine route provider.
func NewHaversineProvider() providers.RouteProvider {
	return &HaversineProvider{}
}

// EstimateRoute computes distance and transit durations between two
// points. Malformed (NaN) coordinates propagate as a NaN distance;
// consumers must treat that as "distance unknown".
func (p *HaversineProvider) EstimateRoute(origin, destination entities.Location, emergency bool) *entities.RouteInfo {
	distance := haversine(origin, destination)

	route := &entities.RouteInfo{
		DistanceKm: math.Round(distance*10) / 10,
	}

	if math.IsNaN(distance) {
		route.DistanceKm = distance
		return route
	}

	route.DurationMin = int(math.Ceil(distance / normalSpeedKmh * 60))
	if emergency {
		route.EmergencyDurationMin = int(math.Ceil(distance / emergencySpeedKmh * 60))
	}

	return route
}

func haversine(origin, destination entities.Location) float64 {
	dLat := toRadians(destination.Latitude - origin.Latitude)
	dLon := toRadians(destination.Longitude - origin.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(origin.Latitude))*math.Cos(toRadians(destination.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// AttachRoutes annotates each hospital with route info from the patient
// location. Hospitals without coordinates, or a nil patient location,
// are left without route info; scoring then skips the distance term.
func AttachRoutes(provider providers.RouteProvider, patientLocation *entities.Location, hospitals []*entities.Hospital, emergency bool) {
	if patientLocation == nil {
		return
	}
	for _, h := range hospitals {
		if h.Location == nil {
			continue
		}
		h.RouteInfo = provider.EstimateRoute(*patientLocation, *h.Location, emergency)
	}
}
