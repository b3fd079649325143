package providers

import (
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// RouteProvider estimates travel between a patient and a hospital.
// Implementations must be pure: no I/O, no failure modes beyond NaN
// propagation on malformed coordinates.
type RouteProvider interface {
	// EstimateRoute computes distance and transit durations between two
	// points. When emergency is true the emergency-vehicle duration is
	// populated as well.
	EstimateRoute(origin, destination entities.Location, emergency bool) *entities.RouteInfo
}
