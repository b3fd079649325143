package services

import (
	"context"
	"time"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/observability"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

// HospitalService manages the hospital directory and live capacity
// snapshots. Status changes fan out on the event bus so connected
// dashboards see capacity shifts without polling.
type HospitalService struct {
	repo   repositories.HospitalRepository
	events providers.EventBus
}

// NewHospitalService creates a new hospital service. events may be nil.
func NewHospitalService(repo repositories.HospitalRepository, events providers.EventBus) *HospitalService {
	return &HospitalService{
		repo:   repo,
		events: events,
	}
}

// Create registers a new hospital
func (s *HospitalService) Create(ctx context.Context, hospital *entities.Hospital) error {
	ctx, span := observability.StartSpan(ctx, "HospitalService.Create")
	defer span.End()

	if err := validateHospital(hospital); err != nil {
		return err
	}
	return s.repo.Create(ctx, hospital)
}

// GetByID retrieves a hospital by ID
func (s *HospitalService) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("hospital id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List retrieves hospitals matching the filter
func (s *HospitalService) List(ctx context.Context, filter repositories.HospitalFilter) ([]*entities.Hospital, error) {
	ctx, span := observability.StartSpan(ctx, "HospitalService.List")
	defer span.End()

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Update replaces a hospital record
func (s *HospitalService) Update(ctx context.Context, hospital *entities.Hospital) error {
	ctx, span := observability.StartSpan(ctx, "HospitalService.Update")
	defer span.End()

	if err := validateHospital(hospital); err != nil {
		return err
	}
	if hospital.ID == "" {
		return apperrors.NewValidationError("hospital id is required")
	}
	if err := s.repo.Update(ctx, hospital); err != nil {
		return err
	}

	s.publish(ctx, hospital.ID, entities.HospitalEventTypeCapacityUpdate, map[string]interface{}{
		"name": hospital.Name,
	})
	return nil
}

// UpdateStatus updates a hospital's live capacity snapshot and
// broadcasts the change.
func (s *HospitalService) UpdateStatus(ctx context.Context, id string, status *entities.HospitalStatus) error {
	ctx, span := observability.StartSpan(ctx, "HospitalService.UpdateStatus")
	defer span.End()

	if id == "" {
		return apperrors.NewValidationError("hospital id is required")
	}
	if status == nil {
		return apperrors.NewValidationError("status payload is required")
	}
	if status.OccupancyRate != nil && (*status.OccupancyRate < 0 || *status.OccupancyRate > 100) {
		return apperrors.NewValidationError("occupancy rate must be between 0 and 100")
	}
	if status.WaitTime != nil && *status.WaitTime < 0 {
		return apperrors.NewValidationError("wait time cannot be negative")
	}

	status.LastUpdated = time.Now()
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"is_accepting_patients": status.IsAcceptingPatients,
		"emergency_available":   status.EmergencyAvailable,
	}
	if status.WaitTime != nil {
		fields["wait_time"] = *status.WaitTime
	}
	if status.OccupancyRate != nil {
		fields["occupancy_rate"] = *status.OccupancyRate
	}
	s.publish(ctx, id, entities.HospitalEventTypeStatusUpdate, fields)
	return nil
}

// Delete removes a hospital
func (s *HospitalService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("hospital id is required")
	}
	return s.repo.Delete(ctx, id)
}

// publish broadcasts on both the global channel and the hospital's own
// channel, logging failures without surfacing them to callers.
func (s *HospitalService) publish(ctx context.Context, hospitalID string, eventType entities.HospitalEventType, fields map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := entities.NewHospitalEvent(hospitalID, eventType, fields)
	for _, channel := range []string{providers.EventChannelHospitalUpdates, providers.GetHospitalChannel(hospitalID)} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("channel", channel).
				Str("hospital_id", hospitalID).
				Msg("failed to publish hospital event")
		}
	}
}

func validateHospital(hospital *entities.Hospital) error {
	if hospital == nil {
		return apperrors.NewValidationError("hospital payload is required")
	}
	if hospital.Name == "" {
		return apperrors.NewValidationError("hospital name is required")
	}
	if len(hospital.Specializations) == 0 {
		return apperrors.NewValidationError("at least one specialization is required")
	}
	return nil
}
