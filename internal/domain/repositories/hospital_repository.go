package repositories

import (
	"context"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// HospitalRepository defines the interface for hospital data operations
type HospitalRepository interface {
	// Create creates a new hospital
	Create(ctx context.Context, hospital *entities.Hospital) error

	// GetByID retrieves a hospital by ID
	GetByID(ctx context.Context, id string) (*entities.Hospital, error)

	// Update updates a hospital record
	Update(ctx context.Context, hospital *entities.Hospital) error

	// UpdateStatus updates only the live capacity snapshot, stamping
	// LastUpdated
	UpdateStatus(ctx context.Context, id string, status *entities.HospitalStatus) error

	// Delete deletes a hospital
	Delete(ctx context.Context, id string) error

	// List retrieves hospitals with filters
	List(ctx context.Context, filter HospitalFilter) ([]*entities.Hospital, error)

	// ListAccepting retrieves hospitals currently accepting patients,
	// the candidate set for referrals
	ListAccepting(ctx context.Context) ([]*entities.Hospital, error)
}

// HospitalFilter defines filters for listing hospitals
type HospitalFilter struct {
	Specialization string
	EmergencyOnly  bool
	AcceptingOnly  bool
	Limit          int
	Offset         int
}
