package repositories

import (
	"context"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	// Create creates a new patient record
	Create(ctx context.Context, patient *entities.Patient) error

	// GetByID retrieves a patient by ID
	GetByID(ctx context.Context, id string) (*entities.Patient, error)

	// List retrieves patients, newest first
	List(ctx context.Context, limit, offset int) ([]*entities.Patient, error)

	// Delete deletes a patient record
	Delete(ctx context.Context, id string) error
}
