package repositories

import (
	"context"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// UserRepository defines the interface for staff account operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByHospitalCode retrieves a user by hospital code
	GetByHospitalCode(ctx context.Context, code string) (*entities.User, error)

	// GetByHospitalID retrieves the admin registered for a hospital
	GetByHospitalID(ctx context.Context, hospitalID string) (*entities.User, error)

	// UpdateLastLogin stamps the last successful login
	UpdateLastLogin(ctx context.Context, id string) error
}
