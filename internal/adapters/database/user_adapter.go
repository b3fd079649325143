package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
	}
}

const userColumns = `
	id, email, password_hash, name, role, hospital_id, hospital_code,
	is_active, last_login, created_at, updated_at
`

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, email, password_hash, name, role, hospital_id, hospital_code,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.HospitalID,
		user.HospitalCode,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getBy(ctx, "email", email)
}

// GetByHospitalCode retrieves a user by hospital code
func (a *UserAdapter) GetByHospitalCode(ctx context.Context, code string) (*entities.User, error) {
	return a.getBy(ctx, "hospital_code", code)
}

// GetByHospitalID retrieves the admin registered for a hospital
func (a *UserAdapter) GetByHospitalID(ctx context.Context, hospitalID string) (*entities.User, error) {
	return a.getBy(ctx, "hospital_id", hospitalID)
}

func (a *UserAdapter) getBy(ctx context.Context, column, value string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	user := &entities.User{}
	var lastLogin sql.NullTime

	err := a.client.DB().QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.HospitalID,
		&user.HospitalCode,
		&user.IsActive,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with %s %s not found", column, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return user, nil
}

// UpdateLastLogin stamps the last successful login
func (a *UserAdapter) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return apperrors.NewInternalError("failed to update last login", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}

	return nil
}
