package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

// HospitalAdapter implements the HospitalRepository interface.
// Nested capacity structures (specializations, facilities, staff,
// current status) are stored as JSONB columns.
type HospitalAdapter struct {
	client *postgres.Client
}

// NewHospitalAdapter creates a new hospital adapter
func NewHospitalAdapter(client *postgres.Client) repositories.HospitalRepository {
	return &HospitalAdapter{
		client: client,
	}
}

const hospitalColumns = `
	id, name, street, city, state, pincode,
	contact_number, email, hospital_type,
	specializations, facilities, staff, current_status,
	latitude, longitude, rating, created_at, updated_at
`

// Create creates a new hospital
func (a *HospitalAdapter) Create(ctx context.Context, hospital *entities.Hospital) error {
	if hospital.ID == "" {
		hospital.ID = uuid.NewString()
	}
	now := time.Now()
	if hospital.CreatedAt.IsZero() {
		hospital.CreatedAt = now
	}
	hospital.UpdatedAt = now

	specs, facilities, staff, status, err := marshalHospitalJSON(hospital)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO hospitals (
			id, name, street, city, state, pincode,
			contact_number, email, hospital_type,
			specializations, facilities, staff, current_status,
			latitude, longitude, rating, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	lat, lng := locationValues(hospital.Location)
	_, err = a.client.DB().ExecContext(ctx, query,
		hospital.ID,
		hospital.Name,
		hospital.Address.Street,
		hospital.Address.City,
		hospital.Address.State,
		hospital.Address.Pincode,
		hospital.ContactNumber,
		hospital.Email,
		hospital.HospitalType,
		specs,
		facilities,
		staff,
		status,
		lat,
		lng,
		hospital.Rating,
		hospital.CreatedAt,
		hospital.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to create hospital", err)
	}

	return nil
}

// GetByID retrieves a hospital by ID
func (a *HospitalAdapter) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id = $1`

	hospital, err := scanHospital(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hospital with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get hospital", err)
	}

	return hospital, nil
}

// Update updates a hospital record
func (a *HospitalAdapter) Update(ctx context.Context, hospital *entities.Hospital) error {
	specs, facilities, staff, status, err := marshalHospitalJSON(hospital)
	if err != nil {
		return err
	}

	query := `
		UPDATE hospitals SET
			name = $2, street = $3, city = $4, state = $5, pincode = $6,
			contact_number = $7, email = $8, hospital_type = $9,
			specializations = $10, facilities = $11, staff = $12, current_status = $13,
			latitude = $14, longitude = $15, rating = $16, updated_at = $17
		WHERE id = $1
	`

	hospital.UpdatedAt = time.Now()
	lat, lng := locationValues(hospital.Location)

	result, err := a.client.DB().ExecContext(ctx, query,
		hospital.ID,
		hospital.Name,
		hospital.Address.Street,
		hospital.Address.City,
		hospital.Address.State,
		hospital.Address.Pincode,
		hospital.ContactNumber,
		hospital.Email,
		hospital.HospitalType,
		specs,
		facilities,
		staff,
		status,
		lat,
		lng,
		hospital.Rating,
		hospital.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to update hospital", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("hospital with id %s not found", hospital.ID))
	}

	return nil
}

// UpdateStatus updates only the live capacity snapshot, stamping LastUpdated
func (a *HospitalAdapter) UpdateStatus(ctx context.Context, id string, status *entities.HospitalStatus) error {
	if status == nil {
		return apperrors.NewValidationError("status is required")
	}
	status.LastUpdated = time.Now()

	raw, err := json.Marshal(status)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal hospital status", err)
	}

	query := `UPDATE hospitals SET current_status = $2, updated_at = $3 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, raw, time.Now())
	if err != nil {
		return apperrors.NewInternalError("failed to update hospital status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("hospital with id %s not found", id))
	}

	return nil
}

// Delete deletes a hospital
func (a *HospitalAdapter) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM hospitals WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete hospital", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("hospital with id %s not found", id))
	}

	return nil
}

// List retrieves hospitals with filters
func (a *HospitalAdapter) List(ctx context.Context, filter repositories.HospitalFilter) ([]*entities.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE 1=1`

	args := []interface{}{}
	argCount := 1

	if filter.Specialization != "" {
		query += fmt.Sprintf(" AND specializations @> $%d", argCount)
		raw, err := json.Marshal([]string{filter.Specialization})
		if err != nil {
			return nil, apperrors.NewInternalError("failed to marshal specialization filter", err)
		}
		args = append(args, raw)
		argCount++
	}

	if filter.EmergencyOnly {
		query += " AND (current_status->>'emergency_available')::boolean = true"
	}

	if filter.AcceptingOnly {
		query += " AND (current_status->>'is_accepting_patients')::boolean = true"
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	return a.queryHospitals(ctx, query, args...)
}

// ListAccepting retrieves hospitals currently accepting patients, the
// candidate set for referrals
func (a *HospitalAdapter) ListAccepting(ctx context.Context) ([]*entities.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals
		WHERE (current_status->>'is_accepting_patients')::boolean = true
		ORDER BY rating DESC`

	return a.queryHospitals(ctx, query)
}

func (a *HospitalAdapter) queryHospitals(ctx context.Context, query string, args ...interface{}) ([]*entities.Hospital, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list hospitals", err)
	}
	defer rows.Close()

	hospitals := []*entities.Hospital{}
	for rows.Next() {
		hospital, err := scanHospital(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan hospital", err)
		}
		hospitals = append(hospitals, hospital)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating hospitals", err)
	}

	return hospitals, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHospital(row rowScanner) (*entities.Hospital, error) {
	hospital := &entities.Hospital{}
	var specs, facilities, staff, status []byte
	var lat, lng sql.NullFloat64

	err := row.Scan(
		&hospital.ID,
		&hospital.Name,
		&hospital.Address.Street,
		&hospital.Address.City,
		&hospital.Address.State,
		&hospital.Address.Pincode,
		&hospital.ContactNumber,
		&hospital.Email,
		&hospital.HospitalType,
		&specs,
		&facilities,
		&staff,
		&status,
		&lat,
		&lng,
		&hospital.Rating,
		&hospital.CreatedAt,
		&hospital.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &hospital.Specializations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal specializations: %w", err)
		}
	}
	if len(facilities) > 0 {
		hospital.Facilities = &entities.Facilities{}
		if err := json.Unmarshal(facilities, hospital.Facilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal facilities: %w", err)
		}
	}
	if len(staff) > 0 {
		hospital.Staff = &entities.Staff{}
		if err := json.Unmarshal(staff, hospital.Staff); err != nil {
			return nil, fmt.Errorf("failed to unmarshal staff: %w", err)
		}
	}
	if len(status) > 0 {
		hospital.CurrentStatus = &entities.HospitalStatus{}
		if err := json.Unmarshal(status, hospital.CurrentStatus); err != nil {
			return nil, fmt.Errorf("failed to unmarshal current status: %w", err)
		}
	}
	if lat.Valid && lng.Valid {
		hospital.Location = &entities.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}

	return hospital, nil
}

func marshalHospitalJSON(hospital *entities.Hospital) (specs, facilities, staff, status []byte, err error) {
	specs, err = json.Marshal(hospital.Specializations)
	if err != nil {
		return nil, nil, nil, nil, apperrors.NewInternalError("failed to marshal specializations", err)
	}
	facilities, err = json.Marshal(hospital.Facilities)
	if err != nil {
		return nil, nil, nil, nil, apperrors.NewInternalError("failed to marshal facilities", err)
	}
	staff, err = json.Marshal(hospital.Staff)
	if err != nil {
		return nil, nil, nil, nil, apperrors.NewInternalError("failed to marshal staff", err)
	}
	status, err = json.Marshal(hospital.CurrentStatus)
	if err != nil {
		return nil, nil, nil, nil, apperrors.NewInternalError("failed to marshal current status", err)
	}
	return specs, facilities, staff, status, nil
}

func locationValues(loc *entities.Location) (sql.NullFloat64, sql.NullFloat64) {
	if loc == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Latitude, Valid: true},
		sql.NullFloat64{Float64: loc.Longitude, Valid: true}
}
