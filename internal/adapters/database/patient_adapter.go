package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

// PatientAdapter implements the PatientRepository interface. Vitals,
// triage result and referral are stored as JSONB; list fields as text
// arrays.
type PatientAdapter struct {
	client *postgres.Client
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
	}
}

const patientColumns = `
	id, name, age, gender, chief_complaint, symptoms, reported_severity,
	vitals, medical_history, allergies, current_medications,
	triage_result, referral, created_at, updated_at
`

// Create creates a new patient record
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	now := time.Now()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	patient.UpdatedAt = now

	vitals, triage, referral, err := marshalPatientJSON(patient)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO patients (
			id, name, age, gender, chief_complaint, symptoms, reported_severity,
			vitals, medical_history, allergies, current_medications,
			triage_result, referral, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = a.client.DB().ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.ChiefComplaint,
		pq.Array(patient.Symptoms),
		string(patient.ReportedSeverity),
		vitals,
		patient.MedicalHistory,
		pq.Array(patient.Allergies),
		pq.Array(patient.CurrentMedications),
		triage,
		referral,
		patient.CreatedAt,
		patient.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to create patient", err)
	}

	return nil
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	patient, err := scanPatient(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}

	return patient, nil
}

// List retrieves patients, newest first
func (a *PatientAdapter) List(ctx context.Context, limit, offset int) ([]*entities.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC`

	args := []interface{}{}
	argCount := 1

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, limit)
		argCount++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, offset)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}
	defer rows.Close()

	patients := []*entities.Patient{}
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan patient", err)
		}
		patients = append(patients, patient)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating patients", err)
	}

	return patients, nil
}

// Delete deletes a patient record
func (a *PatientAdapter) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM patients WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}

	return nil
}

func scanPatient(row rowScanner) (*entities.Patient, error) {
	patient := &entities.Patient{}
	var vitals, triage, referral []byte
	var reported string

	err := row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.Age,
		&patient.Gender,
		&patient.ChiefComplaint,
		pq.Array(&patient.Symptoms),
		&reported,
		&vitals,
		&patient.MedicalHistory,
		pq.Array(&patient.Allergies),
		pq.Array(&patient.CurrentMedications),
		&triage,
		&referral,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	patient.ReportedSeverity = entities.ReportedSeverity(reported)

	if len(vitals) > 0 {
		patient.Vitals = &entities.Vitals{}
		if err := json.Unmarshal(vitals, patient.Vitals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vitals: %w", err)
		}
	}
	if len(triage) > 0 {
		patient.TriageResult = &entities.TriageResult{}
		if err := json.Unmarshal(triage, patient.TriageResult); err != nil {
			return nil, fmt.Errorf("failed to unmarshal triage result: %w", err)
		}
	}
	if len(referral) > 0 {
		patient.Referral = &entities.Referral{}
		if err := json.Unmarshal(referral, patient.Referral); err != nil {
			return nil, fmt.Errorf("failed to unmarshal referral: %w", err)
		}
	}

	return patient, nil
}

// marshalPatientJSON serializes the optional JSONB columns. A nil field
// stays NULL in the database rather than becoming the string "null".
func marshalPatientJSON(patient *entities.Patient) (vitals, triage, referral []byte, err error) {
	if patient.Vitals != nil {
		vitals, err = json.Marshal(patient.Vitals)
		if err != nil {
			return nil, nil, nil, apperrors.NewInternalError("failed to marshal vitals", err)
		}
	}
	if patient.TriageResult != nil {
		triage, err = json.Marshal(patient.TriageResult)
		if err != nil {
			return nil, nil, nil, apperrors.NewInternalError("failed to marshal triage result", err)
		}
	}
	if patient.Referral != nil {
		referral, err = json.Marshal(patient.Referral)
		if err != nil {
			return nil, nil, nil, apperrors.NewInternalError("failed to marshal referral", err)
		}
	}
	return vitals, triage, referral, nil
}
