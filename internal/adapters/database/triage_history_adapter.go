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

// TriageHistoryAdapter implements the TriageHistoryRepository interface
type TriageHistoryAdapter struct {
	client *postgres.Client
}

// NewTriageHistoryAdapter creates a new triage history adapter
func NewTriageHistoryAdapter(client *postgres.Client) repositories.TriageHistoryRepository {
	return &TriageHistoryAdapter{
		client: client,
	}
}

const triageHistoryColumns = `
	id, age_group, gender, chief_complaint, symptoms, reported_severity,
	vitals, severity, detected_condition, reasoning,
	required_specializations, required_facilities,
	hospital_id, hospital_name, match_score, distance, eta,
	outcome, latitude, longitude, created_at
`

// Create persists a new anonymized history entry
func (a *TriageHistoryAdapter) Create(ctx context.Context, entry *entities.TriageHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var vitals, outcome []byte
	var err error
	if entry.Vitals != nil {
		vitals, err = json.Marshal(entry.Vitals)
		if err != nil {
			return apperrors.NewInternalError("failed to marshal vitals", err)
		}
	}
	if entry.Outcome != nil {
		outcome, err = json.Marshal(entry.Outcome)
		if err != nil {
			return apperrors.NewInternalError("failed to marshal outcome", err)
		}
	}

	lat, lng := locationValues(entry.Location)

	query := `
		INSERT INTO triage_history (
			id, age_group, gender, chief_complaint, symptoms, reported_severity,
			vitals, severity, detected_condition, reasoning,
			required_specializations, required_facilities,
			hospital_id, hospital_name, match_score, distance, eta,
			outcome, latitude, longitude, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = a.client.DB().ExecContext(ctx, query,
		entry.ID,
		string(entry.AgeGroup),
		entry.Gender,
		entry.ChiefComplaint,
		pq.Array(entry.Symptoms),
		string(entry.ReportedSeverity),
		vitals,
		string(entry.Severity),
		entry.DetectedCondition,
		entry.Reasoning,
		pq.Array(entry.RequiredSpecializations),
		pq.Array(entry.RequiredFacilities),
		entry.HospitalID,
		entry.HospitalName,
		entry.MatchScore,
		entry.Distance,
		entry.ETA,
		outcome,
		lat,
		lng,
		entry.CreatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to create triage history entry", err)
	}

	return nil
}

// GetByID retrieves a history entry by ID
func (a *TriageHistoryAdapter) GetByID(ctx context.Context, id string) (*entities.TriageHistoryEntry, error) {
	query := `SELECT ` + triageHistoryColumns + ` FROM triage_history WHERE id = $1`

	entry, err := scanTriageHistory(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("triage history entry with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get triage history entry", err)
	}

	return entry, nil
}

// SeverityStats aggregates severity distribution for a detected condition
func (a *TriageHistoryAdapter) SeverityStats(ctx context.Context, condition string) ([]entities.SeverityStat, error) {
	query := `
		SELECT severity, COUNT(*), AVG(match_score)
		FROM triage_history
		WHERE detected_condition = $1
		GROUP BY severity
		ORDER BY COUNT(*) DESC
	`

	rows, err := a.client.DB().QueryContext(ctx, query, condition)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate severity stats", err)
	}
	defer rows.Close()

	stats := []entities.SeverityStat{}
	for rows.Next() {
		var stat entities.SeverityStat
		var severity string
		if err := rows.Scan(&severity, &stat.Count, &stat.AvgMatchScore); err != nil {
			return nil, apperrors.NewInternalError("failed to scan severity stat", err)
		}
		stat.Severity = entities.Severity(severity)
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating severity stats", err)
	}

	return stats, nil
}

// RecordOutcome attaches a real-world outcome to a past entry
func (a *TriageHistoryAdapter) RecordOutcome(ctx context.Context, id string, outcome *entities.TriageOutcome) error {
	if outcome == nil {
		return apperrors.NewValidationError("outcome is required")
	}
	outcome.UpdatedAt = time.Now()

	raw, err := json.Marshal(outcome)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal outcome", err)
	}

	query := `UPDATE triage_history SET outcome = $2 WHERE id = $1`

	result, err := a.client.DB().ExecContext(ctx, query, id, raw)
	if err != nil {
		return apperrors.NewInternalError("failed to record outcome", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("triage history entry with id %s not found", id))
	}

	return nil
}

func scanTriageHistory(row rowScanner) (*entities.TriageHistoryEntry, error) {
	entry := &entities.TriageHistoryEntry{}
	var vitals, outcome []byte
	var ageGroup, reported, severity string
	var lat, lng sql.NullFloat64

	err := row.Scan(
		&entry.ID,
		&ageGroup,
		&entry.Gender,
		&entry.ChiefComplaint,
		pq.Array(&entry.Symptoms),
		&reported,
		&vitals,
		&severity,
		&entry.DetectedCondition,
		&entry.Reasoning,
		pq.Array(&entry.RequiredSpecializations),
		pq.Array(&entry.RequiredFacilities),
		&entry.HospitalID,
		&entry.HospitalName,
		&entry.MatchScore,
		&entry.Distance,
		&entry.ETA,
		&outcome,
		&lat,
		&lng,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.AgeGroup = entities.AgeGroup(ageGroup)
	entry.ReportedSeverity = entities.ReportedSeverity(reported)
	entry.Severity = entities.Severity(severity)

	if len(vitals) > 0 {
		entry.Vitals = &entities.Vitals{}
		if err := json.Unmarshal(vitals, entry.Vitals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vitals: %w", err)
		}
	}
	if len(outcome) > 0 {
		entry.Outcome = &entities.TriageOutcome{}
		if err := json.Unmarshal(outcome, entry.Outcome); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
		}
	}
	if lat.Valid && lng.Valid {
		entry.Location = &entities.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}

	return entry, nil
}
