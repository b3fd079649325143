package providers

import (
	"context"
	"errors"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// ErrReferralUnavailable indicates the provider cannot serve referral
// requests at all (no API key configured). Callers fall back to the
// deterministic heuristic.
var ErrReferralUnavailable = errors.New("referral provider unavailable")

// ReferralProvider is the LLM boundary: given a patient and the
// candidate hospitals (optionally annotated with route info), produce a
// triage assessment and hospital ranking. Any error means the caller
// should use the fallback heuristic instead.
type ReferralProvider interface {
	// FindBestHospital ranks the candidate hospitals for the patient.
	// history carries similar past cases for additional context and may
	// be empty.
	FindBestHospital(ctx context.Context, patient *entities.PatientInput, hospitals []*entities.Hospital, history []*entities.TriageHistoryEntry) (*entities.Recommendation, error)

	// AnalyzePatient performs a triage-only assessment without hospital
	// ranking.
	AnalyzePatient(ctx context.Context, patient *entities.PatientInput) (*entities.TriageResult, error)
}
