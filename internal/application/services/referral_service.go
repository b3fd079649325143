package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nerve-health/referral/backend/internal/adapters/providers/routing"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	"github.com/nerve-health/referral/backend/internal/infrastructure/observability"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

const similarCasesLimit = 5

// ReferralService orchestrates the referral pipeline: load candidate
// hospitals, annotate routes, ask the LLM provider for a verdict and
// fall back to the deterministic heuristic on any failure, then persist
// the patient record and learning-store entry.
type ReferralService struct {
	hospitals     repositories.HospitalRepository
	patients      repositories.PatientRepository
	history       repositories.TriageHistoryRepository
	historySearch repositories.TriageHistorySearchRepository
	provider      providers.ReferralProvider
	routes        providers.RouteProvider
	events        providers.EventBus
	heuristic     *HeuristicReferralService
	metrics       *observability.Metrics
}

// ReferralServiceOption configures optional collaborators.
type ReferralServiceOption func(*ReferralService)

// WithReferralProvider sets the LLM provider. Without one every
// referral runs on the heuristic.
func WithReferralProvider(p providers.ReferralProvider) ReferralServiceOption {
	return func(s *ReferralService) { s.provider = p }
}

// WithTriageHistory sets the learning store and its search index.
func WithTriageHistory(repo repositories.TriageHistoryRepository, search repositories.TriageHistorySearchRepository) ReferralServiceOption {
	return func(s *ReferralService) {
		s.history = repo
		s.historySearch = search
	}
}

// WithEventBus sets the bus for hospital update events.
func WithEventBus(bus providers.EventBus) ReferralServiceOption {
	return func(s *ReferralService) { s.events = bus }
}

// WithMetrics sets the application metrics.
func WithMetrics(m *observability.Metrics) ReferralServiceOption {
	return func(s *ReferralService) { s.metrics = m }
}

// NewReferralService creates a new referral service
func NewReferralService(
	hospitals repositories.HospitalRepository,
	patients repositories.PatientRepository,
	routes providers.RouteProvider,
	opts ...ReferralServiceOption,
) *ReferralService {
	s := &ReferralService{
		hospitals: hospitals,
		patients:  patients,
		routes:    routes,
		heuristic: NewHeuristicReferralService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessReferral runs the full pipeline for one intake and returns the
// recommendation together with the persisted patient record.
func (s *ReferralService) ProcessReferral(ctx context.Context, input *entities.PatientInput) (*entities.Recommendation, *entities.Patient, error) {
	ctx, span := observability.StartSpan(ctx, "ReferralService.ProcessReferral")
	defer span.End()

	rec, err := s.recommend(ctx, span, input)
	if err != nil {
		return nil, nil, err
	}

	logger := observability.LoggerFromContext(ctx)

	patient := s.buildPatientRecord(input, rec)
	if err := s.patients.Create(ctx, patient); err != nil {
		// The verdict is still useful even if persistence failed.
		logger.Error().Err(err).Msg("failed to persist patient record")
	}

	s.recordHistory(input, rec)
	s.publishReferralEvent(rec)

	logger.Info().
		Str("severity", string(rec.Triage.Severity)).
		Bool("urgent_transfer", rec.UrgentTransfer).
		Msg("referral processed")

	return rec, patient, nil
}

// QuickReferral runs the matching pipeline without creating a patient
// record. The anonymized history entry is still saved so the learning
// store keeps growing.
func (s *ReferralService) QuickReferral(ctx context.Context, input *entities.PatientInput) (*entities.Recommendation, error) {
	ctx, span := observability.StartSpan(ctx, "ReferralService.QuickReferral")
	defer span.End()

	rec, err := s.recommend(ctx, span, input)
	if err != nil {
		return nil, err
	}

	s.recordHistory(input, rec)
	return rec, nil
}

func (s *ReferralService) recommend(ctx context.Context, span trace.Span, input *entities.PatientInput) (*entities.Recommendation, error) {
	logger := observability.LoggerFromContext(ctx)

	if input == nil || input.ChiefComplaint == "" {
		return nil, apperrors.NewValidationError("chief complaint is required")
	}

	hospitals, err := s.hospitals.ListAccepting(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if len(hospitals) == 0 {
		return nil, apperrors.NewNotFoundError("no available hospitals")
	}

	routing.AttachRoutes(s.routes, input.Location, hospitals, true)

	var similar []*entities.TriageHistoryEntry
	if s.historySearch != nil {
		similar, err = s.historySearch.FindSimilar(ctx, input.ChiefComplaint, input.Symptoms, similarCasesLimit)
		if err != nil {
			logger.Warn().Err(err).Msg("similar case lookup failed, continuing without history context")
			similar = nil
		}
	}

	engine := "heuristic"
	var rec *entities.Recommendation
	if s.provider != nil {
		rec, err = s.provider.FindBestHospital(ctx, input, hospitals, similar)
		if err != nil {
			logger.Warn().Err(err).Msg("referral provider failed, falling back to heuristic matching")
			rec = nil
		} else {
			engine = "llm"
		}
	}
	if rec == nil {
		rec = s.heuristic.Recommend(input, hospitals)
	}

	observability.SetSpanAttributes(span,
		attribute.String("referral.engine", engine),
		attribute.String("referral.severity", string(rec.Triage.Severity)),
	)
	if s.metrics != nil {
		observability.RecordReferral(ctx, s.metrics, engine, string(rec.Triage.Severity))
	}

	logger.Debug().
		Str("engine", engine).
		Str("severity", string(rec.Triage.Severity)).
		Msg("recommendation computed")

	return rec, nil
}

// GetPatient retrieves a persisted patient record
func (s *ReferralService) GetPatient(ctx context.Context, id string) (*entities.Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// ListPatients retrieves patient records, newest first
func (s *ReferralService) ListPatients(ctx context.Context, limit, offset int) ([]*entities.Patient, error) {
	return s.patients.List(ctx, limit, offset)
}

// DeletePatient removes a patient record
func (s *ReferralService) DeletePatient(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("patient id is required")
	}
	return s.patients.Delete(ctx, id)
}

// RecordOutcome attaches a real disposition to a past triage decision
func (s *ReferralService) RecordOutcome(ctx context.Context, historyID string, outcome *entities.TriageOutcome) error {
	if s.history == nil {
		return apperrors.NewInternalError("triage history is not configured", nil)
	}
	return s.history.RecordOutcome(ctx, historyID, outcome)
}

// SeverityStats aggregates the severity distribution the learning store
// has seen for a detected condition.
func (s *ReferralService) SeverityStats(ctx context.Context, condition string) ([]entities.SeverityStat, error) {
	if s.history == nil {
		return nil, apperrors.NewInternalError("triage history is not configured", nil)
	}
	if condition == "" {
		return nil, apperrors.NewValidationError("condition is required")
	}
	return s.history.SeverityStats(ctx, condition)
}

func (s *ReferralService) buildPatientRecord(input *entities.PatientInput, rec *entities.Recommendation) *entities.Patient {
	patient := &entities.Patient{
		Name:               input.Name,
		Age:                input.AgeOrDefault(),
		Gender:             input.Gender,
		ChiefComplaint:     input.ChiefComplaint,
		Symptoms:           input.Symptoms,
		ReportedSeverity:   input.Reported(),
		Vitals:             input.Vitals,
		MedicalHistory:     input.MedicalHistory,
		Allergies:          input.Allergies,
		CurrentMedications: input.CurrentMedications,
		TriageResult: &entities.TriageResult{
			Severity:                rec.Triage.Severity,
			Reasoning:               rec.Triage.Reasoning,
			RequiredSpecializations: rec.Triage.RequiredSpecializations,
			RequiredFacilities:      rec.Triage.RequiredFacilities,
			AIGeneratedAt:           time.Now(),
		},
	}

	if rec.RecommendedHospital != nil {
		patient.TriageResult.EstimatedWaitTime = rec.RecommendedHospital.EstimatedWaitTime
		patient.Referral = &entities.Referral{
			HospitalID:     rec.RecommendedHospital.HospitalID,
			HospitalName:   rec.RecommendedHospital.HospitalName,
			MatchScore:     rec.RecommendedHospital.MatchScore,
			Reasons:        rec.RecommendedHospital.Reasons,
			UrgentTransfer: rec.UrgentTransfer,
			ReferredAt:     time.Now(),
			Status:         entities.ReferralPending,
		}
	}

	return patient
}

// recordHistory saves an anonymized learning-store entry and indexes it
// for similarity search. Best effort off the request path.
func (s *ReferralService) recordHistory(input *entities.PatientInput, rec *entities.Recommendation) {
	if s.history == nil || rec.RecommendedHospital == nil {
		return
	}

	condition := ""
	if len(rec.Triage.RequiredSpecializations) > 0 {
		condition = rec.Triage.RequiredSpecializations[0]
	}

	entry := &entities.TriageHistoryEntry{
		AgeGroup:                entities.AgeGroupFor(input.AgeOrDefault()),
		Gender:                  input.Gender,
		ChiefComplaint:          input.ChiefComplaint,
		Symptoms:                input.Symptoms,
		ReportedSeverity:        input.Reported(),
		Vitals:                  input.Vitals,
		Severity:                rec.Triage.Severity,
		DetectedCondition:       condition,
		Reasoning:               rec.Triage.Reasoning,
		RequiredSpecializations: rec.Triage.RequiredSpecializations,
		RequiredFacilities:      rec.Triage.RequiredFacilities,
		HospitalID:              rec.RecommendedHospital.HospitalID,
		HospitalName:            rec.RecommendedHospital.HospitalName,
		MatchScore:              rec.RecommendedHospital.MatchScore,
		Distance:                rec.RecommendedHospital.Distance,
		ETA:                     rec.RecommendedHospital.ETA,
		Location:                input.Location,
		CreatedAt:               time.Now(),
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger := observability.GetLogger()
		if err := s.history.Create(bgCtx, entry); err != nil {
			logger.Warn().Err(err).Msg("failed to save triage history entry")
			return
		}
		if s.historySearch != nil {
			if err := s.historySearch.Index(bgCtx, entry); err != nil {
				logger.Warn().Err(err).Str("entry_id", entry.ID).Msg("failed to index triage history entry")
			}
		}
	}()
}

// publishReferralEvent notifies subscribers that a referral landed on a
// hospital, so dashboards can refresh its load.
func (s *ReferralService) publishReferralEvent(rec *entities.Recommendation) {
	if s.events == nil || rec.RecommendedHospital == nil {
		return
	}

	event := entities.NewHospitalEvent(
		rec.RecommendedHospital.HospitalID,
		entities.HospitalEventTypeReferralMade,
		map[string]interface{}{
			"hospital_name":   rec.RecommendedHospital.HospitalName,
			"match_score":     rec.RecommendedHospital.MatchScore,
			"severity":        string(rec.Triage.Severity),
			"urgent_transfer": rec.UrgentTransfer,
		},
	)

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(bgCtx, providers.EventChannelHospitalUpdates, event); err != nil {
			observability.GetLogger().Warn().Err(err).Msg("failed to publish referral event")
		}
	}()
}
