package services

import (
	"context"
	"time"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
	"github.com/nerve-health/referral/backend/internal/infrastructure/observability"
	apperrors "github.com/nerve-health/referral/backend/pkg/errors"
)

// TriageService performs standalone triage assessment without hospital
// matching. Like referrals, it degrades to the deterministic pipeline
// when no LLM provider is configured or the provider fails.
type TriageService struct {
	provider   providers.ReferralProvider
	classifier *ConditionClassifier
	adjuster   *SeverityAdjuster
}

// NewTriageService creates a new triage service. provider may be nil.
func NewTriageService(provider providers.ReferralProvider) *TriageService {
	return &TriageService{
		provider:   provider,
		classifier: NewConditionClassifier(),
		adjuster:   NewSeverityAdjuster(),
	}
}

// Analyze triages a patient
func (s *TriageService) Analyze(ctx context.Context, input *entities.PatientInput) (*entities.TriageResult, error) {
	ctx, span := observability.StartSpan(ctx, "TriageService.Analyze")
	defer span.End()

	if input == nil || input.ChiefComplaint == "" {
		return nil, apperrors.NewValidationError("chief complaint is required")
	}

	if s.provider != nil {
		result, err := s.provider.AnalyzePatient(ctx, input)
		if err == nil {
			return result, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("triage provider failed, using heuristic assessment")
	}

	return s.heuristicAnalysis(input), nil
}

// heuristicAnalysis runs the classifier and severity adjuster for a
// triage-only verdict.
func (s *TriageService) heuristicAnalysis(input *entities.PatientInput) *entities.TriageResult {
	condition := s.classifier.Classify(input.ChiefComplaint, input.Symptoms)
	severity, alerts := s.adjuster.Adjust(
		condition.BaseSeverity,
		input.Reported(),
		input.HeartRate(),
		input.OxygenSaturation(),
		input.AgeOrDefault(),
	)

	recommendation := "Standard evaluation recommended."
	waitTime := 30
	switch severity {
	case entities.SeverityCritical:
		recommendation = "Immediate medical attention required."
		waitTime = 0
	case entities.SeverityUrgent:
		recommendation = "Prompt evaluation needed."
		waitTime = 15
	}

	reasoning := condition.Name + " presentation identified"
	if len(alerts) > 0 {
		reasoning += "; alerts: "
		for i, alert := range alerts {
			if i > 0 {
				reasoning += ", "
			}
			reasoning += alert
		}
	}

	return &entities.TriageResult{
		Severity:                severity,
		Recommendation:          recommendation,
		Reasoning:               reasoning,
		EstimatedWaitTime:       waitTime,
		RequiredSpecializations: condition.Specializations,
		RequiredFacilities:      condition.Facilities,
		AIGeneratedAt:           time.Now(),
	}
}
