package services

import (
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// HeuristicReferralService is the deterministic fallback referral path:
// condition detection, severity adjustment, hospital scoring and result
// assembly, chained over in-memory inputs. It is pure, performs no I/O
// and never fails on missing optional fields; it is invoked only when
// the LLM-based primary path is unavailable.
type HeuristicReferralService struct {
	classifier *ConditionClassifier
	adjuster   *SeverityAdjuster
	ranker     *HospitalRankingService
	assembler  *RecommendationAssembler
}

// NewHeuristicReferralService wires the four core components together.
func NewHeuristicReferralService() *HeuristicReferralService {
	return &HeuristicReferralService{
		classifier: NewConditionClassifier(),
		adjuster:   NewSeverityAdjuster(),
		ranker:     NewHospitalRankingService(),
		assembler:  NewRecommendationAssembler(),
	}
}

// Recommend produces a full recommendation for the patient over the
// candidate hospitals. An empty candidate list yields a recommendation
// with no hospital and the no-hospitals note.
func (s *HeuristicReferralService) Recommend(patient *entities.PatientInput, hospitals []*entities.Hospital) *entities.Recommendation {
	condition := s.classifier.Classify(patient.ChiefComplaint, patient.Symptoms)

	severity, alerts := s.adjuster.Adjust(
		condition.BaseSeverity,
		patient.Reported(),
		patient.HeartRate(),
		patient.OxygenSaturation(),
		patient.AgeOrDefault(),
	)

	ranked := s.ranker.Rank(condition, severity, hospitals)

	return s.assembler.Assemble(patient, condition, severity, alerts, ranked)
}
