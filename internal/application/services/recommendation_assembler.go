package services

import (
	"fmt"
	"strings"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// assemblerWaitDefault is the wait time echoed in recommendation text
// when a hospital has not published one. Display-only; scoring uses the
// separate 30-minute default.
const assemblerWaitDefault = 15

// NoHospitalsNote is the distinct terminal indicator for an empty
// candidate set. Callers must treat it as "no placement available", not
// as a scoring error.
const NoHospitalsNote = "No hospitals available for placement."

// RecommendationAssembler formats the scorer's output into the
// Recommendation consumed by the UI. It performs no scoring and never
// alters ranking.
type RecommendationAssembler struct{}

// NewRecommendationAssembler creates an assembler.
func NewRecommendationAssembler() *RecommendationAssembler {
	return &RecommendationAssembler{}
}

// Assemble packages the top-ranked hospital plus up to two alternatives
// into a recommendation with human-readable justifications. An empty
// ranked list yields a recommendation with no hospital and the
// no-hospitals note rather than an error.
func (a *RecommendationAssembler) Assemble(patient *entities.PatientInput, condition entities.ConditionProfile, severity entities.Severity, alerts []string, ranked []ScoredHospital) *entities.Recommendation {
	rec := &entities.Recommendation{
		Triage: entities.TriageAssessment{
			Severity:                severity,
			RequiredSpecializations: condition.Specializations,
			RequiredFacilities:      condition.Facilities,
		},
		UrgentTransfer:  severity == entities.SeverityCritical,
		AdditionalNotes: additionalNotes(severity, alerts),
	}

	if len(ranked) == 0 {
		rec.Triage.Reasoning = a.reasoning(patient, condition, severity, alerts, nil)
		rec.AlternativeHospitals = []entities.AlternativeHospital{}
		rec.AdditionalNotes = NoHospitalsNote
		return rec
	}

	best := ranked[0]
	rec.Triage.Reasoning = a.reasoning(patient, condition, severity, alerts, &best)
	rec.RecommendedHospital = a.recommendedHospital(condition, best)

	alternatives := ranked[1:]
	if len(alternatives) > 2 {
		alternatives = alternatives[:2]
	}
	rec.AlternativeHospitals = make([]entities.AlternativeHospital, 0, len(alternatives))
	for _, alt := range alternatives {
		rec.AlternativeHospitals = append(rec.AlternativeHospitals, a.alternativeHospital(condition, alt))
	}

	return rec
}

func (a *RecommendationAssembler) recommendedHospital(condition entities.ConditionProfile, best ScoredHospital) *entities.RecommendedHospital {
	h := best.Hospital

	matched := make([]string, 0, len(condition.Specializations))
	for _, spec := range condition.Specializations {
		if h.HasSpecialization(spec) {
			matched = append(matched, spec)
		}
	}
	specialists := "general"
	if len(matched) > 0 {
		specialists = strings.Join(matched, ", ")
	}

	waitTime := displayWaitTime(h)
	reasons := []string{
		fmt.Sprintf("Has %s specialists", specialists),
		fmt.Sprintf("Wait time: %d minutes", waitTime),
		fmt.Sprintf("%d doctors on duty", h.AvailableDoctors()),
		fmt.Sprintf("%d ICU beds available", h.ICUBeds()),
	}

	out := &entities.RecommendedHospital{
		HospitalID:        h.ID,
		HospitalName:      h.Name,
		MatchScore:        best.Score,
		Reasons:           reasons,
		EstimatedWaitTime: waitTime,
	}

	if h.RouteInfo.Valid() {
		distance := h.RouteInfo.DistanceKm
		eta := h.RouteInfo.ETA()
		out.Distance = &distance
		out.ETA = &eta
		out.RouteInfo = h.RouteInfo
		out.Reasons = append(out.Reasons, fmt.Sprintf("Distance: %.1f km, ETA: %d min", distance, eta))
	}

	return out
}

func (a *RecommendationAssembler) alternativeHospital(condition entities.ConditionProfile, alt ScoredHospital) entities.AlternativeHospital {
	h := alt.Hospital

	reason := fmt.Sprintf("%d matching specializations, %d ICU beds", alt.SpecMatches, h.ICUBeds())

	out := entities.AlternativeHospital{
		HospitalID:   h.ID,
		HospitalName: h.Name,
		MatchScore:   alt.Score,
		Reason:       reason,
	}

	if h.RouteInfo.Valid() {
		distance := h.RouteInfo.DistanceKm
		eta := h.RouteInfo.ETA()
		out.Distance = &distance
		out.ETA = &eta
		out.Reason += fmt.Sprintf(", %.1f km away", distance)
	}

	return out
}

func (a *RecommendationAssembler) reasoning(patient *entities.PatientInput, condition entities.ConditionProfile, severity entities.Severity, alerts []string, best *ScoredHospital) string {
	complaint := strings.ToLower(patient.ChiefComplaint)
	if complaint == "" {
		complaint = strings.ToLower(strings.Join(patient.Symptoms, " "))
	}

	parts := []string{
		fmt.Sprintf("Condition Analysis: %s presentation identified", strings.ToUpper(condition.Name)),
		fmt.Sprintf("Patient (%s, %dyo) presents with: %q", patient.Name, patient.AgeOrDefault(), complaint),
		fmt.Sprintf("Vital Signs Assessment: HR %d bpm, SpO2 %d%%, BP %s mmHg",
			patient.HeartRate(), patient.OxygenSaturation(), bloodPressureEcho(patient)),
	}

	if len(alerts) > 0 {
		parts = append(parts, "Vital Alerts: "+strings.Join(alerts, ", "))
	}

	parts = append(parts,
		"Required Specializations: "+strings.Join(condition.Specializations, ", "),
		"Severity Classification: "+strings.ToUpper(string(severity)),
	)

	if best != nil {
		parts = append(parts, fmt.Sprintf(
			"Hospital Match: %s selected with %d%% compatibility score based on %d specialization matches and facility availability.",
			best.Hospital.Name, best.Score, best.SpecMatches,
		))
	}

	return strings.Join(parts, ". ")
}

func bloodPressureEcho(patient *entities.PatientInput) string {
	if patient.Vitals == nil || patient.Vitals.BloodPressure == nil {
		return "N/A/N/A"
	}
	bp := patient.Vitals.BloodPressure
	return fmt.Sprintf("%d/%d", bp.Systolic, bp.Diastolic)
}

func additionalNotes(severity entities.Severity, alerts []string) string {
	switch severity {
	case entities.SeverityCritical:
		return fmt.Sprintf("CRITICAL: %s. Immediate medical attention required.", strings.Join(alerts, ". "))
	case entities.SeverityUrgent:
		return fmt.Sprintf("URGENT: Prompt evaluation needed. %s", strings.Join(alerts, ". "))
	default:
		return "Standard evaluation recommended."
	}
}

// displayWaitTime mirrors the presentation default of 15 minutes, which
// deliberately differs from the 30-minute scoring default.
func displayWaitTime(h *entities.Hospital) int {
	if h.CurrentStatus == nil || h.CurrentStatus.WaitTime == nil {
		return assemblerWaitDefault
	}
	return *h.CurrentStatus.WaitTime
}
