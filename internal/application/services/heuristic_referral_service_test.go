package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

func TestRecommend_CardiacEmergency(t *testing.T) {
	svc := NewHeuristicReferralService()

	patient := &entities.PatientInput{
		Name:             "Ravi Kumar",
		Age:              52,
		ChiefComplaint:   "severe chest pain",
		ReportedSeverity: entities.ReportedModerate,
		Vitals:           &entities.Vitals{HeartRate: 130, OxygenSaturation: 97},
	}
	hospitals := []*entities.Hospital{
		{
			ID:              "general",
			Name:            "General Hospital",
			Specializations: []string{"general-medicine"},
			CurrentStatus:   &entities.HospitalStatus{WaitTime: intPtr(5)},
		},
		{
			ID:              "cardiac",
			Name:            "City Cardiac Hospital",
			Specializations: []string{"cardiology"},
			Facilities:      &entities.Facilities{ICU: true, ICUBeds: 15, EmergencyServices: true},
			CurrentStatus:   &entities.HospitalStatus{EmergencyAvailable: true, WaitTime: intPtr(8)},
		},
	}

	rec := svc.Recommend(patient, hospitals)

	assert.Equal(t, entities.SeverityCritical, rec.Triage.Severity)
	assert.Contains(t, rec.Triage.Reasoning, "Tachycardia detected")
	assert.Contains(t, rec.AdditionalNotes, "Tachycardia detected")
	assert.True(t, rec.UrgentTransfer)

	require.NotNil(t, rec.RecommendedHospital)
	assert.Equal(t, "cardiac", rec.RecommendedHospital.HospitalID)
	assert.Contains(t, rec.RecommendedHospital.Reasons, "Has cardiology specialists")
	assert.Contains(t, rec.RecommendedHospital.Reasons, "15 ICU beds available")

	require.Len(t, rec.AlternativeHospitals, 1)
	assert.Equal(t, "general", rec.AlternativeHospitals[0].HospitalID)
}

func TestRecommend_MildNeurologicalCase(t *testing.T) {
	svc := NewHeuristicReferralService()

	patient := &entities.PatientInput{
		Name:             "Asha Patel",
		Age:              28,
		ChiefComplaint:   "mild headache",
		ReportedSeverity: entities.ReportedMild,
		Vitals:           &entities.Vitals{HeartRate: 75, OxygenSaturation: 98},
	}
	hospitals := []*entities.Hospital{
		{ID: "neuro", Name: "NeuroCare Centre", Specializations: []string{"neurology"}},
		{ID: "general", Name: "General Hospital", Specializations: []string{"general-medicine"}},
	}

	rec := svc.Recommend(patient, hospitals)

	// The neurological category default is urgent; vitals add nothing.
	assert.Equal(t, entities.SeverityUrgent, rec.Triage.Severity)
	assert.Equal(t, []string{"neurology"}, rec.Triage.RequiredSpecializations)
	assert.Contains(t, rec.Triage.Reasoning, "NEUROLOGICAL presentation identified")
	assert.False(t, rec.UrgentTransfer)

	require.NotNil(t, rec.RecommendedHospital)
	assert.Equal(t, "neuro", rec.RecommendedHospital.HospitalID)
}

func TestRecommend_EmptyHospitalList(t *testing.T) {
	svc := NewHeuristicReferralService()

	patient := &entities.PatientInput{Name: "Test", ChiefComplaint: "stomach ache"}

	rec := svc.Recommend(patient, nil)

	require.NotNil(t, rec)
	assert.Nil(t, rec.RecommendedHospital)
	assert.Empty(t, rec.AlternativeHospitals)
	assert.Equal(t, NoHospitalsNote, rec.AdditionalNotes)
	assert.Equal(t, entities.SeverityModerate, rec.Triage.Severity)
}

func TestRecommend_MissingVitalsUseDefaults(t *testing.T) {
	svc := NewHeuristicReferralService()

	// No vitals, no reported severity, no hospital status anywhere:
	// defaults substitute throughout and nothing panics.
	patient := &entities.PatientInput{Name: "Anon", ChiefComplaint: "cough"}
	hospitals := []*entities.Hospital{{ID: "h1", Name: "Bare Hospital"}}

	rec := svc.Recommend(patient, hospitals)

	require.NotNil(t, rec.RecommendedHospital)
	assert.Contains(t, rec.Triage.Reasoning, "HR 80 bpm")
	assert.Contains(t, rec.Triage.Reasoning, "SpO2 98%")
	assert.Equal(t, assemblerWaitDefault, rec.RecommendedHospital.EstimatedWaitTime)
}

func TestRecommend_AtMostTwoAlternatives(t *testing.T) {
	svc := NewHeuristicReferralService()

	patient := &entities.PatientInput{Name: "Test", ChiefComplaint: "fracture"}
	hospitals := []*entities.Hospital{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
		{ID: "d", Name: "D"},
	}

	rec := svc.Recommend(patient, hospitals)

	require.NotNil(t, rec.RecommendedHospital)
	assert.Len(t, rec.AlternativeHospitals, 2)
}

func TestRecommend_RouteInfoInReasons(t *testing.T) {
	svc := NewHeuristicReferralService()

	patient := &entities.PatientInput{Name: "Test", ChiefComplaint: "asthma attack"}
	hospitals := []*entities.Hospital{
		{
			ID:              "near",
			Name:            "Pulmonary Institute",
			Specializations: []string{"pulmonology"},
			RouteInfo:       &entities.RouteInfo{DistanceKm: 3.2, DurationMin: 8, EmergencyDurationMin: 5},
		},
		{
			ID:        "far",
			Name:      "Far Hospital",
			RouteInfo: &entities.RouteInfo{DistanceKm: 18.7, DurationMin: 45, EmergencyDurationMin: 25},
		},
	}

	rec := svc.Recommend(patient, hospitals)

	require.NotNil(t, rec.RecommendedHospital)
	assert.Equal(t, "near", rec.RecommendedHospital.HospitalID)
	require.NotNil(t, rec.RecommendedHospital.Distance)
	assert.InDelta(t, 3.2, *rec.RecommendedHospital.Distance, 0.001)
	require.NotNil(t, rec.RecommendedHospital.ETA)
	assert.Equal(t, 5, *rec.RecommendedHospital.ETA)
	assert.Contains(t, rec.RecommendedHospital.Reasons, "Distance: 3.2 km, ETA: 5 min")

	require.Len(t, rec.AlternativeHospitals, 1)
	assert.Contains(t, rec.AlternativeHospitals[0].Reason, "18.7 km away")
}

func TestRecommend_Deterministic(t *testing.T) {
	svc := NewHeuristicReferralService()

	patient := &entities.PatientInput{
		Name:           "Repeat",
		Age:            40,
		ChiefComplaint: "chest pain and dizziness",
		Vitals:         &entities.Vitals{HeartRate: 105, OxygenSaturation: 93},
	}
	hospitals := []*entities.Hospital{
		{ID: "a", Name: "Heart Hospital", Specializations: []string{"cardiology"}},
		{ID: "b", Name: "General", Specializations: []string{"general-medicine"}},
	}

	first := svc.Recommend(patient, hospitals)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, svc.Recommend(patient, hospitals))
	}
}

func TestAssemble_AdditionalNotesBySeverity(t *testing.T) {
	assembler := NewRecommendationAssembler()
	patient := &entities.PatientInput{Name: "Test", ChiefComplaint: "x"}
	profile := generalTestProfile()
	ranked := []ScoredHospital{{Hospital: &entities.Hospital{ID: "h", Name: "H"}, Score: 40, RawScore: 40, TotalSpecs: 1}}

	critical := assembler.Assemble(patient, profile, entities.SeverityCritical, []string{"Tachycardia detected"}, ranked)
	assert.Equal(t, "CRITICAL: Tachycardia detected. Immediate medical attention required.", critical.AdditionalNotes)
	assert.True(t, critical.UrgentTransfer)

	urgent := assembler.Assemble(patient, profile, entities.SeverityUrgent, []string{"Low oxygen saturation"}, ranked)
	assert.Equal(t, "URGENT: Prompt evaluation needed. Low oxygen saturation", urgent.AdditionalNotes)
	assert.False(t, urgent.UrgentTransfer)

	moderate := assembler.Assemble(patient, profile, entities.SeverityModerate, nil, ranked)
	assert.Equal(t, "Standard evaluation recommended.", moderate.AdditionalNotes)
}

func TestSeverity_UrgencyLabels(t *testing.T) {
	assert.Equal(t, "CRITICAL", entities.SeverityCritical.UrgencyLabel())
	assert.Equal(t, "HIGH", entities.SeverityUrgent.UrgencyLabel())
	assert.Equal(t, "MODERATE", entities.SeverityModerate.UrgencyLabel())
	assert.Equal(t, "LOW", entities.SeverityMinor.UrgencyLabel())
}
