package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerve-health/referral/backend/internal/adapters/providers/routing"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
)

type stubHospitalRepo struct {
	hospitals []*entities.Hospital
	err       error
}

func (r *stubHospitalRepo) Create(ctx context.Context, h *entities.Hospital) error { return nil }
func (r *stubHospitalRepo) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	for _, h := range r.hospitals {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, errors.New("not found")
}
func (r *stubHospitalRepo) Update(ctx context.Context, h *entities.Hospital) error { return nil }
func (r *stubHospitalRepo) UpdateStatus(ctx context.Context, id string, status *entities.HospitalStatus) error {
	return nil
}
func (r *stubHospitalRepo) Delete(ctx context.Context, id string) error { return nil }
func (r *stubHospitalRepo) List(ctx context.Context, filter repositories.HospitalFilter) ([]*entities.Hospital, error) {
	return r.hospitals, nil
}
func (r *stubHospitalRepo) ListAccepting(ctx context.Context) ([]*entities.Hospital, error) {
	return r.hospitals, r.err
}

type stubPatientRepo struct {
	created []*entities.Patient
	err     error
}

func (r *stubPatientRepo) Create(ctx context.Context, p *entities.Patient) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, p)
	return nil
}
func (r *stubPatientRepo) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	return nil, errors.New("not found")
}
func (r *stubPatientRepo) List(ctx context.Context, limit, offset int) ([]*entities.Patient, error) {
	return r.created, nil
}
func (r *stubPatientRepo) Delete(ctx context.Context, id string) error { return nil }

type stubReferralProvider struct {
	rec    *entities.Recommendation
	triage *entities.TriageResult
	err    error
	calls  int
}

func (p *stubReferralProvider) FindBestHospital(ctx context.Context, patient *entities.PatientInput, hospitals []*entities.Hospital, history []*entities.TriageHistoryEntry) (*entities.Recommendation, error) {
	p.calls++
	return p.rec, p.err
}

func (p *stubReferralProvider) AnalyzePatient(ctx context.Context, patient *entities.PatientInput) (*entities.TriageResult, error) {
	p.calls++
	return p.triage, p.err
}

func testHospitals() []*entities.Hospital {
	return []*entities.Hospital{
		{
			ID:              "cardiac",
			Name:            "City Cardiac Hospital",
			Specializations: []string{"cardiology"},
			Facilities:      &entities.Facilities{ICU: true, ICUBeds: 12, EmergencyServices: true},
			CurrentStatus:   &entities.HospitalStatus{IsAcceptingPatients: true, EmergencyAvailable: true, WaitTime: intPtr(8)},
		},
		{
			ID:              "general",
			Name:            "General Hospital",
			Specializations: []string{"general-medicine"},
			CurrentStatus:   &entities.HospitalStatus{IsAcceptingPatients: true, WaitTime: intPtr(12)},
		},
	}
}

func cardiacIntake() *entities.PatientInput {
	return &entities.PatientInput{
		Name:             "Ravi Kumar",
		Age:              58,
		ChiefComplaint:   "crushing chest pain",
		Symptoms:         []string{"sweating", "shortness of breath"},
		ReportedSeverity: entities.ReportedSevere,
		Vitals:           &entities.Vitals{HeartRate: 128, OxygenSaturation: 94},
	}
}

func TestProcessReferral_HeuristicWithoutProvider(t *testing.T) {
	hospitals := &stubHospitalRepo{hospitals: testHospitals()}
	patients := &stubPatientRepo{}
	svc := NewReferralService(hospitals, patients, routing.NewHaversineProvider())

	rec, patient, err := svc.ProcessReferral(context.Background(), cardiacIntake())
	require.NoError(t, err)
	require.NotNil(t, rec.RecommendedHospital)

	assert.Equal(t, "cardiac", rec.RecommendedHospital.HospitalID)
	assert.Equal(t, entities.SeverityCritical, rec.Triage.Severity)
	assert.True(t, rec.UrgentTransfer)

	require.Len(t, patients.created, 1)
	assert.Same(t, patient, patients.created[0])
	require.NotNil(t, patient.Referral)
	assert.Equal(t, "cardiac", patient.Referral.HospitalID)
	assert.Equal(t, entities.ReferralPending, patient.Referral.Status)
}

func TestProcessReferral_ProviderVerdictWins(t *testing.T) {
	hospitals := &stubHospitalRepo{hospitals: testHospitals()}
	patients := &stubPatientRepo{}
	provider := &stubReferralProvider{
		rec: &entities.Recommendation{
			Triage: entities.TriageAssessment{
				Severity:  entities.SeverityUrgent,
				Reasoning: "model assessment",
			},
			RecommendedHospital: &entities.RecommendedHospital{
				HospitalID:   "general",
				HospitalName: "General Hospital",
				MatchScore:   77,
				Reasons:      []string{"model pick"},
			},
		},
	}
	svc := NewReferralService(hospitals, patients, routing.NewHaversineProvider(),
		WithReferralProvider(provider))

	rec, patient, err := svc.ProcessReferral(context.Background(), cardiacIntake())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "general", rec.RecommendedHospital.HospitalID)
	assert.Equal(t, entities.SeverityUrgent, rec.Triage.Severity)
	require.NotNil(t, patient.Referral)
	assert.Equal(t, 77, patient.Referral.MatchScore)
}

func TestProcessReferral_FallsBackWhenProviderFails(t *testing.T) {
	hospitals := &stubHospitalRepo{hospitals: testHospitals()}
	patients := &stubPatientRepo{}
	provider := &stubReferralProvider{err: errors.New("upstream timeout")}
	svc := NewReferralService(hospitals, patients, routing.NewHaversineProvider(),
		WithReferralProvider(provider))

	rec, _, err := svc.ProcessReferral(context.Background(), cardiacIntake())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	require.NotNil(t, rec.RecommendedHospital)
	assert.Equal(t, "cardiac", rec.RecommendedHospital.HospitalID)
	assert.Equal(t, entities.SeverityCritical, rec.Triage.Severity)
}

func TestProcessReferral_RejectsEmptyComplaint(t *testing.T) {
	svc := NewReferralService(&stubHospitalRepo{}, &stubPatientRepo{}, routing.NewHaversineProvider())

	_, _, err := svc.ProcessReferral(context.Background(), &entities.PatientInput{})
	require.Error(t, err)
}

func TestProcessReferral_HospitalListFailure(t *testing.T) {
	hospitals := &stubHospitalRepo{err: errors.New("connection refused")}
	svc := NewReferralService(hospitals, &stubPatientRepo{}, routing.NewHaversineProvider())

	_, _, err := svc.ProcessReferral(context.Background(), cardiacIntake())
	require.Error(t, err)
}

func TestTriageService_FallbackAssessment(t *testing.T) {
	provider := &stubReferralProvider{err: errors.New("rate limited")}
	svc := NewTriageService(provider)

	result, err := svc.Analyze(context.Background(), cardiacIntake())
	require.NoError(t, err)

	assert.Equal(t, entities.SeverityCritical, result.Severity)
	assert.Contains(t, result.RequiredSpecializations, "cardiology")
	assert.Equal(t, 0, result.EstimatedWaitTime)
}

func TestTriageService_ProviderResult(t *testing.T) {
	provider := &stubReferralProvider{
		triage: &entities.TriageResult{Severity: entities.SeverityModerate, Recommendation: "observe"},
	}
	svc := NewTriageService(provider)

	result, err := svc.Analyze(context.Background(), cardiacIntake())
	require.NoError(t, err)
	assert.Equal(t, entities.SeverityModerate, result.Severity)
	assert.Equal(t, "observe", result.Recommendation)
}
