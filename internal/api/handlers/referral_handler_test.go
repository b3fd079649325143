package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerve-health/referral/backend/internal/adapters/providers/routing"
	"github.com/nerve-health/referral/backend/internal/api/handlers"
	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
)

type stubHospitalRepo struct {
	hospitals []*entities.Hospital
}

func (r *stubHospitalRepo) Create(ctx context.Context, h *entities.Hospital) error {
	r.hospitals = append(r.hospitals, h)
	return nil
}

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
	return r.hospitals, nil
}

type stubPatientRepo struct {
	created []*entities.Patient
}

func (r *stubPatientRepo) Create(ctx context.Context, p *entities.Patient) error {
	if p.ID == "" {
		p.ID = "patient-1"
	}
	r.created = append(r.created, p)
	return nil
}

func (r *stubPatientRepo) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	for _, p := range r.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubPatientRepo) List(ctx context.Context, limit, offset int) ([]*entities.Patient, error) {
	return r.created, nil
}

func (r *stubPatientRepo) Delete(ctx context.Context, id string) error { return nil }

func fixtureHospitals() []*entities.Hospital {
	return []*entities.Hospital{
		{
			ID:              "cardiac",
			Name:            "City Cardiac Hospital",
			Specializations: []string{"cardiology"},
			Facilities:      &entities.Facilities{ICU: true, ICUBeds: 10, EmergencyServices: true},
			CurrentStatus:   &entities.HospitalStatus{IsAcceptingPatients: true, EmergencyAvailable: true},
		},
	}
}

func newReferralHandler(hospitals *stubHospitalRepo, patients *stubPatientRepo) *handlers.ReferralHandler {
	svc := services.NewReferralService(hospitals, patients, routing.NewHaversineProvider())
	return handlers.NewReferralHandler(svc)
}

func TestReferralHandler_ProcessReferral_Success(t *testing.T) {
	patients := &stubPatientRepo{}
	handler := newReferralHandler(&stubHospitalRepo{hospitals: fixtureHospitals()}, patients)

	body := `{"name":"Ravi Kumar","age":58,"chief_complaint":"severe chest pain","reported_severity":"severe"}`
	req := httptest.NewRequest("POST", "/api/referral", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ProcessReferral(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, patients.created, 1)

	var response struct {
		Recommendation entities.Recommendation `json:"recommendation"`
		PatientID      string                  `json:"patient_id"`
	}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	require.NotNil(t, response.Recommendation.RecommendedHospital)
	assert.Equal(t, "cardiac", response.Recommendation.RecommendedHospital.HospitalID)
	assert.NotEmpty(t, response.PatientID)
}

func TestReferralHandler_ProcessReferral_InvalidBody(t *testing.T) {
	handler := newReferralHandler(&stubHospitalRepo{hospitals: fixtureHospitals()}, &stubPatientRepo{})

	req := httptest.NewRequest("POST", "/api/referral", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.ProcessReferral(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReferralHandler_ProcessReferral_NoHospitals(t *testing.T) {
	handler := newReferralHandler(&stubHospitalRepo{}, &stubPatientRepo{})

	body := `{"chief_complaint":"headache"}`
	req := httptest.NewRequest("POST", "/api/referral", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ProcessReferral(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no available hospitals")
}

func TestReferralHandler_QuickReferral_NoPersistence(t *testing.T) {
	patients := &stubPatientRepo{}
	handler := newReferralHandler(&stubHospitalRepo{hospitals: fixtureHospitals()}, patients)

	body := `{"chief_complaint":"chest pain and sweating"}`
	req := httptest.NewRequest("POST", "/api/referral/quick", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.QuickReferral(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, patients.created)
}

func TestReferralHandler_GetPatient(t *testing.T) {
	patients := &stubPatientRepo{created: []*entities.Patient{{ID: "p-1", Name: "Asha Patel"}}}
	handler := newReferralHandler(&stubHospitalRepo{}, patients)

	req := httptest.NewRequest("GET", "/api/referral/patient/p-1", nil)
	req.SetPathValue("id", "p-1")
	w := httptest.NewRecorder()

	handler.GetPatient(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha Patel")
}
