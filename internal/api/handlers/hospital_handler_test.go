package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerve-health/referral/backend/internal/api/handlers"
	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

func intPtr(v int) *int { return &v }

func newHospitalHandler(repo *stubHospitalRepo) *handlers.HospitalHandler {
	return handlers.NewHospitalHandler(services.NewHospitalService(repo, nil))
}

func TestHospitalHandler_ListAvailable_SortedByWaitThenRating(t *testing.T) {
	repo := &stubHospitalRepo{hospitals: []*entities.Hospital{
		{ID: "slow", Name: "Slow General", Rating: 4.8,
			CurrentStatus: &entities.HospitalStatus{IsAcceptingPatients: true, WaitTime: intPtr(45)}},
		{ID: "fast-low", Name: "Fast Clinic", Rating: 3.2,
			CurrentStatus: &entities.HospitalStatus{IsAcceptingPatients: true, WaitTime: intPtr(10)}},
		{ID: "fast-high", Name: "Fast Premium", Rating: 4.9,
			CurrentStatus: &entities.HospitalStatus{IsAcceptingPatients: true, WaitTime: intPtr(10)}},
	}}
	handler := newHospitalHandler(repo)

	req := httptest.NewRequest("GET", "/api/hospitals/available", nil)
	w := httptest.NewRecorder()

	handler.ListAvailable(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Hospitals []*entities.Hospital `json:"hospitals"`
		Count     int                  `json:"count"`
	}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	require.Equal(t, 3, response.Count)
	assert.Equal(t, "fast-high", response.Hospitals[0].ID)
	assert.Equal(t, "fast-low", response.Hospitals[1].ID)
	assert.Equal(t, "slow", response.Hospitals[2].ID)
}

func TestHospitalHandler_CreateHospital_Validation(t *testing.T) {
	handler := newHospitalHandler(&stubHospitalRepo{})

	body := `{"name":"No Specs Hospital"}`
	req := httptest.NewRequest("POST", "/api/hospitals", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateHospital(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "specialization")
}

func TestHospitalHandler_CreateHospital_Success(t *testing.T) {
	repo := &stubHospitalRepo{}
	handler := newHospitalHandler(repo)

	body := `{"name":"City Cardiac Hospital","specializations":["cardiology"]}`
	req := httptest.NewRequest("POST", "/api/hospitals", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateHospital(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.hospitals, 1)
}

func TestHospitalHandler_UpdateStatus_RejectsBadOccupancy(t *testing.T) {
	repo := &stubHospitalRepo{hospitals: fixtureHospitals()}
	handler := newHospitalHandler(repo)

	body := `{"is_accepting_patients":true,"occupancy_rate":140}`
	req := httptest.NewRequest("PATCH", "/api/hospitals/cardiac/status", strings.NewReader(body))
	req.SetPathValue("id", "cardiac")
	w := httptest.NewRecorder()

	handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "occupancy")
}

func TestHospitalHandler_GetHospital(t *testing.T) {
	handler := newHospitalHandler(&stubHospitalRepo{hospitals: fixtureHospitals()})

	req := httptest.NewRequest("GET", "/api/hospitals/cardiac", nil)
	req.SetPathValue("id", "cardiac")
	w := httptest.NewRecorder()

	handler.GetHospital(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "City Cardiac Hospital")
}
