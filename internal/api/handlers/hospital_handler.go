package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/nerve-health/referral/backend/internal/api/middleware"
	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
)

const unreportedWaitTime = 30

// HospitalHandler handles hospital directory HTTP requests
type HospitalHandler struct {
	hospitalService *services.HospitalService
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(hospitalService *services.HospitalService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
	}
}

// ListHospitals handles GET /api/hospitals
func (h *HospitalHandler) ListHospitals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.HospitalFilter{
		Specialization: query.Get("specialization"),
		EmergencyOnly:  query.Get("emergency") == "true",
		AcceptingOnly:  query.Get("accepting") == "true",
		Limit:          queryInt(r, "limit", 50),
		Offset:         queryInt(r, "offset", 0),
	}

	hospitals, err := h.hospitalService.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// ListAvailable handles GET /api/hospitals/available. Results come back
// sorted by wait time ascending, rating descending on ties, so the
// front desk sees the fastest option first.
func (h *HospitalHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.HospitalFilter{
		Specialization: query.Get("specialization"),
		EmergencyOnly:  query.Get("emergency") == "true",
		AcceptingOnly:  true,
		Limit:          queryInt(r, "limit", 50),
	}

	hospitals, err := h.hospitalService.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	sort.SliceStable(hospitals, func(i, j int) bool {
		wi, wj := waitOrDefault(hospitals[i]), waitOrDefault(hospitals[j])
		if wi != wj {
			return wi < wj
		}
		return hospitals[i].Rating > hospitals[j].Rating
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// CreateHospital handles POST /api/hospitals
func (h *HospitalHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	var hospital entities.Hospital
	if err := json.NewDecoder(r.Body).Decode(&hospital); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.hospitalService.Create(r.Context(), &hospital); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, hospital)
}

// GetHospital handles GET /api/hospitals/{id}
func (h *HospitalHandler) GetHospital(w http.ResponseWriter, r *http.Request) {
	hospitalID := r.PathValue("id")
	if hospitalID == "" {
		respondWithError(w, http.StatusBadRequest, "hospital ID is required")
		return
	}

	hospital, err := h.hospitalService.GetByID(r.Context(), hospitalID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, hospital)
}

// UpdateHospital handles PUT /api/hospitals/{id}
func (h *HospitalHandler) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	hospitalID := r.PathValue("id")
	if hospitalID == "" {
		respondWithError(w, http.StatusBadRequest, "hospital ID is required")
		return
	}

	var hospital entities.Hospital
	if err := json.NewDecoder(r.Body).Decode(&hospital); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hospital.ID = hospitalID

	if err := h.hospitalService.Update(r.Context(), &hospital); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, hospital)
}

// DeleteHospital handles DELETE /api/hospitals/{id}
func (h *HospitalHandler) DeleteHospital(w http.ResponseWriter, r *http.Request) {
	hospitalID := r.PathValue("id")
	if hospitalID == "" {
		respondWithError(w, http.StatusBadRequest, "hospital ID is required")
		return
	}

	if err := h.hospitalService.Delete(r.Context(), hospitalID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateStatus handles PATCH /api/hospitals/{id}/status
func (h *HospitalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	hospitalID := r.PathValue("id")
	if hospitalID == "" {
		respondWithError(w, http.StatusBadRequest, "hospital ID is required")
		return
	}

	var status entities.HospitalStatus
	if err := json.NewDecoder(r.Body).Decode(&status); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.hospitalService.UpdateStatus(r.Context(), hospitalID, &status); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetMyHospital handles GET /api/hospitals/my for an authenticated
// hospital admin.
func (h *HospitalHandler) GetMyHospital(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.HospitalID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	hospital, err := h.hospitalService.GetByID(r.Context(), claims.HospitalID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, hospital)
}

// UpdateMyHospital handles PUT /api/hospitals/my
func (h *HospitalHandler) UpdateMyHospital(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.HospitalID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var hospital entities.Hospital
	if err := json.NewDecoder(r.Body).Decode(&hospital); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Admins can only edit their own hospital.
	hospital.ID = claims.HospitalID

	if err := h.hospitalService.Update(r.Context(), &hospital); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, hospital)
}

func waitOrDefault(h *entities.Hospital) int {
	if h.CurrentStatus != nil && h.CurrentStatus.WaitTime != nil {
		return *h.CurrentStatus.WaitTime
	}
	return unreportedWaitTime
}
