package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// TriageHandler handles triage-related HTTP requests. The full triage
// endpoint persists a patient record; the quick endpoint is
// assessment-only.
type TriageHandler struct {
	triageService   *services.TriageService
	referralService *services.ReferralService
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(triageService *services.TriageService, referralService *services.ReferralService) *TriageHandler {
	return &TriageHandler{
		triageService:   triageService,
		referralService: referralService,
	}
}

// ProcessTriage handles POST /api/triage
func (h *TriageHandler) ProcessTriage(w http.ResponseWriter, r *http.Request) {
	var input entities.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, patient, err := h.referralService.ProcessReferral(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"triage":         rec.Triage,
		"recommendation": rec,
		"patient":        patient,
	})
}

// QuickTriage handles POST /api/triage/quick
func (h *TriageHandler) QuickTriage(w http.ResponseWriter, r *http.Request) {
	var input entities.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.triageService.Analyze(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListPatients handles GET /api/triage
func (h *TriageHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	patients, err := h.referralService.ListPatients(r.Context(), limit, offset)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patients": patients,
		"count":    len(patients),
	})
}

// GetPatient handles GET /api/triage/{id}
func (h *TriageHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	patient, err := h.referralService.GetPatient(r.Context(), patientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, patient)
}

// DeletePatient handles DELETE /api/triage/{id}
func (h *TriageHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	if err := h.referralService.DeletePatient(r.Context(), patientID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
