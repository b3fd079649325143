package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nerve-health/referral/backend/internal/application/services"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// ReferralHandler handles referral-related HTTP requests
type ReferralHandler struct {
	referralService *services.ReferralService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
	}
}

// ProcessReferral handles POST /api/referral
func (h *ReferralHandler) ProcessReferral(w http.ResponseWriter, r *http.Request) {
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
		"recommendation": rec,
		"patient_id":     patient.ID,
	})
}

// QuickReferral handles POST /api/referral/quick
func (h *ReferralHandler) QuickReferral(w http.ResponseWriter, r *http.Request) {
	var input entities.PatientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.referralService.QuickReferral(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

// GetPatient handles GET /api/referral/patient/{id}
func (h *ReferralHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
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

// SeverityStats handles GET /api/referral/history/stats
func (h *ReferralHandler) SeverityStats(w http.ResponseWriter, r *http.Request) {
	condition := r.URL.Query().Get("condition")

	stats, err := h.referralService.SeverityStats(r.Context(), condition)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"condition": condition,
		"stats":     stats,
	})
}

// RecordOutcome handles POST /api/referral/history/{id}/outcome
func (h *ReferralHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	historyID := r.PathValue("id")
	if historyID == "" {
		respondWithError(w, http.StatusBadRequest, "history ID is required")
		return
	}

	var outcome entities.TriageOutcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.referralService.RecordOutcome(r.Context(), historyID, &outcome); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
