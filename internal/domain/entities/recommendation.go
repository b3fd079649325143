package entities

// Recommendation is the referral verdict returned to the UI, whether it
// came from the LLM or from the fallback heuristic. It is constructed
// fresh per request and never persisted as-is.
type Recommendation struct {
	Triage               TriageAssessment      `json:"triage"`
	RecommendedHospital  *RecommendedHospital  `json:"recommended_hospital"`
	AlternativeHospitals []AlternativeHospital `json:"alternative_hospitals"`
	UrgentTransfer       bool                  `json:"urgent_transfer"`
	AdditionalNotes      string                `json:"additional_notes"`
}

// TriageAssessment is the triage half of a recommendation.
type TriageAssessment struct {
	Severity                Severity `json:"severity"`
	RequiredSpecializations []string `json:"required_specializations"`
	RequiredFacilities      []string `json:"required_facilities"`
	Reasoning               string   `json:"reasoning"`
}

// RecommendedHospital is the top-ranked placement. Distance and ETA are
// nil when no route info was available for the request.
type RecommendedHospital struct {
	HospitalID        string     `json:"hospital_id"`
	HospitalName      string     `json:"hospital_name"`
	MatchScore        int        `json:"match_score"`
	Distance          *float64   `json:"distance,omitempty"`
	ETA               *int       `json:"eta,omitempty"`
	RouteInfo         *RouteInfo `json:"route_info,omitempty"`
	Reasons           []string   `json:"reasons"`
	EstimatedWaitTime int        `json:"estimated_wait_time"`
}

// AlternativeHospital is one of up to two runner-up placements.
type AlternativeHospital struct {
	HospitalID   string   `json:"hospital_id"`
	HospitalName string   `json:"hospital_name"`
	MatchScore   int      `json:"match_score"`
	Distance     *float64 `json:"distance,omitempty"`
	ETA          *int     `json:"eta,omitempty"`
	Reason       string   `json:"reason"`
}
