package entities

import "time"

// AgeGroup buckets a patient age for anonymized history storage.
type AgeGroup string

const (
	AgeGroupInfant     AgeGroup = "infant"
	AgeGroupChild      AgeGroup = "child"
	AgeGroupAdolescent AgeGroup = "adolescent"
	AgeGroupAdult      AgeGroup = "adult"
	AgeGroupSenior     AgeGroup = "senior"
)

// AgeGroupFor maps an age to its group.
func AgeGroupFor(age int) AgeGroup {
	switch {
	case age < 2:
		return AgeGroupInfant
	case age < 12:
		return AgeGroupChild
	case age < 18:
		return AgeGroupAdolescent
	case age < 65:
		return AgeGroupAdult
	default:
		return AgeGroupSenior
	}
}

// TriageHistoryEntry is an anonymized record of a past triage decision,
// kept so similar future cases can be surfaced as context.
type TriageHistoryEntry struct {
	ID               string           `json:"id" db:"id"`
	AgeGroup         AgeGroup         `json:"age_group" db:"age_group"`
	Gender           string           `json:"gender" db:"gender"`
	ChiefComplaint   string           `json:"chief_complaint" db:"chief_complaint"`
	Symptoms         []string         `json:"symptoms" db:"-"`
	ReportedSeverity ReportedSeverity `json:"reported_severity" db:"reported_severity"`
	Vitals           *Vitals          `json:"vitals,omitempty" db:"-"`

	Severity                Severity `json:"severity" db:"severity"`
	DetectedCondition       string   `json:"detected_condition" db:"detected_condition"`
	Reasoning               string   `json:"reasoning" db:"reasoning"`
	RequiredSpecializations []string `json:"required_specializations,omitempty" db:"-"`
	RequiredFacilities      []string `json:"required_facilities,omitempty" db:"-"`

	HospitalID   string   `json:"hospital_id" db:"hospital_id"`
	HospitalName string   `json:"hospital_name" db:"hospital_name"`
	MatchScore   int      `json:"match_score" db:"match_score"`
	Distance     *float64 `json:"distance,omitempty" db:"distance"`
	ETA          *int     `json:"eta,omitempty" db:"eta"`

	Outcome  *TriageOutcome `json:"outcome,omitempty" db:"-"`
	Location *Location      `json:"location,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TriageOutcome is filled in later when the real disposition is known,
// so triage accuracy can be tracked.
type TriageOutcome struct {
	WasAccurate    bool      `json:"was_accurate"`
	ActualSeverity Severity  `json:"actual_severity,omitempty"`
	PatientOutcome string    `json:"patient_outcome,omitempty"`
	FeedbackNotes  string    `json:"feedback_notes,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SeverityStat aggregates past outcomes for one severity within a
// detected condition.
type SeverityStat struct {
	Severity      Severity `json:"severity"`
	Count         int      `json:"count"`
	AvgMatchScore float64  `json:"avg_match_score"`
}
