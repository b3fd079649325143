package entities

import "time"

// Defaults substituted when vitals are absent from the intake form.
const (
	DefaultHeartRate        = 80
	DefaultOxygenSaturation = 98
	DefaultAge              = 30
)

// PatientInput is the transient per-request triage input. Every field
// except the chief complaint is optional; consumers substitute the
// stated defaults instead of failing.
type PatientInput struct {
	Name               string           `json:"name"`
	Age                int              `json:"age"`
	Gender             string           `json:"gender"`
	ChiefComplaint     string           `json:"chief_complaint"`
	Symptoms           []string         `json:"symptoms"`
	ReportedSeverity   ReportedSeverity `json:"reported_severity"`
	Vitals             *Vitals          `json:"vitals,omitempty"`
	MedicalHistory     string           `json:"medical_history,omitempty"`
	Allergies          []string         `json:"allergies,omitempty"`
	CurrentMedications []string         `json:"current_medications,omitempty"`
	Location           *Location        `json:"location,omitempty"`
}

// Vitals carries the measurements collected by the intake form. Zero
// values mean "not measured".
type Vitals struct {
	HeartRate        int            `json:"heart_rate,omitempty"`
	BloodPressure    *BloodPressure `json:"blood_pressure,omitempty"`
	Temperature      float64        `json:"temperature,omitempty"`
	OxygenSaturation int            `json:"oxygen_saturation,omitempty"`
	RespiratoryRate  int            `json:"respiratory_rate,omitempty"`
}

// BloodPressure in mmHg
type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// HeartRate returns the measured heart rate or the default of 80 bpm.
func (p *PatientInput) HeartRate() int {
	if p.Vitals == nil || p.Vitals.HeartRate == 0 {
		return DefaultHeartRate
	}
	return p.Vitals.HeartRate
}

// OxygenSaturation returns the measured SpO2 or the default of 98%.
func (p *PatientInput) OxygenSaturation() int {
	if p.Vitals == nil || p.Vitals.OxygenSaturation == 0 {
		return DefaultOxygenSaturation
	}
	return p.Vitals.OxygenSaturation
}

// AgeOrDefault returns the reported age or 30 when absent.
func (p *PatientInput) AgeOrDefault() int {
	if p.Age == 0 {
		return DefaultAge
	}
	return p.Age
}

// Reported returns the patient's self-assessed severity, defaulting
// to moderate.
func (p *PatientInput) Reported() ReportedSeverity {
	if p.ReportedSeverity == "" {
		return ReportedModerate
	}
	return p.ReportedSeverity
}

// Patient is the persisted patient record with its triage outcome and
// referral.
type Patient struct {
	ID                 string           `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	Age                int              `json:"age" db:"age"`
	Gender             string           `json:"gender" db:"gender"`
	ChiefComplaint     string           `json:"chief_complaint" db:"chief_complaint"`
	Symptoms           []string         `json:"symptoms" db:"-"`
	ReportedSeverity   ReportedSeverity `json:"reported_severity" db:"reported_severity"`
	Vitals             *Vitals          `json:"vitals,omitempty" db:"-"`
	MedicalHistory     string           `json:"medical_history,omitempty" db:"medical_history"`
	Allergies          []string         `json:"allergies,omitempty" db:"-"`
	CurrentMedications []string         `json:"current_medications,omitempty" db:"-"`
	TriageResult       *TriageResult    `json:"triage_result,omitempty" db:"-"`
	Referral           *Referral        `json:"referral,omitempty" db:"-"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

// TriageResult is the triage assessment stored on a patient record.
type TriageResult struct {
	Severity                Severity  `json:"severity"`
	Recommendation          string    `json:"recommendation"`
	Reasoning               string    `json:"reasoning"`
	EstimatedWaitTime       int       `json:"estimated_wait_time"`
	RequiredSpecializations []string  `json:"required_specializations,omitempty"`
	RequiredFacilities      []string  `json:"required_facilities,omitempty"`
	AIGeneratedAt           time.Time `json:"ai_generated_at"`
}

// ReferralStatus tracks a referral through its lifecycle.
type ReferralStatus string

const (
	ReferralPending     ReferralStatus = "pending"
	ReferralAccepted    ReferralStatus = "accepted"
	ReferralTransferred ReferralStatus = "transferred"
	ReferralCompleted   ReferralStatus = "completed"
	ReferralCancelled   ReferralStatus = "cancelled"
)

// Referral records the hospital a patient was referred to.
type Referral struct {
	HospitalID     string         `json:"hospital_id"`
	HospitalName   string         `json:"hospital_name"`
	MatchScore     int            `json:"match_score"`
	Reasons        []string       `json:"reasons,omitempty"`
	UrgentTransfer bool           `json:"urgent_transfer"`
	ReferredAt     time.Time      `json:"referred_at"`
	Status         ReferralStatus `json:"status"`
}
