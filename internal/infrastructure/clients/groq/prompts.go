package groq

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

const hospitalReferralSystemPrompt = `You are NERVE (Neural Emergency Response & Verdict Engine), an advanced AI medical triage and hospital referral assistant.

Based on the patient's condition and available hospitals, determine the BEST hospital for patient referral.

Consider these factors when ranking hospitals:
1. MEDICAL MATCH: Does the hospital have the required specialization/facilities for this condition?
2. DISTANCE & ETA: For CRITICAL cases, closer hospitals with lower ETA are crucial - a few minutes can save a life. For moderate cases, distance is less critical if the hospital has better specialization.
3. AVAILABILITY: Is the hospital accepting patients? Are doctors/nurses available?
4. CAPACITY: ICU beds, ventilators, operation theaters if needed
5. EMERGENCY: For critical patients, prioritize hospitals with emergency services AND low ETA
6. WAIT TIME: Lower wait time is better, especially for urgent cases
7. OCCUPANCY: Lower occupancy rate means better attention

CRITICAL DECISION LOGIC FOR DISTANCE:
- If severity is CRITICAL and ETA > 15 min, consider closer alternatives even with slightly fewer specialized facilities
- If severity is URGENT and ETA > 20 min, factor distance more heavily
- For MODERATE cases, prioritize specialization over distance

Return ONLY a valid JSON response (no markdown, no code blocks) with this exact structure:
{
  "triage": {
    "severity": "critical" | "urgent" | "moderate" | "minor",
    "requiredSpecializations": ["list of needed specializations"],
    "requiredFacilities": ["list of required facilities"],
    "reasoning": "Medical reasoning for triage decision"
  },
  "recommendedHospital": {
    "hospitalId": "ID of the best hospital",
    "hospitalName": "Name of hospital",
    "matchScore": number (0-100),
    "reasons": ["why this hospital is best"],
    "estimatedWaitTime": number (in minutes)
  },
  "alternativeHospitals": [
    {
      "hospitalId": "ID",
      "hospitalName": "Name",
      "matchScore": number,
      "reason": "Why it's an alternative"
    }
  ],
  "urgentTransfer": boolean,
  "additionalNotes": "Any critical notes for transfer/care"
}`

const triageSystemPrompt = `You are NERVE, an AI medical triage assistant. Analyze patient data and return JSON only:
{
  "severity": "critical" | "urgent" | "moderate" | "minor",
  "recommendation": "Brief action recommendation",
  "reasoning": "Medical reasoning",
  "estimatedWaitTime": number (minutes),
  "alertFlags": ["critical concerns"]
}`

// hospitalSummary is the trimmed hospital view sent to the model.
type hospitalSummary struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Type            string               `json:"type"`
	Address         string               `json:"address"`
	Specializations []string             `json:"specializations"`
	Facilities      *entities.Facilities `json:"facilities,omitempty"`
	Staff           staffSummary         `json:"staff"`
	Status          statusSummary        `json:"status"`
	Rating          float64              `json:"rating"`
	Distance        string               `json:"distance,omitempty"`
	ETA             int                  `json:"eta,omitempty"`
}

type staffSummary struct {
	DoctorsAvailable int      `json:"doctorsAvailable"`
	NursesAvailable  int      `json:"nursesAvailable"`
	Specialists      []string `json:"specialists"`
}

type statusSummary struct {
	Accepting          bool `json:"accepting"`
	EmergencyAvailable bool `json:"emergencyAvailable"`
	WaitTime           int  `json:"waitTime"`
	OccupancyRate      int  `json:"occupancyRate"`
}

func summarizeHospitals(hospitals []*entities.Hospital) []hospitalSummary {
	summaries := make([]hospitalSummary, 0, len(hospitals))
	for _, h := range hospitals {
		s := hospitalSummary{
			ID:              h.ID,
			Name:            h.Name,
			Type:            h.HospitalType,
			Address:         fmt.Sprintf("%s, %s", h.Address.City, h.Address.State),
			Specializations: h.Specializations,
			Facilities:      h.Facilities,
			Rating:          h.Rating,
		}
		if h.Staff != nil {
			s.Staff.DoctorsAvailable = h.Staff.Doctors.Available
			s.Staff.NursesAvailable = h.Staff.Nurses.Available
			for _, sp := range h.Staff.Specialists {
				if sp.Available {
					s.Staff.Specialists = append(s.Staff.Specialists, sp.Specialization)
				}
			}
		}
		if h.CurrentStatus != nil {
			s.Status.Accepting = h.CurrentStatus.IsAcceptingPatients
			s.Status.EmergencyAvailable = h.CurrentStatus.EmergencyAvailable
			if h.CurrentStatus.WaitTime != nil {
				s.Status.WaitTime = *h.CurrentStatus.WaitTime
			}
			if h.CurrentStatus.OccupancyRate != nil {
				s.Status.OccupancyRate = *h.CurrentStatus.OccupancyRate
			}
		}
		if h.RouteInfo.Valid() {
			s.Distance = fmt.Sprintf("%.1f km", h.RouteInfo.DistanceKm)
			s.ETA = h.RouteInfo.ETA()
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func joinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

func vitalOrNA(v int) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", v)
}

func buildReferralUserPrompt(patient *entities.PatientInput, hospitals []*entities.Hospital, history []*entities.TriageHistoryEntry) (string, error) {
	summaries := summarizeHospitals(hospitals)
	hospitalsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal hospital summaries: %w", err)
	}

	var bp string
	if patient.Vitals != nil && patient.Vitals.BloodPressure != nil {
		bp = fmt.Sprintf("%d/%d", patient.Vitals.BloodPressure.Systolic, patient.Vitals.BloodPressure.Diastolic)
	} else {
		bp = "N/A/N/A"
	}

	var hr, spo2, rr string
	var temp string
	if patient.Vitals != nil {
		hr = vitalOrNA(patient.Vitals.HeartRate)
		spo2 = vitalOrNA(patient.Vitals.OxygenSaturation)
		rr = vitalOrNA(patient.Vitals.RespiratoryRate)
		if patient.Vitals.Temperature > 0 {
			temp = fmt.Sprintf("%.1f", patient.Vitals.Temperature)
		} else {
			temp = "N/A"
		}
	} else {
		hr, spo2, rr, temp = "N/A", "N/A", "N/A", "N/A"
	}

	reported := strings.ToUpper(string(patient.Reported()))

	var b strings.Builder
	fmt.Fprintf(&b, "=== PATIENT DATA ===\n")
	fmt.Fprintf(&b, "- Name: %s\n", patient.Name)
	fmt.Fprintf(&b, "- Age: %d\n", patient.AgeOrDefault())
	fmt.Fprintf(&b, "- Gender: %s\n", patient.Gender)
	fmt.Fprintf(&b, "- Chief Complaint: %s\n", patient.ChiefComplaint)
	fmt.Fprintf(&b, "- Symptoms: %s\n", joinOrDefault(patient.Symptoms, "None reported"))
	fmt.Fprintf(&b, "- PATIENT-REPORTED SEVERITY: %s (consider this as patient's own assessment of urgency)\n", reported)
	fmt.Fprintf(&b, "- Vitals:\n")
	fmt.Fprintf(&b, "  * Heart Rate: %s bpm\n", hr)
	fmt.Fprintf(&b, "  * Blood Pressure: %s mmHg\n", bp)
	fmt.Fprintf(&b, "  * Temperature: %s F\n", temp)
	fmt.Fprintf(&b, "  * Oxygen Saturation: %s%%\n", spo2)
	fmt.Fprintf(&b, "  * Respiratory Rate: %s breaths/min\n", rr)
	fmt.Fprintf(&b, "- Medical History: %s\n", orDefault(patient.MedicalHistory, "None reported"))
	fmt.Fprintf(&b, "- Allergies: %s\n", joinOrDefault(patient.Allergies, "None reported"))
	fmt.Fprintf(&b, "- Current Medications: %s\n", joinOrDefault(patient.CurrentMedications, "None reported"))

	if len(history) > 0 {
		fmt.Fprintf(&b, "\n=== SIMILAR PAST CASES ===\n")
		for _, entry := range history {
			fmt.Fprintf(&b, "- %s patient, complaint %q, triaged %s, referred to %s (score %d)\n",
				entry.AgeGroup, entry.ChiefComplaint, entry.Severity, entry.HospitalName, entry.MatchScore)
		}
	}

	fmt.Fprintf(&b, "\n=== AVAILABLE HOSPITALS ===\n%s\n", hospitalsJSON)
	fmt.Fprintf(&b, "\nAnalyze the patient condition and match with the best available hospital. The patient has self-reported their severity as %s - factor this into your assessment. Each hospital includes distance and ETA (estimated time of arrival) from the patient's location if available. For critical cases, strongly consider travel time - closer hospitals may be better even if slightly less specialized. Respond with JSON only, no markdown.", reported)

	return b.String(), nil
}

func buildTriageUserPrompt(patient *entities.PatientInput) string {
	var bp string
	if patient.Vitals != nil && patient.Vitals.BloodPressure != nil {
		bp = fmt.Sprintf("%d/%d", patient.Vitals.BloodPressure.Systolic, patient.Vitals.BloodPressure.Diastolic)
	} else {
		bp = "N/A"
	}
	return fmt.Sprintf("Patient: %s, %dyo\nComplaint: %s\nVitals: HR %d, SpO2 %d%%, BP %s",
		patient.Name, patient.AgeOrDefault(), patient.ChiefComplaint,
		patient.HeartRate(), patient.OxygenSaturation(), bp)
}

// referralPayload mirrors the JSON schema the model is instructed to
// return. Keys are camelCase per the prompt contract.
type referralPayload struct {
	Triage struct {
		Severity                string   `json:"severity"`
		RequiredSpecializations []string `json:"requiredSpecializations"`
		RequiredFacilities      []string `json:"requiredFacilities"`
		Reasoning               string   `json:"reasoning"`
	} `json:"triage"`
	RecommendedHospital *struct {
		HospitalID        string   `json:"hospitalId"`
		HospitalName      string   `json:"hospitalName"`
		MatchScore        int      `json:"matchScore"`
		Reasons           []string `json:"reasons"`
		EstimatedWaitTime int      `json:"estimatedWaitTime"`
	} `json:"recommendedHospital"`
	AlternativeHospitals []struct {
		HospitalID   string `json:"hospitalId"`
		HospitalName string `json:"hospitalName"`
		MatchScore   int    `json:"matchScore"`
		Reason       string `json:"reason"`
	} `json:"alternativeHospitals"`
	UrgentTransfer  bool   `json:"urgentTransfer"`
	AdditionalNotes string `json:"additionalNotes"`
}

type triagePayload struct {
	Severity          string   `json:"severity"`
	Recommendation    string   `json:"recommendation"`
	Reasoning         string   `json:"reasoning"`
	EstimatedWaitTime int      `json:"estimatedWaitTime"`
	AlertFlags        []string `json:"alertFlags"`
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON strips markdown code fences and pulls out the outermost
// JSON object from a model response.
func extractJSON(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return "", fmt.Errorf("no JSON object in model response")
	}
	return match, nil
}
