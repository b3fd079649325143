package entities

import "strings"

// Severity is the canonical four-level triage severity.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityUrgent   Severity = "urgent"
	SeverityCritical Severity = "critical"
)

// Rank returns the escalation rank of a severity: minor(0) < moderate(1)
// < urgent(2) < critical(3). Unknown values rank as moderate.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 0
	case SeverityModerate:
		return 1
	case SeverityUrgent:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// ParseSeverity normalizes a free-form severity string onto the
// canonical enum, defaulting to moderate for unknown values.
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityMinor, SeverityModerate, SeverityUrgent, SeverityCritical:
		return sev
	default:
		return SeverityModerate
	}
}

// UrgencyLabel maps the canonical severity to the urgency badge shown
// by the UI.
func (s Severity) UrgencyLabel() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityUrgent:
		return "HIGH"
	case SeverityModerate:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// ReportedSeverity is the patient-facing vocabulary used by the intake
// form. It is mapped onto the canonical enum at the API boundary and
// never leaks into scoring.
type ReportedSeverity string

const (
	ReportedMild     ReportedSeverity = "mild"
	ReportedModerate ReportedSeverity = "moderate"
	ReportedSevere   ReportedSeverity = "severe"
	ReportedCritical ReportedSeverity = "critical"
)

// Rank returns the escalation rank of a patient-reported severity on
// the same scale as Severity.Rank.
func (r ReportedSeverity) Rank() int {
	switch r {
	case ReportedMild:
		return 0
	case ReportedModerate:
		return 1
	case ReportedSevere:
		return 2
	case ReportedCritical:
		return 3
	default:
		return 1
	}
}
