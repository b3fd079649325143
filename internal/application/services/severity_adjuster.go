package services

import (
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// SeverityAdjuster escalates a baseline severity from patient-reported
// severity, vitals and age. Rules fire in a fixed order and only ever
// escalate; the alerts slice preserves firing order.
type SeverityAdjuster struct{}

// NewSeverityAdjuster creates a severity adjuster.
func NewSeverityAdjuster() *SeverityAdjuster {
	return &SeverityAdjuster{}
}

// Adjust applies the escalation rules and returns the final severity
// plus the human-readable alerts accumulated along the way.
func (a *SeverityAdjuster) Adjust(base entities.Severity, reported entities.ReportedSeverity, heartRate, spo2, age int) (entities.Severity, []string) {
	severity := base
	var alerts []string

	// Patient-reported severity can only escalate from the baseline.
	if reported.Rank() > severity.Rank() {
		if reported == entities.ReportedCritical {
			severity = entities.SeverityCritical
			alerts = append(alerts, "Patient reports critical condition")
		} else if reported == entities.ReportedSevere && severity != entities.SeverityCritical {
			severity = entities.SeverityUrgent
			alerts = append(alerts, "Patient reports severe symptoms")
		}
	}

	switch {
	case heartRate > 120:
		severity = entities.SeverityCritical
		alerts = append(alerts, "Tachycardia detected")
	case heartRate > 100:
		if severity == entities.SeverityModerate {
			severity = entities.SeverityUrgent
		}
		alerts = append(alerts, "Elevated heart rate")
	case heartRate < 50:
		severity = entities.SeverityCritical
		alerts = append(alerts, "Bradycardia detected")
	}

	if spo2 < 90 {
		severity = entities.SeverityCritical
		alerts = append(alerts, "Critical oxygen saturation")
	} else if spo2 < 95 {
		if severity == entities.SeverityModerate {
			severity = entities.SeverityUrgent
		}
		alerts = append(alerts, "Low oxygen saturation")
	}

	if age > 65 || age < 5 {
		if severity == entities.SeverityModerate {
			severity = entities.SeverityUrgent
		}
		alerts = append(alerts, "Age-related risk factor")
	}

	return severity, alerts
}
