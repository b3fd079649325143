package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

func TestAdjust_ReportedSeverity(t *testing.T) {
	adjuster := NewSeverityAdjuster()

	tests := []struct {
		name       string
		base       entities.Severity
		reported   entities.ReportedSeverity
		want       entities.Severity
		wantAlerts []string
	}{
		{"critical report forces critical", entities.SeverityModerate, entities.ReportedCritical,
			entities.SeverityCritical, []string{"Patient reports critical condition"}},
		{"severe report lifts to urgent", entities.SeverityModerate, entities.ReportedSevere,
			entities.SeverityUrgent, []string{"Patient reports severe symptoms"}},
		{"mild report never de-escalates", entities.SeverityUrgent, entities.ReportedMild,
			entities.SeverityUrgent, nil},
		{"moderate report is a no-op", entities.SeverityModerate, entities.ReportedModerate,
			entities.SeverityModerate, nil},
		{"severe report on critical base is a no-op", entities.SeverityCritical, entities.ReportedSevere,
			entities.SeverityCritical, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			severity, alerts := adjuster.Adjust(tt.base, tt.reported, entities.DefaultHeartRate, entities.DefaultOxygenSaturation, 30)
			assert.Equal(t, tt.want, severity)
			assert.Equal(t, tt.wantAlerts, alerts)
		})
	}
}

func TestAdjust_HeartRateRules(t *testing.T) {
	adjuster := NewSeverityAdjuster()

	severity, alerts := adjuster.Adjust(entities.SeverityModerate, entities.ReportedModerate, 130, 98, 30)
	assert.Equal(t, entities.SeverityCritical, severity)
	assert.Contains(t, alerts, "Tachycardia detected")

	severity, alerts = adjuster.Adjust(entities.SeverityModerate, entities.ReportedModerate, 110, 98, 30)
	assert.Equal(t, entities.SeverityUrgent, severity)
	assert.Contains(t, alerts, "Elevated heart rate")

	// Elevated heart rate on an already-urgent base does not escalate
	// further but still alerts.
	severity, alerts = adjuster.Adjust(entities.SeverityUrgent, entities.ReportedModerate, 110, 98, 30)
	assert.Equal(t, entities.SeverityUrgent, severity)
	assert.Contains(t, alerts, "Elevated heart rate")

	severity, alerts = adjuster.Adjust(entities.SeverityMinor, entities.ReportedModerate, 45, 98, 30)
	assert.Equal(t, entities.SeverityCritical, severity)
	assert.Contains(t, alerts, "Bradycardia detected")
}

func TestAdjust_OxygenSaturationRules(t *testing.T) {
	adjuster := NewSeverityAdjuster()

	severity, alerts := adjuster.Adjust(entities.SeverityModerate, entities.ReportedModerate, 80, 88, 30)
	assert.Equal(t, entities.SeverityCritical, severity)
	assert.Contains(t, alerts, "Critical oxygen saturation")

	severity, alerts = adjuster.Adjust(entities.SeverityModerate, entities.ReportedModerate, 80, 93, 30)
	assert.Equal(t, entities.SeverityUrgent, severity)
	assert.Contains(t, alerts, "Low oxygen saturation")
}

func TestAdjust_AgeRule(t *testing.T) {
	adjuster := NewSeverityAdjuster()

	severity, alerts := adjuster.Adjust(entities.SeverityModerate, entities.ReportedModerate, 80, 98, 70)
	assert.Equal(t, entities.SeverityUrgent, severity)
	assert.Contains(t, alerts, "Age-related risk factor")

	severity, _ = adjuster.Adjust(entities.SeverityModerate, entities.ReportedModerate, 80, 98, 3)
	assert.Equal(t, entities.SeverityUrgent, severity)

	// The age rule only lifts moderate; a minor base stays minor but
	// still alerts.
	severity, alerts = adjuster.Adjust(entities.SeverityMinor, entities.ReportedMild, 80, 98, 70)
	assert.Equal(t, entities.SeverityMinor, severity)
	assert.Contains(t, alerts, "Age-related risk factor")
}

func TestAdjust_Monotonicity(t *testing.T) {
	adjuster := NewSeverityAdjuster()

	// Tachycardia always yields critical, whatever else is going on.
	for _, base := range []entities.Severity{entities.SeverityMinor, entities.SeverityModerate, entities.SeverityUrgent, entities.SeverityCritical} {
		for _, reported := range []entities.ReportedSeverity{entities.ReportedMild, entities.ReportedModerate, entities.ReportedSevere, entities.ReportedCritical} {
			severity, _ := adjuster.Adjust(base, reported, 130, 98, 30)
			assert.Equal(t, entities.SeverityCritical, severity)
		}
	}
}

func TestAdjust_AlertOrderPreserved(t *testing.T) {
	adjuster := NewSeverityAdjuster()

	// Reported severity fires first, then heart rate, SpO2 and age.
	_, alerts := adjuster.Adjust(entities.SeverityModerate, entities.ReportedCritical, 130, 88, 70)
	assert.Equal(t, []string{
		"Patient reports critical condition",
		"Tachycardia detected",
		"Critical oxygen saturation",
		"Age-related risk factor",
	}, alerts)
}
