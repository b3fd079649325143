package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

func TestClassify_CategoryKeywords(t *testing.T) {
	classifier := NewConditionClassifier()

	tests := []struct {
		name      string
		complaint string
		symptoms  []string
		want      string
	}{
		{"cardiac from complaint", "crushing chest pain", nil, "cardiac"},
		{"cardiac from heart keyword", "my heart is racing", nil, "cardiac"},
		{"neurological", "sudden severe headache", nil, "neurological"},
		{"trauma", "fell off a ladder, leg fracture", nil, "trauma"},
		{"respiratory", "difficulty breathing since morning", nil, "respiratory"},
		{"gastrointestinal", "sharp abdominal pain", nil, "gastrointestinal"},
		{"pediatric", "my infant has a rash", nil, "pediatric"},
		{"keyword in symptoms only", "feeling unwell", []string{"wheezing", "cough"}, "respiratory"},
		{"case insensitive", "CHEST PAIN radiating to arm", nil, "cardiac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := classifier.Classify(tt.complaint, tt.symptoms)
			assert.Equal(t, tt.want, profile.Name)
		})
	}
}

func TestClassify_OrderPrecedence(t *testing.T) {
	classifier := NewConditionClassifier()

	// "heart" (cardiac) and "fall" (trauma) both match; cardiac is
	// earlier in the catalog so it must win.
	profile := classifier.Classify("heart trouble after a fall", nil)
	assert.Equal(t, "cardiac", profile.Name)

	// "head" (neurological) beats "bleeding" (trauma) for the same reason.
	profile = classifier.Classify("head wound bleeding", nil)
	assert.Equal(t, "neurological", profile.Name)
}

func TestClassify_GeneralFallback(t *testing.T) {
	classifier := NewConditionClassifier()

	profile := classifier.Classify("general malaise and fatigue", nil)

	assert.Equal(t, "general", profile.Name)
	assert.Equal(t, []string{"general-surgery", "emergency-medicine"}, profile.Specializations)
	assert.Equal(t, []string{"generalBeds"}, profile.Facilities)
	assert.Equal(t, entities.SeverityModerate, profile.BaseSeverity)
}

func TestClassify_BaseSeverities(t *testing.T) {
	classifier := NewConditionClassifier()

	assert.Equal(t, entities.SeverityCritical, classifier.Classify("cardiac arrest", nil).BaseSeverity)
	assert.Equal(t, entities.SeverityUrgent, classifier.Classify("stroke symptoms", nil).BaseSeverity)
	assert.Equal(t, entities.SeverityModerate, classifier.Classify("nausea and vomit", nil).BaseSeverity)
}

func TestClassify_Deterministic(t *testing.T) {
	classifier := NewConditionClassifier()

	first := classifier.Classify("chest pain", []string{"dizzy"})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classifier.Classify("chest pain", []string{"dizzy"}))
	}
}
