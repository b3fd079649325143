package services

import (
	"strings"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// conditionCatalog is the ordered condition table. Order is part of the
// contract: categories are tested in this exact sequence and the first
// keyword hit wins, so a complaint mentioning both "heart" and "fall"
// classifies as cardiac, not trauma.
var conditionCatalog = []entities.ConditionProfile{
	{
		Name:            "cardiac",
		Keywords:        []string{"chest pain", "heart", "cardiac", "palpitation", "angina", "myocardial"},
		Specializations: []string{"cardiology"},
		Facilities:      []string{"icu", "emergencyServices"},
		BaseSeverity:    entities.SeverityCritical,
	},
	{
		Name:            "neurological",
		Keywords:        []string{"head", "headache", "stroke", "seizure", "dizzy", "vision", "numbness", "paralysis", "confusion", "migraine"},
		Specializations: []string{"neurology"},
		Facilities:      []string{"icu", "ctScanner", "mriScanner"},
		BaseSeverity:    entities.SeverityUrgent,
	},
	{
		Name:            "trauma",
		Keywords:        []string{"accident", "injury", "fall", "fracture", "broken", "bleeding", "wound", "cut"},
		Specializations: []string{"trauma", "orthopedics"},
		Facilities:      []string{"operationTheaters", "emergencyServices"},
		BaseSeverity:    entities.SeverityUrgent,
	},
	{
		Name:            "respiratory",
		Keywords:        []string{"breathing", "breath", "asthma", "cough", "lung", "pneumonia", "wheezing"},
		Specializations: []string{"pulmonology", "emergency-medicine"},
		Facilities:      []string{"icu", "ventilators"},
		BaseSeverity:    entities.SeverityUrgent,
	},
	{
		Name:            "gastrointestinal",
		Keywords:        []string{"stomach", "abdomen", "abdominal", "vomit", "diarrhea", "nausea", "appendix"},
		Specializations: []string{"gastroenterology", "general-surgery"},
		Facilities:      []string{"generalBeds", "operationTheaters"},
		BaseSeverity:    entities.SeverityModerate,
	},
	{
		Name:            "pediatric",
		Keywords:        []string{"child", "infant", "baby", "pediatric"},
		Specializations: []string{"pediatrics"},
		Facilities:      []string{"generalBeds"},
		BaseSeverity:    entities.SeverityModerate,
	},
}

// generalProfile is the fallback when no category keyword matches.
var generalProfile = entities.ConditionProfile{
	Name:            "general",
	Specializations: []string{"general-surgery", "emergency-medicine"},
	Facilities:      []string{"generalBeds"},
	BaseSeverity:    entities.SeverityModerate,
}

// ConditionClassifier maps a chief complaint and symptom list onto a
// condition profile by ordered keyword matching.
type ConditionClassifier struct {
	catalog []entities.ConditionProfile
}

// NewConditionClassifier creates a classifier over the fixed catalog.
func NewConditionClassifier() *ConditionClassifier {
	return &ConditionClassifier{catalog: conditionCatalog}
}

// Classify returns the first catalog profile whose keywords appear in
// the lowercased complaint + symptoms text, or the general profile.
func (c *ConditionClassifier) Classify(complaint string, symptoms []string) entities.ConditionProfile {
	searchText := strings.ToLower(complaint + " " + strings.Join(symptoms, " "))

	for _, profile := range c.catalog {
		for _, keyword := range profile.Keywords {
			if strings.Contains(searchText, keyword) {
				return profile
			}
		}
	}

	return generalProfile
}
