package services

import (
	"sort"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// Displayed match scores are clamped to this band; ranking always uses
// the unclamped raw score.
const (
	minDisplayScore = 15
	maxDisplayScore = 100
	baseScore       = 30
)

// ScoredHospital is the transient scoring result for one candidate.
type ScoredHospital struct {
	Hospital    *entities.Hospital
	Score       int
	RawScore    int
	SpecMatches int
	TotalSpecs  int
}

// nameKeywords maps condition categories to the name substrings that
// earn the name-keyword bonus.
var nameKeywords = map[string][]string{
	"cardiac":      {"heart", "cardiac"},
	"pediatric":    {"child", "pediatric"},
	"trauma":       {"trauma"},
	"neurological": {"neuro"},
}

// HospitalRankingService scores and ranks candidate hospitals against a
// classified condition and adjusted severity.
type HospitalRankingService struct{}

// NewHospitalRankingService creates a ranking service.
func NewHospitalRankingService() *HospitalRankingService {
	return &HospitalRankingService{}
}

// Rank scores every candidate and returns them best-first. The primary
// sort key is the raw (unclamped) score descending; ties prefer the
// hospital with fewer total specializations, i.e. the more specialized
// facility.
func (s *HospitalRankingService) Rank(condition entities.ConditionProfile, severity entities.Severity, hospitals []*entities.Hospital) []ScoredHospital {
	scored := make([]ScoredHospital, len(hospitals))
	for i, h := range hospitals {
		scored[i] = s.scoreHospital(condition, severity, h)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RawScore != scored[j].RawScore {
			return scored[i].RawScore > scored[j].RawScore
		}
		return scored[i].TotalSpecs < scored[j].TotalSpecs
	})

	return scored
}

func (s *HospitalRankingService) scoreHospital(condition entities.ConditionProfile, severity entities.Severity, h *entities.Hospital) ScoredHospital {
	score := baseScore

	specMatches := 0
	for _, spec := range condition.Specializations {
		if h.HasSpecialization(spec) {
			specMatches++
		}
	}
	score += specMatches * 12

	// Hospitals with fewer total specializations that still match are
	// more specialized and preferred over general ones.
	totalSpecs := len(h.Specializations)
	if totalSpecs == 0 {
		totalSpecs = 1
	}
	if specMatches > 0 && totalSpecs <= 3 {
		score += 25
	} else if specMatches > 0 && totalSpecs <= 5 {
		score += 10
	}

	if h.PrimarySpecialization() != "" && h.PrimarySpecialization() == condition.PrimarySpecialization() {
		score += 15
	}

	for _, keyword := range nameKeywords[condition.Name] {
		if h.NameContains(keyword) {
			score += 20
			break
		}
	}

	for _, flag := range condition.Facilities {
		if h.Facilities.Has(flag) {
			score += 8
		}
	}

	if severity == entities.SeverityCritical && h.EmergencyAvailable() {
		score += 10
	}

	waitTime := h.WaitTime()
	if waitTime <= 10 {
		score += 10
	} else if waitTime <= 20 {
		score += 5
	} else if waitTime > 40 {
		score -= 10
	}

	doctors := h.AvailableDoctors()
	if doctors > 30 {
		score += 8
	} else if doctors > 15 {
		score += 4
	}

	if severity == entities.SeverityCritical && h.ICUBeds() > 10 {
		score += 10
	}

	occupancy := h.OccupancyRate()
	if occupancy > 85 {
		score -= 15
	} else if occupancy > 70 {
		score -= 5
	} else if occupancy < 50 {
		score += 5
	}

	if h.Rating >= 4.5 {
		score += 5
	}

	score += routeScore(h.RouteInfo, severity)

	return ScoredHospital{
		Hospital:    h,
		Score:       clampScore(score),
		RawScore:    score,
		SpecMatches: specMatches,
		TotalSpecs:  totalSpecs,
	}
}

// routeScore converts route info into a score term. A missing route, or
// one whose distance came out NaN from malformed coordinates, skips the
// term entirely rather than scoring as zero distance.
func routeScore(ri *entities.RouteInfo, severity entities.Severity) int {
	if !ri.Valid() {
		return 0
	}

	distance := ri.DistanceKm
	duration := ri.ETA()

	score := 0

	switch {
	case distance <= 2:
		score += 20
	case distance <= 5:
		score += 15
	case distance <= 10:
		score += 10
	case distance <= 20:
		score += 5
	default:
		score -= 5
	}

	switch severity {
	case entities.SeverityCritical:
		switch {
		case duration <= 5:
			score += 25
		case duration <= 10:
			score += 15
		case duration <= 15:
			score += 5
		case duration > 30:
			score -= 15
		}
	case entities.SeverityUrgent:
		switch {
		case duration <= 10:
			score += 15
		case duration <= 20:
			score += 10
		case duration > 40:
			score -= 10
		}
	default:
		switch {
		case duration <= 15:
			score += 10
		case duration <= 30:
			score += 5
		}
	}

	return score
}

func clampScore(raw int) int {
	if raw < minDisplayScore {
		return minDisplayScore
	}
	if raw > maxDisplayScore {
		return maxDisplayScore
	}
	return raw
}
