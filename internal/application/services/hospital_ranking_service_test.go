package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

func intPtr(v int) *int { return &v }

func cardiacProfile() entities.ConditionProfile {
	return entities.ConditionProfile{
		Name:            "cardiac",
		Specializations: []string{"cardiology"},
		Facilities:      []string{"icu", "emergencyServices"},
		BaseSeverity:    entities.SeverityCritical,
	}
}

func generalTestProfile() entities.ConditionProfile {
	return entities.ConditionProfile{
		Name:            "general",
		Specializations: []string{"general-surgery", "emergency-medicine"},
		Facilities:      []string{"generalBeds"},
		BaseSeverity:    entities.SeverityModerate,
	}
}

func TestRank_SpecializationMatchDominates(t *testing.T) {
	ranker := NewHospitalRankingService()

	cardiac := &entities.Hospital{
		ID:              "h1",
		Name:            "City Heart Institute",
		Specializations: []string{"cardiology"},
		Facilities:      &entities.Facilities{ICU: true, ICUBeds: 15, EmergencyServices: true},
		CurrentStatus:   &entities.HospitalStatus{EmergencyAvailable: true, WaitTime: intPtr(8), OccupancyRate: intPtr(60)},
	}
	general := &entities.Hospital{
		ID:              "h2",
		Name:            "General Hospital",
		Specializations: []string{"general-medicine"},
		CurrentStatus:   &entities.HospitalStatus{WaitTime: intPtr(5), OccupancyRate: intPtr(60)},
	}

	ranked := ranker.Rank(cardiacProfile(), entities.SeverityCritical, []*entities.Hospital{general, cardiac})

	require.Len(t, ranked, 2)
	assert.Equal(t, "h1", ranked[0].Hospital.ID)
	assert.Equal(t, 1, ranked[0].SpecMatches)
	assert.Greater(t, ranked[0].RawScore, ranked[1].RawScore)
}

func TestRank_ScoreClampedAtFloor(t *testing.T) {
	ranker := NewHospitalRankingService()

	// No matches, full occupancy, long wait: raw score drops below 15.
	overloaded := &entities.Hospital{
		ID:            "h1",
		Name:          "Overloaded Clinic",
		CurrentStatus: &entities.HospitalStatus{WaitTime: intPtr(50), OccupancyRate: intPtr(90)},
	}

	ranked := ranker.Rank(cardiacProfile(), entities.SeverityModerate, []*entities.Hospital{overloaded})

	require.Len(t, ranked, 1)
	assert.Equal(t, 5, ranked[0].RawScore) // 30 - 10 wait - 15 occupancy
	assert.Equal(t, 15, ranked[0].Score)
}

func TestRank_TieBreakPrefersFewerSpecializations(t *testing.T) {
	ranker := NewHospitalRankingService()

	// Neither hospital matches the general profile, so both score the
	// bare base plus identical status terms; only the specialization count differs.
	focused := &entities.Hospital{
		ID:              "focused",
		Name:            "Focused Hospital",
		Specializations: []string{"dermatology", "ent"},
		CurrentStatus:   &entities.HospitalStatus{WaitTime: intPtr(30), OccupancyRate: intPtr(60)},
	}
	sprawling := &entities.Hospital{
		ID:              "sprawling",
		Name:            "Sprawling Hospital",
		Specializations: []string{"dermatology", "ent", "urology", "psychiatry", "ophthalmology"},
		CurrentStatus:   &entities.HospitalStatus{WaitTime: intPtr(30), OccupancyRate: intPtr(60)},
	}

	ranked := ranker.Rank(generalTestProfile(), entities.SeverityModerate, []*entities.Hospital{sprawling, focused})

	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].RawScore, ranked[1].RawScore)
	assert.Equal(t, "focused", ranked[0].Hospital.ID)
	assert.Equal(t, 2, ranked[0].TotalSpecs)
	assert.Equal(t, 5, ranked[1].TotalSpecs)
}

func TestRank_MissingNestedFieldsUseDefaults(t *testing.T) {
	ranker := NewHospitalRankingService()

	// No staff, facilities or status at all: waitTime defaults to 30
	// (no bonus or penalty) and occupancy to 50 (neutral).
	bare := &entities.Hospital{ID: "h1", Name: "Bare Hospital"}

	ranked := ranker.Rank(generalTestProfile(), entities.SeverityModerate, []*entities.Hospital{bare})

	require.Len(t, ranked, 1)
	assert.Equal(t, baseScore, ranked[0].RawScore)
	assert.Equal(t, baseScore, ranked[0].Score)
}

func TestRank_NameKeywordBonus(t *testing.T) {
	ranker := NewHospitalRankingService()

	named := &entities.Hospital{ID: "named", Name: "Apollo Heart Centre", Specializations: []string{"general-medicine"}}
	plain := &entities.Hospital{ID: "plain", Name: "Apollo Centre", Specializations: []string{"general-medicine"}}

	ranked := ranker.Rank(cardiacProfile(), entities.SeverityModerate, []*entities.Hospital{plain, named})

	require.Len(t, ranked, 2)
	assert.Equal(t, "named", ranked[0].Hospital.ID)
	assert.Equal(t, 20, ranked[0].RawScore-ranked[1].RawScore)
}

func TestRank_SpecializationFocusBonus(t *testing.T) {
	ranker := NewHospitalRankingService()

	// Matching with three or fewer total specializations earns the big
	// focus bonus; up to five earns the small one.
	boutique := &entities.Hospital{ID: "boutique", Name: "A", Specializations: []string{"cardiology"}}
	midsize := &entities.Hospital{ID: "midsize", Name: "B", Specializations: []string{"neurology", "cardiology", "orthopedics", "oncology"}}

	ranked := ranker.Rank(cardiacProfile(), entities.SeverityModerate, []*entities.Hospital{midsize, boutique})

	require.Len(t, ranked, 2)
	assert.Equal(t, "boutique", ranked[0].Hospital.ID)
	// boutique: +25 focus +15 primary-specialization; midsize: +10 focus only.
	assert.Equal(t, 30, ranked[0].RawScore-ranked[1].RawScore)
}

func TestRank_EmergencyAndICUBonusOnlyWhenCritical(t *testing.T) {
	ranker := NewHospitalRankingService()

	h := &entities.Hospital{
		ID:            "h1",
		Name:          "A",
		Facilities:    &entities.Facilities{ICUBeds: 15},
		CurrentStatus: &entities.HospitalStatus{EmergencyAvailable: true, WaitTime: intPtr(30), OccupancyRate: intPtr(60)},
	}
	profile := generalTestProfile()

	moderate := ranker.Rank(profile, entities.SeverityModerate, []*entities.Hospital{h})
	critical := ranker.Rank(profile, entities.SeverityCritical, []*entities.Hospital{h})

	// +10 emergency availability and +10 ICU beds apply only to
	// critical cases.
	assert.Equal(t, 20, critical[0].RawScore-moderate[0].RawScore)
}

func TestRouteScore_DistanceAndDurationTerms(t *testing.T) {
	tests := []struct {
		name     string
		route    *entities.RouteInfo
		severity entities.Severity
		want     int
	}{
		{"nil route scores zero", nil, entities.SeverityCritical, 0},
		{"close and fast critical", &entities.RouteInfo{DistanceKm: 1.5, DurationMin: 8, EmergencyDurationMin: 4}, entities.SeverityCritical, 45},
		{"far critical penalized", &entities.RouteInfo{DistanceKm: 25, DurationMin: 60, EmergencyDurationMin: 34}, entities.SeverityCritical, -20},
		{"urgent mid distance", &entities.RouteInfo{DistanceKm: 8, DurationMin: 19}, entities.SeverityUrgent, 20},
		{"moderate short trip", &entities.RouteInfo{DistanceKm: 4, DurationMin: 12}, entities.SeverityModerate, 25},
		{"moderate long trip no penalty", &entities.RouteInfo{DistanceKm: 12, DurationMin: 45}, entities.SeverityModerate, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeScore(tt.route, tt.severity))
		})
	}
}

func TestRank_NaNRouteSkipsDistanceTerm(t *testing.T) {
	ranker := NewHospitalRankingService()

	withNaN := &entities.Hospital{
		ID:        "h1",
		Name:      "A",
		RouteInfo: &entities.RouteInfo{DistanceKm: math.NaN()},
	}
	without := &entities.Hospital{ID: "h2", Name: "B"}

	ranked := ranker.Rank(generalTestProfile(), entities.SeverityModerate, []*entities.Hospital{withNaN, without})

	require.Len(t, ranked, 2)
	// The NaN route contributed nothing: both hospitals score the base.
	assert.Equal(t, ranked[0].RawScore, ranked[1].RawScore)
	assert.Equal(t, baseScore, ranked[0].RawScore)
}

func TestRank_Deterministic(t *testing.T) {
	ranker := NewHospitalRankingService()

	hospitals := []*entities.Hospital{
		{ID: "a", Name: "Heart Hospital", Specializations: []string{"cardiology"}},
		{ID: "b", Name: "General", Specializations: []string{"general-medicine"}},
		{ID: "c", Name: "Trauma Centre", Specializations: []string{"trauma"}},
	}

	first := ranker.Rank(cardiacProfile(), entities.SeverityCritical, hospitals)
	for i := 0; i < 5; i++ {
		again := ranker.Rank(cardiacProfile(), entities.SeverityCritical, hospitals)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Hospital.ID, again[j].Hospital.ID)
			assert.Equal(t, first[j].RawScore, again[j].RawScore)
		}
	}
}
