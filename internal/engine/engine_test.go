package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

func testCatalog() []*domain.Plant {
	return []*domain.Plant{
		{
			ID:                 "shrub-1",
			Name:               "Physocarpus opulifolius",
			CommonName:         "Ninebark",
			Category:           "shrub",
			HeightMin:          f(150),
			HeightMax:          f(300),
			SunRequirement:     "Full Sun",
			SoilType:           "Clay, Loam",
			WaterNeed:          "Medium",
			HardinessZone:      "5-9",
			MaintenanceLevel:   "Low",
			BloomSeason:        "Spring",
			BloomColor:         "White",
			FoliageColor:       "Burgundy",
			Price:              f(35),
			Native:             true,
			PollinatorFriendly: true,
			PestResistance:     domain.RatingHigh,
		},
		{
			ID:               "perennial-1",
			Name:             "Astilbe chinensis",
			CommonName:       "Chinese Astilbe",
			Category:         "perennial",
			HeightMin:        f(30),
			HeightMax:        f(60),
			SunRequirement:   "Part Shade",
			SoilType:         "Loam",
			WaterNeed:        "High",
			HardinessZone:    "4-8",
			MaintenanceLevel: "High",
			BloomSeason:      "Summer",
			BloomColor:       "Pink",
			Price:            f(18),
			DeerResistant:    true,
			PestResistance:   domain.RatingMedium,
		},
		{
			ID:                 "grass-1",
			Name:               "Schizachyrium scoparium",
			CommonName:         "Little Bluestem",
			Category:           "grass",
			HeightMin:          f(60),
			HeightMax:          f(120),
			SunRequirement:     "Full Sun",
			SoilType:           "Sandy",
			WaterNeed:          "Low",
			HardinessZone:      "3-9",
			MaintenanceLevel:   "Low",
			BloomSeason:        "Late Summer",
			FoliageColor:       "Blue-green",
			Price:              f(12),
			Native:             true,
			DeerResistant:      true,
			PollinatorFriendly: false,
		},
	}
}

func TestEngine_ScenarioShrubBeatsPerennial(t *testing.T) {
	e := New()
	c := domain.NewCriteria(
		domain.WithEnvironmental(domain.EnvironmentalCriteria{HardinessZone: "5-9", SunExposure: "Full Sun"}),
		domain.WithMaintenance(domain.MaintenanceCriteria{MaintenanceLevel: "Low"}),
	)
	catalog := testCatalog()[:2]

	ranked := e.Rank(catalog, c, Options{MaxResults: 10})

	require.Len(t, ranked, 2)
	assert.Equal(t, "shrub-1", ranked[0].Plant.ID)
	assert.Equal(t, "perennial-1", ranked[1].Plant.ID)
	assert.Greater(t, ranked[0].TotalScore, ranked[1].TotalScore)
	assert.NotEmpty(t, ranked[1].Warnings)
}

func TestEngine_ScoresWithinBoundsAndSorted(t *testing.T) {
	e := New()
	criteriaSet := []domain.Criteria{
		domain.NewCriteria(),
		domain.NewCriteria(
			domain.WithEnvironmental(domain.EnvironmentalCriteria{HardinessZone: "garbage", SunExposure: "shade", SoilPH: f(5)}),
			domain.WithDesign(domain.DesignCriteria{DesiredHeightMin: f(500), PreferredColors: []string{"red"}, PlantTypes: []string{"tree"}}),
			domain.WithSpecial(domain.SpecialCriteria{DeerResistantRequired: true, ContainerSuitable: true, WildlifeValue: domain.RatingHigh}),
			domain.WithContext(domain.ProjectContext{BudgetRange: "platinum", ProjectType: "moon base", Ecosystem: "wetland"}),
		),
		domain.NewCriteria(domain.WithWeights(domain.Weights{domain.CategoryDesign: 5, domain.CategoryContext: math.Inf(1)})),
	}

	for _, c := range criteriaSet {
		ranked := e.Rank(testCatalog(), c, Options{})
		require.Len(t, ranked, 3)
		for i, sc := range ranked {
			assert.GreaterOrEqual(t, sc.TotalScore, 0.0)
			assert.LessOrEqual(t, sc.TotalScore, 1.0)
			for cat, v := range sc.CategoryScores {
				assert.GreaterOrEqual(t, v, 0.0, string(cat))
				assert.LessOrEqual(t, v, 1.0, string(cat))
			}
			if i > 0 {
				assert.GreaterOrEqual(t, ranked[i-1].TotalScore, sc.TotalScore)
			}
		}
	}
}

func TestEngine_Idempotent(t *testing.T) {
	e := New()
	c := domain.NewCriteria(
		domain.WithEnvironmental(domain.EnvironmentalCriteria{SunExposure: "full_sun"}),
		domain.WithSpecial(domain.SpecialCriteria{NativePreference: true}),
	)

	first := e.Rank(testCatalog(), c, Options{MaxResults: 5})
	second := e.Rank(testCatalog(), c, Options{MaxResults: 5})

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Plant.ID, second[i].Plant.ID)
		assert.Equal(t, first[i].TotalScore, second[i].TotalScore)
		assert.Equal(t, first[i].MatchReasons, second[i].MatchReasons)
	}
}

func TestEngine_NoOpinionUsesNeutralDefaults(t *testing.T) {
	e := New()
	sc := e.Evaluate(testCatalog()[0], domain.NewCriteria())

	assert.Equal(t, 0.5, sc.CategoryScores[domain.CategoryEnvironmental])
	assert.Equal(t, 0.5, sc.CategoryScores[domain.CategoryDesign])
	assert.Equal(t, 0.5, sc.CategoryScores[domain.CategoryMaintenance])
	assert.Equal(t, 1.0, sc.CategoryScores[domain.CategorySpecial])
	assert.Equal(t, 1.0, sc.CategoryScores[domain.CategoryContext])
	assert.InDelta(t, 0.3*0.5+0.25*0.5+0.2*0.5+0.15+0.1, sc.TotalScore, 1e-9)
	assert.Empty(t, sc.Warnings)
	assert.NotNil(t, sc.MatchReasons)
}

func TestEngine_AbsentFieldsDoNotPenalize(t *testing.T) {
	e := New()
	plant := &domain.Plant{ID: "bare", Name: "Bare"}
	withFields := domain.NewCriteria(
		domain.WithEnvironmental(domain.EnvironmentalCriteria{HardinessZone: "5-9", SunExposure: "full sun", SoilPH: f(6)}),
		domain.WithDesign(domain.DesignCriteria{DesiredHeightMin: f(50), DesiredHeightMax: f(100), PreferredColors: []string{"red"}}),
		domain.WithMaintenance(domain.MaintenanceCriteria{MaintenanceLevel: "low", PestResistanceRequired: true}),
		domain.WithContext(domain.ProjectContext{BudgetRange: "low", ProjectType: "commercial", Ecosystem: "prairie"}),
	)

	got := e.Evaluate(plant, withFields)
	neutral := e.Evaluate(plant, domain.NewCriteria())

	assert.Equal(t, neutral.CategoryScores, got.CategoryScores)
	assert.Equal(t, neutral.TotalScore, got.TotalScore)
}

func TestEngine_MinScoreAndMaxResults(t *testing.T) {
	e := New()
	c := domain.NewCriteria(
		domain.WithEnvironmental(domain.EnvironmentalCriteria{SunExposure: "full sun"}),
	)

	all := e.Rank(testCatalog(), c, Options{})
	require.Len(t, all, 3)

	top := e.Rank(testCatalog(), c, Options{MaxResults: 1})
	require.Len(t, top, 1)
	assert.Equal(t, all[0].Plant.ID, top[0].Plant.ID)

	threshold := all[1].TotalScore + 1e-9
	filtered := e.Rank(testCatalog(), c, Options{MinScore: threshold})
	for _, sc := range filtered {
		assert.GreaterOrEqual(t, sc.TotalScore, threshold)
	}
	assert.Less(t, len(filtered), 3)

	assert.Empty(t, e.Rank(nil, c, Options{}))
}

func TestEngine_TiesKeepCatalogOrder(t *testing.T) {
	e := New()
	catalog := []*domain.Plant{
		{ID: "c", Name: "C"},
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	}

	ranked := e.Rank(catalog, domain.NewCriteria(), Options{})

	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Plant.ID)
	assert.Equal(t, "a", ranked[1].Plant.ID)
	assert.Equal(t, "b", ranked[2].Plant.ID)
}

type constScorer struct {
	cat   domain.Category
	value float64
}

func (s constScorer) Category() domain.Category { return s.cat }

func (s constScorer) Score(*domain.Plant, domain.Criteria, *Explanation) float64 { return s.value }

func TestEngine_ClampsMisbehavingScorers(t *testing.T) {
	e := New(WithScorers(
		constScorer{cat: domain.CategoryEnvironmental, value: 7},
		constScorer{cat: domain.CategoryDesign, value: math.NaN()},
		constScorer{cat: domain.CategoryMaintenance, value: -2},
	))

	sc := e.Evaluate(&domain.Plant{ID: "x"}, domain.NewCriteria())

	assert.Equal(t, 1.0, sc.CategoryScores[domain.CategoryEnvironmental])
	assert.Equal(t, 0.0, sc.CategoryScores[domain.CategoryDesign])
	assert.Equal(t, 0.0, sc.CategoryScores[domain.CategoryMaintenance])
	assert.InDelta(t, 0.30, sc.TotalScore, 1e-9)
}

func TestEngine_CustomPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.FailOpen[FailOpenUnknownBudgetBand] = 0
	e := New(WithPolicy(p))
	c := domain.NewCriteria(domain.WithContext(domain.ProjectContext{BudgetRange: "platinum"}))

	sc := e.Evaluate(testCatalog()[0], c)

	assert.Equal(t, 0.0, sc.CategoryScores[domain.CategoryContext])
	assert.Equal(t, p, e.Policy())
}
