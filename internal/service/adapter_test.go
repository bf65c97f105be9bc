package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

func TestParseCriteria(t *testing.T) {
	t.Run("accepts public field names", func(t *testing.T) {
		c := ParseCriteria(map[string]any{
			"sun_requirements": "full sun",
			"water_needs":      "low",
			"zone":             7.0,
			"ph":               "6.5",
			"colors":           "red, blue",
			"bloom_time":       "summer",
			"plant_type":       []any{"shrub", "perennial"},
			"maintenance":      "low",
			"native_only":      "yes",
			"deer_resistant":   true,
			"budget":           "medium",
			"height_range":     []any{1.0, 3.0},
			"spread_range":     map[string]any{"min": 2.0},
		})

		env := c.Environmental()
		assert.Equal(t, "full sun", env.SunExposure)
		assert.Equal(t, "low", env.MoistureLevel)
		assert.Equal(t, "7", env.HardinessZone)
		require.NotNil(t, env.SoilPH)
		assert.Equal(t, 6.5, *env.SoilPH)

		d := c.Design()
		assert.Equal(t, []string{"red", "blue"}, d.PreferredColors)
		assert.Equal(t, "summer", d.BloomSeason)
		assert.Equal(t, []string{"shrub", "perennial"}, d.PlantTypes)
		require.NotNil(t, d.DesiredHeightMin)
		require.NotNil(t, d.DesiredHeightMax)
		assert.Equal(t, 1.0, *d.DesiredHeightMin)
		assert.Equal(t, 3.0, *d.DesiredHeightMax)
		require.NotNil(t, d.DesiredWidthMin)
		assert.Equal(t, 2.0, *d.DesiredWidthMin)
		assert.Nil(t, d.DesiredWidthMax)

		assert.Equal(t, "low", c.Maintenance().MaintenanceLevel)
		assert.True(t, c.Special().NativePreference)
		assert.True(t, c.Special().DeerResistantRequired)
		assert.Equal(t, "medium", c.Context().BudgetRange)
	})

	t.Run("internal names win over public aliases", func(t *testing.T) {
		c := ParseCriteria(map[string]any{
			"sun_requirements": "shade",
			"sun_exposure":     "full sun",
			"zone":             "3",
			"hardiness_zone":   "8",
		})
		assert.Equal(t, "full sun", c.Environmental().SunExposure)
		assert.Equal(t, "8", c.Environmental().HardinessZone)
	})

	t.Run("ignores unknown keys and wrongly typed values", func(t *testing.T) {
		c := ParseCriteria(map[string]any{
			"favourite_gnome":          "bob",
			"soil_ph":                  "acidic",
			"pest_resistance_required": []any{true},
			"preferred_colors":         42.0,
			"height_range":             "tall",
			"soil_type":                nil,
			"sun_exposure":             "   ",
		})

		assert.Nil(t, c.Environmental().SoilPH)
		assert.False(t, c.Maintenance().PestResistanceRequired)
		assert.Empty(t, c.Design().PreferredColors)
		assert.Nil(t, c.Design().DesiredHeightMin)
		assert.Empty(t, c.Environmental().SoilType)
		assert.Empty(t, c.Environmental().SunExposure)
		assert.Equal(t, domain.DefaultWeights(), c.Weights())
	})

	t.Run("normalizes wildlife value", func(t *testing.T) {
		c := ParseCriteria(map[string]any{"wildlife_value": "Good"})
		assert.Equal(t, domain.RatingHigh, c.Special().WildlifeValue)
	})

	t.Run("partial weights are filled from defaults and rescaled", func(t *testing.T) {
		c := ParseCriteria(map[string]any{
			"weights": map[string]any{"environmental": 0.6, "unknown": 5.0},
		})
		w := c.Weights()
		assert.InDelta(t, 1.0, w.Sum(), 1e-9)
		assert.InDelta(t, 0.6/1.3, w[domain.CategoryEnvironmental], 1e-9)
		assert.InDelta(t, 0.25/1.3, w[domain.CategoryDesign], 1e-9)
	})

	t.Run("empty input yields default criteria", func(t *testing.T) {
		c := ParseCriteria(nil)
		assert.Equal(t, domain.NewCriteria().Snapshot(), c.Snapshot())
	})
}

func TestParseRecommendationRequest(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]any
		maxResults int
		minScore   float64
	}{
		{name: "defaults", raw: map[string]any{}, maxResults: DefaultMaxResults, minScore: 0},
		{name: "within range", raw: map[string]any{"max_results": 5.0, "min_score": 0.4}, maxResults: 5, minScore: 0.4},
		{name: "string values", raw: map[string]any{"max_results": "7", "min_score": "0.25"}, maxResults: 7, minScore: 0.25},
		{name: "too many results", raw: map[string]any{"max_results": 500.0}, maxResults: MaxMaxResults},
		{name: "non-positive results", raw: map[string]any{"max_results": -3.0}, maxResults: DefaultMaxResults},
		{name: "negative min score", raw: map[string]any{"min_score": -1.0}, maxResults: DefaultMaxResults, minScore: 0},
		{name: "min score above one", raw: map[string]any{"min_score": 2.0}, maxResults: DefaultMaxResults, minScore: 1},
		{name: "wrong types", raw: map[string]any{"max_results": true, "min_score": "lots"}, maxResults: DefaultMaxResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParseRecommendationRequest(tt.raw)
			assert.Equal(t, tt.maxResults, p.MaxResults)
			assert.Equal(t, tt.minScore, p.MinScore)
			assert.NotContains(t, p.Raw, "max_results")
			assert.NotContains(t, p.Raw, "min_score")
		})
	}
}

func TestRecommendationParams_CacheKey(t *testing.T) {
	a := ParseRecommendationRequest(map[string]any{"zone": "6", "colors": []any{"red"}, "max_results": 10.0})
	b := ParseRecommendationRequest(map[string]any{"max_results": 10.0, "colors": []any{"red"}, "zone": "6"})
	c := ParseRecommendationRequest(map[string]any{"zone": "6", "colors": []any{"red"}, "max_results": 11.0})
	d := ParseRecommendationRequest(map[string]any{"zone": "7", "colors": []any{"red"}, "max_results": 10.0})

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
	assert.NotEqual(t, a.CacheKey(), d.CacheKey())
	assert.Regexp(t, `^recommendations:[0-9a-f]{32}$`, a.CacheKey())
}

func TestFlattenResults(t *testing.T) {
	plant := &domain.Plant{
		ID:             "lav",
		Name:           "Lavandula angustifolia",
		CommonName:     "Lavender",
		Category:       "shrub",
		SunRequirement: "full sun",
		HardinessZone:  "5-9",
		PestResistance: domain.RatingHigh,
		UpdatedAt:      time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	c := ParseCriteria(map[string]any{"sun_exposure": "shade", "hardiness_zone": "6"})

	items := FlattenResults([]domain.ScoredCandidate{
		{
			Plant:          plant,
			TotalScore:     0.123456,
			CategoryScores: map[domain.Category]float64{domain.CategoryEnvironmental: 0.66666666},
			MatchReasons:   []string{"Hardiness zone compatible"},
		},
		{Plant: nil, TotalScore: 1},
	}, c, nil)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "lav", item.Candidate.ID)
	assert.Equal(t, "Lavender", item.Candidate.CommonName)
	assert.Equal(t, "high", item.Candidate.PestResistance)
	assert.Equal(t, "2026-02-03T04:05:06Z", item.Candidate.UpdatedAt)
	assert.Equal(t, 0.1235, item.Score)
	assert.Equal(t, 0.6667, item.CategoryScores["environmental"])
	assert.Equal(t, []string{"Hardiness zone compatible"}, item.Reasons)
	assert.NotNil(t, item.Warnings)
	assert.True(t, item.CriteriaMatch["hardiness_zone"])
	assert.False(t, item.CriteriaMatch["sun_exposure"])
}

func TestFlattenResults_MatchUsesRequestNames(t *testing.T) {
	plant := &domain.Plant{
		ID:             "maple",
		Name:           "Acer rubrum",
		HeightMin:      domain.Float64(60),
		HeightMax:      domain.Float64(120),
		SunRequirement: "full sun",
		HardinessZone:  "3-9",
	}

	t.Run("public aliases", func(t *testing.T) {
		params := ParseRecommendationRequest(map[string]any{
			"height_range":     []any{50.0, 150.0},
			"sun_requirements": "full sun",
			"hardiness_zone":   "6",
		})
		items := FlattenResults([]domain.ScoredCandidate{{Plant: plant}}, params.Criteria, params.Labels)

		require.Len(t, items, 1)
		got := items[0].CriteriaMatch
		assert.Equal(t, map[string]bool{"height_range": true, "sun_requirements": true, "hardiness_zone": true}, got)
	})

	t.Run("disjoint range fails under the request name", func(t *testing.T) {
		params := ParseRecommendationRequest(map[string]any{"height_range": []any{300.0, 500.0}})
		items := FlattenResults([]domain.ScoredCandidate{{Plant: plant}}, params.Criteria, params.Labels)

		v, ok := items[0].CriteriaMatch["height_range"]
		require.True(t, ok)
		assert.False(t, v)
	})

	t.Run("alias and internal name both reported", func(t *testing.T) {
		params := ParseRecommendationRequest(map[string]any{"sun_exposure": "full sun", "sun_requirement": "shade"})
		items := FlattenResults([]domain.ScoredCandidate{{Plant: plant}}, params.Criteria, params.Labels)

		got := items[0].CriteriaMatch
		assert.True(t, got["sun_exposure"])
		assert.True(t, got["sun_requirement"])
	})

	t.Run("internal bounds keep the canonical name", func(t *testing.T) {
		params := ParseRecommendationRequest(map[string]any{"desired_width_min": 1.0, "desired_height_max": 100.0})
		items := FlattenResults([]domain.ScoredCandidate{{Plant: plant}}, params.Criteria, params.Labels)

		got := items[0].CriteriaMatch
		assert.Contains(t, got, "height_range")
		assert.Contains(t, got, "spread_range")
	})
}

func TestSummarizeCriteria(t *testing.T) {
	c := ParseCriteria(map[string]any{
		"sun_exposure":   "full sun",
		"soil_ph":        6.0,
		"deer_resistant": true,
		"colors":         []any{"white"},
	})

	s := SummarizeCriteria(c)
	assert.Equal(t, "full sun", s["sun_exposure"])
	assert.Equal(t, 6.0, s["soil_ph"])
	assert.Equal(t, true, s["deer_resistant_required"])
	assert.Equal(t, []any{"white"}, s["preferred_colors"])
	assert.NotContains(t, s, "soil_type")
	assert.NotContains(t, s, "native_preference")
	assert.NotContains(t, s, "plant_types")

	weights, ok := s["weights"].(map[string]float64)
	require.True(t, ok)
	assert.Equal(t, 0.3, weights["environmental"])
	assert.Len(t, weights, len(domain.Categories))
}
