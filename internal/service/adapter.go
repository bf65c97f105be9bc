package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/engine"
)

const (
	DefaultMaxResults = 20
	MaxMaxResults     = 100
)

// criteriaDraft collects parsed fields before the immutable Criteria is built.
type criteriaDraft struct {
	env     domain.EnvironmentalCriteria
	design  domain.DesignCriteria
	maint   domain.MaintenanceCriteria
	special domain.SpecialCriteria
	project domain.ProjectContext
	weights domain.Weights
}

func (d *criteriaDraft) build() domain.Criteria {
	b := domain.NewCriteriaBuilder().
		Environmental(d.env).
		Design(d.design).
		Maintenance(d.maint).
		Special(d.special).
		Context(d.project)
	if len(d.weights) > 0 {
		b.Weights(d.weights)
	}
	return b.Build()
}

type criteriaField func(d *criteriaDraft, v any)

func stringField(set func(*criteriaDraft, string)) criteriaField {
	return func(d *criteriaDraft, v any) {
		if s, ok := asString(v); ok {
			set(d, s)
		}
	}
}

func floatField(set func(*criteriaDraft, *float64)) criteriaField {
	return func(d *criteriaDraft, v any) {
		if f, ok := asFloat(v); ok {
			set(d, &f)
		}
	}
}

func boolField(set func(*criteriaDraft, bool)) criteriaField {
	return func(d *criteriaDraft, v any) {
		if b, ok := asBool(v); ok {
			set(d, b)
		}
	}
}

func listField(set func(*criteriaDraft, []string)) criteriaField {
	return func(d *criteriaDraft, v any) {
		if l, ok := asStrings(v); ok {
			set(d, l)
		}
	}
}

func pairField(set func(*criteriaDraft, *float64, *float64)) criteriaField {
	return func(d *criteriaDraft, v any) {
		if lo, hi, ok := asPair(v); ok {
			set(d, lo, hi)
		}
	}
}

// criteriaFields is keyed by the internal field names.
var criteriaFields = map[string]criteriaField{
	"hardiness_zone": stringField(func(d *criteriaDraft, s string) { d.env.HardinessZone = s }),
	"sun_exposure":   stringField(func(d *criteriaDraft, s string) { d.env.SunExposure = s }),
	"soil_type":      stringField(func(d *criteriaDraft, s string) { d.env.SoilType = s }),
	"moisture_level": stringField(func(d *criteriaDraft, s string) { d.env.MoistureLevel = s }),
	"soil_ph":        floatField(func(d *criteriaDraft, f *float64) { d.env.SoilPH = f }),

	"desired_height_min": floatField(func(d *criteriaDraft, f *float64) { d.design.DesiredHeightMin = f }),
	"desired_height_max": floatField(func(d *criteriaDraft, f *float64) { d.design.DesiredHeightMax = f }),
	"desired_width_min":  floatField(func(d *criteriaDraft, f *float64) { d.design.DesiredWidthMin = f }),
	"desired_width_max":  floatField(func(d *criteriaDraft, f *float64) { d.design.DesiredWidthMax = f }),
	"preferred_colors":   listField(func(d *criteriaDraft, l []string) { d.design.PreferredColors = l }),
	"bloom_season":       stringField(func(d *criteriaDraft, s string) { d.design.BloomSeason = s }),
	"plant_types":        listField(func(d *criteriaDraft, l []string) { d.design.PlantTypes = l }),

	"maintenance_level":           stringField(func(d *criteriaDraft, s string) { d.maint.MaintenanceLevel = s }),
	"pest_resistance_required":    boolField(func(d *criteriaDraft, b bool) { d.maint.PestResistanceRequired = b }),
	"disease_resistance_required": boolField(func(d *criteriaDraft, b bool) { d.maint.DiseaseResistanceRequired = b }),

	"native_preference":            boolField(func(d *criteriaDraft, b bool) { d.special.NativePreference = b }),
	"deer_resistant_required":      boolField(func(d *criteriaDraft, b bool) { d.special.DeerResistantRequired = b }),
	"pollinator_friendly_required": boolField(func(d *criteriaDraft, b bool) { d.special.PollinatorFriendlyRequired = b }),
	"container_suitable":           boolField(func(d *criteriaDraft, b bool) { d.special.ContainerSuitable = b }),
	"hedging_suitable":             boolField(func(d *criteriaDraft, b bool) { d.special.HedgingSuitable = b }),
	"screening_suitable":           boolField(func(d *criteriaDraft, b bool) { d.special.ScreeningSuitable = b }),
	"groundcover_suitable":         boolField(func(d *criteriaDraft, b bool) { d.special.GroundcoverSuitable = b }),
	"slope_suitable":               boolField(func(d *criteriaDraft, b bool) { d.special.SlopeSuitable = b }),
	"wildlife_value": stringField(func(d *criteriaDraft, s string) {
		d.special.WildlifeValue = domain.ParseRating(s)
	}),

	"budget_range": stringField(func(d *criteriaDraft, s string) { d.project.BudgetRange = s }),
	"project_type": stringField(func(d *criteriaDraft, s string) { d.project.ProjectType = s }),
	"ecosystem":    stringField(func(d *criteriaDraft, s string) { d.project.Ecosystem = s }),

	"weights": func(d *criteriaDraft, v any) {
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		w := domain.Weights{}
		for _, cat := range domain.Categories {
			if f, ok := asFloat(m[string(cat)]); ok {
				w[cat] = f
			}
		}
		d.weights = w
	},
}

// externalFields maps public request names onto the same setters.
var externalFields = map[string]criteriaField{
	"sun_requirements":    criteriaFields["sun_exposure"],
	"sun_requirement":     criteriaFields["sun_exposure"],
	"water_needs":         criteriaFields["moisture_level"],
	"water_need":          criteriaFields["moisture_level"],
	"zone":                criteriaFields["hardiness_zone"],
	"ph":                  criteriaFields["soil_ph"],
	"colors":              criteriaFields["preferred_colors"],
	"bloom_time":          criteriaFields["bloom_season"],
	"plant_type":          criteriaFields["plant_types"],
	"maintenance":         criteriaFields["maintenance_level"],
	"native_only":         criteriaFields["native_preference"],
	"deer_resistant":      criteriaFields["deer_resistant_required"],
	"pollinator_friendly": criteriaFields["pollinator_friendly_required"],
	"budget":              criteriaFields["budget_range"],
	"height_range": pairField(func(d *criteriaDraft, lo, hi *float64) {
		d.design.DesiredHeightMin, d.design.DesiredHeightMax = lo, hi
	}),
	"spread_range": pairField(func(d *criteriaDraft, lo, hi *float64) {
		d.design.DesiredWidthMin, d.design.DesiredWidthMax = lo, hi
	}),
	"width_range": pairField(func(d *criteriaDraft, lo, hi *float64) {
		d.design.DesiredWidthMin, d.design.DesiredWidthMax = lo, hi
	}),
}

// matchAliases maps public request names onto the criteria_match field
// they feed.
var matchAliases = map[string]string{
	"sun_requirements":    "sun_exposure",
	"sun_requirement":     "sun_exposure",
	"water_needs":         "moisture_level",
	"water_need":          "moisture_level",
	"zone":                "hardiness_zone",
	"ph":                  "soil_ph",
	"colors":              "preferred_colors",
	"bloom_time":          "bloom_season",
	"plant_type":          "plant_types",
	"maintenance":         "maintenance_level",
	"native_only":         "native_preference",
	"deer_resistant":      "deer_resistant_required",
	"pollinator_friendly": "pollinator_friendly_required",
	"budget":              "budget_range",
	"height_range":        "height_range",
	"spread_range":        "spread_range",
	"width_range":         "spread_range",
}

// MatchLabels records, per criteria_match field, the request keys the
// caller used for it. Fields set only through internal range bounds keep
// their own name.
func MatchLabels(raw map[string]any) map[string][]string {
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	labels := make(map[string][]string)
	for _, k := range keys {
		if field, ok := matchAliases[k]; ok {
			labels[field] = append(labels[field], k)
		} else if _, ok := criteriaFields[k]; ok {
			labels[k] = append(labels[k], k)
		}
	}
	return labels
}

// ParseCriteria converts a loosely typed criteria mapping into Criteria.
// Both public and internal field names are accepted; internal names win
// when both are present. Unknown keys and values of the wrong type are
// ignored.
func ParseCriteria(raw map[string]any) domain.Criteria {
	var d criteriaDraft
	apply(&d, raw, externalFields)
	apply(&d, raw, criteriaFields)
	return d.build()
}

func apply(d *criteriaDraft, raw map[string]any, fields map[string]criteriaField) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if raw[k] != nil {
			fields[k](d, raw[k])
		}
	}
}

// RecommendationParams is a parsed public recommendation request.
type RecommendationParams struct {
	Criteria   domain.Criteria
	MaxResults int
	MinScore   float64
	// Raw is the criteria mapping as received, without the paging fields.
	Raw map[string]any
	// Labels names criteria_match fields after the keys in Raw.
	Labels map[string][]string
}

// ParseRecommendationRequest splits max_results and min_score from the
// criteria mapping and clamps them into range.
func ParseRecommendationRequest(raw map[string]any) RecommendationParams {
	p := RecommendationParams{MaxResults: DefaultMaxResults, Raw: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "max_results":
			if f, ok := asFloat(v); ok {
				p.MaxResults = int(f)
			}
		case "min_score":
			if f, ok := asFloat(v); ok {
				p.MinScore = f
			}
		default:
			p.Raw[k] = v
		}
	}
	switch {
	case p.MaxResults <= 0:
		p.MaxResults = DefaultMaxResults
	case p.MaxResults > MaxMaxResults:
		p.MaxResults = MaxMaxResults
	}
	if p.MinScore < 0 || p.MinScore != p.MinScore {
		p.MinScore = 0
	}
	if p.MinScore > 1 {
		p.MinScore = 1
	}
	p.Criteria = ParseCriteria(p.Raw)
	p.Labels = MatchLabels(p.Raw)
	return p
}

// CacheKey is the exact-match memoization key of the request.
func (p RecommendationParams) CacheKey() string {
	return cache.Key(cache.NamespaceRecommendations, map[string]any{
		"criteria":    p.Raw,
		"max_results": p.MaxResults,
		"min_score":   p.MinScore,
	})
}

// PlantView is the flattened, serializable form of a catalog plant.
type PlantView struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	CommonName             string   `json:"common_name,omitempty"`
	ScientificName         string   `json:"scientific_name,omitempty"`
	Category               string   `json:"category,omitempty"`
	HeightMin              *float64 `json:"height_min,omitempty"`
	HeightMax              *float64 `json:"height_max,omitempty"`
	WidthMin               *float64 `json:"width_min,omitempty"`
	WidthMax               *float64 `json:"width_max,omitempty"`
	SunRequirement         string   `json:"sun_requirement,omitempty"`
	SoilType               string   `json:"soil_type,omitempty"`
	WaterNeed              string   `json:"water_need,omitempty"`
	HardinessZone          string   `json:"hardiness_zone,omitempty"`
	MaintenanceLevel       string   `json:"maintenance_level,omitempty"`
	BloomSeason            string   `json:"bloom_season,omitempty"`
	BloomColor             string   `json:"bloom_color,omitempty"`
	FoliageColor           string   `json:"foliage_color,omitempty"`
	SoilPHMin              *float64 `json:"soil_ph_min,omitempty"`
	SoilPHMax              *float64 `json:"soil_ph_max,omitempty"`
	Price                  *float64 `json:"price,omitempty"`
	Native                 bool     `json:"native"`
	PollinatorFriendly     bool     `json:"pollinator_friendly"`
	DeerResistant          bool     `json:"deer_resistant"`
	SuitableForContainers  bool     `json:"suitable_for_containers"`
	SuitableForHedging     bool     `json:"suitable_for_hedging"`
	SuitableForScreening   bool     `json:"suitable_for_screening"`
	SuitableForGroundcover bool     `json:"suitable_for_groundcover"`
	SuitableForSlopes      bool     `json:"suitable_for_slopes"`
	PestResistance         string   `json:"pest_resistance,omitempty"`
	DiseaseResistance      string   `json:"disease_resistance,omitempty"`
	WildlifeValue          string   `json:"wildlife_value,omitempty"`
	UpdatedAt              string   `json:"updated_at,omitempty"`
}

// NewPlantView flattens a plant.
func NewPlantView(p *domain.Plant) PlantView {
	v := PlantView{
		ID:                     p.ID,
		Name:                   p.Name,
		CommonName:             p.CommonName,
		ScientificName:         p.ScientificName,
		Category:               p.Category,
		HeightMin:              p.HeightMin,
		HeightMax:              p.HeightMax,
		WidthMin:               p.WidthMin,
		WidthMax:               p.WidthMax,
		SunRequirement:         p.SunRequirement,
		SoilType:               p.SoilType,
		WaterNeed:              p.WaterNeed,
		HardinessZone:          p.HardinessZone,
		MaintenanceLevel:       p.MaintenanceLevel,
		BloomSeason:            p.BloomSeason,
		BloomColor:             p.BloomColor,
		FoliageColor:           p.FoliageColor,
		SoilPHMin:              p.SoilPHMin,
		SoilPHMax:              p.SoilPHMax,
		Price:                  p.Price,
		Native:                 p.Native,
		PollinatorFriendly:     p.PollinatorFriendly,
		DeerResistant:          p.DeerResistant,
		SuitableForContainers:  p.SuitableForContainers,
		SuitableForHedging:     p.SuitableForHedging,
		SuitableForScreening:   p.SuitableForScreening,
		SuitableForGroundcover: p.SuitableForGroundcover,
		SuitableForSlopes:      p.SuitableForSlopes,
		PestResistance:         string(p.PestResistance),
		DiseaseResistance:      string(p.DiseaseResistance),
		WildlifeValue:          string(p.WildlifeValue),
	}
	if !p.UpdatedAt.IsZero() {
		v.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

// Plant converts a view back into a catalog entry. UpdatedAt is not
// carried over; the catalog stamps it on write.
func (v PlantView) Plant() *domain.Plant {
	return &domain.Plant{
		ID:                     v.ID,
		Name:                   v.Name,
		CommonName:             v.CommonName,
		ScientificName:         v.ScientificName,
		Category:               v.Category,
		HeightMin:              v.HeightMin,
		HeightMax:              v.HeightMax,
		WidthMin:               v.WidthMin,
		WidthMax:               v.WidthMax,
		SunRequirement:         v.SunRequirement,
		SoilType:               v.SoilType,
		WaterNeed:              v.WaterNeed,
		HardinessZone:          v.HardinessZone,
		MaintenanceLevel:       v.MaintenanceLevel,
		BloomSeason:            v.BloomSeason,
		BloomColor:             v.BloomColor,
		FoliageColor:           v.FoliageColor,
		SoilPHMin:              v.SoilPHMin,
		SoilPHMax:              v.SoilPHMax,
		Price:                  v.Price,
		Native:                 v.Native,
		PollinatorFriendly:     v.PollinatorFriendly,
		DeerResistant:          v.DeerResistant,
		SuitableForContainers:  v.SuitableForContainers,
		SuitableForHedging:     v.SuitableForHedging,
		SuitableForScreening:   v.SuitableForScreening,
		SuitableForGroundcover: v.SuitableForGroundcover,
		SuitableForSlopes:      v.SuitableForSlopes,
		PestResistance:         domain.Rating(v.PestResistance),
		DiseaseResistance:      domain.Rating(v.DiseaseResistance),
		WildlifeValue:          domain.Rating(v.WildlifeValue),
	}
}

// RecommendationItem is one flattened result.
type RecommendationItem struct {
	Candidate      PlantView          `json:"candidate"`
	Score          float64            `json:"score"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Reasons        []string           `json:"reasons"`
	Warnings       []string           `json:"warnings"`
	CriteriaMatch  map[string]bool    `json:"criteria_match"`
}

// FlattenResults converts ranked candidates into their public shape.
// criteria_match keys follow labels; a field without labels keeps its
// canonical name.
func FlattenResults(results []domain.ScoredCandidate, c domain.Criteria, labels map[string][]string) []RecommendationItem {
	items := make([]RecommendationItem, 0, len(results))
	for _, r := range results {
		if r.Plant == nil {
			continue
		}
		scores := make(map[string]float64, len(r.CategoryScores))
		for cat, v := range r.CategoryScores {
			scores[string(cat)] = round(v)
		}
		items = append(items, RecommendationItem{
			Candidate:      NewPlantView(r.Plant),
			Score:          round(r.TotalScore),
			CategoryScores: scores,
			Reasons:        append([]string{}, r.MatchReasons...),
			Warnings:       append([]string{}, r.Warnings...),
			CriteriaMatch:  relabel(engine.CriteriaMatch(r.Plant, c), labels),
		})
	}
	return items
}

func relabel(match map[string]bool, labels map[string][]string) map[string]bool {
	out := make(map[string]bool, len(match))
	for field, ok := range match {
		names := labels[field]
		if len(names) == 0 {
			out[field] = ok
			continue
		}
		for _, name := range names {
			out[name] = ok
		}
	}
	return out
}

// SummarizeCriteria lists the criteria fields that were set, by internal
// name, plus the effective weights.
func SummarizeCriteria(c domain.Criteria) map[string]any {
	snap := c.Snapshot()
	out := map[string]any{}
	for _, group := range []any{snap.Environmental, snap.Design, snap.Maintenance, snap.Special, snap.Context} {
		b, err := json.Marshal(group)
		if err != nil {
			continue
		}
		var fields map[string]any
		if err := json.Unmarshal(b, &fields); err != nil {
			continue
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	weights := make(map[string]float64, len(snap.Weights))
	for k, v := range snap.Weights {
		weights[k] = round(v)
	}
	out["weights"] = weights
	return out
}

func round(v float64) float64 {
	return float64(int64(v*1e4+0.5)) / 1e4
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if f != f {
		return 0, false
	}
	return f, true
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "on":
			return true, true
		case "false", "no", "0", "off":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}

func asStrings(v any) ([]string, bool) {
	var out []string
	switch t := v.(type) {
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s, ok := asString(item); ok {
				out = append(out, s)
			}
		}
	default:
		return nil, false
	}
	return out, len(out) > 0
}

// asPair reads a [min, max] pair or a {"min": .., "max": ..} object. Either
// bound may be null.
func asPair(v any) (lo, hi *float64, ok bool) {
	bound := func(x any) *float64 {
		if f, ok := asFloat(x); ok {
			return &f
		}
		return nil
	}
	switch t := v.(type) {
	case []any:
		if len(t) != 2 {
			return nil, nil, false
		}
		lo, hi = bound(t[0]), bound(t[1])
	case []float64:
		if len(t) != 2 {
			return nil, nil, false
		}
		lo, hi = bound(t[0]), bound(t[1])
	case map[string]any:
		lo, hi = bound(t["min"]), bound(t["max"])
	default:
		return nil, nil, false
	}
	return lo, hi, lo != nil || hi != nil
}
