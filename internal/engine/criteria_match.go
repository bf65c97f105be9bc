package engine

import "github.com/cloo-solutions/plantrec/internal/domain"

// CriteriaMatch reports a pass/fail flag for every criterion the caller set.
// It is coarser than the category scores: a field fails only on a definite
// mismatch, so unknown or missing plant data passes.
func CriteriaMatch(p *domain.Plant, c domain.Criteria) map[string]bool {
	out := make(map[string]bool)
	if p == nil {
		return out
	}

	env := c.Environmental()
	if env.HardinessZone != "" {
		ok, parsed := ZonesCompatible(p.HardinessZone, env.HardinessZone)
		out["hardiness_zone"] = ok || !parsed
	}
	classFlag(out, "sun_exposure", sunClasses, env.SunExposure, p.SunRequirement)
	classFlag(out, "soil_type", soilClasses, env.SoilType, p.SoilType)
	classFlag(out, "moisture_level", moistureClasses, env.MoistureLevel, p.WaterNeed)
	if env.SoilPH != nil {
		ok, known := PHCompatible(*env.SoilPH, p.SoilPHMin, p.SoilPHMax)
		out["soil_ph"] = ok || !known
	}

	d := c.Design()
	if d.DesiredHeightMin != nil || d.DesiredHeightMax != nil {
		out["height_range"] = RangesCompatible(p.HeightMin, p.HeightMax, d.DesiredHeightMin, d.DesiredHeightMax)
	}
	if d.DesiredWidthMin != nil || d.DesiredWidthMax != nil {
		out["spread_range"] = RangesCompatible(p.WidthMin, p.WidthMax, d.DesiredWidthMin, d.DesiredWidthMax)
	}
	if len(d.PreferredColors) > 0 {
		_, ok := MatchColor(d.PreferredColors, p.BloomColor, p.FoliageColor)
		out["preferred_colors"] = ok || (p.BloomColor == "" && p.FoliageColor == "")
	}
	if d.BloomSeason != "" {
		want, ok := seasonClasses.canonical(d.BloomSeason)
		have := seasonSet(p.BloomSeason)
		out["bloom_season"] = !ok || len(have) == 0 || have[want] || have["year_round"]
	}
	if len(d.PlantTypes) > 0 {
		matched := p.Category == ""
		for _, want := range d.PlantTypes {
			if normalizePlantType(want) == normalizePlantType(p.Category) {
				matched = true
			}
		}
		out["plant_types"] = matched
	}

	m := c.Maintenance()
	classFlag(out, "maintenance_level", maintenanceClasses, m.MaintenanceLevel, p.MaintenanceLevel)
	if m.PestResistanceRequired {
		out["pest_resistance_required"] = p.PestResistance == "" || p.PestResistance == domain.RatingHigh
	}
	if m.DiseaseResistanceRequired {
		out["disease_resistance_required"] = p.DiseaseResistance == "" || p.DiseaseResistance == domain.RatingHigh
	}

	sp := c.Special()
	flag(out, "native_preference", sp.NativePreference, p.Native)
	flag(out, "deer_resistant_required", sp.DeerResistantRequired, p.DeerResistant)
	flag(out, "pollinator_friendly_required", sp.PollinatorFriendlyRequired, p.PollinatorFriendly)
	flag(out, "container_suitable", sp.ContainerSuitable, p.SuitableForContainers)
	flag(out, "hedging_suitable", sp.HedgingSuitable, p.SuitableForHedging)
	flag(out, "screening_suitable", sp.ScreeningSuitable, p.SuitableForScreening)
	flag(out, "groundcover_suitable", sp.GroundcoverSuitable, p.SuitableForGroundcover)
	flag(out, "slope_suitable", sp.SlopeSuitable, p.SuitableForSlopes)
	if sp.WildlifeValue != "" {
		out["wildlife_value"] = p.WildlifeValue.Rank() == 0 || sp.WildlifeValue.Rank() == 0 ||
			p.WildlifeValue.Rank() >= sp.WildlifeValue.Rank()
	}

	ctx := c.Context()
	if ctx.BudgetRange != "" {
		ok, known := true, false
		if p.Price != nil {
			ok, known = BudgetCompatible(*p.Price, ctx.BudgetRange)
		}
		out["budget_range"] = ok || !known
	}
	tableFlag(out, "project_type", projectTypes, ctx.ProjectType, p)
	tableFlag(out, "ecosystem", ecosystems, ctx.Ecosystem, p)

	return out
}

func classFlag(out map[string]bool, field string, t synonyms, desired, actual string) {
	if desired == "" {
		return
	}
	out[field] = matchClass(t, desired, actual) != classMismatched
}

func flag(out map[string]bool, field string, required, have bool) {
	if required {
		out[field] = have
	}
}

func tableFlag(out map[string]bool, field string, table map[string]plantPredicate, name string, p *domain.Plant) {
	if name == "" {
		return
	}
	pred, ok := lookup(table, name)
	if !ok {
		out[field] = true
		return
	}
	f := pred(p)
	out[field] = !f.applies || f.ok
}
