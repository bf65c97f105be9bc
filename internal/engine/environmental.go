package engine

import "github.com/cloo-solutions/plantrec/internal/domain"

// EnvironmentalScorer scores site fit: hardiness zone, sun, soil, moisture
// and soil pH.
type EnvironmentalScorer struct {
	policy Policy
}

func NewEnvironmentalScorer(p Policy) *EnvironmentalScorer {
	return &EnvironmentalScorer{policy: p}
}

func (s *EnvironmentalScorer) Category() domain.Category { return domain.CategoryEnvironmental }

func (s *EnvironmentalScorer) Score(p *domain.Plant, c domain.Criteria, exp *Explanation) float64 {
	env := c.Environmental()
	var t tally

	if env.HardinessZone != "" && p.HardinessZone != "" {
		s.scoreZone(&t, exp, p.HardinessZone, env.HardinessZone)
	}

	scoreClass(&t, exp, s.policy, classRule{
		label:    "sun exposure",
		classes:  sunClasses,
		mismatch: s.policy.Credits.SunMismatch,
	}, env.SunExposure, p.SunRequirement)

	scoreClass(&t, exp, s.policy, classRule{
		label:    "soil",
		classes:  soilClasses,
		mismatch: s.policy.Credits.SoilMismatch,
	}, env.SoilType, p.SoilType)

	scoreClass(&t, exp, s.policy, classRule{
		label:    "moisture",
		classes:  moistureClasses,
		mismatch: s.policy.Credits.MoistureMismatch,
	}, env.MoistureLevel, p.WaterNeed)

	if env.SoilPH != nil {
		if ok, known := PHCompatible(*env.SoilPH, p.SoilPHMin, p.SoilPHMax); known {
			if ok {
				t.add(1.0)
				exp.reason("Tolerates soil pH %s", formatNumber(*env.SoilPH))
			} else {
				t.add(s.policy.Credits.PHMiss)
				r, _ := NewRange(p.SoilPHMin, p.SoilPHMax)
				exp.warn("Soil pH %s is outside the tolerated %s", formatNumber(*env.SoilPH), r)
			}
		}
	}

	return t.result(s.policy.NeutralScore(domain.CategoryEnvironmental))
}

func (s *EnvironmentalScorer) scoreZone(t *tally, exp *Explanation, plantZone, desiredZone string) {
	have, okHave := ParseZone(plantZone)
	want, okWant := ParseZone(desiredZone)
	if !okHave || !okWant {
		t.add(s.policy.FailOpenCredit(FailOpenUnparsableZone))
		return
	}
	switch compareRanges(have, want, s.policy.RangeTolerance) {
	case rangeOverlap:
		t.add(1.0)
		exp.reason("Hardy in zones %s", plantZone)
	case rangeNearMiss:
		t.add(s.policy.Credits.RangeNearMiss)
	default:
		t.add(s.policy.Credits.RangeMiss)
		exp.warn("Hardiness zones %s miss the target zones %s by %s", have, want, formatNumber(have.Gap(want)))
	}
}
