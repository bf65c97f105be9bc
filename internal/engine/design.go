package engine

import (
	"strings"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

// DesignScorer scores size, color, bloom season and plant type.
type DesignScorer struct {
	policy Policy
}

func NewDesignScorer(p Policy) *DesignScorer {
	return &DesignScorer{policy: p}
}

func (s *DesignScorer) Category() domain.Category { return domain.CategoryDesign }

func (s *DesignScorer) Score(p *domain.Plant, c domain.Criteria, exp *Explanation) float64 {
	d := c.Design()
	var t tally

	scoreRange(&t, exp, s.policy, "Height", p.HeightMin, p.HeightMax, d.DesiredHeightMin, d.DesiredHeightMax)
	scoreRange(&t, exp, s.policy, "Width", p.WidthMin, p.WidthMax, d.DesiredWidthMin, d.DesiredWidthMax)

	if len(d.PreferredColors) > 0 && (p.BloomColor != "" || p.FoliageColor != "") {
		if color, ok := MatchColor(d.PreferredColors, p.BloomColor, p.FoliageColor); ok {
			t.add(1.0)
			exp.reason("Has %s coloring", strings.ToLower(color))
		} else {
			t.add(s.policy.Credits.ColorMiss)
		}
	}

	if d.BloomSeason != "" && p.BloomSeason != "" {
		s.scoreSeason(&t, exp, d.BloomSeason, p.BloomSeason)
	}

	if len(d.PlantTypes) > 0 && p.Category != "" {
		have := normalizePlantType(p.Category)
		matched := false
		for _, want := range d.PlantTypes {
			if normalizePlantType(want) == have {
				matched = true
				break
			}
		}
		if matched {
			t.add(1.0)
			exp.reason("Is a %s", have)
		} else {
			t.add(s.policy.Credits.PlantTypeMismatch)
		}
	}

	return t.result(s.policy.NeutralScore(domain.CategoryDesign))
}

func (s *DesignScorer) scoreSeason(t *tally, exp *Explanation, desired, actual string) {
	want, ok := seasonClasses.canonical(desired)
	have := seasonSet(actual)
	if !ok || len(have) == 0 {
		t.add(s.policy.FailOpenCredit(FailOpenUnknownClass))
		return
	}
	if have[want] || have["year_round"] {
		t.add(1.0)
		exp.reason("Blooms in %s", want)
		return
	}
	t.add(s.policy.Credits.BloomSeasonMismatch)
}
