package engine

import "github.com/cloo-solutions/plantrec/internal/domain"

// SpecialScorer scores boolean requirements, native preference and
// wildlife value.
type SpecialScorer struct {
	policy Policy
}

func NewSpecialScorer(p Policy) *SpecialScorer {
	return &SpecialScorer{policy: p}
}

func (s *SpecialScorer) Category() domain.Category { return domain.CategorySpecial }

func (s *SpecialScorer) Score(p *domain.Plant, c domain.Criteria, exp *Explanation) float64 {
	sp := c.Special()
	miss := s.policy.Credits.RequirementMiss
	var t tally

	scoreFlag(&t, exp, sp.NativePreference, p.Native, s.policy.Credits.PreferenceMiss,
		"Native species", "Not a native species")
	scoreFlag(&t, exp, sp.DeerResistantRequired, p.DeerResistant, miss,
		"Deer resistant", "Not deer resistant")
	scoreFlag(&t, exp, sp.PollinatorFriendlyRequired, p.PollinatorFriendly, miss,
		"Attracts pollinators", "Not pollinator friendly")
	scoreFlag(&t, exp, sp.ContainerSuitable, p.SuitableForContainers, miss,
		"Suitable for containers", "Not suitable for containers")
	scoreFlag(&t, exp, sp.HedgingSuitable, p.SuitableForHedging, miss,
		"Suitable for hedging", "Not suitable for hedging")
	scoreFlag(&t, exp, sp.ScreeningSuitable, p.SuitableForScreening, miss,
		"Suitable for screening", "Not suitable for screening")
	scoreFlag(&t, exp, sp.GroundcoverSuitable, p.SuitableForGroundcover, miss,
		"Works as groundcover", "Not suitable as groundcover")
	scoreFlag(&t, exp, sp.SlopeSuitable, p.SuitableForSlopes, miss,
		"Suitable for slopes", "Not suitable for slopes")

	if sp.WildlifeValue != "" {
		scoreRating(&t, exp, s.policy, "Wildlife value", p.WildlifeValue, sp.WildlifeValue)
	}

	return t.result(s.policy.NeutralScore(domain.CategorySpecial))
}
