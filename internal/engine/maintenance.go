package engine

import "github.com/cloo-solutions/plantrec/internal/domain"

// MaintenanceScorer scores upkeep level and pest/disease resistance.
type MaintenanceScorer struct {
	policy Policy
}

func NewMaintenanceScorer(p Policy) *MaintenanceScorer {
	return &MaintenanceScorer{policy: p}
}

func (s *MaintenanceScorer) Category() domain.Category { return domain.CategoryMaintenance }

func (s *MaintenanceScorer) Score(p *domain.Plant, c domain.Criteria, exp *Explanation) float64 {
	m := c.Maintenance()
	var t tally

	scoreClass(&t, exp, s.policy, classRule{
		label:    "maintenance",
		classes:  maintenanceClasses,
		mismatch: s.policy.Credits.MaintenanceMismatch,
	}, m.MaintenanceLevel, p.MaintenanceLevel)

	if m.PestResistanceRequired {
		scoreRating(&t, exp, s.policy, "Pest resistance", p.PestResistance, domain.RatingHigh)
	}
	if m.DiseaseResistanceRequired {
		scoreRating(&t, exp, s.policy, "Disease resistance", p.DiseaseResistance, domain.RatingHigh)
	}

	return t.result(s.policy.NeutralScore(domain.CategoryMaintenance))
}
