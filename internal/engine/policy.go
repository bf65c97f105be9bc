package engine

import "github.com/cloo-solutions/plantrec/internal/domain"

// FailOpenCase names a kind of malformed or unrecognized input that is
// resolved by a fixed credit instead of an error.
type FailOpenCase string

const (
	FailOpenUnknownBudgetBand FailOpenCase = "unknown_budget_band"
	FailOpenUnparsableZone    FailOpenCase = "unparsable_hardiness_zone"
	FailOpenUnknownClass      FailOpenCase = "unknown_categorical_class"
	FailOpenUnknownProject    FailOpenCase = "unknown_project_type"
	FailOpenUnknownEcosystem  FailOpenCase = "unknown_ecosystem"
)

// Credits are the partial scores awarded when a sub-criterion is not fully met.
type Credits struct {
	SunMismatch         float64
	SoilMismatch        float64
	MoistureMismatch    float64
	MaintenanceMismatch float64
	BloomSeasonMismatch float64
	PlantTypeMismatch   float64
	RangeNearMiss       float64
	RangeMiss           float64
	PHMiss              float64
	PreferenceMiss      float64
	RequirementMiss     float64
	RatingPartial       float64
	RatingMiss          float64
	ColorMiss           float64
	BudgetMiss          float64
	ProjectTypeMiss     float64
	EcosystemMiss       float64
}

// Policy holds every tunable constant of the scoring heuristic.
type Policy struct {
	Credits Credits

	// RangeTolerance is the maximum midpoint distance, in the range's own
	// unit, that still counts as a near miss.
	RangeTolerance float64

	// Neutral is the score of a category when no sub-criterion applied.
	Neutral map[domain.Category]float64

	// FailOpen maps each malformed-input case to the credit it receives.
	FailOpen map[FailOpenCase]float64

	// SummaryLimit caps how many candidates are kept in a request log.
	SummaryLimit int
}

// DefaultPolicy returns the standard scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		Credits: Credits{
			SunMismatch:         0.3,
			SoilMismatch:        0.4,
			MoistureMismatch:    0.4,
			MaintenanceMismatch: 0.4,
			BloomSeasonMismatch: 0.3,
			PlantTypeMismatch:   0.3,
			RangeNearMiss:       0.7,
			RangeMiss:           0.3,
			PHMiss:              0.3,
			PreferenceMiss:      0.3,
			RequirementMiss:     0.1,
			RatingPartial:       0.6,
			RatingMiss:          0.2,
			ColorMiss:           0.3,
			BudgetMiss:          0.3,
			ProjectTypeMiss:     0.4,
			EcosystemMiss:       0.4,
		},
		RangeTolerance: 1.0,
		Neutral: map[domain.Category]float64{
			domain.CategoryEnvironmental: 0.5,
			domain.CategoryDesign:        0.5,
			domain.CategoryMaintenance:   0.5,
			domain.CategorySpecial:       1.0,
			domain.CategoryContext:       1.0,
		},
		FailOpen: map[FailOpenCase]float64{
			FailOpenUnknownBudgetBand: 1.0,
			FailOpenUnparsableZone:    1.0,
			FailOpenUnknownClass:      1.0,
			FailOpenUnknownProject:    1.0,
			FailOpenUnknownEcosystem:  1.0,
		},
		SummaryLimit: 10,
	}
}

// FailOpenCredit returns the credit for a malformed-input case. Cases
// missing from the table are treated as fully compatible.
func (p Policy) FailOpenCredit(c FailOpenCase) float64 {
	v, ok := p.FailOpen[c]
	if !ok {
		return 1.0
	}
	return clamp01(v)
}

// NeutralScore returns the no-opinion score for a category.
func (p Policy) NeutralScore(c domain.Category) float64 {
	v, ok := p.Neutral[c]
	if !ok {
		return 0.5
	}
	return clamp01(v)
}
