package engine

import "github.com/cloo-solutions/plantrec/internal/domain"

// fit is the outcome of a project-type or ecosystem predicate. applies is
// false when the plant lacks the attributes the predicate looks at.
type fit struct {
	applies bool
	ok      bool
}

func fits(ok bool) fit { return fit{applies: true, ok: ok} }

type plantPredicate func(p *domain.Plant) fit

func hasSun(class string) plantPredicate {
	return func(p *domain.Plant) fit {
		set := sunClasses.classes(p.SunRequirement)
		if len(set) == 0 {
			return fit{}
		}
		return fits(set[class])
	}
}

func hasWater(classes ...string) plantPredicate {
	return func(p *domain.Plant) fit {
		set := moistureClasses.classes(p.WaterNeed)
		if len(set) == 0 {
			return fit{}
		}
		for _, c := range classes {
			if set[c] {
				return fits(true)
			}
		}
		return fits(false)
	}
}

func allOf(preds ...plantPredicate) plantPredicate {
	return func(p *domain.Plant) fit {
		for _, pred := range preds {
			f := pred(p)
			if !f.applies {
				return fit{}
			}
			if !f.ok {
				return fits(false)
			}
		}
		return fits(true)
	}
}

var projectTypes = map[string]plantPredicate{
	"residential": func(*domain.Plant) fit { return fits(true) },
	"commercial": func(p *domain.Plant) fit {
		level, ok := maintenanceClasses.canonical(p.MaintenanceLevel)
		if !ok {
			return fit{}
		}
		return fits(level == "low")
	},
	"restoration":       func(p *domain.Plant) fit { return fits(p.Native) },
	"pollinator_garden": func(p *domain.Plant) fit { return fits(p.PollinatorFriendly) },
	"xeriscape":         hasWater("low"),
}

var ecosystems = map[string]plantPredicate{
	"woodland": func(p *domain.Plant) fit {
		set := sunClasses.classes(p.SunRequirement)
		if len(set) == 0 {
			return fit{}
		}
		return fits(set["partial_shade"] || set["full_shade"])
	},
	"prairie": hasSun("full_sun"),
	"meadow":  hasSun("full_sun"),
	"wetland": hasWater("high"),
	"urban": func(p *domain.Plant) fit {
		if p.PestResistance == "" && p.DiseaseResistance == "" {
			return fit{}
		}
		return fits(p.PestResistance == domain.RatingHigh || p.DiseaseResistance == domain.RatingHigh)
	},
	"coastal": allOf(hasSun("full_sun"), hasWater("low", "medium")),
}

func lookup(table map[string]plantPredicate, name string) (plantPredicate, bool) {
	key := normalizeToken(name)
	for k, pred := range table {
		if normalizeToken(k) == key {
			return pred, true
		}
	}
	return nil, false
}

// ContextScorer scores budget, project type and ecosystem fit.
type ContextScorer struct {
	policy Policy
}

func NewContextScorer(p Policy) *ContextScorer {
	return &ContextScorer{policy: p}
}

func (s *ContextScorer) Category() domain.Category { return domain.CategoryContext }

func (s *ContextScorer) Score(p *domain.Plant, c domain.Criteria, exp *Explanation) float64 {
	ctx := c.Context()
	var t tally

	if ctx.BudgetRange != "" && p.Price != nil {
		ok, known := BudgetCompatible(*p.Price, ctx.BudgetRange)
		switch {
		case !known:
			t.add(s.policy.FailOpenCredit(FailOpenUnknownBudgetBand))
		case ok:
			t.add(1.0)
			exp.reason("Within the %s budget", ctx.BudgetRange)
		default:
			t.add(s.policy.Credits.BudgetMiss)
			exp.warn("Price %s is outside the %s budget", formatNumber(*p.Price), ctx.BudgetRange)
		}
	}

	if ctx.ProjectType != "" {
		s.scoreTable(&t, exp, p, projectTypes, ctx.ProjectType, FailOpenUnknownProject,
			s.policy.Credits.ProjectTypeMiss, "project")
	}

	if ctx.Ecosystem != "" {
		s.scoreTable(&t, exp, p, ecosystems, ctx.Ecosystem, FailOpenUnknownEcosystem,
			s.policy.Credits.EcosystemMiss, "ecosystem")
	}

	return t.result(s.policy.NeutralScore(domain.CategoryContext))
}

func (s *ContextScorer) scoreTable(t *tally, exp *Explanation, p *domain.Plant, table map[string]plantPredicate, name string, unknown FailOpenCase, miss float64, label string) {
	pred, ok := lookup(table, name)
	if !ok {
		t.add(s.policy.FailOpenCredit(unknown))
		return
	}
	f := pred(p)
	if !f.applies {
		return
	}
	if f.ok {
		t.add(1.0)
		exp.reason("Fits a %s %s", normalizeToken(name), label)
		return
	}
	t.add(miss)
	exp.warn("Poor fit for a %s %s", normalizeToken(name), label)
}
