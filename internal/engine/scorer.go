package engine

import (
	"fmt"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

// Scorer computes one category score in [0,1] for a plant, appending any
// reasons and warnings to exp.
type Scorer interface {
	Category() domain.Category
	Score(p *domain.Plant, c domain.Criteria, exp *Explanation) float64
}

// Explanation accumulates human-readable reasons and warnings.
type Explanation struct {
	Reasons  []string
	Warnings []string
}

func (e *Explanation) reason(format string, args ...any) {
	e.Reasons = append(e.Reasons, fmt.Sprintf(format, args...))
}

func (e *Explanation) warn(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// tally averages the credits of the sub-criteria that applied.
type tally struct {
	sum     float64
	factors int
}

func (t *tally) add(credit float64) {
	t.sum += clamp01(credit)
	t.factors++
}

func (t tally) result(neutral float64) float64 {
	if t.factors == 0 {
		return neutral
	}
	return clamp01(t.sum / float64(t.factors))
}

// classRule describes how one categorical sub-criterion is scored.
type classRule struct {
	label    string
	classes  synonyms
	mismatch float64
}

// scoreClass applies a categorical rule. Nothing is counted when either
// side is empty; an unrecognized class fails open.
func scoreClass(t *tally, exp *Explanation, pol Policy, rule classRule, desired, actual string) {
	if desired == "" || actual == "" {
		return
	}
	switch matchClass(rule.classes, desired, actual) {
	case classMatched:
		t.add(1.0)
		exp.reason("Suits %s: %s", rule.label, actual)
	case classMismatched:
		t.add(rule.mismatch)
		exp.warn("Prefers %s %s, not %s", rule.label, actual, desired)
	default:
		t.add(pol.FailOpenCredit(FailOpenUnknownClass))
	}
}

// scoreRange applies a numeric range rule. Nothing is counted when either
// range is missing.
func scoreRange(t *tally, exp *Explanation, pol Policy, label string, haveMin, haveMax, wantMin, wantMax *float64) {
	have, ok := NewRange(haveMin, haveMax)
	if !ok {
		return
	}
	want, ok := NewRange(wantMin, wantMax)
	if !ok {
		return
	}
	switch compareRanges(have, want, pol.RangeTolerance) {
	case rangeOverlap:
		t.add(1.0)
		exp.reason("%s %s fits the desired %s", label, have, want)
	case rangeNearMiss:
		t.add(pol.Credits.RangeNearMiss)
	default:
		t.add(pol.Credits.RangeMiss)
		exp.warn("%s %s is outside the desired %s (off by %s)", label, have, want, formatNumber(have.Gap(want)))
	}
}

// scoreRating compares a plant rating against a minimum. A one-step
// shortfall earns partial credit.
func scoreRating(t *tally, exp *Explanation, pol Policy, label string, have, want domain.Rating) {
	if have.Rank() == 0 || want.Rank() == 0 {
		return
	}
	switch short := want.Rank() - have.Rank(); {
	case short <= 0:
		t.add(1.0)
		exp.reason("%s %s", label, have)
	case short == 1:
		t.add(pol.Credits.RatingPartial)
	default:
		t.add(pol.Credits.RatingMiss)
		exp.warn("%s is only %s", label, have)
	}
}

// scoreFlag scores a required boolean attribute.
func scoreFlag(t *tally, exp *Explanation, required, have bool, miss float64, matched, missing string) {
	if !required {
		return
	}
	if have {
		t.add(1.0)
		exp.reason("%s", matched)
		return
	}
	t.add(miss)
	exp.warn("%s", missing)
}
