// Package engine implements the deterministic multi-criteria plant scorer:
// five category scorers, a policy table for partial and fail-open credits,
// and a weighted aggregator that ranks a catalog.
package engine

import (
	"sort"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

// Options controls ranking output.
type Options struct {
	// MaxResults truncates the ranked list. Zero or negative keeps everything.
	MaxResults int
	// MinScore drops candidates whose total score is below it.
	MinScore float64
}

// Engine scores plants against criteria. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	policy  Policy
	scorers []Scorer
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces the default scoring policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithScorers replaces the default category scorers.
func WithScorers(scorers ...Scorer) Option {
	return func(e *Engine) { e.scorers = scorers }
}

// New creates an Engine with the five standard category scorers.
func New(opts ...Option) *Engine {
	e := &Engine{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(e)
	}
	if e.scorers == nil {
		e.scorers = []Scorer{
			NewEnvironmentalScorer(e.policy),
			NewDesignScorer(e.policy),
			NewMaintenanceScorer(e.policy),
			NewSpecialScorer(e.policy),
			NewContextScorer(e.policy),
		}
	}
	return e
}

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate scores a single plant.
func (e *Engine) Evaluate(p *domain.Plant, c domain.Criteria) domain.ScoredCandidate {
	exp := &Explanation{}
	scores := make(map[domain.Category]float64, len(e.scorers))
	var total float64
	for _, s := range e.scorers {
		v := clamp01(s.Score(p, c, exp))
		scores[s.Category()] = v
		total += v * c.Weight(s.Category())
	}
	return domain.ScoredCandidate{
		Plant:          p,
		TotalScore:     clamp01(total),
		CategoryScores: scores,
		MatchReasons:   nonNil(exp.Reasons),
		Warnings:       nonNil(exp.Warnings),
	}
}

// Rank scores every plant, drops those below opts.MinScore and returns the
// rest ordered by total score descending. Equal scores keep catalog order.
func (e *Engine) Rank(plants []*domain.Plant, c domain.Criteria, opts Options) []domain.ScoredCandidate {
	minScore := clamp01(opts.MinScore)
	out := make([]domain.ScoredCandidate, 0, len(plants))
	for _, p := range plants {
		if p == nil {
			continue
		}
		sc := e.Evaluate(p, c)
		if sc.TotalScore < minScore {
			continue
		}
		out = append(out, sc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalScore > out[j].TotalScore
	})

	if opts.MaxResults > 0 && len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
