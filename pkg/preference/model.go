// Package preference implements the frequency-based learner of additive
// utility functions shared by the opponent model and the self-preference
// estimator.
//
// The model keeps one weight per issue and one raw, un-normalized score per
// issue value:
//
//	utility(bid) = Σ_i w_i · score_i(bid_i) / max_v score_i(v)
//
// Observing a pair of consecutive bids raises the weights of the issues
// whose value did not change and reinforces the values of the newer bid.
package preference

import (
	"fmt"

	"negotiator/pkg/domain"
)

// Evaluator computes the utility of a bid.
type Evaluator interface {
	Evaluate(b domain.Bid) float64
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(b domain.Bid) float64

// Evaluate calls f(b).
func (f EvaluatorFunc) Evaluate(b domain.Bid) float64 {
	return f(b)
}

// Default learning parameters.
const (
	DefaultLearnCoef          = 0.2
	DefaultLearnValueAddition = 1.0
)

// Params are the learning parameters of a Model, constant for a session.
type Params struct {
	// LearnCoef drives the weight increment; goldenValue = LearnCoef / #issues.
	LearnCoef float64

	// LearnValueAddition is added to a value's score each time it is observed.
	LearnValueAddition float64

	// InitialScore is the flat score every value starts with.
	InitialScore float64
}

// DefaultParams returns the parameters used for live opponent learning.
func DefaultParams() Params {
	return Params{
		LearnCoef:          DefaultLearnCoef,
		LearnValueAddition: DefaultLearnValueAddition,
		InitialScore:       1,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	if p.LearnCoef <= 0 {
		return fmt.Errorf("learnCoef must be > 0, got %f", p.LearnCoef)
	}
	if p.LearnValueAddition < 0 {
		return fmt.Errorf("learnValueAddition must be >= 0, got %f", p.LearnValueAddition)
	}
	if p.InitialScore < 0 {
		return fmt.Errorf("initialScore must be >= 0, got %f", p.InitialScore)
	}
	return nil
}

// Model is a learned additive utility function over a domain.
// A Model is owned by a single negotiation session and is not safe for
// concurrent use.
type Model struct {
	domain      *domain.Domain
	params      Params
	goldenValue float64

	weights []float64
	scores  []map[domain.Value]float64
}

// NewModel returns a model with flat weights and flat scores.
func NewModel(d *domain.Domain, p Params) (*Model, error) {
	if d == nil || d.NumIssues() == 0 {
		return nil, domain.ErrNoIssues
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid learning parameters: %w", err)
	}

	m := &Model{
		domain:      d,
		params:      p,
		goldenValue: p.LearnCoef / float64(d.NumIssues()),
		weights:     make([]float64, d.NumIssues()),
		scores:      make([]map[domain.Value]float64, d.NumIssues()),
	}
	m.Reset()
	return m, nil
}

// Reset restores flat weights and flat scores.
func (m *Model) Reset() {
	n := m.domain.NumIssues()
	for i := 0; i < n; i++ {
		m.weights[i] = 1 / float64(n)
		issue := m.domain.Issue(i)
		m.scores[i] = make(map[domain.Value]float64, len(issue.Values))
		for _, v := range issue.Values {
			m.scores[i][v] = m.params.InitialScore
		}
	}
}

// Domain returns the domain the model is defined over.
func (m *Model) Domain() *domain.Domain {
	return m.domain
}

// Params returns the learning parameters.
func (m *Model) Params() Params {
	return m.params
}

// GoldenValue returns the base per-issue increment, learnCoef / #issues.
func (m *Model) GoldenValue() float64 {
	return m.goldenValue
}

// WindowSize returns k, the number of recent bids inspected for value
// diversity: the largest candidate-value count of any issue.
func (m *Model) WindowSize() int {
	return m.domain.MaxValueCount()
}

// Evaluate returns the additive utility of b. Values never observed score 0.
func (m *Model) Evaluate(b domain.Bid) float64 {
	n := m.domain.NumIssues()
	if b.Len() < n {
		n = b.Len()
	}
	utility := 0.0
	for i := 0; i < n; i++ {
		utility += m.weights[i] * m.NormalizedScore(i, b.Value(i))
	}
	return utility
}

// Weight returns the weight of issue i.
func (m *Model) Weight(i int) float64 {
	return m.weights[i]
}

// Weights returns a copy of the weight vector.
func (m *Model) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

// Score returns the raw score of value v of issue i.
func (m *Model) Score(i int, v domain.Value) float64 {
	return m.scores[i][v]
}

// NormalizedScore returns the score of v divided by the largest score of
// issue i, or 0 when the issue has no positive score.
func (m *Model) NormalizedScore(i int, v domain.Value) float64 {
	max := m.maxScore(i)
	if max <= 0 {
		return 0
	}
	return m.scores[i][v] / max
}

func (m *Model) maxScore(i int) float64 {
	max := 0.0
	for _, s := range m.scores[i] {
		if s > max {
			max = s
		}
	}
	return max
}

// AddScore adds delta to the raw score of value v of issue i.
func (m *Model) AddScore(i int, v domain.Value, delta float64) {
	m.scores[i][v] += delta
}

// NormalizeScores rescales the scores of each issue into [0, 1]: first
// relative to the largest score, then min-max so the lowest value scores 0.
func (m *Model) NormalizeScores() {
	for i := range m.scores {
		max := m.maxScore(i)
		if max <= 0 {
			continue
		}
		lo, hi := 1.0, 0.0
		for v, s := range m.scores[i] {
			s /= max
			m.scores[i][v] = s
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		if hi-lo <= 0 {
			continue
		}
		for v, s := range m.scores[i] {
			m.scores[i][v] = (s - lo) / (hi - lo)
		}
	}
}

// NormalizeWeights rescales the weights to sum to 1.
func (m *Model) NormalizeWeights() {
	sum := 0.0
	for _, w := range m.weights {
		sum += w
	}
	if sum <= 0 {
		for i := range m.weights {
			m.weights[i] = 1 / float64(len(m.weights))
		}
		return
	}
	for i := range m.weights {
		m.weights[i] /= sum
	}
}

// Snapshot is a read-only copy of the learned state keyed by issue and
// value names, for inspection and logging.
type Snapshot struct {
	Weights map[string]float64
	Scores  map[string]map[string]float64
}

// Snapshot copies the current weights and raw scores.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Weights: make(map[string]float64, len(m.weights)),
		Scores:  make(map[string]map[string]float64, len(m.scores)),
	}
	for i, w := range m.weights {
		name := m.domain.Issue(i).Name
		s.Weights[name] = w
		values := make(map[string]float64, len(m.scores[i]))
		for v, score := range m.scores[i] {
			values[string(v)] = score
		}
		s.Scores[name] = values
	}
	return s
}
