// Package estimate reconstructs the agent's own additive utility function
// from an ordinal bid ranking when exact preferences are not available.
package estimate

import (
	"fmt"

	"k8s.io/klog/v2"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
	"negotiator/pkg/ranking"
)

// Mode identifies which estimation path produced a model.
type Mode int

const (
	// ModeEmpty means no ranked bids were available; the model is flat.
	ModeEmpty Mode = iota
	// ModeSparse means the ranking was shorter than the largest issue and
	// rank points were accumulated per value.
	ModeSparse
	// ModeDense means consecutive ranked bids were replayed through the
	// frequency learner.
	ModeDense
)

func (m Mode) String() string {
	switch m {
	case ModeEmpty:
		return "empty"
	case ModeSparse:
		return "sparse"
	case ModeDense:
		return "dense"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// FromRanking estimates an additive utility function over d from r.
// Value scores start at 0, so values absent from the ranking score 0.
func FromRanking(d *domain.Domain, r *ranking.Ranking, params preference.Params) (*preference.Model, Mode, error) {
	params.InitialScore = 0
	m, err := preference.NewModel(d, params)
	if err != nil {
		return nil, ModeEmpty, fmt.Errorf("create estimated model: %w", err)
	}

	mode := ModeEmpty
	switch {
	case r == nil || r.Len() == 0:
	case r.Len() < d.MaxValueCount():
		mode = ModeSparse
		estimateSparse(m, r)
	default:
		mode = ModeDense
		estimateDense(m, r)
	}

	n := 0
	if r != nil {
		n = r.Len()
	}
	klog.V(2).InfoS("Estimated own preferences from bid ranking",
		"mode", mode,
		"rankedBids", n,
		"weights", m.Weights())
	return m, mode, nil
}

// estimateSparse gives every value of the bid at rank i (worst = 0) i
// points, then scales each issue into [0, 1].
func estimateSparse(m *preference.Model, r *ranking.Ranking) {
	n := m.Domain().NumIssues()
	for rank := 0; rank < r.Len(); rank++ {
		b := r.At(rank)
		for i := 0; i < n; i++ {
			m.AddScore(i, b.Value(i), float64(rank))
		}
	}
	m.NormalizeScores()
	m.NormalizeWeights()
}

// estimateDense walks the ranking from the best bid down, treating each
// ranked bid as following the one ranked just above it.
func estimateDense(m *preference.Model, r *ranking.Ranking) {
	bids := r.Bids()
	k := m.WindowSize()
	for i := len(bids) - 2; i >= 0; i-- {
		m.Observe(bids[i+1], bids[i], window(bids, i, k), 1)
	}
}

// window returns up to k bids starting at rank base and moving towards the
// best bid. It is empty when the ranking holds no more than k bids.
func window(bids []domain.Bid, base, k int) []domain.Bid {
	if len(bids) < k+1 {
		return nil
	}
	end := base + k
	if end > len(bids) {
		end = len(bids)
	}
	return bids[base:end]
}
