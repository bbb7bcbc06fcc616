// Package bidding chooses the bid the agent offers each turn.
package bidding

import (
	"errors"
	"math/rand"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// ErrNoCandidates is returned when there is nothing to select from.
var ErrNoCandidates = errors.New("no candidate bids")

// Selector defaults.
const (
	DefaultHammingWeight = 2.0
	DefaultEpsilon       = 0.0001
)

// Selector picks, among bids of roughly equal self-utility, the one the
// opponent is most likely to accept.
//
// Each candidate b is scored as
//
//	(w · similarity(b, o) + opponentScore(b)) / (w + 1)
//
// where o is the last opponent bid and similarity is the fraction of issues
// on which b and o agree.
type Selector struct {
	HammingWeight float64
	Epsilon       float64

	rng *rand.Rand
}

// NewSelector returns a selector with the default weights. Random fallback
// choices draw from rng; a nil rng seeds one from seed.
func NewSelector(rng *rand.Rand, seed int64) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}
	return &Selector{
		HammingWeight: DefaultHammingWeight,
		Epsilon:       DefaultEpsilon,
		rng:           rng,
	}
}

// Selection describes how a bid was chosen.
type Selection struct {
	Bid   domain.Bid
	Score float64
	// Random is set when the opponent model was degenerate and the bid was
	// drawn uniformly from the candidates.
	Random bool
}

// Select picks a candidate. model may be nil, in which case the first
// candidate wins. hasLast reports whether last is an actual opponent bid.
func (s *Selector) Select(candidates []domain.Bid, model preference.Evaluator, last domain.Bid, hasLast bool) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, ErrNoCandidates
	}
	if len(candidates) == 1 || model == nil {
		return Selection{Bid: candidates[0]}, nil
	}

	opponentScores := make([]float64, len(candidates))
	degenerate := true
	for i, b := range candidates {
		opponentScores[i] = model.Evaluate(b)
		if opponentScores[i] > s.Epsilon {
			degenerate = false
		}
	}
	if degenerate {
		return Selection{Bid: candidates[s.rng.Intn(len(candidates))], Random: true}, nil
	}

	best := Selection{Bid: candidates[0], Score: -1}
	for i, b := range candidates {
		score := opponentScores[i]
		if hasLast {
			sim := domain.Similarity(b, last, b.Len())
			score = (s.HammingWeight*sim + opponentScores[i]) / (s.HammingWeight + 1)
		}
		if score > best.Score {
			best = Selection{Bid: b, Score: score}
		}
	}
	return best, nil
}
