package bargaining

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OpponentStrategy is a family of negotiation strategies a party's moves are
// matched against.
type OpponentStrategy int

const (
	Conceder OpponentStrategy = iota
	Hardheaded
	TitForTat
	RandomWalker
	numStrategies
)

var strategyNames = [numStrategies]string{"conceder", "hardheaded", "tft", "random"}

func (s OpponentStrategy) String() string {
	if s < 0 || s >= numStrategies {
		return "unknown"
	}
	return strategyNames[s]
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (OpponentStrategy, bool) {
	for i, n := range strategyNames {
		if n == name {
			return OpponentStrategy(i), true
		}
	}
	return 0, false
}

// StrategyProfiles gives, per strategy, the probability of observing each
// move type.
type StrategyProfiles map[OpponentStrategy]MoveDistribution

// LoadStrategyProfiles reads move distributions per strategy from a YAML
// file. Each strategy lists one distribution per training session; they are
// averaged.
//
//	conceder:
//	  - {silent: 0.1, nice: 0.1, concession: 0.8}
//	hardheaded:
//	  - {silent: 0.9, selfish: 0.1}
func LoadStrategyProfiles(path string) (StrategyProfiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy profiles: %w", err)
	}
	var raw map[string][]map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse strategy profiles %s: %w", path, err)
	}

	profiles := make(StrategyProfiles, len(raw))
	for name, sessions := range raw {
		s, ok := ParseStrategy(name)
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
		dists := make([]MoveDistribution, 0, len(sessions))
		for _, session := range sessions {
			var d MoveDistribution
			for moveName, p := range session {
				m, ok := ParseMove(moveName)
				if !ok {
					return nil, fmt.Errorf("strategy %q: unknown move %q", name, moveName)
				}
				if p < 0 || p > 1 {
					return nil, fmt.Errorf("strategy %q: probability of %s must be in [0, 1], got %f", name, moveName, p)
				}
				d[m] = p
			}
			dists = append(dists, d)
		}
		profiles[s] = AverageDistributions(dists)
	}
	return profiles, nil
}

// Recognizer tracks a belief over which strategy produced a move sequence.
// A party keeps its strategy for the whole session, so each observation only
// reweighs the belief by the move's likelihood under each strategy.
type Recognizer struct {
	observation [numStrategies]MoveDistribution
	belief      [numStrategies]float64
}

// NewRecognizer starts from a uniform belief. Strategies without a profile
// observe every move with equal probability.
func NewRecognizer(profiles StrategyProfiles) *Recognizer {
	r := &Recognizer{}
	for s := OpponentStrategy(0); s < numStrategies; s++ {
		r.belief[s] = 1 / float64(numStrategies)
		if d, ok := profiles[s]; ok {
			r.observation[s] = d
			continue
		}
		for m := range r.observation[s] {
			r.observation[s][m] = 1 / float64(numMoves)
		}
	}
	return r
}

// Observe updates the belief with one move. A move no strategy can produce
// leaves the belief unchanged.
func (r *Recognizer) Observe(m Move) {
	var next [numStrategies]float64
	sum := 0.0
	for s := range next {
		next[s] = r.belief[s] * r.observation[s][m]
		sum += next[s]
	}
	if sum == 0 {
		return
	}
	for s := range next {
		r.belief[s] = next[s] / sum
	}
}

// ObserveAll feeds a move sequence to the recognizer.
func (r *Recognizer) ObserveAll(moves []Move) {
	for _, m := range moves {
		r.Observe(m)
	}
}

// Belief returns the probability of strategy s.
func (r *Recognizer) Belief(s OpponentStrategy) float64 {
	return r.belief[s]
}

// MostLikely returns the strategy with the highest belief. Ties go to the
// first in declaration order.
func (r *Recognizer) MostLikely() (OpponentStrategy, float64) {
	best := OpponentStrategy(0)
	for s := OpponentStrategy(1); s < numStrategies; s++ {
		if r.belief[s] > r.belief[best] {
			best = s
		}
	}
	return best, r.belief[best]
}
