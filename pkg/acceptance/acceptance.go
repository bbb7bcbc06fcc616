// Package acceptance decides whether to accept the opponent's latest offer.
package acceptance

import (
	"fmt"
	"math"

	"negotiator/pkg/domain"
	"negotiator/pkg/ranking"
)

// Action is the response to an opponent offer.
type Action int

const (
	Reject Action = iota
	Accept
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	default:
		return "reject"
	}
}

// Defaults for Strategy.
const (
	DefaultThreshold = 0.8
	DefaultExponent  = 0.5
)

// Strategy accepts an offer once its utility clears a threshold that falls
// with the time left:
//
//	threshold = min(a, timeLeft^exponent + offset)
type Strategy struct {
	Threshold float64 // a
	Exponent  float64
	Offset    float64
}

// NewStrategy returns the default square-root acceptance rule.
func NewStrategy() Strategy {
	return Strategy{Threshold: DefaultThreshold, Exponent: DefaultExponent}
}

// Validate checks the strategy parameters.
func (s Strategy) Validate() error {
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("acceptance threshold must be in [0, 1], got %f", s.Threshold)
	}
	if s.Exponent <= 0 {
		return fmt.Errorf("acceptance exponent must be > 0, got %f", s.Exponent)
	}
	return nil
}

// ThresholdAt returns the acceptance threshold at normalized time t.
func (s Strategy) ThresholdAt(t float64) float64 {
	timeLeft := math.Max(0, math.Min(1, 1-t))
	return math.Min(s.Threshold, math.Pow(timeLeft, s.Exponent)+s.Offset)
}

// Input is what a single decision looks at.
type Input struct {
	Time float64
	// Offer is the opponent's latest bid; HasOffer is false before the
	// opponent has bid.
	Offer    domain.Bid
	HasOffer bool
	// Utility is the agent's own utility for Offer.
	Utility float64
	// Ranking is set when the agent's preferences are only partially known.
	Ranking *ranking.Ranking
}

// Decision is the result of Decide along with what it was based on.
type Decision struct {
	Action     Action
	Threshold  float64
	Percentile float64
	Ranked     bool
}

// Decide accepts the offer iff its utility reaches the threshold and, when
// the ranking contains the offer, its percentile does too.
func (s Strategy) Decide(in Input) Decision {
	if !in.HasOffer {
		return Decision{Action: Reject}
	}
	d := Decision{Action: Reject, Threshold: s.ThresholdAt(in.Time)}
	if in.Ranking != nil {
		d.Percentile, d.Ranked = in.Ranking.Percentile(in.Offer)
	}
	if in.Utility < d.Threshold {
		return d
	}
	if d.Ranked && d.Percentile < d.Threshold {
		return d
	}
	d.Action = Accept
	return d
}
