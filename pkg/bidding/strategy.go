package bidding

import (
	"fmt"

	"k8s.io/klog/v2"

	"negotiator/pkg/concession"
	"negotiator/pkg/domain"
	"negotiator/pkg/outcome"
	"negotiator/pkg/preference"
	"negotiator/pkg/ranking"
)

// Offering defaults.
const (
	// DefaultRangeWidth is the initial width of the candidate utility band.
	DefaultRangeWidth = 0.01
	// DefaultGoalStep is how much the goal rises when a selected bid ranks
	// below it.
	DefaultGoalStep = 0.01
	// maxUpperBound stops widening the candidate band.
	maxUpperBound = 1.01
	// maxRefinements bounds the percentile correction loop.
	maxRefinements = 1000
)

// Offer is the outcome of one offering turn.
type Offer struct {
	Bid domain.Bid
	// Target is the concession curve's utility at the time of the offer.
	Target float64
	// Goal is the target after percentile refinement.
	Goal    float64
	Retries int
	// Fallback is set when no bid fell in the candidate band and the best
	// bid of the domain was offered instead.
	Fallback bool
	// Random is set when the selector fell back to a random candidate.
	Random bool
}

// Strategy produces offers along a concession curve.
type Strategy struct {
	Curve    concession.Curve
	Space    *outcome.Space
	Selector *Selector

	// Ranking, when set, is the partial ordering the agent's own preferences
	// were estimated from. Offers ranking below the goal are corrected.
	Ranking  *ranking.Ranking
	GoalStep float64
}

// NewStrategy returns a strategy over space with the default curve shape.
func NewStrategy(space *outcome.Space, selector *Selector, r *ranking.Ranking) (*Strategy, error) {
	if space == nil || space.Len() == 0 {
		return nil, fmt.Errorf("outcome space is empty")
	}
	if selector == nil {
		return nil, fmt.Errorf("selector is required")
	}
	return &Strategy{
		Curve:    concession.NewCurve(space.Min(), space.Max()),
		Space:    space,
		Selector: selector,
		Ranking:  r,
		GoalStep: DefaultGoalStep,
	}, nil
}

// Candidates returns the bids whose self-utility lies in a band just above
// goal. The band widens until it holds a bid; fallback is true when even the
// widest band was empty and the domain's best bid is returned.
func (s *Strategy) Candidates(goal float64) (bids []domain.Bid, fallback bool) {
	for hi := goal + DefaultRangeWidth; hi <= maxUpperBound; hi += DefaultRangeWidth {
		if bids = s.Space.BidsInRange(goal, hi); len(bids) > 0 {
			return bids, false
		}
	}
	return []domain.Bid{s.Space.MaxBid().Bid}, true
}

// Next selects the offer for normalized time t. model estimates the
// opponent's utility; last is the opponent's latest bid. With a nil model the
// bid nearest to the goal is offered.
func (s *Strategy) Next(t float64, model preference.Evaluator, last domain.Bid, hasLast bool) (Offer, error) {
	target := s.Curve.TargetUtility(t)
	offer := Offer{Target: target, Goal: target}

	for {
		if model == nil {
			offer.Bid = s.Space.NearUtility(offer.Goal).Bid
		} else {
			candidates, fallback := s.Candidates(offer.Goal)
			sel, err := s.Selector.Select(candidates, model, last, hasLast)
			if err != nil {
				return Offer{}, fmt.Errorf("select bid for goal %f: %w", offer.Goal, err)
			}
			offer.Bid, offer.Fallback, offer.Random = sel.Bid, fallback, sel.Random
		}

		if s.ranksWell(offer.Bid, offer.Goal) || offer.Goal >= 1 || offer.Retries >= maxRefinements {
			break
		}
		offer.Goal = s.raise(offer.Goal)
		offer.Retries++
	}

	klog.V(4).InfoS("Selected offer",
		"time", t,
		"target", target,
		"goal", offer.Goal,
		"retries", offer.Retries,
		"fallback", offer.Fallback,
		"bid", offer.Bid)
	return offer, nil
}

// ranksWell reports whether b is acceptable under the ranking for goal.
// Without a ranking, or for bids the ranking does not contain, every bid is.
func (s *Strategy) ranksWell(b domain.Bid, goal float64) bool {
	if s.Ranking == nil {
		return true
	}
	p, ok := s.Ranking.Percentile(b)
	return !ok || p >= goal
}

func (s *Strategy) raise(goal float64) float64 {
	step := s.GoalStep
	if step <= 0 {
		step = DefaultGoalStep
	}
	if goal > 1-step {
		return 1
	}
	return goal + step
}
