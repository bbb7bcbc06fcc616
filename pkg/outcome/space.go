// Package outcome provides the enumerated outcome space of a domain sorted
// by the agent's own utility.
package outcome

import (
	"sort"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// BidDetails pairs a bid with the agent's utility for it.
type BidDetails struct {
	Bid     domain.Bid
	Utility float64
}

// Space is every bid of a domain, sorted by descending self-utility.
type Space struct {
	bids []BidDetails
}

// NewSpace enumerates d and evaluates each bid with u.
func NewSpace(d *domain.Domain, u preference.Evaluator) *Space {
	all := d.AllBids()
	bids := make([]BidDetails, len(all))
	for i, b := range all {
		bids[i] = BidDetails{Bid: b, Utility: u.Evaluate(b)}
	}
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Utility > bids[j].Utility
	})
	return &Space{bids: bids}
}

// Len returns the number of outcomes.
func (s *Space) Len() int {
	return len(s.bids)
}

// MaxBid returns the outcome with the highest self-utility.
func (s *Space) MaxBid() BidDetails {
	return s.bids[0]
}

// MinBid returns the outcome with the lowest self-utility.
func (s *Space) MinBid() BidDetails {
	return s.bids[len(s.bids)-1]
}

// Max returns the highest reachable self-utility.
func (s *Space) Max() float64 {
	return s.bids[0].Utility
}

// Min returns the lowest reachable self-utility.
func (s *Space) Min() float64 {
	return s.bids[len(s.bids)-1].Utility
}

// BidsInRange returns the bids whose utility lies in [lo, hi], best first.
func (s *Space) BidsInRange(lo, hi float64) []domain.Bid {
	// bids are sorted descending: skip everything above hi.
	start := sort.Search(len(s.bids), func(i int) bool { return s.bids[i].Utility <= hi })
	var out []domain.Bid
	for i := start; i < len(s.bids) && s.bids[i].Utility >= lo; i++ {
		out = append(out, s.bids[i].Bid)
	}
	return out
}

// NearUtility returns the bid whose utility is closest to u; ties go to the
// better bid.
func (s *Space) NearUtility(u float64) BidDetails {
	best := s.bids[0]
	bestDist := abs(best.Utility - u)
	for _, b := range s.bids[1:] {
		if d := abs(b.Utility - u); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best
}

// Utility returns the self-utility of b as recorded in the space.
func (s *Space) Utility(b domain.Bid) (float64, bool) {
	for _, bd := range s.bids {
		if bd.Bid.Equal(b) {
			return bd.Utility, true
		}
	}
	return 0, false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
