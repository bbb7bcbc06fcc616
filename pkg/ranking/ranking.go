// Package ranking holds the agent's ordinal preference information: a list
// of bids ordered from least to most preferred.
package ranking

import (
	"fmt"

	"negotiator/pkg/domain"
)

// Ranking is an immutable ordered list of distinct bids, worst first.
type Ranking struct {
	bids  []domain.Bid
	index map[string]int
}

// New validates bids against d and builds a ranking. The order of bids is
// taken as worst to best.
func New(d *domain.Domain, bids []domain.Bid) (*Ranking, error) {
	r := &Ranking{
		bids:  make([]domain.Bid, len(bids)),
		index: make(map[string]int, len(bids)),
	}
	for i, b := range bids {
		if err := d.Validate(b); err != nil {
			return nil, fmt.Errorf("ranked bid %d: %w", i, err)
		}
		if prev, dup := r.index[b.Key()]; dup {
			return nil, fmt.Errorf("bid %v ranked twice (positions %d and %d)", b, prev, i)
		}
		r.bids[i] = b
		r.index[b.Key()] = i
	}
	return r, nil
}

// Len returns the number of ranked bids.
func (r *Ranking) Len() int {
	return len(r.bids)
}

// At returns the bid at rank i, 0 being the worst.
func (r *Ranking) At(i int) domain.Bid {
	return r.bids[i]
}

// Bids returns a copy of the ranked bids, worst first.
func (r *Ranking) Bids() []domain.Bid {
	out := make([]domain.Bid, len(r.bids))
	copy(out, r.bids)
	return out
}

// IndexOf returns the rank index of b.
func (r *Ranking) IndexOf(b domain.Bid) (int, bool) {
	i, ok := r.index[b.Key()]
	return i, ok
}

// Percentile returns index/len for a ranked bid: 0 for the worst bid,
// approaching 1 for the best.
func (r *Ranking) Percentile(b domain.Bid) (float64, bool) {
	i, ok := r.index[b.Key()]
	if !ok {
		return 0, false
	}
	return float64(i) / float64(len(r.bids)), true
}

// Best returns the most preferred bid.
func (r *Ranking) Best() (domain.Bid, bool) {
	if len(r.bids) == 0 {
		return domain.Bid{}, false
	}
	return r.bids[len(r.bids)-1], true
}

// Worst returns the least preferred bid.
func (r *Ranking) Worst() (domain.Bid, bool) {
	if len(r.bids) == 0 {
		return domain.Bid{}, false
	}
	return r.bids[0], true
}
