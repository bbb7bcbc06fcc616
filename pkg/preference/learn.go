package preference

import (
	"negotiator/pkg/domain"
)

// Observation records how one Observe call re-weighted the model.
type Observation struct {
	// Changed flags the issues whose value differs between the two bids.
	Changed []bool

	// Unchanged is the number of issues whose value stayed the same.
	Unchanged int

	// Discounts holds the diversity discount of each changed issue;
	// unchanged issues carry 0.
	Discounts []float64

	// Increment is goldenValue scaled by the time factor.
	Increment float64

	// TotalSum is the pre-normalization weight total, 1 + Increment·Unchanged.
	TotalSum float64

	// MaximumWeight is the ceiling below which an unchanged issue still grows.
	MaximumWeight float64
}

// Observe learns from a pair of consecutive bids.
//
// prev and cur are the older and newer bid of the pair. window holds the
// recent bids inspected for value diversity; an empty window gives every
// issue a zero discount. timeFactor scales the increment: 1 when learning
// from a ranking, 1 - t when learning live.
func (m *Model) Observe(prev, cur domain.Bid, window []domain.Bid, timeFactor float64) Observation {
	n := m.domain.NumIssues()
	obs := Observation{
		Changed:   make([]bool, n),
		Discounts: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		if prev.Value(i) == cur.Value(i) {
			obs.Unchanged++
			continue
		}
		obs.Changed[i] = true
		if len(window) > 0 {
			obs.Discounts[i] = 1 - float64(DistinctValues(window, i))/float64(n)
		}
	}

	obs.Increment = m.goldenValue * timeFactor
	obs.TotalSum = 1 + obs.Increment*float64(obs.Unchanged)
	obs.MaximumWeight = 1 - float64(n)*obs.Increment/obs.TotalSum

	for i := 0; i < n; i++ {
		w := m.weights[i]
		if !obs.Changed[i] && w < obs.MaximumWeight {
			m.weights[i] = (w + obs.Increment + obs.Increment*obs.Discounts[i]) / obs.TotalSum
		} else {
			m.weights[i] = w / obs.TotalSum
		}
	}
	// A capped unchanged issue leaves the raw total below 1.
	m.NormalizeWeights()

	for i := 0; i < n; i++ {
		m.scores[i][cur.Value(i)] += m.params.LearnValueAddition
	}
	return obs
}

// DistinctValues counts the distinct values issue i takes across window.
func DistinctValues(window []domain.Bid, i int) int {
	seen := make(map[domain.Value]struct{}, len(window))
	for _, b := range window {
		if i < b.Len() {
			seen[b.Value(i)] = struct{}{}
		}
	}
	return len(seen)
}
