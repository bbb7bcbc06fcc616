package preference

import (
	"fmt"

	"negotiator/pkg/domain"
)

// FromProfile builds a fixed additive utility function from a declared
// profile. Weights are renormalized to sum to 1; issues or values the
// profile omits score 0.
func FromProfile(d *domain.Domain, p domain.Profile) (*Model, error) {
	m, err := NewModel(d, Params{LearnCoef: DefaultLearnCoef, LearnValueAddition: 0})
	if err != nil {
		return nil, err
	}

	if len(p.Weights) > 0 {
		for i := range m.weights {
			m.weights[i] = 0
		}
		total := 0.0
		for name, w := range p.Weights {
			i, ok := d.IssueIndex(name)
			if !ok {
				return nil, fmt.Errorf("profile weight for unknown issue %q", name)
			}
			if w < 0 {
				return nil, fmt.Errorf("issue %q: weight must be >= 0, got %f", name, w)
			}
			m.weights[i] = w
			total += w
		}
		if total <= 0 {
			return nil, fmt.Errorf("profile weights sum to %f", total)
		}
		m.NormalizeWeights()
	}

	for name, values := range p.Values {
		i, ok := d.IssueIndex(name)
		if !ok {
			return nil, fmt.Errorf("profile values for unknown issue %q", name)
		}
		issue := d.Issue(i)
		for v, score := range values {
			if !issue.HasValue(domain.Value(v)) {
				return nil, fmt.Errorf("issue %q value %q: %w", name, v, domain.ErrUnknownValue)
			}
			if score < 0 {
				return nil, fmt.Errorf("issue %q value %q: evaluation must be >= 0, got %f", name, v, score)
			}
		}
		for _, v := range issue.Values {
			m.scores[i][v] = values[string(v)]
		}
	}
	return m, nil
}
