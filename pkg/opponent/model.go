// Package opponent learns the preferences of the other party from the
// sequence of bids it makes during a negotiation.
package opponent

import (
	"fmt"

	"k8s.io/klog/v2"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// DefaultUpdateCutoff is the time after which the model stops learning.
// It is above 1 because a session can run slightly past its deadline.
const DefaultUpdateCutoff = 1.1

// Model is a frequency model of the opponent's additive utility function.
type Model struct {
	pref         *preference.Model
	updateCutoff float64
	updates      int
}

// New returns a model with flat preferences over d.
func New(d *domain.Domain, params preference.Params, updateCutoff float64) (*Model, error) {
	pref, err := preference.NewModel(d, params)
	if err != nil {
		return nil, fmt.Errorf("create opponent model: %w", err)
	}
	if updateCutoff <= 0 {
		updateCutoff = DefaultUpdateCutoff
	}
	return &Model{pref: pref, updateCutoff: updateCutoff}, nil
}

// CanUpdate reports whether the model still learns at time t.
func (m *Model) CanUpdate(t float64) bool {
	return t < m.updateCutoff
}

// Update learns from the two most recent bids of history at normalized time
// t. It reports false, leaving the model unchanged, while fewer than two bids
// have been received or once t passes the update cutoff.
func (m *Model) Update(history *domain.History, t float64) (preference.Observation, bool) {
	if history.Len() < 2 || !m.CanUpdate(t) {
		return preference.Observation{}, false
	}
	prev, _ := history.Previous()
	cur, _ := history.Last()

	timeLeft := 1 - clamp01(t)
	obs := m.pref.Observe(prev, cur, history.LastN(m.pref.WindowSize()), timeLeft)
	m.updates++

	klog.V(3).InfoS("Updated opponent model",
		"bids", history.Len(),
		"time", t,
		"unchanged", obs.Unchanged,
		"increment", obs.Increment,
		"weights", m.pref.Weights())
	return obs, true
}

// Evaluate returns the estimated opponent utility of b.
func (m *Model) Evaluate(b domain.Bid) float64 {
	return m.pref.Evaluate(b)
}

// Weights returns a copy of the learned issue weights.
func (m *Model) Weights() []float64 {
	return m.pref.Weights()
}

// Snapshot returns a read-only copy of the learned state.
func (m *Model) Snapshot() preference.Snapshot {
	return m.pref.Snapshot()
}

// Updates returns how many times the model has learned from a bid pair.
func (m *Model) Updates() int {
	return m.updates
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
