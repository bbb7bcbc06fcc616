package agent

import (
	"errors"
	"fmt"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
	"negotiator/pkg/ranking"
)

// ErrNoPreferences is returned when a session has neither a utility
// function nor a bid ranking.
var ErrNoPreferences = errors.New("session needs a utility function or a bid ranking")

// Session owns the state of one negotiation from the agent's side.
// It is not safe for concurrent use; each negotiation gets its own Session.
type Session struct {
	Domain *domain.Domain
	Clock  Clock

	// Own and Opponent are the bids made by each party, oldest first.
	Own      *domain.History
	Opponent *domain.History

	// Utility is the agent's own utility function. It may be nil when the
	// preferences are only known through Ranking.
	Utility preference.Evaluator

	// Ranking orders some bids from least to most preferred. It is set when
	// the agent negotiates under preference uncertainty.
	Ranking *ranking.Ranking
}

// NewSession validates its inputs and returns a session with empty histories.
func NewSession(d *domain.Domain, clock Clock, utility preference.Evaluator, r *ranking.Ranking) (*Session, error) {
	if d == nil || d.NumIssues() == 0 {
		return nil, domain.ErrNoIssues
	}
	if clock == nil {
		return nil, fmt.Errorf("session clock is required")
	}
	if utility == nil && r == nil {
		return nil, ErrNoPreferences
	}
	return &Session{
		Domain:   d,
		Clock:    clock,
		Own:      domain.NewHistory(),
		Opponent: domain.NewHistory(),
		Utility:  utility,
		Ranking:  r,
	}, nil
}

// Time returns the normalized time of the session.
func (s *Session) Time() float64 {
	return s.Clock.Time()
}

// Uncertain reports whether the agent's own preferences must be estimated.
func (s *Session) Uncertain() bool {
	return s.Utility == nil && s.Ranking != nil
}
