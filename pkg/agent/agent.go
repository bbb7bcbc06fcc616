// Package agent assembles the negotiation components into an agent that
// takes part in a bilateral alternating-offers negotiation.
//
// Each round the agent:
//   - evaluates the opponent's latest offer against the acceptance rule
//   - otherwise picks a counter-offer near its concession target, preferring
//     bids the opponent model likes and that resemble the opponent's offer
//   - learns from every offer it receives
//
// The protocol that carries offers between the parties is not part of this
// package.
package agent

import (
	"fmt"
	"math/rand"

	"k8s.io/klog/v2"

	"negotiator/pkg/acceptance"
	"negotiator/pkg/bidding"
	"negotiator/pkg/domain"
	"negotiator/pkg/estimate"
	"negotiator/pkg/opponent"
	"negotiator/pkg/outcome"
	"negotiator/pkg/preference"
	"negotiator/pkg/ranking"
)

// Agent negotiates on behalf of one party.
type Agent struct {
	name    string
	session *Session
	config  *NegotiationConfig

	// utility is the agent's own utility function, estimated from the
	// ranking under uncertainty.
	utility preference.Evaluator
	mode    estimate.Mode

	// Components
	space    *outcome.Space
	opponent *opponent.Model
	offering *bidding.Strategy
	accept   acceptance.Strategy
}

// Response is the agent's move for one turn.
type Response struct {
	Action   acceptance.Action
	Decision acceptance.Decision
	// Offer is the counter-offer; it is zero when the agent accepts.
	Offer bidding.Offer
}

// NewAgent creates an agent for session. A nil config uses DefaultConfig.
func NewAgent(name string, session *Session, config *NegotiationConfig) (*Agent, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Agent{
		name:    name,
		session: session,
		config:  config,
		utility: session.Utility,
		accept:  config.AcceptanceStrategy(),
	}

	if session.Uncertain() {
		model, mode, err := estimate.FromRanking(session.Domain, session.Ranking, config.LearningParams())
		if err != nil {
			return nil, fmt.Errorf("estimate own preferences: %w", err)
		}
		a.utility, a.mode = model, mode
	}

	opp, err := opponent.New(session.Domain, config.LearningParams(), config.UpdateCutoff)
	if err != nil {
		return nil, err
	}
	a.opponent = opp

	a.space = outcome.NewSpace(session.Domain, a.utility)

	selector := bidding.NewSelector(rand.New(rand.NewSource(config.Seed)), 0)
	selector.HammingWeight = config.HammingWeight
	selector.Epsilon = config.SelectionEpsilon

	// Percentile refinement only applies when the own preferences were
	// estimated from the ranking.
	var refine *ranking.Ranking
	if session.Uncertain() {
		refine = session.Ranking
	}
	offering, err := bidding.NewStrategy(a.space, selector, refine)
	if err != nil {
		return nil, fmt.Errorf("create offering strategy: %w", err)
	}
	offering.Curve = config.Curve(a.space.Min(), a.space.Max())
	offering.GoalStep = config.GoalStep
	if err := offering.Curve.Validate(); err != nil {
		return nil, fmt.Errorf("invalid concession curve: %w", err)
	}
	a.offering = offering

	klog.InfoS("Created negotiation agent",
		"agent", name,
		"domain", session.Domain.Name,
		"issues", session.Domain.NumIssues(),
		"outcomes", a.space.Len(),
		"uncertain", session.Uncertain(),
		"opponentModel", config.UseOpponentModel,
		"estimate", a.mode,
		"pmin", offering.Curve.Min,
		"pmax", offering.Curve.Max)
	return a, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.name
}

// Utility returns the agent's own (possibly estimated) utility of b.
func (a *Agent) Utility(b domain.Bid) float64 {
	return a.utility.Evaluate(b)
}

// EstimateMode reports how the own utility was obtained under uncertainty.
func (a *Agent) EstimateMode() estimate.Mode {
	return a.mode
}

// OpponentModel returns the learned opponent model.
func (a *Agent) OpponentModel() *opponent.Model {
	return a.opponent
}

// Space returns the outcome space sorted by own utility.
func (a *Agent) Space() *outcome.Space {
	return a.space
}

// Session returns the agent's session.
func (a *Agent) Session() *Session {
	return a.session
}

// ReceiveOffer records an opponent offer and learns from it.
func (a *Agent) ReceiveOffer(b domain.Bid) error {
	if err := a.session.Domain.Validate(b); err != nil {
		return fmt.Errorf("received invalid bid: %w", err)
	}
	a.session.Opponent.Add(b)

	t := a.session.Time()
	if a.config.UseOpponentModel {
		a.opponent.Update(a.session.Opponent, t)
	}

	utility := a.Utility(b)
	RecordReceived(a.name, utility, a.opponent.Snapshot().Weights)
	klog.V(4).InfoS("Received offer", "agent", a.name, "time", t, "bid", b, "utility", utility)
	return nil
}

// OpeningOffer returns the agent's first offer.
func (a *Agent) OpeningOffer() (bidding.Offer, error) {
	return a.nextOffer()
}

// Respond decides whether to accept the opponent's latest offer and, if not,
// makes a counter-offer.
func (a *Agent) Respond() (Response, error) {
	last, hasLast := a.session.Opponent.Last()
	in := acceptance.Input{
		Time:     a.session.Time(),
		Offer:    last,
		HasOffer: hasLast,
		Ranking:  a.session.Ranking,
	}
	if hasLast {
		in.Utility = a.Utility(last)
	}

	decision := a.accept.Decide(in)
	RecordDecision(a.name, decision.Action.String(), decision.Threshold)
	if decision.Action == acceptance.Accept {
		klog.V(2).InfoS("Accepting offer",
			"agent", a.name,
			"time", in.Time,
			"bid", last,
			"utility", in.Utility,
			"threshold", decision.Threshold)
		return Response{Action: acceptance.Accept, Decision: decision}, nil
	}

	offer, err := a.nextOffer()
	if err != nil {
		return Response{}, err
	}
	return Response{Action: acceptance.Reject, Decision: decision, Offer: offer}, nil
}

func (a *Agent) nextOffer() (bidding.Offer, error) {
	last, hasLast := a.session.Opponent.Last()
	var model preference.Evaluator
	if a.config.UseOpponentModel {
		model = a.opponent
	}
	offer, err := a.offering.Next(a.session.Time(), model, last, hasLast)
	if err != nil {
		return bidding.Offer{}, fmt.Errorf("agent %s: %w", a.name, err)
	}
	a.session.Own.Add(offer.Bid)
	RecordOffer(a.name, offer.Target, a.Utility(offer.Bid), offer.Retries, offer.Fallback, offer.Random)
	return offer, nil
}

// Close clears the agent's gauges once its session has ended.
func (a *Agent) Close() {
	ClearAgentMetrics(a.name)
}
