package main

import (
	"fmt"

	"k8s.io/klog/v2"

	"negotiator/pkg/acceptance"
	"negotiator/pkg/agent"
	"negotiator/pkg/bargaining"
	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// result summarizes a finished session.
type result struct {
	Agreed   bool
	Bid      domain.Bid
	Acceptor string
	Rounds   int
	// Utilities maps agent name to its own utility of the agreement.
	Utilities map[string]float64
	// Offers maps agent name to the bids it made, in order.
	Offers map[string][]domain.Bid
}

// deadline is a session clock that knows when the session is over.
type deadline interface {
	agent.Clock
	Done() bool
}

// ticker is implemented by clocks that advance once per round.
type ticker interface {
	Tick()
}

// negotiate runs the alternating-offers protocol between first and second
// until one accepts or the clock runs out. first opens.
func negotiate(first, second *agent.Agent, clock deadline) (result, error) {
	opening, err := first.OpeningOffer()
	if err != nil {
		return result{}, fmt.Errorf("opening offer: %w", err)
	}
	if err := second.ReceiveOffer(opening.Bid); err != nil {
		return result{}, err
	}

	current, other := second, first
	round := 0
	for !clock.Done() {
		if t, ok := clock.(ticker); ok {
			t.Tick()
		}
		round++

		resp, err := current.Respond()
		if err != nil {
			return result{}, fmt.Errorf("round %d: %w", round, err)
		}
		if resp.Action == acceptance.Accept {
			bid, _ := current.Session().Opponent.Last()
			return result{
				Agreed:   true,
				Bid:      bid,
				Acceptor: current.Name(),
				Rounds:   round,
				Utilities: map[string]float64{
					first.Name():  first.Utility(bid),
					second.Name(): second.Utility(bid),
				},
				Offers: offers(first, second),
			}, nil
		}

		klog.V(3).InfoS("Counter-offer",
			"round", round,
			"agent", current.Name(),
			"bid", resp.Offer.Bid,
			"target", resp.Offer.Target)
		if err := other.ReceiveOffer(resp.Offer.Bid); err != nil {
			return result{}, err
		}
		current, other = other, current
	}
	return result{Rounds: round, Offers: offers(first, second)}, nil
}

func offers(agents ...*agent.Agent) map[string][]domain.Bid {
	out := make(map[string][]domain.Bid, len(agents))
	for _, a := range agents {
		out[a.Name()] = a.Session().Own.Bids()
	}
	return out
}

// analysis evaluates a finished session with both parties' true utilities.
type analysis struct {
	// Report scores the agreement; nil when there was none.
	Report *bargaining.Report
	// Moves maps each party to the distribution of its move types.
	Moves map[string]bargaining.MoveDistribution
	// Strategies maps each party to the strategy its moves match best. It
	// is empty without strategy profiles.
	Strategies map[string]bargaining.OpponentStrategy
}

// analyze evaluates res for the parties with profiles a and b, which are also
// the agent names. profiles may be nil.
func analyze(file *domain.File, d *domain.Domain, a, b string, res result, profiles bargaining.StrategyProfiles) (analysis, error) {
	names := []string{a, b}
	models := make([]preference.Evaluator, 0, len(names))
	for _, name := range names {
		p, ok := file.Profile(name)
		if !ok {
			return analysis{}, fmt.Errorf("domain %q has no profile %q", d.Name, name)
		}
		m, err := preference.FromProfile(d, p)
		if err != nil {
			return analysis{}, fmt.Errorf("profile %q: %w", name, err)
		}
		models = append(models, m)
	}

	out := analysis{
		Moves:      make(map[string]bargaining.MoveDistribution, len(names)),
		Strategies: make(map[string]bargaining.OpponentStrategy),
	}
	for i, name := range names {
		moves := bargaining.ClassifyMoves(res.Offers[name], models[i], models[1-i], bargaining.DefaultMoveThreshold)
		out.Moves[name] = bargaining.Frequencies(moves)
		if profiles != nil {
			r := bargaining.NewRecognizer(profiles)
			r.ObserveAll(moves)
			out.Strategies[name], _ = r.MostLikely()
		}
	}

	if res.Agreed {
		space, err := bargaining.NewSpace(d, models[0], models[1], bargaining.DefaultParams())
		if err != nil {
			return analysis{}, err
		}
		report, err := space.Analyze(res.Bid)
		if err != nil {
			return analysis{}, err
		}
		out.Report = &report
	}
	return out, nil
}
