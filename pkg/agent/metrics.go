package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Offering metrics
	metricTargetUtility = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "negotiator",
			Name:      "target_utility",
			Help:      "Concession curve target utility of the last offer [0,1]",
		},
		[]string{"agent"},
	)

	metricOfferUtility = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "negotiator",
			Name:      "offer_utility",
			Help:      "Own utility of the last offered bid [0,1]",
		},
		[]string{"agent"},
	)

	metricGoalRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "goal_refinements_total",
			Help:      "Times the utility goal was raised because an offer ranked too low",
		},
		[]string{"agent"},
	)

	metricSelectionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "selection_fallbacks_total",
			Help:      "Offers chosen without the opponent model: random or best-bid fallback",
		},
		[]string{"agent", "reason"},
	)

	// Opponent metrics
	metricReceivedUtility = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "negotiator",
			Name:      "received_utility",
			Help:      "Own utility of the last opponent offer [0,1]",
		},
		[]string{"agent"},
	)

	metricOpponentWeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "negotiator",
			Name:      "opponent_issue_weight",
			Help:      "Learned opponent weight per issue [0,1]",
		},
		[]string{"agent", "issue"},
	)

	// Decision metrics
	metricDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "negotiator",
			Name:      "decisions_total",
			Help:      "Acceptance decisions by action",
		},
		[]string{"agent", "action"},
	)

	metricAcceptThreshold = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "negotiator",
			Name:      "accept_threshold",
			Help:      "Acceptance threshold at the last decision [0,1]",
		},
		[]string{"agent"},
	)
)

// RecordOffer records offering metrics for an agent.
func RecordOffer(agent string, target, utility float64, retries int, fallback, random bool) {
	metricTargetUtility.WithLabelValues(agent).Set(target)
	metricOfferUtility.WithLabelValues(agent).Set(utility)
	if retries > 0 {
		metricGoalRetries.WithLabelValues(agent).Add(float64(retries))
	}
	if fallback {
		metricSelectionFallbacks.WithLabelValues(agent, "best_bid").Inc()
	}
	if random {
		metricSelectionFallbacks.WithLabelValues(agent, "random").Inc()
	}
}

// RecordReceived records the utility of an opponent offer and the opponent
// model's weights.
func RecordReceived(agent string, utility float64, weights map[string]float64) {
	metricReceivedUtility.WithLabelValues(agent).Set(utility)
	for issue, w := range weights {
		metricOpponentWeight.WithLabelValues(agent, issue).Set(w)
	}
}

// RecordDecision records an acceptance decision.
func RecordDecision(agent, action string, threshold float64) {
	metricDecisions.WithLabelValues(agent, action).Inc()
	metricAcceptThreshold.WithLabelValues(agent).Set(threshold)
}

// ClearAgentMetrics removes the gauges of an agent whose session ended.
func ClearAgentMetrics(agent string) {
	metricTargetUtility.DeleteLabelValues(agent)
	metricOfferUtility.DeleteLabelValues(agent)
	metricReceivedUtility.DeleteLabelValues(agent)
	metricAcceptThreshold.DeleteLabelValues(agent)
	metricOpponentWeight.DeletePartialMatch(prometheus.Labels{"agent": agent})
}
