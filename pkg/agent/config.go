package agent

import (
	"context"
	"fmt"
	"os"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"negotiator/pkg/acceptance"
	"negotiator/pkg/bidding"
	"negotiator/pkg/concession"
	"negotiator/pkg/opponent"
	"negotiator/pkg/preference"
)

// ConfigMap the negotiation parameters are read from.
const (
	ConfigNamespace = "negotiator-system"
	ConfigName      = "negotiator-config"
)

// NegotiationConfig holds the tunable parameters of an agent.
// Values can be loaded from a ConfigMap or environment variables.
type NegotiationConfig struct {
	// LearnCoef drives how fast issue weights move (learnCoef).
	LearnCoef float64

	// LearnValueAddition is added to a value's score each time the opponent
	// offers it.
	LearnValueAddition float64

	// ConcessionExponent shapes phase II of the concession curve (e).
	// Smaller values concede faster early and slower late.
	ConcessionExponent float64

	// PhaseSplit makes phase I last 1/PhaseSplit of the session (n).
	PhaseSplit float64

	// MinUtility and MaxUtility override the curve bounds (Pmin, Pmax).
	// When nil the domain's worst and best reachable utilities are used.
	MinUtility *float64
	MaxUtility *float64

	// HammingWeight is the weight of bid similarity in the selector (w).
	HammingWeight float64

	// SelectionEpsilon is the opponent score below which the model is
	// treated as not having learned anything.
	SelectionEpsilon float64

	// GoalStep is how much the goal rises when an offer ranks too low.
	GoalStep float64

	// UpdateCutoff is the time after which the opponent model stops
	// learning (t_update).
	UpdateCutoff float64

	// AcceptThreshold caps the acceptance threshold (a).
	AcceptThreshold float64

	// AcceptExponent and AcceptOffset shape the time-dependent threshold:
	// timeLeft^AcceptExponent + AcceptOffset.
	AcceptExponent float64
	AcceptOffset   float64

	// UseOpponentModel enables the frequency opponent model. Without it the
	// agent offers the bid nearest to its target utility.
	UseOpponentModel bool

	// Seed seeds the selector's random fallback.
	Seed int64
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *NegotiationConfig {
	return &NegotiationConfig{
		LearnCoef:          preference.DefaultLearnCoef,
		LearnValueAddition: preference.DefaultLearnValueAddition,
		ConcessionExponent: concession.DefaultExponent,
		PhaseSplit:         concession.DefaultPhaseSplit,
		HammingWeight:      bidding.DefaultHammingWeight,
		SelectionEpsilon:   bidding.DefaultEpsilon,
		GoalStep:           bidding.DefaultGoalStep,
		UpdateCutoff:       opponent.DefaultUpdateCutoff, // effectively always
		AcceptThreshold:    acceptance.DefaultThreshold,
		AcceptExponent:     acceptance.DefaultExponent,
		AcceptOffset:       0,
		UseOpponentModel:   true,
		Seed:               1,
	}
}

// LoadConfig loads configuration from the negotiator ConfigMap with
// environment variable overrides. A nil client skips the ConfigMap.
func LoadConfig(ctx context.Context, k8sClient kubernetes.Interface) (*NegotiationConfig, error) {
	config := DefaultConfig()

	if k8sClient != nil {
		cm, err := k8sClient.CoreV1().ConfigMaps(ConfigNamespace).Get(ctx, ConfigName, metav1.GetOptions{})
		if err != nil {
			klog.V(2).InfoS("ConfigMap not found, using defaults and environment variables", "error", err)
		} else if err := config.loadFromConfigMap(cm); err != nil {
			return nil, fmt.Errorf("load ConfigMap %s/%s: %w", ConfigNamespace, ConfigName, err)
		} else {
			klog.InfoS("Loaded configuration from ConfigMap", "namespace", ConfigNamespace, "name", ConfigName)
		}
	}

	// Environment takes precedence
	config.loadFromEnvironment()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.Log()
	return config, nil
}

func (c *NegotiationConfig) floatFields() map[string]*float64 {
	return map[string]*float64{
		"learnCoef":          &c.LearnCoef,
		"learnValueAddition": &c.LearnValueAddition,
		"concessionExponent": &c.ConcessionExponent,
		"phaseSplit":         &c.PhaseSplit,
		"hammingWeight":      &c.HammingWeight,
		"selectionEpsilon":   &c.SelectionEpsilon,
		"goalStep":           &c.GoalStep,
		"updateCutoff":       &c.UpdateCutoff,
		"acceptThreshold":    &c.AcceptThreshold,
		"acceptExponent":     &c.AcceptExponent,
		"acceptOffset":       &c.AcceptOffset,
	}
}

// loadFromConfigMap loads configuration values from a ConfigMap.
func (c *NegotiationConfig) loadFromConfigMap(cm *corev1.ConfigMap) error {
	if cm.Data == nil {
		return fmt.Errorf("ConfigMap data is nil")
	}
	data := cm.Data

	for key, dst := range c.floatFields() {
		val, ok := data[key]
		if !ok || val == "" {
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = f
	}

	// Pmin and Pmax default to the domain bounds, so only set them when given.
	if val, ok := data["minUtility"]; ok && val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid minUtility: %w", err)
		}
		c.MinUtility = &f
	}
	if val, ok := data["maxUtility"]; ok && val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid maxUtility: %w", err)
		}
		c.MaxUtility = &f
	}

	if val, ok := data["useOpponentModel"]; ok && val != "" {
		v, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid useOpponentModel: %w", err)
		}
		c.UseOpponentModel = v
	}

	if val, ok := data["seed"]; ok && val != "" {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		c.Seed = i
	}

	return nil
}

// envNames maps configuration keys to their environment variables.
var envNames = map[string]string{
	"learnCoef":          "NEGOTIATOR_LEARN_COEF",
	"learnValueAddition": "NEGOTIATOR_LEARN_VALUE_ADDITION",
	"concessionExponent": "NEGOTIATOR_CONCESSION_EXPONENT",
	"phaseSplit":         "NEGOTIATOR_PHASE_SPLIT",
	"hammingWeight":      "NEGOTIATOR_HAMMING_WEIGHT",
	"selectionEpsilon":   "NEGOTIATOR_SELECTION_EPSILON",
	"goalStep":           "NEGOTIATOR_GOAL_STEP",
	"updateCutoff":       "NEGOTIATOR_UPDATE_CUTOFF",
	"acceptThreshold":    "NEGOTIATOR_ACCEPT_THRESHOLD",
	"acceptExponent":     "NEGOTIATOR_ACCEPT_EXPONENT",
	"acceptOffset":       "NEGOTIATOR_ACCEPT_OFFSET",
}

// loadFromEnvironment loads configuration values from environment variables.
// Unparseable values are ignored.
func (c *NegotiationConfig) loadFromEnvironment() {
	for key, dst := range c.floatFields() {
		name := envNames[key]
		if val := os.Getenv(name); val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				*dst = f
				klog.V(2).InfoS("Loaded configuration from environment", "key", key, "value", f)
			}
		}
	}

	// NEGOTIATOR_MIN_UTILITY
	if val := os.Getenv("NEGOTIATOR_MIN_UTILITY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.MinUtility = &f
			klog.V(2).InfoS("Loaded MinUtility from environment", "value", f)
		}
	}

	// NEGOTIATOR_MAX_UTILITY
	if val := os.Getenv("NEGOTIATOR_MAX_UTILITY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.MaxUtility = &f
			klog.V(2).InfoS("Loaded MaxUtility from environment", "value", f)
		}
	}

	// NEGOTIATOR_USE_OPPONENT_MODEL
	if val := os.Getenv("NEGOTIATOR_USE_OPPONENT_MODEL"); val != "" {
		if v, err := strconv.ParseBool(val); err == nil {
			c.UseOpponentModel = v
			klog.V(2).InfoS("Loaded UseOpponentModel from environment", "value", v)
		}
	}

	// NEGOTIATOR_SEED
	if val := os.Getenv("NEGOTIATOR_SEED"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Seed = i
			klog.V(2).InfoS("Loaded Seed from environment", "value", i)
		}
	}
}

// Validate validates the configuration values.
func (c *NegotiationConfig) Validate() error {
	if err := c.LearningParams().Validate(); err != nil {
		return err
	}
	if c.ConcessionExponent <= 0 {
		return fmt.Errorf("concessionExponent must be > 0, got %f", c.ConcessionExponent)
	}
	if c.PhaseSplit <= 0 {
		return fmt.Errorf("phaseSplit must be > 0, got %f", c.PhaseSplit)
	}
	if c.MinUtility != nil && c.MaxUtility != nil && *c.MinUtility > *c.MaxUtility {
		return fmt.Errorf("minUtility (%f) must be <= maxUtility (%f)", *c.MinUtility, *c.MaxUtility)
	}
	if c.HammingWeight < 0 {
		return fmt.Errorf("hammingWeight must be >= 0, got %f", c.HammingWeight)
	}
	if c.SelectionEpsilon < 0 {
		return fmt.Errorf("selectionEpsilon must be >= 0, got %f", c.SelectionEpsilon)
	}
	if c.GoalStep <= 0 || c.GoalStep > 1 {
		return fmt.Errorf("goalStep must be in (0, 1], got %f", c.GoalStep)
	}
	if c.UpdateCutoff <= 0 {
		return fmt.Errorf("updateCutoff must be > 0, got %f", c.UpdateCutoff)
	}
	return c.AcceptanceStrategy().Validate()
}

// LearningParams returns the opponent model's learning parameters.
func (c *NegotiationConfig) LearningParams() preference.Params {
	p := preference.DefaultParams()
	p.LearnCoef = c.LearnCoef
	p.LearnValueAddition = c.LearnValueAddition
	return p
}

// Curve returns the concession curve for an outcome space spanning
// [spaceMin, spaceMax], honoring configured bounds.
func (c *NegotiationConfig) Curve(spaceMin, spaceMax float64) concession.Curve {
	curve := concession.Curve{
		Min:        spaceMin,
		Max:        spaceMax,
		Exponent:   c.ConcessionExponent,
		PhaseSplit: c.PhaseSplit,
	}
	if c.MinUtility != nil {
		curve.Min = *c.MinUtility
	}
	if c.MaxUtility != nil {
		curve.Max = *c.MaxUtility
	}
	return curve
}

// AcceptanceStrategy returns the configured acceptance rule.
func (c *NegotiationConfig) AcceptanceStrategy() acceptance.Strategy {
	return acceptance.Strategy{
		Threshold: c.AcceptThreshold,
		Exponent:  c.AcceptExponent,
		Offset:    c.AcceptOffset,
	}
}

// Log logs the current configuration values.
func (c *NegotiationConfig) Log() {
	klog.InfoS("Negotiation configuration",
		"learnCoef", c.LearnCoef,
		"learnValueAddition", c.LearnValueAddition,
		"concessionExponent", c.ConcessionExponent,
		"phaseSplit", c.PhaseSplit,
		"minUtility", optional(c.MinUtility),
		"maxUtility", optional(c.MaxUtility),
		"hammingWeight", c.HammingWeight,
		"selectionEpsilon", c.SelectionEpsilon,
		"goalStep", c.GoalStep,
		"updateCutoff", c.UpdateCutoff,
		"acceptThreshold", c.AcceptThreshold,
		"acceptExponent", c.AcceptExponent,
		"acceptOffset", c.AcceptOffset,
		"useOpponentModel", c.UseOpponentModel,
		"seed", c.Seed)
}

func optional(f *float64) string {
	if f == nil {
		return "domain"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
