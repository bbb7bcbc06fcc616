package agent

import (
	"context"
	"math"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func configMap(data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Namespace: ConfigNamespace, Name: ConfigName},
		Data:       data,
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default configuration should be valid: %v", err)
	}
	if c.LearnCoef != 0.2 || c.LearnValueAddition != 1 {
		t.Errorf("Unexpected learning defaults: %f, %f", c.LearnCoef, c.LearnValueAddition)
	}
	if c.ConcessionExponent != 0.5 || c.PhaseSplit != 3 {
		t.Errorf("Unexpected curve defaults: e=%f n=%f", c.ConcessionExponent, c.PhaseSplit)
	}
	if c.HammingWeight != 2 || c.UpdateCutoff != 1.1 || c.AcceptThreshold != 0.8 {
		t.Errorf("Unexpected defaults: w=%f t_update=%f a=%f", c.HammingWeight, c.UpdateCutoff, c.AcceptThreshold)
	}
	if c.MinUtility != nil || c.MaxUtility != nil {
		t.Error("Curve bounds should default to the domain")
	}
	if !c.UseOpponentModel {
		t.Error("The opponent model should be enabled by default")
	}
}

func TestLoadConfig_NilClient(t *testing.T) {
	c, err := LoadConfig(context.Background(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.LearnCoef != 0.2 {
		t.Errorf("Expected defaults without a cluster, got learnCoef %f", c.LearnCoef)
	}
}

func TestLoadConfig_MissingConfigMapUsesDefaults(t *testing.T) {
	c, err := LoadConfig(context.Background(), fake.NewSimpleClientset())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.AcceptThreshold != 0.8 {
		t.Errorf("Expected default threshold, got %f", c.AcceptThreshold)
	}
}

func TestLoadConfig_FromConfigMap(t *testing.T) {
	client := fake.NewSimpleClientset(configMap(map[string]string{
		"learnCoef":          "0.3",
		"concessionExponent": "0.8",
		"hammingWeight":      "3",
		"acceptThreshold":    "0.9",
		"acceptExponent":     "0.1",
		"minUtility":         "0.4",
		"useOpponentModel":   "false",
		"seed":               "7",
	}))

	c, err := LoadConfig(context.Background(), client)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.LearnCoef != 0.3 || c.ConcessionExponent != 0.8 || c.HammingWeight != 3 {
		t.Errorf("ConfigMap values not applied: %+v", c)
	}
	if c.AcceptThreshold != 0.9 || c.AcceptExponent != 0.1 || c.Seed != 7 {
		t.Errorf("ConfigMap values not applied: %+v", c)
	}
	if c.MinUtility == nil || *c.MinUtility != 0.4 || c.MaxUtility != nil {
		t.Errorf("Expected only minUtility to be overridden")
	}
	if c.UseOpponentModel {
		t.Error("Expected the opponent model to be disabled by the ConfigMap")
	}

	curve := c.Curve(0.1, 0.95)
	if curve.Min != 0.4 || curve.Max != 0.95 || curve.Exponent != 0.8 {
		t.Errorf("Unexpected curve %+v", curve)
	}
}

func TestLoadConfig_InvalidConfigMapValue(t *testing.T) {
	for _, data := range []map[string]string{
		{"phaseSplit": "three"},
		{"useOpponentModel": "maybe"},
	} {
		client := fake.NewSimpleClientset(configMap(data))
		if _, err := LoadConfig(context.Background(), client); err == nil {
			t.Errorf("Expected error for %v", data)
		}
	}
}

func TestLoadConfig_EnvironmentOverridesConfigMap(t *testing.T) {
	t.Setenv("NEGOTIATOR_LEARN_COEF", "0.25")
	t.Setenv("NEGOTIATOR_MAX_UTILITY", "0.9")
	t.Setenv("NEGOTIATOR_HAMMING_WEIGHT", "not-a-number")
	t.Setenv("NEGOTIATOR_USE_OPPONENT_MODEL", "true")
	client := fake.NewSimpleClientset(configMap(map[string]string{
		"learnCoef":        "0.3",
		"hammingWeight":    "3",
		"useOpponentModel": "false",
	}))

	c, err := LoadConfig(context.Background(), client)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if c.LearnCoef != 0.25 {
		t.Errorf("Environment should take precedence, got learnCoef %f", c.LearnCoef)
	}
	if c.HammingWeight != 3 {
		t.Errorf("Unparseable environment values should be ignored, got %f", c.HammingWeight)
	}
	if c.MaxUtility == nil || math.Abs(*c.MaxUtility-0.9) > 1e-12 {
		t.Errorf("Expected maxUtility from environment")
	}
	if !c.UseOpponentModel {
		t.Error("Expected the environment to re-enable the opponent model")
	}
}

func TestValidate(t *testing.T) {
	lo, hi := 0.9, 0.2
	tests := []struct {
		name   string
		mutate func(c *NegotiationConfig)
	}{
		{"zero learnCoef", func(c *NegotiationConfig) { c.LearnCoef = 0 }},
		{"negative value addition", func(c *NegotiationConfig) { c.LearnValueAddition = -1 }},
		{"zero exponent", func(c *NegotiationConfig) { c.ConcessionExponent = 0 }},
		{"zero phase split", func(c *NegotiationConfig) { c.PhaseSplit = 0 }},
		{"inverted bounds", func(c *NegotiationConfig) { c.MinUtility, c.MaxUtility = &lo, &hi }},
		{"negative hamming weight", func(c *NegotiationConfig) { c.HammingWeight = -1 }},
		{"zero goal step", func(c *NegotiationConfig) { c.GoalStep = 0 }},
		{"zero cutoff", func(c *NegotiationConfig) { c.UpdateCutoff = 0 }},
		{"threshold above one", func(c *NegotiationConfig) { c.AcceptThreshold = 1.5 }},
		{"zero accept exponent", func(c *NegotiationConfig) { c.AcceptExponent = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}
