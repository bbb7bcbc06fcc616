package bargaining

import (
	"math"
	"testing"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// utilities of the two parties for each outcome.
var testOutcomes = map[domain.Value][2]float64{
	"p1": {1.0, 0.1},
	"p2": {0.9, 0.55},
	"p3": {0.5, 0.5}, // dominated by p6
	"p4": {0.4, 0.9},
	"p5": {0.1, 1.0},
	"p6": {0.7, 0.7},
}

// testParty is the utility function of party i.
func testParty(i int) preference.Evaluator {
	return preference.EvaluatorFunc(func(b domain.Bid) float64 {
		return testOutcomes[b.Value(0)][i]
	})
}

func testSpace(t *testing.T, params Params) *Space {
	t.Helper()
	d, err := domain.New("deal", []domain.Issue{
		{Name: "option", Values: []domain.Value{"p1", "p2", "p3", "p4", "p5", "p6"}},
	})
	if err != nil {
		t.Fatalf("domain.New failed: %v", err)
	}
	s, err := NewSpace(d, testParty(0), testParty(1), params)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	return s
}

func values(points []Point) []domain.Value {
	out := make([]domain.Value, len(points))
	for i, p := range points {
		out[i] = p.Bid.Value(0)
	}
	return out
}

func TestNewSpace_Validation(t *testing.T) {
	if _, err := NewSpace(nil, nil, nil, DefaultParams()); err == nil {
		t.Error("Expected error for missing domain")
	}
	d, _ := domain.New("x", []domain.Issue{{Name: "i", Values: []domain.Value{"a"}}})
	zero := preference.EvaluatorFunc(func(domain.Bid) float64 { return 0 })
	if _, err := NewSpace(d, zero, zero, Params{WeightA: 0, WeightB: 1}); err == nil {
		t.Error("Expected error for zero bargaining weight")
	}
}

func TestParetoFrontier(t *testing.T) {
	s := testSpace(t, DefaultParams())
	got := values(s.ParetoFrontier())
	want := []domain.Value{"p5", "p4", "p6", "p2", "p1"}
	if len(got) != len(want) {
		t.Fatalf("Expected frontier %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Frontier[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	p3, _ := s.Point(domain.NewBid("p3"))
	if s.IsPareto(p3) {
		t.Error("p3 is dominated by p6")
	}
	p4, _ := s.Point(domain.NewBid("p4"))
	if !s.IsPareto(p4) {
		t.Error("p4 is Pareto optimal")
	}
}

func TestNashAndKalaiSolutions(t *testing.T) {
	s := testSpace(t, DefaultParams())

	nash, ok := s.NashSolution()
	if !ok || nash.Bid.Value(0) != "p2" {
		t.Errorf("Expected Nash solution p2, got %v (%v)", nash.Bid, ok)
	}
	kalai, ok := s.KalaiSmorodinskySolution()
	if !ok || kalai.Bid.Value(0) != "p6" {
		t.Errorf("Expected Kalai-Smorodinsky solution p6, got %v (%v)", kalai.Bid, ok)
	}
	if a, b := s.Ideal(); a != 1 || b != 1 {
		t.Errorf("Expected utopia point (1, 1), got (%f, %f)", a, b)
	}
}

func TestNashSolution_Params(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   domain.Value
	}{
		{"disagreement point", Params{WeightA: 1, WeightB: 1, DisagreementA: 0.6}, "p2"},
		{"bargaining power", Params{WeightA: 1, WeightB: 3}, "p4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSpace(t, tt.params)
			nash, ok := s.NashSolution()
			if !ok || nash.Bid.Value(0) != tt.want {
				t.Errorf("Expected %s, got %v (%v)", tt.want, nash.Bid, ok)
			}
		})
	}

	s := testSpace(t, Params{WeightA: 1, WeightB: 1, DisagreementA: 1, DisagreementB: 1})
	if _, ok := s.NashSolution(); ok {
		t.Error("No outcome is individually rational above the utopia point")
	}
}

func TestAnalyze(t *testing.T) {
	s := testSpace(t, DefaultParams())

	r, err := s.Analyze(domain.NewBid("p3"))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.Pareto {
		t.Error("p3 should not be Pareto optimal")
	}
	if math.Abs(r.ParetoDistance-math.Hypot(0.2, 0.2)) > 1e-9 {
		t.Errorf("Expected Pareto distance to p6, got %f", r.ParetoDistance)
	}
	if math.Abs(r.NashDistance-math.Hypot(0.4, 0.05)) > 1e-9 {
		t.Errorf("Unexpected Nash distance %f", r.NashDistance)
	}
	if math.Abs(r.Welfare-1) > 1e-9 || math.Abs(r.MaxWelfare-1.45) > 1e-9 {
		t.Errorf("Unexpected welfare %f / %f", r.Welfare, r.MaxWelfare)
	}
	if !r.IndividuallyRational {
		t.Error("Every outcome is individually rational with a zero disagreement point")
	}

	if _, err := s.Analyze(domain.NewBid("p9")); err == nil {
		t.Error("Expected error for an agreement outside the space")
	}
}
