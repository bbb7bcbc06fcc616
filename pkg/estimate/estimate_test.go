package estimate

import (
	"math"
	"testing"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
	"negotiator/pkg/ranking"
)

func sum(ws []float64) float64 {
	s := 0.0
	for _, w := range ws {
		s += w
	}
	return s
}

func TestFromRanking_SparseFallback(t *testing.T) {
	d, err := domain.New("holiday", []domain.Issue{
		{Name: "place", Values: []domain.Value{"rome", "oslo", "lima", "kyiv", "nice"}},
		{Name: "hotel", Values: []domain.Value{"cheap", "fancy"}},
	})
	if err != nil {
		t.Fatalf("domain.New failed: %v", err)
	}
	worst := domain.NewBid("oslo", "cheap")
	best := domain.NewBid("nice", "fancy")
	r, err := ranking.New(d, []domain.Bid{worst, best})
	if err != nil {
		t.Fatalf("ranking.New failed: %v", err)
	}

	m, mode, err := FromRanking(d, r, preference.DefaultParams())
	if err != nil {
		t.Fatalf("FromRanking failed: %v", err)
	}
	if mode != ModeSparse {
		t.Fatalf("Expected sparse mode with 2 bids and 5 values, got %s", mode)
	}
	if math.Abs(sum(m.Weights())-1) > 1e-9 {
		t.Errorf("Weights must sum to 1, got %f", sum(m.Weights()))
	}
	if m.Score(0, "nice") != 1 || m.Score(0, "oslo") != 0 || m.Score(0, "rome") != 0 {
		t.Errorf("Unexpected place scores: %v", m.Snapshot().Scores["place"])
	}
	if u := m.Evaluate(best); math.Abs(u-1) > 1e-9 {
		t.Errorf("Best ranked bid should evaluate to 1, got %f", u)
	}
	if u := m.Evaluate(worst); u != 0 {
		t.Errorf("Worst ranked bid should evaluate to 0, got %f", u)
	}
}

func TestFromRanking_DenseFavoursStableIssue(t *testing.T) {
	d, err := domain.New("car", []domain.Issue{
		{Name: "engine", Values: []domain.Value{"petrol", "electric"}},
		{Name: "color", Values: []domain.Value{"grey", "red", "white"}},
	})
	if err != nil {
		t.Fatalf("domain.New failed: %v", err)
	}
	// Engine dominates: it only changes once along the ranking.
	r, err := ranking.New(d, []domain.Bid{
		domain.NewBid("petrol", "grey"),
		domain.NewBid("petrol", "red"),
		domain.NewBid("petrol", "white"),
		domain.NewBid("electric", "grey"),
		domain.NewBid("electric", "red"),
		domain.NewBid("electric", "white"),
	})
	if err != nil {
		t.Fatalf("ranking.New failed: %v", err)
	}

	m, mode, err := FromRanking(d, r, preference.DefaultParams())
	if err != nil {
		t.Fatalf("FromRanking failed: %v", err)
	}
	if mode != ModeDense {
		t.Fatalf("Expected dense mode, got %s", mode)
	}
	w := m.Weights()
	if w[0] <= w[1] {
		t.Errorf("Engine should outweigh color: %v", w)
	}
	if math.Abs(sum(w)-1) > 1e-9 {
		t.Errorf("Weights must sum to 1, got %f", sum(w))
	}
	// The best bid is never the newer bid of a pair, so only lower ranks
	// accumulate value scores.
	if m.Score(1, "white") != 1 || m.Score(1, "grey") != 2 {
		t.Errorf("Unexpected color scores: %v", m.Snapshot().Scores["color"])
	}
}

func TestFromRanking_Empty(t *testing.T) {
	d, _ := domain.New("tiny", []domain.Issue{{Name: "x", Values: []domain.Value{"a", "b"}}})

	m, mode, err := FromRanking(d, nil, preference.DefaultParams())
	if err != nil {
		t.Fatalf("FromRanking failed: %v", err)
	}
	if mode != ModeEmpty {
		t.Errorf("Expected empty mode, got %s", mode)
	}
	if u := m.Evaluate(domain.NewBid("a")); u != 0 {
		t.Errorf("Model without ranking should evaluate to 0, got %f", u)
	}
}

func TestFromRanking_RequiresIssues(t *testing.T) {
	if _, _, err := FromRanking(nil, nil, preference.DefaultParams()); err == nil {
		t.Error("Expected configuration error for missing domain")
	}
}

func TestWindow(t *testing.T) {
	bids := []domain.Bid{
		domain.NewBid("0"), domain.NewBid("1"), domain.NewBid("2"), domain.NewBid("3"),
	}
	if w := window(bids, 0, 4); w != nil {
		t.Errorf("Expected empty window when the ranking holds only k bids, got %v", w)
	}
	if w := window(bids, 1, 2); len(w) != 2 || w[0].Value(0) != "1" || w[1].Value(0) != "2" {
		t.Errorf("Unexpected window %v", w)
	}
	if w := window(bids, 2, 3); len(w) != 2 {
		t.Errorf("Window must be clipped at the best bid, got %v", w)
	}
}
