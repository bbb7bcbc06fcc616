// Package bargaining evaluates bilateral agreements against the classic
// bargaining solutions over a discrete outcome space: the Pareto frontier,
// the Nash bargaining solution and the Kalai-Smorodinsky solution.
//
// It also classifies the moves of each party's bid sequence and matches
// them against known strategy profiles.
//
// It is used to score a finished negotiation; the agents themselves never
// see the opponent's true utility function.
package bargaining

import (
	"fmt"
	"math"
	"sort"

	"negotiator/pkg/domain"
	"negotiator/pkg/preference"
)

// Point is an outcome with the utility each party assigns to it.
type Point struct {
	Bid domain.Bid
	A   float64 // utility of the first party
	B   float64 // utility of the second party
}

// Distance is the Euclidean distance between two points in utility space.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.A-o.A, p.B-o.B)
}

// Welfare is the sum of both utilities.
func (p Point) Welfare() float64 {
	return p.A + p.B
}

// Params are the bargaining parameters of both parties.
type Params struct {
	// WeightA and WeightB are the bargaining powers in the weighted Nash
	// product.
	WeightA, WeightB float64
	// DisagreementA and DisagreementB are the utilities each party gets
	// without an agreement (d_i).
	DisagreementA, DisagreementB float64
}

// DefaultParams returns equal bargaining power and a zero disagreement point.
func DefaultParams() Params {
	return Params{WeightA: 1, WeightB: 1}
}

// Space is the outcome space of a domain seen by both parties.
type Space struct {
	points []Point
	params Params
}

// NewSpace evaluates every bid of d for both parties.
func NewSpace(d *domain.Domain, a, b preference.Evaluator, params Params) (*Space, error) {
	if d == nil || d.NumIssues() == 0 {
		return nil, domain.ErrNoIssues
	}
	if params.WeightA <= 0 || params.WeightB <= 0 {
		return nil, fmt.Errorf("bargaining weights must be > 0, got %f and %f", params.WeightA, params.WeightB)
	}
	bids := d.AllBids()
	points := make([]Point, len(bids))
	for i, bid := range bids {
		points[i] = Point{Bid: bid, A: a.Evaluate(bid), B: b.Evaluate(bid)}
	}
	return &Space{points: points, params: params}, nil
}

// Point returns the outcome for bid.
func (s *Space) Point(bid domain.Bid) (Point, bool) {
	for _, p := range s.points {
		if p.Bid.Equal(bid) {
			return p, true
		}
	}
	return Point{}, false
}

// dominates reports whether p is at least as good as q for both parties and
// strictly better for one.
func dominates(p, q Point) bool {
	return p.A >= q.A && p.B >= q.B && (p.A > q.A || p.B > q.B)
}

// ParetoFrontier returns the outcomes no other outcome dominates, sorted by
// ascending utility for the first party.
func (s *Space) ParetoFrontier() []Point {
	sorted := make([]Point, len(s.points))
	copy(sorted, s.points)
	// Descending A, then descending B: a point is on the frontier iff its B
	// beats every B seen before it.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].A != sorted[j].A {
			return sorted[i].A > sorted[j].A
		}
		return sorted[i].B > sorted[j].B
	})
	var frontier []Point
	bestB := math.Inf(-1)
	for _, p := range sorted {
		if p.B > bestB {
			frontier = append(frontier, p)
			bestB = p.B
		}
	}
	for i, j := 0, len(frontier)-1; i < j; i, j = i+1, j-1 {
		frontier[i], frontier[j] = frontier[j], frontier[i]
	}
	return frontier
}

// IsPareto reports whether p is Pareto optimal.
func (s *Space) IsPareto(p Point) bool {
	for _, q := range s.points {
		if dominates(q, p) {
			return false
		}
	}
	return true
}

// NashProduct returns the weighted Nash product of p:
//
//	(a - d_a)^w_a · (b - d_b)^w_b
//
// or 0 when p is not individually rational.
func (s *Space) NashProduct(p Point) float64 {
	ga, gb := p.A-s.params.DisagreementA, p.B-s.params.DisagreementB
	if ga <= 0 || gb <= 0 {
		return 0
	}
	return math.Pow(ga, s.params.WeightA) * math.Pow(gb, s.params.WeightB)
}

// NashSolution returns the outcome maximizing the Nash product. ok is false
// when no outcome is individually rational for both parties.
//
// Objective: max Π_i (u_i - d_i)^w_i
func (s *Space) NashSolution() (best Point, ok bool) {
	bestProduct := 0.0
	for _, p := range s.points {
		if np := s.NashProduct(p); np > bestProduct {
			best, bestProduct, ok = p, np, true
		}
	}
	return best, ok
}

// Ideal returns the utopia point: each party's best utility.
func (s *Space) Ideal() (a, b float64) {
	a, b = math.Inf(-1), math.Inf(-1)
	for _, p := range s.points {
		a = math.Max(a, p.A)
		b = math.Max(b, p.B)
	}
	return a, b
}

// KalaiSmorodinskySolution returns the outcome maximizing the smaller of the
// two proportional gains towards the utopia point. Ties go to the higher
// welfare.
//
// Objective: max min_i (u_i - d_i) / (ideal_i - d_i)
func (s *Space) KalaiSmorodinskySolution() (best Point, ok bool) {
	idealA, idealB := s.Ideal()
	rangeA := idealA - s.params.DisagreementA
	rangeB := idealB - s.params.DisagreementB
	if rangeA <= 0 || rangeB <= 0 {
		return Point{}, false
	}
	bestGain := math.Inf(-1)
	for _, p := range s.points {
		gain := math.Min((p.A-s.params.DisagreementA)/rangeA, (p.B-s.params.DisagreementB)/rangeB)
		if gain < 0 {
			continue
		}
		if gain > bestGain || (gain == bestGain && p.Welfare() > best.Welfare()) {
			best, bestGain, ok = p, gain, true
		}
	}
	return best, ok
}

// Report scores an agreement.
type Report struct {
	Agreement            Point
	Pareto               bool
	ParetoDistance       float64
	Nash                 Point
	NashDistance         float64
	Kalai                Point
	KalaiDistance        float64
	Welfare              float64
	MaxWelfare           float64
	IndividuallyRational bool
}

// Analyze scores the agreement bid against the bargaining solutions.
func (s *Space) Analyze(bid domain.Bid) (Report, error) {
	p, ok := s.Point(bid)
	if !ok {
		return Report{}, fmt.Errorf("agreement %v is not in the outcome space", bid)
	}
	r := Report{
		Agreement:            p,
		Pareto:               s.IsPareto(p),
		ParetoDistance:       math.Inf(1),
		Welfare:              p.Welfare(),
		IndividuallyRational: p.A >= s.params.DisagreementA && p.B >= s.params.DisagreementB,
	}
	for _, q := range s.ParetoFrontier() {
		r.ParetoDistance = math.Min(r.ParetoDistance, p.Distance(q))
	}
	for _, q := range s.points {
		r.MaxWelfare = math.Max(r.MaxWelfare, q.Welfare())
	}
	if nash, ok := s.NashSolution(); ok {
		r.Nash, r.NashDistance = nash, p.Distance(nash)
	}
	if kalai, ok := s.KalaiSmorodinskySolution(); ok {
		r.Kalai, r.KalaiDistance = kalai, p.Distance(kalai)
	}
	return r, nil
}
