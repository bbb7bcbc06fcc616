// Package concession computes the agent's time-dependent target utility.
package concession

import (
	"fmt"
	"math"
)

// Default curve shape.
const (
	DefaultExponent   = 0.5
	DefaultPhaseSplit = 3.0
)

// Curve is a two-phase concession schedule over normalized time t in [0, 1].
//
// Phase I, t <= 1/n, rises linearly from Min to Max:
//
//	target = Min + (Max - Min) · n · t
//
// Phase II, t > 1/n, concedes back towards Min:
//
//	target = Max - (Max - Min) · t^e
type Curve struct {
	Min        float64 // Pmin: worst reachable self-utility
	Max        float64 // Pmax: best reachable self-utility
	Exponent   float64 // e: smaller concedes faster early and slower late
	PhaseSplit float64 // n: phase I lasts 1/n of the session
}

// NewCurve returns a curve between min and max with the default shape.
func NewCurve(min, max float64) Curve {
	return Curve{
		Min:        min,
		Max:        max,
		Exponent:   DefaultExponent,
		PhaseSplit: DefaultPhaseSplit,
	}
}

// Validate checks the curve parameters.
func (c Curve) Validate() error {
	if c.PhaseSplit <= 0 {
		return fmt.Errorf("phase split must be > 0, got %f", c.PhaseSplit)
	}
	if c.Exponent <= 0 {
		return fmt.Errorf("concession exponent must be > 0, got %f", c.Exponent)
	}
	if c.Min > c.Max {
		return fmt.Errorf("min utility %f exceeds max utility %f", c.Min, c.Max)
	}
	return nil
}

// PhaseBoundary returns 1/n, the last instant of phase I.
func (c Curve) PhaseBoundary() float64 {
	return 1 / c.PhaseSplit
}

// TargetUtility returns the target utility at time t, clamped to [0, 1].
func (c Curve) TargetUtility(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	if t <= c.PhaseBoundary() {
		return c.Min + (c.Max-c.Min)*c.PhaseSplit*t
	}
	return c.Max - (c.Max-c.Min)*math.Pow(t, c.Exponent)
}
