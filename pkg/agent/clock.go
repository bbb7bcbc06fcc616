package agent

import (
	"time"

	"k8s.io/utils/clock"
)

// Clock reports normalized negotiation time in [0, 1].
type Clock interface {
	Time() float64
}

// RoundClock measures time in rounds: after r of n rounds, t = r/n.
type RoundClock struct {
	rounds int
	round  int
}

// NewRoundClock returns a clock for a session of the given number of rounds.
func NewRoundClock(rounds int) *RoundClock {
	if rounds < 1 {
		rounds = 1
	}
	return &RoundClock{rounds: rounds}
}

// Tick advances the clock by one round.
func (c *RoundClock) Tick() {
	if c.round < c.rounds {
		c.round++
	}
}

// Round returns the number of rounds played.
func (c *RoundClock) Round() int {
	return c.round
}

// Rounds returns the session length in rounds.
func (c *RoundClock) Rounds() int {
	return c.rounds
}

// Done reports whether the deadline has been reached.
func (c *RoundClock) Done() bool {
	return c.round >= c.rounds
}

// Time implements Clock.
func (c *RoundClock) Time() float64 {
	return float64(c.round) / float64(c.rounds)
}

// DeadlineClock measures time against a wall-clock deadline.
type DeadlineClock struct {
	clock    clock.PassiveClock
	start    time.Time
	deadline time.Duration
}

// NewDeadlineClock starts a clock that reaches 1 after deadline. A nil clk
// uses the real clock.
func NewDeadlineClock(clk clock.PassiveClock, deadline time.Duration) *DeadlineClock {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &DeadlineClock{clock: clk, start: clk.Now(), deadline: deadline}
}

// Time implements Clock. It saturates at 1 once the deadline passes.
func (c *DeadlineClock) Time() float64 {
	if c.deadline <= 0 {
		return 1
	}
	t := float64(c.clock.Since(c.start)) / float64(c.deadline)
	if t > 1 {
		return 1
	}
	return t
}

// Done reports whether the deadline has passed.
func (c *DeadlineClock) Done() bool {
	return c.Time() >= 1
}
