package agent

import (
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"
)

func TestRoundClock(t *testing.T) {
	c := NewRoundClock(4)
	if c.Time() != 0 || c.Done() {
		t.Fatalf("New clock should start at 0")
	}
	c.Tick()
	if c.Time() != 0.25 || c.Round() != 1 {
		t.Errorf("Expected t=0.25 after one round, got %f", c.Time())
	}
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	if c.Time() != 1 || !c.Done() {
		t.Errorf("Clock should saturate at the deadline, got %f", c.Time())
	}
	if NewRoundClock(0).Rounds() != 1 {
		t.Error("Session length should be at least one round")
	}
}

func TestDeadlineClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fake := testingclock.NewFakePassiveClock(start)
	c := NewDeadlineClock(fake, 10*time.Second)

	if c.Time() != 0 {
		t.Errorf("Expected t=0 at start, got %f", c.Time())
	}
	fake.SetTime(start.Add(3 * time.Second))
	if got := c.Time(); got < 0.3-1e-9 || got > 0.3+1e-9 {
		t.Errorf("Expected t=0.3, got %f", got)
	}
	fake.SetTime(start.Add(time.Minute))
	if c.Time() != 1 || !c.Done() {
		t.Errorf("Expected t=1 past the deadline, got %f", c.Time())
	}
}
