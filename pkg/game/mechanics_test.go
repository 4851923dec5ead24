package game

import (
	"testing"
	"time"
)

func TestPlanExpeditionUsesSlowestRobot(t *testing.T) {
	now := time.Unix(1000, 0)
	p := PlanExpedition(0, 0, 3, 1, []int{5, 7, 3}, DefaultExploreDuration, now)

	if p.Distance != 4 {
		t.Errorf("Expected distance 4, got %d", p.Distance)
	}
	if p.TravelSeconds != 28 {
		t.Errorf("Expected 28s travel, got %d", p.TravelSeconds)
	}
	if p.TotalSeconds != 86 {
		t.Errorf("Expected 86s total, got %d", p.TotalSeconds)
	}
	if !p.End.Equal(now.Add(86 * time.Second)) {
		t.Errorf("Wrong end %v", p.End)
	}

	// The planned schedule and the phase engine must agree on arrival.
	tl := NewTimeline(p.Start, p.End, DefaultExploreDuration)
	if !tl.Arrival.Equal(p.Arrival) {
		t.Errorf("Timeline arrival %v differs from plan %v", tl.Arrival, p.Arrival)
	}
}

func TestManhattanDistance(t *testing.T) {
	if d := ManhattanDistance(2, -3, -1, 4); d != 10 {
		t.Errorf("Expected 10, got %d", d)
	}
}
