package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"planetfall/pkg/types"
)

func TestTimelineExample(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tl := NewTimeline(start, start.Add(100*time.Second), DefaultExploreDuration)

	if tl.Travel != 35*time.Second {
		t.Errorf("Expected 35s travel, got %v", tl.Travel)
	}
	if !tl.Arrival.Equal(start.Add(35 * time.Second)) {
		t.Errorf("Wrong arrival %v", tl.Arrival)
	}
	if !tl.ExplorationEnd.Equal(start.Add(65 * time.Second)) {
		t.Errorf("Wrong exploration end %v", tl.ExplorationEnd)
	}

	checks := []struct {
		at   time.Duration
		want types.GroupStatus
	}{
		{0, types.GroupTraveling},
		{34 * time.Second, types.GroupTraveling},
		{35 * time.Second, types.GroupExploring},
		{36 * time.Second, types.GroupExploring},
		{66 * time.Second, types.GroupReturning},
		{100 * time.Second, types.GroupCompleted},
	}
	for _, c := range checks {
		if got := tl.StatusAt(start.Add(c.at)); got != c.want {
			t.Errorf("At T+%v expected %s, got %s", c.at, c.want, got)
		}
	}
}

func TestTimelineOddMilliseconds(t *testing.T) {
	start := time.UnixMilli(1_000)
	tl := NewTimeline(start, start.Add(30*time.Second+3*time.Millisecond), DefaultExploreDuration)
	if tl.Travel != time.Millisecond {
		t.Errorf("Expected floor to 1ms, got %v", tl.Travel)
	}
}

func TestNextStatusNeverRegresses(t *testing.T) {
	start := time.Unix(0, 0)
	tl := NewTimeline(start, start.Add(100*time.Second), DefaultExploreDuration)

	if got := NextStatus(types.GroupReturning, start.Add(36*time.Second), tl); got != types.GroupReturning {
		t.Errorf("Expected stored returning to stick, got %s", got)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 200; run++ {
		stored := types.GroupTraveling
		for tick := 0; tick < 20; tick++ {
			now := start.Add(time.Duration(rng.IntN(130)) * time.Second)
			next := NextStatus(stored, now, tl)
			if next.Rank() < stored.Rank() {
				t.Fatalf("Regressed from %s to %s", stored, next)
			}
			stored = next
		}
	}
}

func TestNeedsDiscovery(t *testing.T) {
	tests := []struct {
		stored, next types.GroupStatus
		want         bool
	}{
		{types.GroupTraveling, types.GroupTraveling, false},
		{types.GroupTraveling, types.GroupExploring, true},
		{types.GroupTraveling, types.GroupReturning, true},
		{types.GroupTraveling, types.GroupCompleted, true},
		{types.GroupExploring, types.GroupReturning, false},
		{types.GroupExploring, types.GroupExploring, false},
	}
	for _, tc := range tests {
		if got := NeedsDiscovery(tc.stored, tc.next); got != tc.want {
			t.Errorf("NeedsDiscovery(%s, %s) = %v", tc.stored, tc.next, got)
		}
	}
}
