package game

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNeighborhood(t *testing.T) {
	cells := Neighborhood(4, -2)
	if len(cells) != 9 {
		t.Fatalf("Expected 9 cells, got %d", len(cells))
	}
	seen := make(map[Cell]bool)
	for _, c := range cells {
		if seen[c] {
			t.Errorf("Duplicate cell %v", c)
		}
		seen[c] = true
	}
	if !seen[Cell{4, -2}] || !seen[Cell{3, -3}] || !seen[Cell{5, -1}] {
		t.Errorf("Missing centre or corners: %v", cells)
	}
}

func TestRollCellDistribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const n = 20000

	tests := []struct {
		center    bool
		emptyRate float64
		maxAliens int
	}{
		{true, 0.2, 5},
		{false, 4.0 / 6.0, 3},
	}
	for _, tc := range tests {
		empty := 0
		for i := 0; i < n; i++ {
			d := RollCell(rng, tc.center)
			switch d.Kind {
			case DiscoverEmpty:
				empty++
			case DiscoverAliens:
				if d.AlienCount < 1 || d.AlienCount > tc.maxAliens {
					t.Fatalf("Alien count %d out of range", d.AlienCount)
				}
			case DiscoverResource:
				if d.ResourceName == "" {
					t.Fatalf("Resource without a name")
				}
				if !tc.center && d.ResourceName != "Iron" {
					t.Fatalf("Surrounding cells only hold Iron, got %s", d.ResourceName)
				}
			}
		}
		rate := float64(empty) / n
		if math.Abs(rate-tc.emptyRate) > 0.02 {
			t.Errorf("center=%v: empty rate %.3f, expected ~%.3f", tc.center, rate, tc.emptyRate)
		}
	}
}
