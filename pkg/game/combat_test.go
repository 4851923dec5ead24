package game

import (
	"testing"

	"planetfall/pkg/types"
)

var explorerBot = types.UnitStats{
	Health: 100, Shield: 50, ShieldRegen: 1,
	RangedAttack: 10, RangedDefense: 3,
	MeleeAttack: 5, MeleeDefense: 2,
}

func TestFirstRoundShieldAbsorb(t *testing.T) {
	alien := types.UnitStats{Health: 20, Shield: 5, RangedDefense: 3, MeleeAttack: 4}

	b := Resolve(explorerBot, alien, 1, 0)
	if len(b.Rounds) == 0 {
		t.Fatalf("Expected at least one round")
	}
	r := b.Rounds[0]
	if r.AttackerDamage != 7 {
		t.Errorf("Expected 7 damage per round, got %v", r.AttackerDamage)
	}
	if r.DefenderShield != 0 {
		t.Errorf("Expected alien shield depleted, got %v", r.DefenderShield)
	}
	if r.DefenderHealth != 18 {
		t.Errorf("Expected alien health 18 after first round, got %v", r.DefenderHealth)
	}
}

func TestDefendersCleared(t *testing.T) {
	attacker := types.UnitStats{Health: 50, RangedAttack: 100}
	alien := types.UnitStats{Health: 10, MeleeAttack: 4}

	b := Resolve(attacker, alien, 3, 0)
	if b.Outcome != DefendersCleared {
		t.Fatalf("Expected defenders cleared, got %s", b.Outcome)
	}
	if len(b.Rounds) != 3 {
		t.Fatalf("Expected one kill per round over 3 rounds, got %d", len(b.Rounds))
	}
	// The freshly spawned alien strikes back on rounds one and two.
	if b.Rounds[0].DefenderDamage != 4 || b.Rounds[1].DefenderDamage != 4 {
		t.Errorf("Expected replacement aliens to strike back")
	}
	if b.Rounds[2].DefenderDamage != 0 {
		t.Errorf("Expected no counter attack on the clearing round, got %v", b.Rounds[2].DefenderDamage)
	}
	if b.Remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", b.Remaining)
	}
	if b.AttackerHealth != 42 {
		t.Errorf("Expected attacker health 42, got %v", b.AttackerHealth)
	}
}

func TestAttackerDefeated(t *testing.T) {
	attacker := types.UnitStats{Health: 10, RangedAttack: 1}
	alien := types.UnitStats{Health: 1000, MeleeAttack: 5}

	b := Resolve(attacker, alien, 2, 0)
	if b.Outcome != AttackerDefeated {
		t.Fatalf("Expected attacker defeated, got %s", b.Outcome)
	}
	if len(b.Rounds) != 2 {
		t.Errorf("Expected 2 rounds, got %d", len(b.Rounds))
	}
	if b.Remaining != 2 {
		t.Errorf("Expected both aliens alive, got %d", b.Remaining)
	}
}

func TestStalemate(t *testing.T) {
	tests := []struct {
		name     string
		attacker types.UnitStats
		defender types.UnitStats
		cap      int
		rounds   int
	}{
		{
			name:     "no damage either way",
			attacker: types.UnitStats{Health: 10, RangedAttack: 3, MeleeDefense: 9},
			defender: types.UnitStats{Health: 10, RangedDefense: 5, MeleeAttack: 2},
			cap:      10,
			rounds:   0,
		},
		{
			name:     "regeneration outpaces damage",
			attacker: types.UnitStats{Health: 10, RangedAttack: 1},
			defender: types.UnitStats{Health: 10, Shield: 5, ShieldRegen: 1},
			cap:      50,
			rounds:   50,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := Resolve(tc.attacker, tc.defender, 1, tc.cap)
			if b.Outcome != Stalemate {
				t.Fatalf("Expected stalemate, got %s", b.Outcome)
			}
			if len(b.Rounds) != tc.rounds {
				t.Errorf("Expected %d rounds, got %d", tc.rounds, len(b.Rounds))
			}
		})
	}
}

func TestAttackerLossBoundedByRounds(t *testing.T) {
	aliens := []types.UnitStats{
		{Health: 30, Shield: 5, ShieldRegen: 0.5, RangedDefense: 3, MeleeAttack: 8, MeleeDefense: 2},
		{Health: 60, Shield: 20, ShieldRegen: 2, RangedDefense: 1, MeleeAttack: 12},
		{Health: 5, MeleeAttack: 30},
	}
	for i, alien := range aliens {
		for q := 1; q <= 5; q++ {
			b := Resolve(explorerBot, alien, q, 0)
			perRound := Damage(alien.MeleeAttack, explorerBot.MeleeDefense)
			lost := (explorerBot.Health + explorerBot.Shield) - (b.AttackerHealth + b.AttackerShield)
			if lost > float64(len(b.Rounds))*perRound+1e-9 {
				t.Errorf("alien %d x%d: lost %v over %d rounds exceeds bound", i, q, lost, len(b.Rounds))
			}
			if b.Outcome == Stalemate {
				t.Errorf("alien %d x%d: expected a decisive battle", i, q)
			}
		}
	}
}
