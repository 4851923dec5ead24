package game

import (
	"math"

	"planetfall/pkg/types"
)

// --- Combat ---

type Outcome string

const (
	AttackerDefeated Outcome = "attacker_defeated"
	DefendersCleared Outcome = "defenders_cleared"
	Stalemate        Outcome = "stalemate"
)

// DefaultMaxRounds bounds a battle where neither side can finish the other.
const DefaultMaxRounds = 1000

// Round is one attacker-first exchange. DefenderDamage is zero on the round
// that clears the group, since nobody is left to strike back.
type Round struct {
	N              int     `json:"n"`
	AttackerDamage float64 `json:"attacker_damage"`
	DefenderDamage float64 `json:"defender_damage"`
	AttackerHealth float64 `json:"attacker_health"`
	AttackerShield float64 `json:"attacker_shield"`
	DefenderHealth float64 `json:"defender_health"`
	DefenderShield float64 `json:"defender_shield"`
	Remaining      int     `json:"remaining"`
	Kill           bool    `json:"kill"`
}

type Battle struct {
	Outcome        Outcome `json:"outcome"`
	Rounds         []Round `json:"rounds"`
	AttackerHealth float64 `json:"attacker_health"`
	AttackerShield float64 `json:"attacker_shield"`
	Remaining      int     `json:"remaining"`
}

// Damage is what one side deals per strike after the other side's defense.
func Damage(attack, defense float64) float64 {
	return math.Max(0, attack-defense)
}

// absorb applies damage to shield first and health with the remainder.
func absorb(health, shield, dmg float64) (float64, float64) {
	if shield > 0 {
		taken := math.Min(shield, dmg)
		shield -= taken
		dmg -= taken
	}
	if dmg > 0 {
		health -= dmg
	}
	return health, shield
}

// Resolve fights attacker against quantity identical defenders, one at a time,
// starting from full template stats on both sides. It never touches storage.
// maxRounds <= 0 means DefaultMaxRounds.
func Resolve(attacker, defender types.UnitStats, quantity, maxRounds int) Battle {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	b := Battle{
		AttackerHealth: attacker.Health,
		AttackerShield: attacker.Shield,
		Remaining:      quantity,
	}
	if quantity <= 0 {
		b.Outcome = DefendersCleared
		b.Remaining = 0
		return b
	}
	if attacker.Health <= 0 {
		b.Outcome = AttackerDefeated
		return b
	}

	atkDmg := Damage(attacker.RangedAttack, defender.RangedDefense)
	defDmg := Damage(defender.MeleeAttack, attacker.MeleeDefense)
	if atkDmg == 0 && defDmg == 0 {
		b.Outcome = Stalemate
		return b
	}

	ah, as := attacker.Health, attacker.Shield
	dh, ds := defender.Health, defender.Shield

	for n := 1; ; n++ {
		if n > maxRounds {
			b.Outcome = Stalemate
			break
		}
		r := Round{N: n, AttackerDamage: atkDmg}

		dh, ds = absorb(dh, ds, atkDmg)
		if dh <= 0 {
			b.Remaining--
			r.Kill = true
			if b.Remaining > 0 {
				dh, ds = defender.Health, defender.Shield
			}
		}
		if b.Remaining <= 0 {
			r.AttackerHealth, r.AttackerShield = ah, as
			r.DefenderHealth, r.DefenderShield = dh, ds
			b.Rounds = append(b.Rounds, r)
			b.Outcome = DefendersCleared
			break
		}

		ah, as = absorb(ah, as, defDmg)
		r.DefenderDamage = defDmg

		as = math.Min(attacker.Shield, as+attacker.ShieldRegen)
		ds = math.Min(defender.Shield, ds+defender.ShieldRegen)

		r.AttackerHealth, r.AttackerShield = ah, as
		r.DefenderHealth, r.DefenderShield = dh, ds
		r.Remaining = b.Remaining
		b.Rounds = append(b.Rounds, r)

		if ah <= 0 {
			b.Outcome = AttackerDefeated
			break
		}
	}

	b.AttackerHealth, b.AttackerShield = ah, as
	return b
}
