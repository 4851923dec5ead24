// Command battlesim replays a robot type against an alien group many times
// with jittered stats and reports how the fight tends to go.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"planetfall/pkg/config"
	"planetfall/pkg/game"
	"planetfall/pkg/types"
)

// RoundRow is one CSV line: a single round of a single simulated battle.
type RoundRow struct {
	Battle         int     `csv:"battle"`
	Round          int     `csv:"round"`
	AttackerDamage float64 `csv:"attacker_damage"`
	DefenderDamage float64 `csv:"defender_damage"`
	AttackerHealth float64 `csv:"attacker_health"`
	AttackerShield float64 `csv:"attacker_shield"`
	DefenderHealth float64 `csv:"defender_health"`
	DefenderShield float64 `csv:"defender_shield"`
	Remaining      int     `csv:"remaining"`
	Kill           bool    `csv:"kill"`
}

func main() {
	robot := flag.String("robot", "Basic Explorer Bot", "robot type name")
	alien := flag.String("alien", "Rock Crawler", "alien type name")
	quantity := flag.Int("quantity", 3, "aliens in the group")
	runs := flag.Int("n", 1000, "battles to simulate")
	jitter := flag.Float64("jitter", 0.1, "relative stat jitter, 0 disables")
	seed := flag.Uint64("seed", 1, "rng seed")
	out := flag.String("csv", "", "write per-round rows to this file")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("PLANETFALL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	rt, at := cfg.RobotType(*robot), cfg.AlienType(*alien)
	if rt == nil || at == nil {
		fmt.Fprintf(os.Stderr, "unknown robot %q or alien %q\n", *robot, *alien)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	outcomes := make(map[game.Outcome]int)
	rounds := make([]float64, 0, *runs)
	health := make([]float64, 0, *runs)
	var rows []RoundRow

	for i := 0; i < *runs; i++ {
		b := game.Resolve(jittered(rng, rt.Stats, *jitter), jittered(rng, at.Stats, *jitter), *quantity, cfg.Combat.MaxRounds)
		outcomes[b.Outcome]++
		rounds = append(rounds, float64(len(b.Rounds)))
		if b.Outcome == game.DefendersCleared {
			health = append(health, b.AttackerHealth)
		}
		if *out != "" {
			for _, r := range b.Rounds {
				rows = append(rows, RoundRow{
					Battle: i, Round: r.N,
					AttackerDamage: r.AttackerDamage, DefenderDamage: r.DefenderDamage,
					AttackerHealth: r.AttackerHealth, AttackerShield: r.AttackerShield,
					DefenderHealth: r.DefenderHealth, DefenderShield: r.DefenderShield,
					Remaining: r.Remaining, Kill: r.Kill,
				})
			}
		}
	}

	mean, std := stat.MeanStdDev(rounds, nil)
	fmt.Printf("%s vs %d x %s, %d battles\n", rt.Name, *quantity, at.Name, *runs)
	for _, o := range []game.Outcome{game.DefendersCleared, game.AttackerDefeated, game.Stalemate} {
		fmt.Printf("  %-18s %6.2f%%\n", o, 100*float64(outcomes[o])/float64(*runs))
	}
	fmt.Printf("  rounds             mean %.1f  stddev %.1f\n", mean, std)
	if len(health) > 0 {
		hm, hs := stat.MeanStdDev(health, nil)
		fmt.Printf("  health after win   mean %.1f  stddev %.1f\n", hm, hs)
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "csv: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&rows, f); err != nil {
			fmt.Fprintf(os.Stderr, "csv: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rounds to %s\n", len(rows), *out)
	}
}

// jittered scales every stat by a uniform factor in [1-j, 1+j].
func jittered(rng *rand.Rand, s types.UnitStats, j float64) types.UnitStats {
	if j <= 0 {
		return s
	}
	f := func(v float64) float64 { return v * (1 + j*(2*rng.Float64()-1)) }
	return types.UnitStats{
		Health:        f(s.Health),
		Shield:        f(s.Shield),
		ShieldRegen:   f(s.ShieldRegen),
		RangedAttack:  f(s.RangedAttack),
		RangedDefense: f(s.RangedDefense),
		MeleeAttack:   f(s.MeleeAttack),
		MeleeDefense:  f(s.MeleeDefense),
	}
}
