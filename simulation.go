package main

import (
	"context"
	"time"
)

// tickWorld is one sweep: due actions, expedition phases, production and
// history pruning.
func tickWorld(ctx context.Context) {
	start := time.Now()

	resolved := engine.ResolveDue(ctx)
	advanced := engine.AdvanceAll(ctx)

	harvested, err := engine.Harvest(ctx)
	if err != nil {
		ErrorLog.Printf("Harvest failed: %v", err)
	}
	pruned, err := engine.PruneExpeditions(ctx)
	if err != nil {
		ErrorLog.Printf("Prune failed: %v", err)
	}

	if resolved+advanced+int(pruned) > 0 {
		InfoLog.Printf("Sweep: %d actions, %d expeditions, %d refineries, %d pruned in %v",
			resolved, advanced, harvested, pruned, time.Since(start).Round(time.Millisecond))
	}
}

func runGameLoop(ctx context.Context) {
	ticker := time.NewTicker(Config.Sweeper.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickWorld(ctx)
		}
	}
}
