package world

import (
	"context"
	"math"
	"time"

	"planetfall/pkg/store"
)

// Harvest credits every producing building with rate x whole seconds elapsed
// since its last harvest. It returns the number of buildings credited.
func (w *World) Harvest(ctx context.Context) (int, error) {
	buildings, err := w.store.ProducingBuildings(ctx)
	if err != nil {
		return 0, err
	}
	now := w.Now()
	credited := 0
	for _, b := range buildings {
		elapsed := math.Floor(now.Sub(b.LastHarvestAt).Seconds())
		if elapsed < 1 {
			continue
		}
		at := b.LastHarvestAt.Add(time.Duration(elapsed) * time.Second)
		var won bool
		err := w.store.InTx(ctx, func(q *store.Queries) error {
			ok, err := q.MarkHarvested(ctx, b.ID, b.LastHarvestAt, at)
			if err != nil || !ok {
				return err
			}
			won = true
			return q.AddStock(ctx, b.PlayerID, b.PlanetID, b.ProducingResourceID, b.ProductionRate*elapsed)
		})
		if err != nil {
			return credited, err
		}
		if won {
			credited++
		}
	}
	return credited, nil
}
