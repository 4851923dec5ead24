package world

import (
	"context"
	"math/rand/v2"

	"planetfall/pkg/core"
	"planetfall/pkg/game"
	"planetfall/pkg/store"
	"planetfall/pkg/types"
)

// Discover reveals the 3x3 block around (x, y). Cells already on record are
// never rerolled; the returned cells are the ones newly written.
func (w *World) Discover(ctx context.Context, planetID string, x, y int) ([]types.Location, error) {
	var cells []types.Location
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		cells, err = w.discover(ctx, q, planetID, x, y)
		return err
	})
	return cells, err
}

func (w *World) discover(ctx context.Context, q *store.Queries, planetID string, cx, cy int) ([]types.Location, error) {
	known, err := q.DiscoveredIn(ctx, planetID, cx-1, cy-1, cx+1, cy+1)
	if err != nil {
		return nil, err
	}

	var (
		batch     []types.Location
		resources = make(map[string]string)
		alienID   string
	)
	for _, c := range game.Neighborhood(cx, cy) {
		if known[[2]int{c.X, c.Y}] {
			continue
		}
		// Each coordinate rolls from its own stream so content does not
		// depend on the order cells are revealed.
		rng := rand.New(rand.NewPCG(core.Seed(w.cfg.World.Seed, planetID, c.X, c.Y)))
		d := game.RollCell(rng, c.X == cx && c.Y == cy)

		loc := types.Location{PlanetID: planetID, X: c.X, Y: c.Y}
		switch d.Kind {
		case game.DiscoverResource:
			id, ok := resources[d.ResourceName]
			if !ok {
				r, err := q.UpsertResource(ctx, d.ResourceName, d.ResourceDescription)
				if err != nil {
					return nil, err
				}
				id = r.ID
				resources[d.ResourceName] = id
			}
			loc.HasResourceMine = true
			loc.ResourceID = id
			loc.ResourceName = d.ResourceName
		case game.DiscoverAliens:
			if alienID == "" {
				at, err := q.AlienTypeByName(ctx, w.cfg.Discovery.AlienType)
				if err != nil {
					return nil, err
				}
				alienID = at.ID
			}
			loc.HasAliens = true
			loc.AlienTypeID = alienID
			loc.AlienQuantity = d.AlienCount
		}
		batch = append(batch, loc)
	}
	if len(batch) == 0 {
		return nil, nil
	}
	return q.InsertLocations(ctx, batch)
}
