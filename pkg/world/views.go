package world

import (
	"context"

	"planetfall/pkg/store"
	"planetfall/pkg/types"
)

func (w *World) Planets(ctx context.Context, playerID string) ([]types.Planet, error) {
	return w.store.PlayerPlanets(ctx, playerID)
}

// requirePlanet fails with ErrNotFound unless the player is linked to the planet.
func (w *World) requirePlanet(ctx context.Context, playerID, planetID string) error {
	return requirePlanetIn(ctx, w.store.Queries, playerID, planetID)
}

func requirePlanetIn(ctx context.Context, q *store.Queries, playerID, planetID string) error {
	planets, err := q.PlayerPlanets(ctx, playerID)
	if err != nil {
		return err
	}
	for _, p := range planets {
		if p.ID == planetID {
			return nil
		}
	}
	return notFound("Planet not found or access denied")
}

// Locations is the player's view of a planet: discovered cells only.
func (w *World) Locations(ctx context.Context, playerID, planetID string) ([]types.Location, error) {
	if err := w.requirePlanet(ctx, playerID, planetID); err != nil {
		return nil, err
	}
	return w.store.ListLocations(ctx, planetID)
}

// IdleRobots lists the player's robots on a planet that are not away on an expedition.
func (w *World) IdleRobots(ctx context.Context, playerID, planetID string) ([]types.Robot, error) {
	robots, err := w.store.ListRobots(ctx, playerID, planetID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(robots))
	for i, r := range robots {
		ids[i] = r.ID
	}
	busy, err := w.store.BusyRobots(ctx, ids)
	if err != nil {
		return nil, err
	}
	idle := make([]types.Robot, 0, len(robots))
	for _, r := range robots {
		if !busy[r.ID] {
			idle = append(idle, r)
		}
	}
	return idle, nil
}

func (w *World) Buildings(ctx context.Context, playerID, planetID string) ([]types.Building, error) {
	return w.store.ListBuildings(ctx, playerID, planetID)
}

func (w *World) Stock(ctx context.Context, playerID string) ([]types.PlayerResource, error) {
	return w.store.Stock(ctx, playerID, "")
}

// PendingActions lists the player's actions that are still in progress.
func (w *World) PendingActions(ctx context.Context, playerID string) ([]types.Action, error) {
	return w.store.ListActions(ctx, playerID, types.ActionInProgress)
}
