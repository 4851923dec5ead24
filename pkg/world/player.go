package world

import (
	"context"
	"fmt"

	"planetfall/pkg/store"
	"planetfall/pkg/types"
)

const (
	MsgPlayerInitialized   = "Player initialized successfully"
	MsgPlayerAlreadyExists = "Player already initialized"
	MsgLanded              = "Successfully landed on planet!"
)

// InitPlayer gives a new player a home planet with an Iridium mine, a starter
// robot, a refinery on the mine and starting stock. Home ids derive from the
// player id, so a repeated or concurrent call changes nothing.
func (w *World) InitPlayer(ctx context.Context, playerID string) (string, error) {
	if playerID == "" {
		return "", precondition("player id is required")
	}
	cat, eco, home := w.cfg.Catalog, w.cfg.Economy, w.cfg.World
	msg := MsgPlayerInitialized
	now := w.Now()

	err := w.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := q.EnsurePlayer(ctx, playerID, playerID, now); err != nil {
			return err
		}
		existing, err := q.PlayerPlanets(ctx, playerID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			msg = MsgPlayerAlreadyExists
			return nil
		}

		planet, err := q.InsertPlanet(ctx, types.Planet{
			ID:          scopedID(playerID, "home"),
			Name:        fmt.Sprintf("Player %s Home Planet", short(playerID)),
			Description: "Your starting world.",
		})
		if err != nil {
			return err
		}
		if _, err := q.LinkPlanet(ctx, playerID, planet.ID); err != nil {
			return err
		}

		currency, err := q.UpsertResource(ctx, eco.Currency, "A rare, shiny metal.")
		if err != nil {
			return err
		}
		_, err = q.InsertLocations(ctx, []types.Location{{
			PlanetID: planet.ID, X: home.HomeX, Y: home.HomeY, HasResourceMine: true, ResourceID: currency.ID,
		}})
		if err != nil {
			return err
		}

		rt, err := q.RobotTypeByName(ctx, cat.StarterRobot)
		if err != nil {
			return err
		}
		_, err = q.InsertRobot(ctx, types.Robot{
			ID:          scopedID(playerID, "starter-robot"),
			PlayerID:    playerID,
			PlanetID:    planet.ID,
			X:           home.HomeX,
			Y:           home.HomeY,
			Name:        "Explorer Bot 1",
			RobotTypeID: rt.ID,
		})
		if err != nil {
			return err
		}

		refinery, err := q.BuildingTypeByName(ctx, cat.Refinery)
		if err != nil {
			return err
		}
		_, err = q.InsertBuilding(ctx, types.Building{
			ID:                  scopedID(playerID, "home-refinery"),
			PlayerID:            playerID,
			PlanetID:            planet.ID,
			X:                   home.HomeX,
			Y:                   home.HomeY,
			BuildingTypeID:      refinery.ID,
			ProducingResourceID: currency.ID,
			ProductionRate:      home.RefineryProductionRate,
			LastHarvestAt:       now,
		})
		if err != nil {
			return err
		}
		return q.AddStock(ctx, playerID, planet.ID, currency.ID, eco.StartingStock)
	})
	if err != nil {
		return "", err
	}
	if msg == MsgPlayerInitialized {
		w.info.Printf("New Player: %s", playerID)
	}
	return msg, nil
}

// Land links a player with no planet to the shared starting planet and grants
// the landing stock and building.
func (w *World) Land(ctx context.Context, playerID string) (types.Planet, error) {
	var planet types.Planet
	now := w.Now()
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := q.EnsurePlayer(ctx, playerID, playerID, now); err != nil {
			return err
		}
		existing, err := q.PlayerPlanets(ctx, playerID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return precondition("Player has already landed on a planet")
		}
		planet, err = q.StartingPlanet(ctx)
		if err != nil {
			return err
		}
		if _, err := q.LinkPlanet(ctx, playerID, planet.ID); err != nil {
			return err
		}
		res, err := q.UpsertResource(ctx, w.cfg.Economy.LandingResource, "A fundamental crafting material.")
		if err != nil {
			return err
		}
		if err := q.AddStock(ctx, playerID, planet.ID, res.ID, w.cfg.Economy.StartingStock); err != nil {
			return err
		}
		if w.cfg.Economy.LandingBuilding == "" {
			return nil
		}
		// The landing building refines nothing until a mine is assigned.
		bt, err := q.BuildingTypeByName(ctx, w.cfg.Economy.LandingBuilding)
		if err != nil {
			return err
		}
		_, err = q.InsertBuilding(ctx, types.Building{
			ID:             scopedID(playerID, "landing-building"),
			PlayerID:       playerID,
			PlanetID:       planet.ID,
			X:              w.cfg.World.LandingSiteX,
			Y:              w.cfg.World.LandingSiteY,
			BuildingTypeID: bt.ID,
			LastHarvestAt:  now,
		})
		return err
	})
	if err != nil {
		return types.Planet{}, err
	}
	w.info.Printf("LANDING: %s on %s", playerID, planet.Name)
	return planet, nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
