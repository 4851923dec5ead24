package world

import (
	"context"
	"errors"
	"fmt"

	"planetfall/pkg/game"
	"planetfall/pkg/store"
	"planetfall/pkg/types"
)

const (
	MsgActionCompleted        = "Action completed successfully"
	MsgActionAlreadyCompleted = "Action already completed"
)

// errLostRace rolls back a completion another worker already committed.
var errLostRace = errors.New("action completed concurrently")

// ActionRequest is a queued player command. Coordinates are pointers so a
// missing value can be told apart from zero.
type ActionRequest struct {
	Type           types.ActionType `json:"actionType"`
	RobotID        string           `json:"robotId"`
	TargetX        *int             `json:"targetX"`
	TargetY        *int             `json:"targetY"`
	BuildingTypeID string           `json:"buildingTypeId"`
	ResourceID     string           `json:"resourceId"`
	PlanetID       string           `json:"currentPlanetId"`
}

type ActionStarted struct {
	Message           string `json:"message"`
	ActionID          string `json:"actionId"`
	TravelTimeSeconds int    `json:"travelTimeSeconds,omitempty"`
	BuildTimeSeconds  int    `json:"buildTimeSeconds,omitempty"`
}

// StartAction validates and pays for a command, then queues it until its end time.
func (w *World) StartAction(ctx context.Context, playerID string, req ActionRequest) (ActionStarted, error) {
	switch req.Type {
	case types.ActionExplore:
		return w.startExplore(ctx, playerID, req)
	case types.ActionBuildRefinery:
		return w.startRefinery(ctx, playerID, req)
	case types.ActionBuildRobot:
		return w.startRobot(ctx, playerID, req)
	}
	return ActionStarted{}, precondition("Unknown action type %q", req.Type)
}

func (w *World) startExplore(ctx context.Context, playerID string, req ActionRequest) (ActionStarted, error) {
	if req.RobotID == "" || req.TargetX == nil || req.TargetY == nil {
		return ActionStarted{}, precondition("Missing parameters for explore action")
	}
	var out ActionStarted
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		robot, err := q.RobotByID(ctx, req.RobotID)
		if err != nil {
			return err
		}
		if robot.PlayerID != playerID {
			return notFound("Robot not found or does not belong to player")
		}
		rt, err := q.RobotTypeByID(ctx, robot.RobotTypeID)
		if err != nil {
			return err
		}
		planetID := req.PlanetID
		if planetID == "" {
			planetID = robot.PlanetID
		}
		if err := requirePlanetIn(ctx, q, playerID, planetID); err != nil {
			return err
		}
		if err := robotFree(ctx, q, robot.ID); err != nil {
			return err
		}
		travel := game.TravelTime(robot.X, robot.Y, *req.TargetX, *req.TargetY, rt.TravelSpeed)
		now := w.Now()
		a, err := q.InsertAction(ctx, types.Action{
			PlayerID:  playerID,
			Type:      types.ActionExplore,
			TargetID:  robot.ID,
			TargetX:   *req.TargetX,
			TargetY:   *req.TargetY,
			PlanetID:  planetID,
			StartTime: now,
			EndTime:   now.Add(travel),
			Status:    types.ActionInProgress,
		})
		if err != nil {
			return err
		}
		out = ActionStarted{Message: "Exploration initiated", ActionID: a.ID, TravelTimeSeconds: int(travel.Seconds())}
		return nil
	})
	return out, err
}

func (w *World) startRefinery(ctx context.Context, playerID string, req ActionRequest) (ActionStarted, error) {
	if req.TargetX == nil || req.TargetY == nil || req.ResourceID == "" || req.PlanetID == "" {
		return ActionStarted{}, precondition("Missing parameters for build_refinery action")
	}
	eco := w.cfg.Economy
	var out ActionStarted
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		var bt types.BuildingType
		var err error
		if req.BuildingTypeID != "" {
			bt, err = q.BuildingTypeByID(ctx, req.BuildingTypeID)
		} else {
			bt, err = q.BuildingTypeByName(ctx, w.cfg.Catalog.Refinery)
		}
		if err != nil {
			return err
		}
		if _, err := q.ResourceByID(ctx, req.ResourceID); err != nil {
			return err
		}
		if err := requirePlanetIn(ctx, q, playerID, req.PlanetID); err != nil {
			return err
		}
		if err := w.spend(ctx, q, playerID, req.PlanetID, eco.RefineryCost, "refinery"); err != nil {
			return err
		}

		build := bt.CraftingTimeSecond
		now := w.Now()
		a, err := q.InsertAction(ctx, types.Action{
			PlayerID:  playerID,
			Type:      types.ActionBuildRefinery,
			TargetID:  bt.ID,
			TargetX:   *req.TargetX,
			TargetY:   *req.TargetY,
			PlanetID:  req.PlanetID,
			StartTime: now,
			EndTime:   now.Add(secs(build)),
			Status:    types.ActionInProgress,
		})
		if err != nil {
			return err
		}
		// A refinery sits on a mine. An unexplored destination is recorded as
		// one; an explored cell keeps whatever it already holds.
		_, err = q.InsertLocations(ctx, []types.Location{{
			PlanetID:        req.PlanetID,
			X:               *req.TargetX,
			Y:               *req.TargetY,
			HasResourceMine: true,
			ResourceID:      req.ResourceID,
		}})
		if err != nil {
			return err
		}
		out = ActionStarted{Message: "Refinery construction initiated", ActionID: a.ID, BuildTimeSeconds: build}
		return nil
	})
	return out, err
}

func (w *World) startRobot(ctx context.Context, playerID string, req ActionRequest) (ActionStarted, error) {
	if req.PlanetID == "" {
		return ActionStarted{}, precondition("Missing parameters for build_robot action")
	}
	eco := w.cfg.Economy
	var out ActionStarted
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		rt, err := q.RobotTypeByName(ctx, w.cfg.Catalog.StarterRobot)
		if err != nil {
			return err
		}
		if err := w.spend(ctx, q, playerID, req.PlanetID, eco.RobotCost, "robot"); err != nil {
			return err
		}
		now := w.Now()
		a, err := q.InsertAction(ctx, types.Action{
			PlayerID:  playerID,
			Type:      types.ActionBuildRobot,
			TargetID:  rt.ID,
			TargetX:   w.cfg.World.HomeX,
			TargetY:   w.cfg.World.HomeY,
			PlanetID:  req.PlanetID,
			StartTime: now,
			EndTime:   now.Add(eco.RobotBuildTime),
			Status:    types.ActionInProgress,
		})
		if err != nil {
			return err
		}
		out = ActionStarted{Message: "Robot construction initiated", ActionID: a.ID, BuildTimeSeconds: int(eco.RobotBuildTime.Seconds())}
		return nil
	})
	return out, err
}

// robotFree fails when the robot is on an expedition or already has an
// explore action queued.
func robotFree(ctx context.Context, q *store.Queries, robotID string) error {
	busy, err := q.BusyRobots(ctx, []string{robotID})
	if err != nil {
		return err
	}
	if busy[robotID] {
		return precondition("Robot is already on an expedition")
	}
	pending, err := q.PendingExplores(ctx, []string{robotID})
	if err != nil {
		return err
	}
	if pending[robotID] {
		return precondition("Robot already has an exploration in progress")
	}
	return nil
}

// spend takes the build cost in the configured currency or fails without
// touching stock.
func (w *World) spend(ctx context.Context, q *store.Queries, playerID, planetID string, cost float64, what string) error {
	currency, err := q.UpsertResource(ctx, w.cfg.Economy.Currency, "")
	if err != nil {
		return err
	}
	ok, err := q.SpendStock(ctx, playerID, planetID, currency.ID, cost)
	if err != nil {
		return err
	}
	if !ok {
		return precondition("Insufficient %s to build %s", currency.Name, what)
	}
	return nil
}

// ResolveAction applies a due action's effect and marks it completed. Calling
// it again on a completed action reports success and changes nothing.
func (w *World) ResolveAction(ctx context.Context, playerID, actionID string) (string, error) {
	a, err := w.store.ActionForPlayer(ctx, playerID, actionID)
	if err != nil {
		return "", err
	}
	if a.Status == types.ActionCompleted {
		return MsgActionAlreadyCompleted, nil
	}
	if w.Now().Before(a.EndTime) {
		return "", precondition("Action not yet complete")
	}

	var battle *battleReport
	err = w.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		switch a.Type {
		case types.ActionExplore:
			battle, err = w.completeExplore(ctx, q, a)
		case types.ActionBuildRefinery:
			err = w.completeRefinery(ctx, q, a)
		case types.ActionBuildRobot:
			err = w.completeRobot(ctx, q, a)
		default:
			w.errs.Printf("Unhandled action type on completion: %s (action %s)", a.Type, a.ID)
		}
		if err != nil {
			return err
		}
		ok, err := q.CompleteAction(ctx, a.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errLostRace
		}
		return nil
	})
	if errors.Is(err, errLostRace) {
		return MsgActionAlreadyCompleted, nil
	}
	if err != nil {
		return "", err
	}

	if battle != nil {
		w.info.Printf("BATTLE: robot %s vs %d alien(s) at (%d, %d): %s after %d rounds",
			a.TargetID, battle.Quantity, a.TargetX, a.TargetY, battle.Outcome, battle.Rounds)
		w.publish(playerID, types.EventBattleResolved, battle)
	}
	w.publish(playerID, types.EventActionCompleted, map[string]interface{}{
		"actionId":   a.ID,
		"actionType": string(a.Type),
		"planetId":   a.PlanetID,
	})
	return MsgActionCompleted, nil
}

type battleReport struct {
	ActionID string       `json:"actionId" msgpack:"actionId"`
	RobotID  string       `json:"robotId" msgpack:"robotId"`
	PlanetID string       `json:"planetId" msgpack:"planetId"`
	X        int          `json:"x" msgpack:"x"`
	Y        int          `json:"y" msgpack:"y"`
	Quantity int          `json:"quantity" msgpack:"quantity"`
	Outcome  game.Outcome `json:"outcome" msgpack:"outcome"`
	Rounds   int          `json:"rounds" msgpack:"rounds"`
	Digest   string       `json:"digest" msgpack:"digest"`
}

// completeExplore moves the robot to its target and fights whatever holds the cell.
func (w *World) completeExplore(ctx context.Context, q *store.Queries, a types.Action) (*battleReport, error) {
	robot, err := q.RobotByID(ctx, a.TargetID)
	if errors.Is(err, types.ErrNotFound) {
		// Destroyed or scrapped while underway; nothing arrives.
		w.info.Printf("EXPLORE: robot %s gone before action %s arrived", a.TargetID, a.ID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := q.PlaceRobot(ctx, robot.ID, a.PlanetID, a.TargetX, a.TargetY); err != nil {
		return nil, err
	}

	loc, err := q.LocationAt(ctx, a.PlanetID, a.TargetX, a.TargetY)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !loc.HasAliens || loc.AlienQuantity <= 0 || loc.AlienTypeID == "" {
		return nil, nil
	}

	rt, err := q.RobotTypeByID(ctx, robot.RobotTypeID)
	if err != nil {
		return nil, err
	}
	at, err := q.AlienTypeByID(ctx, loc.AlienTypeID)
	if err != nil {
		return nil, err
	}

	// Robots always fight at template stats; damage does not carry over.
	result := game.Resolve(rt.Stats, at.Stats, loc.AlienQuantity, w.cfg.Combat.MaxRounds)
	blob, digest, err := game.EncodeBattle(result)
	if err != nil {
		return nil, fmt.Errorf("encode battle: %w", err)
	}
	err = q.InsertBattleLog(ctx, types.BattleLog{
		ID:        effectID(a.ID, "battle"),
		ActionID:  a.ID,
		PlanetID:  a.PlanetID,
		X:         a.TargetX,
		Y:         a.TargetY,
		Outcome:   string(result.Outcome),
		Rounds:    len(result.Rounds),
		Digest:    digest,
		Blob:      blob,
		CreatedAt: w.Now(),
	})
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case game.AttackerDefeated:
		err = q.DeleteRobot(ctx, robot.ID)
	case game.DefendersCleared:
		err = q.ClearAliens(ctx, loc.ID)
	}
	if err != nil {
		return nil, err
	}
	return &battleReport{
		ActionID: a.ID,
		RobotID:  robot.ID,
		PlanetID: a.PlanetID,
		X:        a.TargetX,
		Y:        a.TargetY,
		Quantity: loc.AlienQuantity,
		Outcome:  result.Outcome,
		Rounds:   len(result.Rounds),
		Digest:   digest,
	}, nil
}

func (w *World) completeRefinery(ctx context.Context, q *store.Queries, a types.Action) error {
	loc, err := q.LocationAt(ctx, a.PlanetID, a.TargetX, a.TargetY)
	if errors.Is(err, types.ErrNotFound) || (err == nil && loc.ResourceID == "") {
		return precondition("Could not find resource at (%d, %d) for refinery", a.TargetX, a.TargetY)
	}
	if err != nil {
		return err
	}
	_, err = q.InsertBuilding(ctx, types.Building{
		ID:                  effectID(a.ID, "building"),
		PlayerID:            a.PlayerID,
		PlanetID:            a.PlanetID,
		X:                   a.TargetX,
		Y:                   a.TargetY,
		BuildingTypeID:      a.TargetID,
		ProducingResourceID: loc.ResourceID,
		ProductionRate:      w.cfg.World.RefineryProductionRate,
		LastHarvestAt:       w.Now(),
	})
	return err
}

func (w *World) completeRobot(ctx context.Context, q *store.Queries, a types.Action) error {
	rt, err := q.RobotTypeByID(ctx, a.TargetID)
	if err != nil {
		return err
	}
	id := effectID(a.ID, "robot")
	_, err = q.InsertRobot(ctx, types.Robot{
		ID:          id,
		PlayerID:    a.PlayerID,
		PlanetID:    a.PlanetID,
		X:           w.cfg.World.HomeX,
		Y:           w.cfg.World.HomeY,
		Name:        fmt.Sprintf("%s %s", rt.Name, id[:4]),
		RobotTypeID: rt.ID,
	})
	return err
}

// ResolveDue completes every action past its end time, for all players.
func (w *World) ResolveDue(ctx context.Context) int {
	due, err := w.store.DueActions(ctx, w.Now())
	if err != nil {
		w.errs.Printf("Action sweep failed: %v", err)
		return 0
	}
	done := 0
	for _, a := range due {
		if _, err := w.ResolveAction(ctx, a.PlayerID, a.ID); err != nil {
			w.errs.Printf("Action %s (%s) for %s: %v", a.ID, a.Type, a.PlayerID, err)
			continue
		}
		done++
	}
	return done
}
