package world

import (
	"context"
	"fmt"

	"planetfall/pkg/game"
	"planetfall/pkg/store"
	"planetfall/pkg/types"
)

type ExpeditionStarted struct {
	GroupID                string `json:"groupId"`
	TravelTimeSeconds      int    `json:"travelTimeSeconds"`
	ExplorationTimeSeconds int    `json:"explorationTimeSeconds"`
	TotalTimeSeconds       int    `json:"totalTimeSeconds"`
}

// StartExpedition sends robots from the first robot's position to the target
// and back. The slowest robot sets the pace.
func (w *World) StartExpedition(ctx context.Context, playerID, planetID string, robotIDs []string, targetX, targetY int) (ExpeditionStarted, error) {
	ids := dedupe(robotIDs)
	if len(ids) == 0 {
		return ExpeditionStarted{}, precondition("at least one robot is required")
	}
	if planetID == "" {
		return ExpeditionStarted{}, precondition("planet id is required")
	}

	var out ExpeditionStarted
	var group types.RobotGroup
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		robots, err := q.RobotsOnPlanet(ctx, playerID, planetID, ids)
		if err != nil {
			return err
		}
		if len(robots) != len(ids) {
			return notFound("one or more robots not found on this planet")
		}
		busy, err := q.BusyRobots(ctx, ids)
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			return precondition("one or more robots are already on an expedition")
		}
		exploring, err := q.PendingExplores(ctx, ids)
		if err != nil {
			return err
		}
		if len(exploring) > 0 {
			return precondition("one or more robots have an exploration in progress")
		}

		byID := make(map[string]types.Robot, len(robots))
		speedOf := make(map[string]int)
		speeds := make([]int, 0, len(robots))
		for _, r := range robots {
			byID[r.ID] = r
			speed, ok := speedOf[r.RobotTypeID]
			if !ok {
				rt, err := q.RobotTypeByID(ctx, r.RobotTypeID)
				if err != nil {
					return err
				}
				speed = rt.TravelSpeed
				speedOf[r.RobotTypeID] = speed
			}
			speeds = append(speeds, speed)
		}

		lead := byID[ids[0]]
		plan := game.PlanExpedition(lead.X, lead.Y, targetX, targetY, speeds, w.cfg.World.ExploreDuration, w.Now())
		group, err = q.InsertGroup(ctx, types.RobotGroup{
			PlayerID:  playerID,
			PlanetID:  planetID,
			Name:      fmt.Sprintf("Expedition to (%d, %d)", targetX, targetY),
			StartX:    lead.X,
			StartY:    lead.Y,
			TargetX:   targetX,
			TargetY:   targetY,
			StartTime: plan.Start,
			EndTime:   plan.End,
			Status:    types.GroupTraveling,
			RobotIDs:  ids,
		})
		if err != nil {
			return err
		}
		out = ExpeditionStarted{
			GroupID:                group.ID,
			TravelTimeSeconds:      plan.TravelSeconds,
			ExplorationTimeSeconds: plan.ExploreSeconds,
			TotalTimeSeconds:       plan.TotalSeconds,
		}
		return nil
	})
	if err != nil {
		return ExpeditionStarted{}, err
	}

	w.info.Printf("EXPEDITION: %s sent %d robot(s) to (%d, %d), back in %ds", playerID, len(ids), targetX, targetY, out.TotalTimeSeconds)
	w.publish(playerID, types.EventExpeditionPhase, phaseData(group, "", types.GroupTraveling))
	return out, nil
}

// AdvanceExpeditions moves each of the player's active expeditions forward to
// the phase the clock says it is in. It returns how many changed status and
// stops at the first failure.
func (w *World) AdvanceExpeditions(ctx context.Context, playerID string) (int, error) {
	groups, err := w.store.ActiveGroups(ctx, playerID)
	if err != nil {
		return 0, err
	}
	now := w.Now()
	updated := 0
	for _, g := range groups {
		next := game.NextStatus(g.Status, now, game.NewTimeline(g.StartTime, g.EndTime, w.cfg.World.ExploreDuration))
		if next == g.Status {
			continue
		}
		changed, err := w.advanceGroup(ctx, g, next)
		if err != nil {
			return updated, fmt.Errorf("group %s: %w", g.ID, err)
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

// advanceGroup writes one transition. It reports false when another tick
// already moved the group.
func (w *World) advanceGroup(ctx context.Context, g types.RobotGroup, next types.GroupStatus) (bool, error) {
	var (
		won   bool
		cells []types.Location
	)
	err := w.store.InTx(ctx, func(q *store.Queries) error {
		ok, err := q.TransitionGroup(ctx, g.ID, g.Status, next)
		if err != nil || !ok {
			return err
		}
		won = true
		if game.NeedsDiscovery(g.Status, next) {
			if cells, err = w.discover(ctx, q, g.PlanetID, g.TargetX, g.TargetY); err != nil {
				return err
			}
		}
		if next == types.GroupCompleted {
			return q.MoveRobots(ctx, g.RobotIDs, w.cfg.World.HomeX, w.cfg.World.HomeY)
		}
		return nil
	})
	if err != nil || !won {
		return false, err
	}

	w.publish(g.PlayerID, types.EventExpeditionPhase, phaseData(g, g.Status, next))
	if len(cells) > 0 {
		w.info.Printf("DISCOVERY: %d new cell(s) around (%d, %d) on %s", len(cells), g.TargetX, g.TargetY, g.PlanetID)
		w.publish(g.PlayerID, types.EventCellsDiscovered, map[string]interface{}{
			"planetId": g.PlanetID,
			"cells":    cells,
		})
	}
	return true, nil
}

// AdvanceAll sweeps every player with an expedition in flight. Failures are
// logged per player and do not stop the sweep.
func (w *World) AdvanceAll(ctx context.Context) int {
	players, err := w.store.PlayersWithActiveGroups(ctx)
	if err != nil {
		w.errs.Printf("Expedition sweep failed: %v", err)
		return 0
	}
	total := 0
	for _, p := range players {
		n, err := w.AdvanceExpeditions(ctx, p)
		if err != nil {
			w.errs.Printf("Expedition sweep for %s: %v", p, err)
		}
		total += n
	}
	return total
}

// ListExpeditions returns the player's active expeditions on a planet plus
// completed ones still inside the retention window.
func (w *World) ListExpeditions(ctx context.Context, playerID, planetID string) ([]types.RobotGroup, error) {
	if planetID == "" {
		return nil, precondition("planetId is required")
	}
	return w.store.RecentGroups(ctx, playerID, planetID, w.Now().Add(-w.cfg.World.GroupRetention))
}

// PruneExpeditions deletes completed expeditions older than the retention window.
func (w *World) PruneExpeditions(ctx context.Context) (int64, error) {
	return w.store.PruneGroups(ctx, w.Now().Add(-w.cfg.World.GroupRetention))
}

func phaseData(g types.RobotGroup, from, to types.GroupStatus) map[string]interface{} {
	return map[string]interface{}{
		"groupId":  g.ID,
		"planetId": g.PlanetID,
		"from":     string(from),
		"to":       string(to),
		"targetX":  g.TargetX,
		"targetY":  g.TargetY,
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
