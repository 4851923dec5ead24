package store

import (
	"context"
	"time"

	"planetfall/pkg/types"
)

const groupCols = `id, player_id, planet_id, name, start_x, start_y, target_x, target_y, start_time, end_time, status`

// InsertGroup creates an expedition and its member rows.
func (q *Queries) InsertGroup(ctx context.Context, g types.RobotGroup) (types.RobotGroup, error) {
	g.ID = newID(g.ID)
	_, err := q.q.ExecContext(ctx, `INSERT INTO robot_groups (`+groupCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.PlayerID, g.PlanetID, g.Name, g.StartX, g.StartY, g.TargetX, g.TargetY,
		ms(g.StartTime), ms(g.EndTime), string(g.Status))
	if err != nil {
		return types.RobotGroup{}, storeErr("insert group", err)
	}
	for _, rid := range g.RobotIDs {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO robot_group_members (group_id, robot_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, g.ID, rid)
		if err != nil {
			return types.RobotGroup{}, storeErr("insert group member", err)
		}
	}
	return g, nil
}

func (q *Queries) queryGroups(ctx context.Context, query string, args ...interface{}) ([]types.RobotGroup, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query groups", err)
	}
	var out []types.RobotGroup
	for rows.Next() {
		var g types.RobotGroup
		var start, end int64
		var status string
		if err := rows.Scan(&g.ID, &g.PlayerID, &g.PlanetID, &g.Name, &g.StartX, &g.StartY,
			&g.TargetX, &g.TargetY, &start, &end, &status); err != nil {
			rows.Close()
			return nil, storeErr("scan group", err)
		}
		g.StartTime, g.EndTime, g.Status = fromMs(start), fromMs(end), types.GroupStatus(status)
		out = append(out, g)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, storeErr("iterate groups", err)
	}
	// Members are loaded after the group cursor is closed: the pool has a
	// single connection.
	for i := range out {
		ids, err := q.groupMembers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].RobotIDs = ids
	}
	return out, nil
}

func (q *Queries) groupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT robot_id FROM robot_group_members WHERE group_id = ? ORDER BY rowid`, groupID)
	if err != nil {
		return nil, storeErr("group members", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan member", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) GroupByID(ctx context.Context, id string) (types.RobotGroup, error) {
	gs, err := q.queryGroups(ctx, `SELECT `+groupCols+` FROM robot_groups WHERE id = ?`, id)
	if err != nil {
		return types.RobotGroup{}, err
	}
	if len(gs) == 0 {
		return types.RobotGroup{}, notFoundf("group %s", id)
	}
	return gs[0], nil
}

// ActiveGroups returns a player's groups that are not completed.
func (q *Queries) ActiveGroups(ctx context.Context, playerID string) ([]types.RobotGroup, error) {
	in, args := joinStatuses(types.ActiveGroupStatuses)
	return q.queryGroups(ctx,
		`SELECT `+groupCols+` FROM robot_groups WHERE player_id = ? AND status IN (`+in+`) ORDER BY start_time`,
		append([]interface{}{playerID}, args...)...)
}

// PlayersWithActiveGroups lists every player that has an expedition in flight.
func (q *Queries) PlayersWithActiveGroups(ctx context.Context) ([]string, error) {
	in, args := joinStatuses(types.ActiveGroupStatuses)
	rows, err := q.q.QueryContext(ctx,
		`SELECT DISTINCT player_id FROM robot_groups WHERE status IN (`+in+`)`, args...)
	if err != nil {
		return nil, storeErr("players with groups", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan player id", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RecentGroups returns a player's groups on a planet that are still active or
// ended at or after since, newest first.
func (q *Queries) RecentGroups(ctx context.Context, playerID, planetID string, since time.Time) ([]types.RobotGroup, error) {
	return q.queryGroups(ctx, `
		SELECT `+groupCols+` FROM robot_groups
		WHERE player_id = ? AND planet_id = ? AND (status != ? OR end_time >= ?)
		ORDER BY start_time DESC`,
		playerID, planetID, string(types.GroupCompleted), ms(since))
}

// TransitionGroup moves a group from one status to another. It reports false
// when the stored status was no longer from, meaning another worker got there first.
func (q *Queries) TransitionGroup(ctx context.Context, id string, from, to types.GroupStatus) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`UPDATE robot_groups SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return false, storeErr("transition group", err)
	}
	n, err := affected(res)
	return n > 0, err
}

// PruneGroups deletes completed groups that ended before cutoff.
func (q *Queries) PruneGroups(ctx context.Context, cutoff time.Time) (int64, error) {
	_, err := q.q.ExecContext(ctx, `
		DELETE FROM robot_group_members WHERE group_id IN (
			SELECT id FROM robot_groups WHERE status = ? AND end_time < ?)`,
		string(types.GroupCompleted), ms(cutoff))
	if err != nil {
		return 0, storeErr("prune members", err)
	}
	res, err := q.q.ExecContext(ctx,
		`DELETE FROM robot_groups WHERE status = ? AND end_time < ?`, string(types.GroupCompleted), ms(cutoff))
	if err != nil {
		return 0, storeErr("prune groups", err)
	}
	return affected(res)
}
