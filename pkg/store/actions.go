package store

import (
	"context"
	"time"

	"planetfall/pkg/types"
)

const actionCols = `id, player_id, action_type, target_id, target_x, target_y, planet_id, start_time, end_time, status`

func (q *Queries) InsertAction(ctx context.Context, a types.Action) (types.Action, error) {
	a.ID = newID(a.ID)
	_, err := q.q.ExecContext(ctx, `INSERT INTO actions (`+actionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PlayerID, string(a.Type), a.TargetID, a.TargetX, a.TargetY, a.PlanetID,
		ms(a.StartTime), ms(a.EndTime), string(a.Status))
	if err != nil {
		return types.Action{}, storeErr("insert action", err)
	}
	return a, nil
}

func (q *Queries) queryActions(ctx context.Context, query string, args ...interface{}) ([]types.Action, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query actions", err)
	}
	defer rows.Close()
	var out []types.Action
	for rows.Next() {
		var a types.Action
		var typ, status string
		var start, end int64
		if err := rows.Scan(&a.ID, &a.PlayerID, &typ, &a.TargetID, &a.TargetX, &a.TargetY, &a.PlanetID,
			&start, &end, &status); err != nil {
			return nil, storeErr("scan action", err)
		}
		a.Type, a.Status = types.ActionType(typ), types.ActionStatus(status)
		a.StartTime, a.EndTime = fromMs(start), fromMs(end)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ActionForPlayer loads an action only if it belongs to the player.
func (q *Queries) ActionForPlayer(ctx context.Context, playerID, id string) (types.Action, error) {
	as, err := q.queryActions(ctx,
		`SELECT `+actionCols+` FROM actions WHERE id = ? AND player_id = ?`, id, playerID)
	if err != nil {
		return types.Action{}, err
	}
	if len(as) == 0 {
		return types.Action{}, notFoundf("action %s", id)
	}
	return as[0], nil
}

// ListActions returns a player's actions, newest first. An empty status lists all.
func (q *Queries) ListActions(ctx context.Context, playerID string, status types.ActionStatus) ([]types.Action, error) {
	query := `SELECT ` + actionCols + ` FROM actions WHERE player_id = ?`
	args := []interface{}{playerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	return q.queryActions(ctx, query+` ORDER BY start_time DESC`, args...)
}

// DueActions returns in-progress actions of every player whose end time has passed.
func (q *Queries) DueActions(ctx context.Context, now time.Time) ([]types.Action, error) {
	return q.queryActions(ctx,
		`SELECT `+actionCols+` FROM actions WHERE status = ? AND end_time <= ? ORDER BY end_time`,
		string(types.ActionInProgress), ms(now))
}

// PendingExplores returns which of the given robots are the target of an
// explore action still in progress.
func (q *Queries) PendingExplores(ctx context.Context, robotIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(robotIDs) == 0 {
		return out, nil
	}
	args := append([]interface{}{string(types.ActionExplore), string(types.ActionInProgress)}, stringArgs(robotIDs)...)
	rows, err := q.q.QueryContext(ctx, `
		SELECT DISTINCT target_id FROM actions
		WHERE action_type = ? AND status = ? AND target_id IN (`+placeholders(len(robotIDs))+`)`, args...)
	if err != nil {
		return nil, storeErr("pending explores", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan robot id", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// CompleteAction flips an action from in_progress to completed. False means
// the action was already completed by someone else.
func (q *Queries) CompleteAction(ctx context.Context, id string) (bool, error) {
	res, err := q.q.ExecContext(ctx, `UPDATE actions SET status = ? WHERE id = ? AND status = ?`,
		string(types.ActionCompleted), id, string(types.ActionInProgress))
	if err != nil {
		return false, storeErr("complete action", err)
	}
	n, err := affected(res)
	return n > 0, err
}
