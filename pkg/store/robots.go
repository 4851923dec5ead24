package store

import (
	"context"
	"database/sql"
	"fmt"

	"planetfall/pkg/types"
)

const robotCols = `id, player_id, planet_id, x, y, name, robot_type_id`

func scanRobots(rows *sql.Rows) ([]types.Robot, error) {
	defer rows.Close()
	var out []types.Robot
	for rows.Next() {
		var r types.Robot
		if err := rows.Scan(&r.ID, &r.PlayerID, &r.PlanetID, &r.X, &r.Y, &r.Name, &r.RobotTypeID); err != nil {
			return nil, storeErr("scan robot", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertRobot creates a robot. A robot with the same id is left as is and
// false is returned, which makes retried builds harmless.
func (q *Queries) InsertRobot(ctx context.Context, r types.Robot) (bool, error) {
	r.ID = newID(r.ID)
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO robots (`+robotCols+`) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		r.ID, r.PlayerID, r.PlanetID, r.X, r.Y, r.Name, r.RobotTypeID)
	if err != nil {
		return false, storeErr("insert robot", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (q *Queries) RobotByID(ctx context.Context, id string) (types.Robot, error) {
	var r types.Robot
	err := q.q.QueryRowContext(ctx, `SELECT `+robotCols+` FROM robots WHERE id = ?`, id).
		Scan(&r.ID, &r.PlayerID, &r.PlanetID, &r.X, &r.Y, &r.Name, &r.RobotTypeID)
	if err != nil {
		return types.Robot{}, notFound("robot "+id, err)
	}
	return r, nil
}

// ListRobots returns a player's robots, optionally narrowed to one planet.
func (q *Queries) ListRobots(ctx context.Context, playerID, planetID string) ([]types.Robot, error) {
	query := `SELECT ` + robotCols + ` FROM robots WHERE player_id = ?`
	args := []interface{}{playerID}
	if planetID != "" {
		query += ` AND planet_id = ?`
		args = append(args, planetID)
	}
	rows, err := q.q.QueryContext(ctx, query+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, storeErr("list robots", err)
	}
	return scanRobots(rows)
}

// RobotsOnPlanet loads the given robots, keeping only those the player owns on
// the planet. Missing ids are simply absent from the result.
func (q *Queries) RobotsOnPlanet(ctx context.Context, playerID, planetID string, ids []string) ([]types.Robot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := append([]interface{}{playerID, planetID}, stringArgs(ids)...)
	rows, err := q.q.QueryContext(ctx, `
		SELECT `+robotCols+` FROM robots
		WHERE player_id = ? AND planet_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, storeErr("robots on planet", err)
	}
	return scanRobots(rows)
}

// BusyRobots returns which of the given robots belong to a group that has not
// completed yet.
func (q *Queries) BusyRobots(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(ids) == 0 {
		return out, nil
	}
	in, statusArgs := joinStatuses(types.ActiveGroupStatuses)
	args := append(stringArgs(ids), statusArgs...)
	rows, err := q.q.QueryContext(ctx, `
		SELECT DISTINCT m.robot_id FROM robot_group_members m
		JOIN robot_groups g ON g.id = m.group_id
		WHERE m.robot_id IN (`+placeholders(len(ids))+`) AND g.status IN (`+in+`)`, args...)
	if err != nil {
		return nil, storeErr("busy robots", err)
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

// MoveRobots sets the position of the given robots.
func (q *Queries) MoveRobots(ctx context.Context, ids []string, x, y int) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]interface{}{x, y}, stringArgs(ids)...)
	_, err := q.q.ExecContext(ctx,
		`UPDATE robots SET x = ?, y = ? WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return storeErr("move robots", err)
	}
	return nil
}

// PlaceRobot puts one robot at a coordinate on a planet.
func (q *Queries) PlaceRobot(ctx context.Context, id, planetID string, x, y int) error {
	res, err := q.q.ExecContext(ctx, `UPDATE robots SET planet_id = ?, x = ?, y = ? WHERE id = ?`, planetID, x, y, id)
	if err != nil {
		return storeErr("place robot", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("robot %s: %w", id, types.ErrNotFound)
	}
	return nil
}

// DeleteRobot destroys a robot and drops it from every group.
func (q *Queries) DeleteRobot(ctx context.Context, id string) error {
	if _, err := q.q.ExecContext(ctx, `DELETE FROM robot_group_members WHERE robot_id = ?`, id); err != nil {
		return storeErr("delete robot memberships", err)
	}
	res, err := q.q.ExecContext(ctx, `DELETE FROM robots WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete robot", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("robot %s: %w", id, types.ErrNotFound)
	}
	return nil
}
