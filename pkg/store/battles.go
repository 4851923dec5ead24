package store

import (
	"context"

	"planetfall/pkg/types"
)

const battleCols = `id, action_id, planet_id, x, y, outcome, rounds, digest, blob, created_at`

// InsertBattleLog archives a battle. A log with the same id is kept as is.
func (q *Queries) InsertBattleLog(ctx context.Context, b types.BattleLog) error {
	b.ID = newID(b.ID)
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO battle_logs (`+battleCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		b.ID, b.ActionID, b.PlanetID, b.X, b.Y, b.Outcome, b.Rounds, b.Digest, b.Blob, ms(b.CreatedAt))
	if err != nil {
		return storeErr("insert battle log", err)
	}
	return nil
}

// BattleLogs returns the most recent archived battles, newest first.
func (q *Queries) BattleLogs(ctx context.Context, limit int) ([]types.BattleLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+battleCols+` FROM battle_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, storeErr("battle logs", err)
	}
	defer rows.Close()
	var out []types.BattleLog
	for rows.Next() {
		var b types.BattleLog
		var created int64
		if err := rows.Scan(&b.ID, &b.ActionID, &b.PlanetID, &b.X, &b.Y, &b.Outcome, &b.Rounds,
			&b.Digest, &b.Blob, &created); err != nil {
			return nil, storeErr("scan battle log", err)
		}
		b.CreatedAt = fromMs(created)
		out = append(out, b)
	}
	return out, rows.Err()
}
