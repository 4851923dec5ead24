package store

import (
	"context"
	"database/sql"
	"time"

	"planetfall/pkg/types"
)

// --- buildings ---

const buildingCols = `id, player_id, planet_id, x, y, building_type_id, producing_resource_id, production_rate, last_harvest_at`

// InsertBuilding creates a building unless one with the same id exists.
func (q *Queries) InsertBuilding(ctx context.Context, b types.Building) (bool, error) {
	b.ID = newID(b.ID)
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO buildings (`+buildingCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		b.ID, b.PlayerID, b.PlanetID, b.X, b.Y, b.BuildingTypeID, nullString(b.ProducingResourceID),
		b.ProductionRate, ms(b.LastHarvestAt))
	if err != nil {
		return false, storeErr("insert building", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (q *Queries) queryBuildings(ctx context.Context, query string, args ...interface{}) ([]types.Building, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query buildings", err)
	}
	defer rows.Close()
	var out []types.Building
	for rows.Next() {
		var b types.Building
		var res sql.NullString
		var harvested int64
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.PlanetID, &b.X, &b.Y, &b.BuildingTypeID, &res,
			&b.ProductionRate, &harvested); err != nil {
			return nil, storeErr("scan building", err)
		}
		b.ProducingResourceID = res.String
		b.LastHarvestAt = fromMs(harvested)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) ListBuildings(ctx context.Context, playerID, planetID string) ([]types.Building, error) {
	return q.queryBuildings(ctx,
		`SELECT `+buildingCols+` FROM buildings WHERE player_id = ? AND planet_id = ? ORDER BY rowid`,
		playerID, planetID)
}

// ProducingBuildings lists every building with a resource and a positive rate.
func (q *Queries) ProducingBuildings(ctx context.Context) ([]types.Building, error) {
	return q.queryBuildings(ctx, `
		SELECT `+buildingCols+` FROM buildings
		WHERE producing_resource_id IS NOT NULL AND production_rate > 0 ORDER BY rowid`)
}

// MarkHarvested advances a building's harvest watermark if it is still at prev.
func (q *Queries) MarkHarvested(ctx context.Context, id string, prev, at time.Time) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`UPDATE buildings SET last_harvest_at = ? WHERE id = ? AND last_harvest_at = ?`, ms(at), id, ms(prev))
	if err != nil {
		return false, storeErr("mark harvested", err)
	}
	n, err := affected(res)
	return n > 0, err
}

// --- stock ---

// AddStock credits a player's stock of a resource on a planet.
func (q *Queries) AddStock(ctx context.Context, playerID, planetID, resourceID string, qty float64) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO player_resources (player_id, planet_id, resource_id, quantity) VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id, planet_id, resource_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		playerID, planetID, resourceID, qty)
	if err != nil {
		return storeErr("add stock", err)
	}
	return nil
}

// SpendStock debits qty only if the player holds at least that much. It
// reports false, leaving stock unchanged, when funds are short.
func (q *Queries) SpendStock(ctx context.Context, playerID, planetID, resourceID string, qty float64) (bool, error) {
	res, err := q.q.ExecContext(ctx, `
		UPDATE player_resources SET quantity = quantity - ?
		WHERE player_id = ? AND planet_id = ? AND resource_id = ? AND quantity >= ?`,
		qty, playerID, planetID, resourceID, qty)
	if err != nil {
		return false, storeErr("spend stock", err)
	}
	n, err := affected(res)
	return n > 0, err
}

// Stock lists a player's holdings, optionally narrowed to one planet.
func (q *Queries) Stock(ctx context.Context, playerID, planetID string) ([]types.PlayerResource, error) {
	query := `
		SELECT pr.player_id, pr.planet_id, pr.resource_id, r.name, pr.quantity
		FROM player_resources pr JOIN resources r ON r.id = pr.resource_id
		WHERE pr.player_id = ?`
	args := []interface{}{playerID}
	if planetID != "" {
		query += ` AND pr.planet_id = ?`
		args = append(args, planetID)
	}
	rows, err := q.q.QueryContext(ctx, query+` ORDER BY r.name`, args...)
	if err != nil {
		return nil, storeErr("stock", err)
	}
	defer rows.Close()
	var out []types.PlayerResource
	for rows.Next() {
		var pr types.PlayerResource
		if err := rows.Scan(&pr.PlayerID, &pr.PlanetID, &pr.ResourceID, &pr.ResourceName, &pr.Quantity); err != nil {
			return nil, storeErr("scan stock", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
