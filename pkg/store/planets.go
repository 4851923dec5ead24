package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"planetfall/pkg/types"
)

// --- players ---

// EnsurePlayer registers a player id. It reports whether the row is new.
func (q *Queries) EnsurePlayer(ctx context.Context, id, name string, now time.Time) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO players (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		id, name, ms(now))
	if err != nil {
		return false, storeErr("ensure player", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (q *Queries) ListPlayers(ctx context.Context) ([]types.Player, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, name, created_at FROM players ORDER BY created_at`)
	if err != nil {
		return nil, storeErr("list players", err)
	}
	defer rows.Close()
	var out []types.Player
	for rows.Next() {
		var p types.Player
		var created int64
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			return nil, storeErr("scan player", err)
		}
		p.CreatedAt = fromMs(created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- planets ---

func (q *Queries) InsertPlanet(ctx context.Context, p types.Planet) (types.Planet, error) {
	p.ID = newID(p.ID)
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO planets (id, name, description, is_starting_planet) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		p.ID, p.Name, p.Description, p.IsStartingPlanet)
	if err != nil {
		return types.Planet{}, storeErr("insert planet", err)
	}
	return p, nil
}

// StartingPlanet prefers a planet flagged as starting, falling back to the oldest one.
func (q *Queries) StartingPlanet(ctx context.Context) (types.Planet, error) {
	var p types.Planet
	err := q.q.QueryRowContext(ctx, `
		SELECT id, name, description, is_starting_planet FROM planets
		ORDER BY is_starting_planet DESC, rowid ASC LIMIT 1`).
		Scan(&p.ID, &p.Name, &p.Description, &p.IsStartingPlanet)
	if err != nil {
		return types.Planet{}, notFound("starting planet", err)
	}
	return p, nil
}

// LinkPlanet attaches a planet to a player. It reports whether the link is new.
func (q *Queries) LinkPlanet(ctx context.Context, playerID, planetID string) (bool, error) {
	res, err := q.q.ExecContext(ctx,
		`INSERT INTO player_planets (player_id, planet_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		playerID, planetID)
	if err != nil {
		return false, storeErr("link planet", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (q *Queries) PlayerPlanets(ctx context.Context, playerID string) ([]types.Planet, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.is_starting_planet
		FROM planets p JOIN player_planets pp ON pp.planet_id = p.id
		WHERE pp.player_id = ? ORDER BY p.rowid`, playerID)
	if err != nil {
		return nil, storeErr("player planets", err)
	}
	defer rows.Close()
	var out []types.Planet
	for rows.Next() {
		var p types.Planet
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsStartingPlanet); err != nil {
			return nil, storeErr("scan planet", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- locations ---

const locationCols = `l.id, l.planet_id, l.x, l.y, l.has_resource_mine, l.resource_id, COALESCE(r.name, ''),
	l.has_aliens, l.alien_type_id, l.alien_quantity`

const locationFrom = `FROM planet_locations l LEFT JOIN resources r ON r.id = l.resource_id`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(s scanner) (types.Location, error) {
	var l types.Location
	var resID, alienID sql.NullString
	err := s.Scan(&l.ID, &l.PlanetID, &l.X, &l.Y, &l.HasResourceMine, &resID, &l.ResourceName,
		&l.HasAliens, &alienID, &l.AlienQuantity)
	l.ResourceID = resID.String
	l.AlienTypeID = alienID.String
	return l, err
}

func (q *Queries) LocationAt(ctx context.Context, planetID string, x, y int) (types.Location, error) {
	row := q.q.QueryRowContext(ctx,
		`SELECT `+locationCols+` `+locationFrom+` WHERE l.planet_id = ? AND l.x = ? AND l.y = ?`,
		planetID, x, y)
	l, err := scanLocation(row)
	if err != nil {
		return types.Location{}, notFound("location", err)
	}
	return l, nil
}

func (q *Queries) ListLocations(ctx context.Context, planetID string) ([]types.Location, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+locationCols+` `+locationFrom+` WHERE l.planet_id = ? ORDER BY l.y, l.x`, planetID)
	if err != nil {
		return nil, storeErr("list locations", err)
	}
	defer rows.Close()
	var out []types.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, storeErr("scan location", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DiscoveredIn returns the coordinates of every recorded cell inside the
// inclusive rectangle.
func (q *Queries) DiscoveredIn(ctx context.Context, planetID string, minX, minY, maxX, maxY int) (map[[2]int]bool, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT x, y FROM planet_locations
		WHERE planet_id = ? AND x BETWEEN ? AND ? AND y BETWEEN ? AND ?`,
		planetID, minX, maxX, minY, maxY)
	if err != nil {
		return nil, storeErr("discovered cells", err)
	}
	defer rows.Close()
	out := make(map[[2]int]bool)
	for rows.Next() {
		var x, y int
		if err := rows.Scan(&x, &y); err != nil {
			return nil, storeErr("scan cell", err)
		}
		out[[2]int{x, y}] = true
	}
	return out, rows.Err()
}

// InsertLocations writes cells. Cells that already exist are left untouched;
// the returned slice holds only the rows actually written.
func (q *Queries) InsertLocations(ctx context.Context, locs []types.Location) ([]types.Location, error) {
	var written []types.Location
	for _, l := range locs {
		l.ID = newID(l.ID)
		res, err := q.q.ExecContext(ctx, `
			INSERT INTO planet_locations
				(id, planet_id, x, y, has_resource_mine, resource_id, has_aliens, alien_type_id, alien_quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(planet_id, x, y) DO NOTHING`,
			l.ID, l.PlanetID, l.X, l.Y, l.HasResourceMine, nullString(l.ResourceID),
			l.HasAliens, nullString(l.AlienTypeID), l.AlienQuantity)
		if err != nil {
			return written, storeErr("insert location", err)
		}
		n, err := affected(res)
		if err != nil {
			return written, err
		}
		if n > 0 {
			written = append(written, l)
		}
	}
	return written, nil
}

// ClearAliens empties a cell's alien occupancy.
func (q *Queries) ClearAliens(ctx context.Context, locationID string) error {
	_, err := q.q.ExecContext(ctx, `
		UPDATE planet_locations SET has_aliens = 0, alien_quantity = 0, alien_type_id = NULL
		WHERE id = ?`, locationID)
	if err != nil {
		return storeErr("clear aliens", err)
	}
	return nil
}

func joinStatuses(ss []types.GroupStatus) (string, []interface{}) {
	args := make([]interface{}, len(ss))
	parts := make([]string, len(ss))
	for i, s := range ss {
		args[i] = string(s)
		parts[i] = "?"
	}
	return strings.Join(parts, ", "), args
}
