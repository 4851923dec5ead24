package store

import (
	"context"

	"planetfall/pkg/types"
)

// Catalog rows are keyed by unique name. Upserts keep the existing id so
// references from robots, cells and buildings stay valid across reseeding.

const statsCols = `health, shield, shield_regen, ranged_attack, ranged_defense, melee_attack, melee_defense`

func statsArgs(s types.UnitStats) []interface{} {
	return []interface{}{s.Health, s.Shield, s.ShieldRegen, s.RangedAttack, s.RangedDefense, s.MeleeAttack, s.MeleeDefense}
}

func statsDest(s *types.UnitStats) []interface{} {
	return []interface{}{&s.Health, &s.Shield, &s.ShieldRegen, &s.RangedAttack, &s.RangedDefense, &s.MeleeAttack, &s.MeleeDefense}
}

// UpsertResource returns the resource named name, creating it if absent.
// Concurrent callers converge on a single row.
func (q *Queries) UpsertResource(ctx context.Context, name, description string) (types.Resource, error) {
	_, err := q.q.ExecContext(ctx,
		`INSERT INTO resources (id, name, description) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		newID(""), name, description)
	if err != nil {
		return types.Resource{}, storeErr("upsert resource", err)
	}
	return q.ResourceByName(ctx, name)
}

func (q *Queries) ResourceByName(ctx context.Context, name string) (types.Resource, error) {
	var r types.Resource
	err := q.q.QueryRowContext(ctx, `SELECT id, name, description FROM resources WHERE name = ?`, name).
		Scan(&r.ID, &r.Name, &r.Description)
	if err != nil {
		return types.Resource{}, notFound("resource "+name, err)
	}
	return r, nil
}

func (q *Queries) ResourceByID(ctx context.Context, id string) (types.Resource, error) {
	var r types.Resource
	err := q.q.QueryRowContext(ctx, `SELECT id, name, description FROM resources WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Description)
	if err != nil {
		return types.Resource{}, notFound("resource "+id, err)
	}
	return r, nil
}

func (q *Queries) ListResources(ctx context.Context) ([]types.Resource, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT id, name, description FROM resources ORDER BY name`)
	if err != nil {
		return nil, storeErr("list resources", err)
	}
	defer rows.Close()
	var out []types.Resource
	for rows.Next() {
		var r types.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, storeErr("scan resource", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRobotType creates or refreshes a robot template by name.
func (q *Queries) UpsertRobotType(ctx context.Context, rt types.RobotType) (types.RobotType, error) {
	args := append([]interface{}{newID(rt.ID), rt.Name, rt.Description}, statsArgs(rt.Stats)...)
	args = append(args, rt.TravelSpeed)
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO robot_types (id, name, description, `+statsCols+`, travel_speed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			health = excluded.health, shield = excluded.shield, shield_regen = excluded.shield_regen,
			ranged_attack = excluded.ranged_attack, ranged_defense = excluded.ranged_defense,
			melee_attack = excluded.melee_attack, melee_defense = excluded.melee_defense,
			travel_speed = excluded.travel_speed`, args...)
	if err != nil {
		return types.RobotType{}, storeErr("upsert robot type", err)
	}
	return q.RobotTypeByName(ctx, rt.Name)
}

func (q *Queries) scanRobotType(ctx context.Context, where string, arg interface{}) (types.RobotType, error) {
	var rt types.RobotType
	dest := append([]interface{}{&rt.ID, &rt.Name, &rt.Description}, statsDest(&rt.Stats)...)
	dest = append(dest, &rt.TravelSpeed)
	err := q.q.QueryRowContext(ctx,
		`SELECT id, name, description, `+statsCols+`, travel_speed FROM robot_types WHERE `+where+` = ?`, arg).
		Scan(dest...)
	if err != nil {
		return types.RobotType{}, notFound("robot type", err)
	}
	return rt, nil
}

func (q *Queries) RobotTypeByName(ctx context.Context, name string) (types.RobotType, error) {
	return q.scanRobotType(ctx, "name", name)
}

func (q *Queries) RobotTypeByID(ctx context.Context, id string) (types.RobotType, error) {
	return q.scanRobotType(ctx, "id", id)
}

func (q *Queries) UpsertAlienType(ctx context.Context, at types.AlienType) (types.AlienType, error) {
	args := append([]interface{}{newID(at.ID), at.Name, at.Description}, statsArgs(at.Stats)...)
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO alien_types (id, name, description, `+statsCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			health = excluded.health, shield = excluded.shield, shield_regen = excluded.shield_regen,
			ranged_attack = excluded.ranged_attack, ranged_defense = excluded.ranged_defense,
			melee_attack = excluded.melee_attack, melee_defense = excluded.melee_defense`, args...)
	if err != nil {
		return types.AlienType{}, storeErr("upsert alien type", err)
	}
	return q.AlienTypeByName(ctx, at.Name)
}

func (q *Queries) scanAlienType(ctx context.Context, where string, arg interface{}) (types.AlienType, error) {
	var at types.AlienType
	dest := append([]interface{}{&at.ID, &at.Name, &at.Description}, statsDest(&at.Stats)...)
	err := q.q.QueryRowContext(ctx,
		`SELECT id, name, description, `+statsCols+` FROM alien_types WHERE `+where+` = ?`, arg).
		Scan(dest...)
	if err != nil {
		return types.AlienType{}, notFound("alien type", err)
	}
	return at, nil
}

func (q *Queries) AlienTypeByName(ctx context.Context, name string) (types.AlienType, error) {
	return q.scanAlienType(ctx, "name", name)
}

func (q *Queries) AlienTypeByID(ctx context.Context, id string) (types.AlienType, error) {
	return q.scanAlienType(ctx, "id", id)
}

func (q *Queries) UpsertBuildingType(ctx context.Context, bt types.BuildingType) (types.BuildingType, error) {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO building_types (id, name, description, crafting_time) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description, crafting_time = excluded.crafting_time`,
		newID(bt.ID), bt.Name, bt.Description, bt.CraftingTimeSecond)
	if err != nil {
		return types.BuildingType{}, storeErr("upsert building type", err)
	}
	return q.BuildingTypeByName(ctx, bt.Name)
}

func (q *Queries) scanBuildingType(ctx context.Context, where string, arg interface{}) (types.BuildingType, error) {
	var bt types.BuildingType
	err := q.q.QueryRowContext(ctx,
		`SELECT id, name, description, crafting_time FROM building_types WHERE `+where+` = ?`, arg).
		Scan(&bt.ID, &bt.Name, &bt.Description, &bt.CraftingTimeSecond)
	if err != nil {
		return types.BuildingType{}, notFound("building type", err)
	}
	return bt, nil
}

func (q *Queries) BuildingTypeByName(ctx context.Context, name string) (types.BuildingType, error) {
	return q.scanBuildingType(ctx, "name", name)
}

func (q *Queries) BuildingTypeByID(ctx context.Context, id string) (types.BuildingType, error) {
	return q.scanBuildingType(ctx, "id", id)
}
