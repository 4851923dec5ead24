package store

// Times are Unix milliseconds. Booleans are 0/1 integers.
const schema = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	name TEXT,
	created_at INTEGER
);

CREATE TABLE IF NOT EXISTS planets (
	id TEXT PRIMARY KEY,
	name TEXT,
	description TEXT,
	is_starting_planet INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS player_planets (
	player_id TEXT,
	planet_id TEXT,
	PRIMARY KEY (player_id, planet_id)
);

CREATE TABLE IF NOT EXISTS resources (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS robot_types (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	description TEXT,
	health REAL, shield REAL, shield_regen REAL,
	ranged_attack REAL, ranged_defense REAL,
	melee_attack REAL, melee_defense REAL,
	travel_speed INTEGER
);

CREATE TABLE IF NOT EXISTS alien_types (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	description TEXT,
	health REAL, shield REAL, shield_regen REAL,
	ranged_attack REAL, ranged_defense REAL,
	melee_attack REAL, melee_defense REAL
);

CREATE TABLE IF NOT EXISTS building_types (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	description TEXT,
	crafting_time INTEGER
);

CREATE TABLE IF NOT EXISTS planet_locations (
	id TEXT PRIMARY KEY,
	planet_id TEXT NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	has_resource_mine INTEGER DEFAULT 0,
	resource_id TEXT,
	has_aliens INTEGER DEFAULT 0,
	alien_type_id TEXT,
	alien_quantity INTEGER DEFAULT 0,
	UNIQUE (planet_id, x, y)
);

CREATE TABLE IF NOT EXISTS robots (
	id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	planet_id TEXT,
	x INTEGER DEFAULT 0,
	y INTEGER DEFAULT 0,
	name TEXT,
	robot_type_id TEXT
);

CREATE TABLE IF NOT EXISTS robot_groups (
	id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	planet_id TEXT,
	name TEXT,
	start_x INTEGER, start_y INTEGER,
	target_x INTEGER, target_y INTEGER,
	start_time INTEGER, end_time INTEGER,
	status TEXT
);
CREATE INDEX IF NOT EXISTS idx_groups_player_status ON robot_groups (player_id, status);

CREATE TABLE IF NOT EXISTS robot_group_members (
	group_id TEXT,
	robot_id TEXT,
	PRIMARY KEY (group_id, robot_id)
);

CREATE TABLE IF NOT EXISTS actions (
	id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	action_type TEXT,
	target_id TEXT,
	target_x INTEGER, target_y INTEGER,
	planet_id TEXT,
	start_time INTEGER, end_time INTEGER,
	status TEXT
);
CREATE INDEX IF NOT EXISTS idx_actions_due ON actions (status, end_time);

CREATE TABLE IF NOT EXISTS buildings (
	id TEXT PRIMARY KEY,
	player_id TEXT NOT NULL,
	planet_id TEXT,
	x INTEGER, y INTEGER,
	building_type_id TEXT,
	producing_resource_id TEXT,
	production_rate REAL,
	last_harvest_at INTEGER
);

CREATE TABLE IF NOT EXISTS player_resources (
	player_id TEXT,
	planet_id TEXT,
	resource_id TEXT,
	quantity REAL DEFAULT 0,
	PRIMARY KEY (player_id, planet_id, resource_id)
);

CREATE TABLE IF NOT EXISTS battle_logs (
	id TEXT PRIMARY KEY,
	action_id TEXT,
	planet_id TEXT,
	x INTEGER, y INTEGER,
	outcome TEXT,
	rounds INTEGER,
	digest TEXT,
	blob BLOB,
	created_at INTEGER
);
`
