package types

import "time"

// --- Vocabularies (persisted, must not change) ---

type GroupStatus string

const (
	GroupTraveling GroupStatus = "traveling"
	GroupExploring GroupStatus = "exploring"
	GroupReturning GroupStatus = "returning"
	GroupCompleted GroupStatus = "completed"
)

// Rank orders statuses along the expedition lifecycle. Unknown statuses rank -1.
func (s GroupStatus) Rank() int {
	switch s {
	case GroupTraveling:
		return 0
	case GroupExploring:
		return 1
	case GroupReturning:
		return 2
	case GroupCompleted:
		return 3
	}
	return -1
}

// ActiveGroupStatuses are the statuses an expedition sweep still has to look at.
var ActiveGroupStatuses = []GroupStatus{GroupTraveling, GroupExploring, GroupReturning}

type ActionType string

const (
	ActionExplore       ActionType = "explore"
	ActionBuildRefinery ActionType = "build_refinery"
	ActionBuildRobot    ActionType = "build_robot"
)

type ActionStatus string

const (
	ActionInProgress ActionStatus = "in_progress"
	ActionCompleted  ActionStatus = "completed"
)

// --- Templates ---

// UnitStats is the combat template shared by robot and alien types.
type UnitStats struct {
	Health        float64 `json:"health" yaml:"health"`
	Shield        float64 `json:"shield" yaml:"shield"`
	ShieldRegen   float64 `json:"shield_regen_rate_per_second" yaml:"shield_regen"`
	RangedAttack  float64 `json:"ranged_attack" yaml:"ranged_attack"`
	RangedDefense float64 `json:"ranged_defense" yaml:"ranged_defense"`
	MeleeAttack   float64 `json:"melee_attack" yaml:"melee_attack"`
	MeleeDefense  float64 `json:"melee_defense" yaml:"melee_defense"`
}

type RobotType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stats       UnitStats `json:"stats"`
	TravelSpeed int       `json:"travel_speed_per_grid_point_seconds"`
}

type AlienType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stats       UnitStats `json:"stats"`
}

type BuildingType struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	CraftingTimeSecond int    `json:"base_crafting_time_seconds"`
}

type Resource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// --- World ---

type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Planet struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	IsStartingPlanet bool   `json:"is_starting_planet"`
}

// Location is one discovered grid cell. Undiscovered cells have no record.
type Location struct {
	ID              string `json:"id"`
	PlanetID        string `json:"planet_id"`
	X               int    `json:"x_coord"`
	Y               int    `json:"y_coord"`
	HasResourceMine bool   `json:"has_resource_mine"`
	ResourceID      string `json:"resource_id,omitempty"`
	ResourceName    string `json:"resource_name,omitempty"`
	HasAliens       bool   `json:"has_aliens"`
	AlienTypeID     string `json:"alien_type_id,omitempty"`
	AlienQuantity   int    `json:"alien_quantity"`
}

type Robot struct {
	ID          string `json:"id"`
	PlayerID    string `json:"user_id"`
	PlanetID    string `json:"current_planet_id"`
	X           int    `json:"current_x"`
	Y           int    `json:"current_y"`
	Name        string `json:"name"`
	RobotTypeID string `json:"robot_type_id"`
}

// RobotGroup is an expedition: robots travelling together to a cell and back.
type RobotGroup struct {
	ID        string      `json:"id"`
	PlayerID  string      `json:"user_id"`
	PlanetID  string      `json:"planet_id"`
	Name      string      `json:"group_name"`
	StartX    int         `json:"start_x"`
	StartY    int         `json:"start_y"`
	TargetX   int         `json:"target_x"`
	TargetY   int         `json:"target_y"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Status    GroupStatus `json:"status"`
	RobotIDs  []string    `json:"robot_ids"`
}

type Action struct {
	ID        string       `json:"id"`
	PlayerID  string       `json:"user_id"`
	Type      ActionType   `json:"action_type"`
	TargetID  string       `json:"target_id"`
	TargetX   int          `json:"target_x"`
	TargetY   int          `json:"target_y"`
	PlanetID  string       `json:"planet_id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Status    ActionStatus `json:"status"`
}

type Building struct {
	ID                  string    `json:"id"`
	PlayerID            string    `json:"user_id"`
	PlanetID            string    `json:"planet_id"`
	X                   int       `json:"location_x"`
	Y                   int       `json:"location_y"`
	BuildingTypeID      string    `json:"building_type_id"`
	ProducingResourceID string    `json:"producing_resource_id,omitempty"`
	ProductionRate      float64   `json:"production_rate_per_second"`
	LastHarvestAt       time.Time `json:"last_harvest_at"`
}

type PlayerResource struct {
	PlayerID     string  `json:"user_id"`
	PlanetID     string  `json:"planet_id"`
	ResourceID   string  `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	Quantity     float64 `json:"quantity"`
}

// BattleLog is the archived round log of one resolved battle.
type BattleLog struct {
	ID        string    `json:"id"`
	ActionID  string    `json:"action_id"`
	PlanetID  string    `json:"planet_id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Outcome   string    `json:"outcome"`
	Rounds    int       `json:"rounds"`
	Digest    string    `json:"digest"`
	Blob      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
