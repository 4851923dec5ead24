// Package config loads server settings and the unit catalog.
//
// Values come from the embedded defaults.yaml, then an optional YAML file,
// then PLANETFALL_* environment variables.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"planetfall/pkg/types"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	World     WorldConfig     `yaml:"world"`
	Sweeper   SweeperConfig   `yaml:"sweeper"`
	Combat    CombatConfig    `yaml:"combat"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Economy   EconomyConfig   `yaml:"economy"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	RateBurst      int           `yaml:"rate_burst"`
	CommandControl bool          `yaml:"command_control"` // false rejects /api/game routes
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Dir string `yaml:"dir"`
}

type WorldConfig struct {
	Seed                   string        `yaml:"seed"`
	ExploreDuration        time.Duration `yaml:"explore_duration"`
	RefineryProductionRate float64       `yaml:"refinery_production_rate"`
	GroupRetention         time.Duration `yaml:"group_retention"`
	HomeX                  int           `yaml:"home_x"`
	HomeY                  int           `yaml:"home_y"`
	LandingPlanet          string        `yaml:"landing_planet"` // shared planet offered to Land
	LandingSiteX           int           `yaml:"landing_site_x"`
	LandingSiteY           int           `yaml:"landing_site_y"`
}

type SweeperConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type CombatConfig struct {
	MaxRounds int `yaml:"max_rounds"`
}

type DiscoveryConfig struct {
	AlienType string `yaml:"alien_type"`
}

type EconomyConfig struct {
	Currency        string        `yaml:"currency"`
	StartingStock   float64       `yaml:"starting_stock"`
	RefineryCost    float64       `yaml:"refinery_cost"`
	RobotCost       float64       `yaml:"robot_cost"`
	RobotBuildTime  time.Duration `yaml:"robot_build_time"`
	LandingResource string        `yaml:"landing_resource"`
	LandingBuilding string        `yaml:"landing_building"` // granted on Land, empty grants none
}

type CatalogConfig struct {
	StarterRobot  string              `yaml:"starter_robot"`
	Refinery      string              `yaml:"refinery"`
	Resources     []ResourceEntry     `yaml:"resources"`
	RobotTypes    []RobotTypeEntry    `yaml:"robot_types"`
	AlienTypes    []AlienTypeEntry    `yaml:"alien_types"`
	BuildingTypes []BuildingTypeEntry `yaml:"building_types"`
}

type ResourceEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type RobotTypeEntry struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	TravelSpeed int             `yaml:"travel_speed"` // seconds per grid point
	Stats       types.UnitStats `yaml:"stats"`
}

type AlienTypeEntry struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Stats       types.UnitStats `yaml:"stats"`
}

type BuildingTypeEntry struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	CraftingTime int    `yaml:"crafting_time"` // seconds
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads defaults, overlays path when non-empty, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PLANETFALL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PLANETFALL_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("PLANETFALL_LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
	if v := os.Getenv("PLANETFALL_WORLD_SEED"); v != "" {
		c.World.Seed = v
	}
	// Default to running unless explicitly disabled
	if os.Getenv("PLANETFALL_SWEEPER") == "false" {
		c.Sweeper.Enabled = false
	}
	if os.Getenv("PLANETFALL_COMMAND_CONTROL") == "false" {
		c.Server.CommandControl = false
	}
	if v := os.Getenv("PLANETFALL_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PLANETFALL_SWEEP_INTERVAL: %w", err)
		}
		c.Sweeper.Interval = d
	}
	if v := os.Getenv("PLANETFALL_MAX_ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANETFALL_MAX_ROUNDS: %w", err)
		}
		c.Combat.MaxRounds = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.World.ExploreDuration <= 0 {
		return fmt.Errorf("world.explore_duration must be positive")
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be positive")
	}
	if c.Combat.MaxRounds <= 0 {
		return fmt.Errorf("combat.max_rounds must be positive")
	}
	if c.RobotType(c.Catalog.StarterRobot) == nil {
		return fmt.Errorf("catalog.starter_robot %q is not a robot type", c.Catalog.StarterRobot)
	}
	if c.AlienType(c.Discovery.AlienType) == nil {
		return fmt.Errorf("discovery.alien_type %q is not an alien type", c.Discovery.AlienType)
	}
	if c.Economy.LandingBuilding != "" && c.BuildingType(c.Economy.LandingBuilding) == nil {
		return fmt.Errorf("economy.landing_building %q is not a building type", c.Economy.LandingBuilding)
	}
	return nil
}

func (c *Config) BuildingType(name string) *BuildingTypeEntry {
	for i := range c.Catalog.BuildingTypes {
		if c.Catalog.BuildingTypes[i].Name == name {
			return &c.Catalog.BuildingTypes[i]
		}
	}
	return nil
}

func (c *Config) RobotType(name string) *RobotTypeEntry {
	for i := range c.Catalog.RobotTypes {
		if c.Catalog.RobotTypes[i].Name == name {
			return &c.Catalog.RobotTypes[i]
		}
	}
	return nil
}

func (c *Config) AlienType(name string) *AlienTypeEntry {
	for i := range c.Catalog.AlienTypes {
		if c.Catalog.AlienTypes[i].Name == name {
			return &c.Catalog.AlienTypes[i]
		}
	}
	return nil
}
